// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"time"

	"github.com/luxfi/crowdsale/sale"
	"github.com/luxfi/crowdsale/utils/json"
)

// StatusArgs is the argument for crowdsale.status.
type StatusArgs struct{}

// StatusReply is the reply for crowdsale.status.
type StatusReply struct {
	Version         string      `json:"version"`
	Status          string      `json:"status"`
	Stage           string      `json:"stage"`
	WeiRaised       json.Uint64 `json:"weiRaised"`
	Goal            json.Uint64 `json:"goal"`
	GoalReached     bool        `json:"goalReached"`
	TotalSupply     json.Uint64 `json:"totalSupply"`
	TokenCap        json.Uint64 `json:"tokenCap"`
	MintingFinished bool        `json:"mintingFinished"`
	VaultState      string      `json:"vaultState"`
	VaultHeld       json.Uint64 `json:"vaultHeld"`
	Owner           string      `json:"owner"`
	Wallet          string      `json:"wallet"`
}

// Status reports the sale's full externally visible state.
func (s *Service) Status(_ *http.Request, _ *StatusArgs, reply *StatusReply) error {
	status, err := s.controller.Status()
	if err != nil {
		return err
	}
	stage, err := s.controller.Stage()
	if err != nil {
		return err
	}
	raised, err := s.controller.WeiRaised()
	if err != nil {
		return err
	}
	reached, err := s.controller.GoalReached()
	if err != nil {
		return err
	}
	supply, err := s.controller.TotalSupply()
	if err != nil {
		return err
	}
	finished, err := s.controller.MintingFinished()
	if err != nil {
		return err
	}
	vaultState, err := s.controller.VaultState()
	if err != nil {
		return err
	}
	held, err := s.controller.VaultHeld()
	if err != nil {
		return err
	}

	reply.Version = sale.Version.String()
	reply.Status = status.String()
	reply.Stage = stage.String()
	reply.WeiRaised = json.Uint64(raised)
	reply.Goal = json.Uint64(s.controller.Goal())
	reply.GoalReached = reached
	reply.TotalSupply = json.Uint64(supply)
	reply.TokenCap = json.Uint64(s.controller.TokenCap())
	reply.MintingFinished = finished
	reply.VaultState = vaultState.String()
	reply.VaultHeld = json.Uint64(held)
	reply.Owner = s.controller.Owner().String()
	reply.Wallet = s.controller.Wallet().String()
	return nil
}

// GetAccountArgs is the argument for crowdsale.getAccount.
type GetAccountArgs struct {
	Address string `json:"address"`
}

// GetAccountReply is the reply for crowdsale.getAccount.
type GetAccountReply struct {
	Balance     json.Uint64 `json:"balance"`
	Deposit     json.Uint64 `json:"deposit"`
	Partner     bool        `json:"partner"`
	Blacklisted bool        `json:"blacklisted"`
	Frozen      bool        `json:"frozen"`
}

// GetAccount returns an address's ledger record and escrow deposit.
func (s *Service) GetAccount(_ *http.Request, args *GetAccountArgs, reply *GetAccountReply) error {
	addr, err := parseAddr("account", args.Address)
	if err != nil {
		return err
	}
	acct, err := s.controller.GetAccount(addr)
	if err != nil {
		return err
	}
	dep, err := s.controller.DepositOf(addr)
	if err != nil {
		return err
	}

	reply.Balance = json.Uint64(acct.Balance)
	reply.Deposit = json.Uint64(dep)
	reply.Partner = acct.Partner
	reply.Blacklisted = acct.Blacklisted
	reply.Frozen = acct.Frozen
	return nil
}

// AllowanceArgs is the argument for crowdsale.allowance.
type AllowanceArgs struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

// AllowanceReply is the reply for crowdsale.allowance.
type AllowanceReply struct {
	Allowance json.Uint64 `json:"allowance"`
}

// Allowance returns what a spender may transfer out of an owner's balance.
func (s *Service) Allowance(_ *http.Request, args *AllowanceArgs, reply *AllowanceReply) error {
	owner, err := parseAddr("owner", args.Owner)
	if err != nil {
		return err
	}
	spender, err := parseAddr("spender", args.Spender)
	if err != nil {
		return err
	}
	allowance, err := s.controller.Allowance(owner, spender)
	if err != nil {
		return err
	}
	reply.Allowance = json.Uint64(allowance)
	return nil
}

// PoolsArgs is the argument for crowdsale.pools.
type PoolsArgs struct{}

// PoolsReply is the reply for crowdsale.pools.
type PoolsReply struct {
	Team   json.Uint64 `json:"team"`
	Relay  json.Uint64 `json:"relay"`
	Bounty json.Uint64 `json:"bounty"`
	Legal  json.Uint64 `json:"legal"`
}

// Pools returns the ungranted remainder of each grant pool.
func (s *Service) Pools(_ *http.Request, _ *PoolsArgs, reply *PoolsReply) error {
	for _, entry := range []struct {
		pool sale.Pool
		out  *json.Uint64
	}{
		{sale.Team, &reply.Team},
		{sale.Relay, &reply.Relay},
		{sale.Bounty, &reply.Bounty},
		{sale.Legal, &reply.Legal},
	} {
		remaining, err := s.controller.PoolRemaining(entry.pool)
		if err != nil {
			return err
		}
		*entry.out = json.Uint64(remaining)
	}
	return nil
}

// ReleasesArgs is the argument for crowdsale.releases.
type ReleasesArgs struct{}

// ReleasesReply is the reply for crowdsale.releases.
type ReleasesReply struct {
	PublicRelease   time.Time `json:"publicRelease"`
	PartnersRelease time.Time `json:"partnersRelease"`
}

// Releases returns the ledger's timelock release dates.
func (s *Service) Releases(_ *http.Request, _ *ReleasesArgs, reply *ReleasesReply) error {
	public, err := s.controller.PublicRelease()
	if err != nil {
		return err
	}
	partners, err := s.controller.PartnersRelease()
	if err != nil {
		return err
	}
	reply.PublicRelease = public
	reply.PartnersRelease = partners
	return nil
}
