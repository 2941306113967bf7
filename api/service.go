// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the sale controller over JSON-RPC. Every method takes
// the acting address explicitly; the controller and its components enforce
// all authority below.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/crowdsale/sale"
	"github.com/luxfi/crowdsale/utils/json"
)

// Service provides the RPC API for the sale controller.
type Service struct {
	controller *sale.Controller
	log        log.Logger
}

// NewService creates a new API service.
func NewService(controller *sale.Controller, logger log.Logger) *Service {
	return &Service{
		controller: controller,
		log:        logger,
	}
}

func parseAddr(field, addr string) (ids.ShortID, error) {
	parsed, err := ids.ShortFromString(addr)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("invalid %s address %q: %w", field, addr, err)
	}
	return parsed, nil
}

// SuccessReply is the reply for every operation with no other result.
type SuccessReply struct {
	Success bool `json:"success"`
}

// CallArgs names the acting address for authority-gated operations without
// further arguments.
type CallArgs struct {
	Caller string `json:"caller"`
}

func (s *Service) gated(name string, args *CallArgs, reply *SuccessReply, op func(ids.ShortID) error) error {
	s.log.Debug("API called",
		log.String("service", "crowdsale"),
		log.String("method", name),
	)
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	if err := op(caller); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// Start opens the presale.
func (s *Service) Start(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("start", args, reply, s.controller.Start)
}

// Launch advances the sale from the presale to the public sale.
func (s *Service) Launch(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("launch", args, reply, s.controller.Launch)
}

// Pause suspends purchases.
func (s *Service) Pause(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("pause", args, reply, s.controller.Pause)
}

// Resume reopens a paused sale.
func (s *Service) Resume(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("resume", args, reply, s.controller.Resume)
}

// Finalize settles the sale.
func (s *Service) Finalize(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("finalize", args, reply, s.controller.Finalize)
}

// ClaimRefund pays the caller back their deposit after a failed sale.
func (s *Service) ClaimRefund(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("claimRefund", args, reply, s.controller.ClaimRefund)
}

// EnableWithdraws opens the vault's withdraw lifecycle.
func (s *Service) EnableWithdraws(_ *http.Request, args *CallArgs, reply *SuccessReply) error {
	return s.gated("enableWithdraws", args, reply, s.controller.EnableWithdraws)
}

// BuyTokensArgs are the arguments for crowdsale.buyTokens.
type BuyTokensArgs struct {
	Payer       string      `json:"payer"`
	Beneficiary string      `json:"beneficiary"`
	Amount      json.Uint64 `json:"amount"`
}

// BuyTokens purchases tokens for the beneficiary with the payer's funds.
func (s *Service) BuyTokens(_ *http.Request, args *BuyTokensArgs, reply *SuccessReply) error {
	payer, err := parseAddr("payer", args.Payer)
	if err != nil {
		return err
	}
	beneficiary, err := parseAddr("beneficiary", args.Beneficiary)
	if err != nil {
		return err
	}
	if err := s.controller.BuyTokens(payer, beneficiary, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// TradeArgs are the arguments for crowdsale.tradeEth and
// crowdsale.tradeTokens.
type TradeArgs struct {
	Caller      string      `json:"caller"`
	Beneficiary string      `json:"beneficiary"`
	Amount      json.Uint64 `json:"amount"`
}

func (s *Service) trade(args *TradeArgs, reply *SuccessReply, op func(caller, beneficiary ids.ShortID, amount uint64) error) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	beneficiary, err := parseAddr("beneficiary", args.Beneficiary)
	if err != nil {
		return err
	}
	if err := op(caller, beneficiary, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// TradeEth records an off-platform payment and mints the bonus-adjusted
// token amount.
func (s *Service) TradeEth(_ *http.Request, args *TradeArgs, reply *SuccessReply) error {
	return s.trade(args, reply, s.controller.TradeEth)
}

// TradeTokens mints an exact pre-agreed token amount.
func (s *Service) TradeTokens(_ *http.Request, args *TradeArgs, reply *SuccessReply) error {
	return s.trade(args, reply, s.controller.TradeTokens)
}

// WithdrawArgs are the arguments for crowdsale.withdraw.
type WithdrawArgs struct {
	Caller string      `json:"caller"`
	Amount json.Uint64 `json:"amount"`
}

// Withdraw pays part of the vault's held balance to the sale wallet.
func (s *Service) Withdraw(_ *http.Request, args *WithdrawArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	if err := s.controller.Withdraw(caller, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// GrantArgs are the arguments for crowdsale.grant.
type GrantArgs struct {
	Caller string      `json:"caller"`
	Pool   string      `json:"pool"`
	To     string      `json:"to"`
	Amount json.Uint64 `json:"amount"`
}

// Grant mints from one of the fixed pools.
func (s *Service) Grant(_ *http.Request, args *GrantArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	pool, err := sale.ParsePool(args.Pool)
	if err != nil {
		return err
	}
	to, err := parseAddr("to", args.To)
	if err != nil {
		return err
	}
	if err := s.controller.Grant(caller, pool, to, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// TransferArgs are the arguments for crowdsale.transfer, crowdsale.approve,
// and the approval adjustments.
type TransferArgs struct {
	Caller string      `json:"caller"`
	To     string      `json:"to"`
	Amount json.Uint64 `json:"amount"`
}

func (s *Service) moveTokens(args *TransferArgs, reply *SuccessReply, op func(caller, to ids.ShortID, amount uint64) error) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	to, err := parseAddr("to", args.To)
	if err != nil {
		return err
	}
	if err := op(caller, to, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// Transfer moves tokens from the caller to another address.
func (s *Service) Transfer(_ *http.Request, args *TransferArgs, reply *SuccessReply) error {
	return s.moveTokens(args, reply, s.controller.Transfer)
}

// Approve sets the caller's allowance for a spender.
func (s *Service) Approve(_ *http.Request, args *TransferArgs, reply *SuccessReply) error {
	return s.moveTokens(args, reply, s.controller.Approve)
}

// IncreaseApproval raises the caller's allowance for a spender.
func (s *Service) IncreaseApproval(_ *http.Request, args *TransferArgs, reply *SuccessReply) error {
	return s.moveTokens(args, reply, s.controller.IncreaseApproval)
}

// DecreaseApproval lowers the caller's allowance for a spender.
func (s *Service) DecreaseApproval(_ *http.Request, args *TransferArgs, reply *SuccessReply) error {
	return s.moveTokens(args, reply, s.controller.DecreaseApproval)
}

// TransferFromArgs are the arguments for crowdsale.transferFrom.
type TransferFromArgs struct {
	Caller string      `json:"caller"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount json.Uint64 `json:"amount"`
}

// TransferFrom moves tokens between two addresses, spending the caller's
// allowance.
func (s *Service) TransferFrom(_ *http.Request, args *TransferFromArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	from, err := parseAddr("from", args.From)
	if err != nil {
		return err
	}
	to, err := parseAddr("to", args.To)
	if err != nil {
		return err
	}
	if err := s.controller.TransferFrom(caller, from, to, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// BurnArgs are the arguments for crowdsale.burn.
type BurnArgs struct {
	Caller string      `json:"caller"`
	Amount json.Uint64 `json:"amount"`
}

// Burn destroys part of the caller's balance.
func (s *Service) Burn(_ *http.Request, args *BurnArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	if err := s.controller.Burn(caller, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// AccountArgs name the acting caller and a target account.
type AccountArgs struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
}

func (s *Service) flagOp(args *AccountArgs, reply *SuccessReply, op func(caller, account ids.ShortID) error) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	account, err := parseAddr("account", args.Account)
	if err != nil {
		return err
	}
	if err := op(caller, account); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// AddPartner flags an account as a partner.
func (s *Service) AddPartner(_ *http.Request, args *AccountArgs, reply *SuccessReply) error {
	return s.flagOp(args, reply, s.controller.AddPartner)
}

// RemovePartner clears an account's partner flag.
func (s *Service) RemovePartner(_ *http.Request, args *AccountArgs, reply *SuccessReply) error {
	return s.flagOp(args, reply, s.controller.RemovePartner)
}

// Blacklist flags an account and destroys its balance.
func (s *Service) Blacklist(_ *http.Request, args *AccountArgs, reply *SuccessReply) error {
	return s.flagOp(args, reply, s.controller.Blacklist)
}

// Whitelist clears an account's blacklist flag.
func (s *Service) Whitelist(_ *http.Request, args *AccountArgs, reply *SuccessReply) error {
	return s.flagOp(args, reply, s.controller.Whitelist)
}

// Freeze reversibly blocks an account.
func (s *Service) Freeze(_ *http.Request, args *AccountArgs, reply *SuccessReply) error {
	return s.flagOp(args, reply, s.controller.Freeze)
}

// Unfreeze lifts a freeze.
func (s *Service) Unfreeze(_ *http.Request, args *AccountArgs, reply *SuccessReply) error {
	return s.flagOp(args, reply, s.controller.Unfreeze)
}

// TransferOwnershipArgs are the arguments for crowdsale.transferOwnership.
type TransferOwnershipArgs struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

// TransferOwnership hands the controller to a new administrator.
func (s *Service) TransferOwnership(_ *http.Request, args *TransferOwnershipArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	newOwner, err := parseAddr("newOwner", args.NewOwner)
	if err != nil {
		return err
	}
	if err := s.controller.TransferOwnership(caller, newOwner); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// SetReleaseArgs are the arguments for the release date setters.
type SetReleaseArgs struct {
	Caller string    `json:"caller"`
	Date   time.Time `json:"date"`
}

// SetPublicRelease moves the public release date forward.
func (s *Service) SetPublicRelease(_ *http.Request, args *SetReleaseArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	if err := s.controller.SetPublicRelease(caller, args.Date); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

// SetPartnersRelease moves the partners release date forward.
func (s *Service) SetPartnersRelease(_ *http.Request, args *SetReleaseArgs, reply *SuccessReply) error {
	caller, err := parseAddr("caller", args.Caller)
	if err != nil {
		return err
	}
	if err := s.controller.SetPartnersRelease(caller, args.Date); err != nil {
		return err
	}
	reply.Success = true
	return nil
}
