// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"errors"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/crowdsale/escrow"
	"github.com/luxfi/crowdsale/ledger"
)

// Read-only queries. Each takes the controller lock so it observes only
// committed state, never the middle of another operation.

// Status returns the operational status.
func (c *Controller) Status() (Status, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	current, err := c.phase()
	return current.status, err
}

// Stage returns the sale-period stage.
func (c *Controller) Stage() (Stage, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	current, err := c.phase()
	return current.stage, err
}

// WeiRaised returns the total accepted payment amount.
func (c *Controller) WeiRaised() (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.weiRaised()
}

func (c *Controller) weiRaised() (uint64, error) {
	raised, err := database.GetUInt64(c.saleDB, weiRaisedKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return raised, err
}

// Goal returns the configured funding goal.
func (c *Controller) Goal() uint64 {
	return c.cfg.Goal
}

// GoalReached reports whether the raised amount meets the goal.
func (c *Controller) GoalReached() (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.goalReached()
}

// Owner returns the controller's current administrator.
func (c *Controller) Owner() ids.ShortID {
	return c.gate.Owner()
}

// Wallet returns the recipient of successfully raised funds.
func (c *Controller) Wallet() ids.ShortID {
	return c.wallet
}

// PoolRemaining returns the ungranted remainder of a pool.
func (c *Controller) PoolRemaining(pool Pool) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.poolRemaining(pool)
}

// TokenCap returns the ledger's maximum total supply.
func (c *Controller) TokenCap() uint64 {
	return c.ledger.Cap()
}

// TotalSupply returns the ledger's current total supply.
func (c *Controller) TotalSupply() (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.TotalSupply()
}

// BalanceOf returns addr's token balance.
func (c *Controller) BalanceOf(addr ids.ShortID) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.BalanceOf(addr)
}

// GetAccount returns addr's full ledger record.
func (c *Controller) GetAccount(addr ids.ShortID) (ledger.Account, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.GetAccount(addr)
}

// Allowance returns what spender may transfer out of owner's balance.
func (c *Controller) Allowance(owner, spender ids.ShortID) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.Allowance(owner, spender)
}

// MintingFinished reports whether the ledger's minting latch is set.
func (c *Controller) MintingFinished() (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.MintingFinished()
}

// PublicRelease returns the ledger's public release date.
func (c *Controller) PublicRelease() (time.Time, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.PublicRelease()
}

// PartnersRelease returns the ledger's partners release date.
func (c *Controller) PartnersRelease() (time.Time, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ledger.PartnersRelease()
}

// DepositOf returns investor's refundable escrow deposit.
func (c *Controller) DepositOf(investor ids.ShortID) (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.vault.DepositOf(investor)
}

// VaultState returns the escrow vault's lifecycle state.
func (c *Controller) VaultState() (escrow.State, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.vault.State()
}

// VaultHeld returns the balance the vault still holds.
func (c *Controller) VaultHeld() (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.vault.Held()
}
