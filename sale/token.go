// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"github.com/luxfi/ids"
)

// Token operations. The controller is the only holder of the ledger, so
// ordinary balance and allowance mutations also enter through it to share
// the transactional boundary. They carry the acting caller straight
// through; the ledger applies its own freeze, blacklist, and timelock
// rules.

// Transfer moves amount of tokens from the caller to to.
func (c *Controller) Transfer(caller, to ids.ShortID, amount uint64) error {
	return c.run(func() error {
		return c.ledger.Transfer(caller, to, amount)
	})
}

// TransferFrom moves amount of tokens from from to to, spending the
// caller's allowance.
func (c *Controller) TransferFrom(caller, from, to ids.ShortID, amount uint64) error {
	return c.run(func() error {
		return c.ledger.TransferFrom(caller, from, to, amount)
	})
}

// Approve sets the caller's allowance for spender.
func (c *Controller) Approve(caller, spender ids.ShortID, amount uint64) error {
	return c.run(func() error {
		return c.ledger.Approve(caller, spender, amount)
	})
}

// IncreaseApproval raises the caller's allowance for spender by amount.
func (c *Controller) IncreaseApproval(caller, spender ids.ShortID, amount uint64) error {
	return c.run(func() error {
		return c.ledger.IncreaseApproval(caller, spender, amount)
	})
}

// DecreaseApproval lowers the caller's allowance for spender by amount,
// flooring at zero.
func (c *Controller) DecreaseApproval(caller, spender ids.ShortID, amount uint64) error {
	return c.run(func() error {
		return c.ledger.DecreaseApproval(caller, spender, amount)
	})
}

// Burn destroys amount of the caller's tokens.
func (c *Controller) Burn(caller ids.ShortID, amount uint64) error {
	return c.run(func() error {
		return c.ledger.Burn(caller, amount)
	})
}
