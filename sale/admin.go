// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"time"

	"github.com/luxfi/ids"
)

// Administrative pass-throughs. Each authorizes the caller against the
// controller's gate and delegates to the ledger with no further logic.

// ledgerActor picks the identity used toward the ledger. While the ledger
// gate is still held by the controller, operations act as the controller
// itself; after finalization hands the gate to the human owner, the caller
// acts in their own name and the ledger's gate decides.
func (c *Controller) ledgerActor(caller ids.ShortID) ids.ShortID {
	if c.ledger.Gate().IsOwner(c.self) {
		return c.self
	}
	return caller
}

// AddPartner flags investor as a partner account.
func (c *Controller) AddPartner(caller, investor ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.AddPartner(c.ledgerActor(caller), investor)
	})
}

// RemovePartner clears investor's partner flag.
func (c *Controller) RemovePartner(caller, investor ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.RemovePartner(c.ledgerActor(caller), investor)
	})
}

// Blacklist flags account and destroys its balance.
func (c *Controller) Blacklist(caller, account ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.Blacklist(c.ledgerActor(caller), account)
	})
}

// Whitelist clears account's blacklist flag without restoring funds.
func (c *Controller) Whitelist(caller, account ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.Whitelist(c.ledgerActor(caller), account)
	})
}

// Freeze reversibly blocks investor's ledger activity.
func (c *Controller) Freeze(caller, investor ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.Freeze(c.ledgerActor(caller), investor)
	})
}

// Unfreeze lifts a freeze.
func (c *Controller) Unfreeze(caller, investor ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.Unfreeze(c.ledgerActor(caller), investor)
	})
}

// SetPublicRelease moves the ledger's public release date forward.
func (c *Controller) SetPublicRelease(caller ids.ShortID, date time.Time) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.SetPublicRelease(c.ledgerActor(caller), date)
	})
}

// SetPartnersRelease moves the ledger's partners release date forward.
func (c *Controller) SetPartnersRelease(caller ids.ShortID, date time.Time) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		return c.ledger.SetPartnersRelease(c.ledgerActor(caller), date)
	})
}
