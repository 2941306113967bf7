// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

// Account is the stored record for a single address. Accounts are created
// lazily on first reference and never deleted, only zeroed.
//
// Frozen and Blacklisted are structurally distinct penalties: freezing
// blocks transfers but preserves the balance, blacklisting destroys the
// balance irreversibly.
type Account struct {
	Balance     uint64 `serialize:"true" json:"balance"`
	Partner     bool   `serialize:"true" json:"partner"`
	Blacklisted bool   `serialize:"true" json:"blacklisted"`
	Frozen      bool   `serialize:"true" json:"frozen"`
}
