// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the notification records emitted by every
// state-changing operation of the sale core. Events are observable side
// effects only; nothing in the core consumes them.
package events

import (
	"time"

	"github.com/luxfi/ids"
)

// Type identifies the operation an event was emitted by.
type Type string

const (
	TypeMint                 Type = "mint"
	TypeGrant                Type = "grant"
	TypeTransfer             Type = "transfer"
	TypeApproval             Type = "approval"
	TypeBurn                 Type = "burn"
	TypePartnerAdded         Type = "partnerAdded"
	TypePartnerRemoved       Type = "partnerRemoved"
	TypeBlacklisted          Type = "blacklisted"
	TypeWhitelisted          Type = "whitelisted"
	TypeFrozen               Type = "frozen"
	TypeUnfrozen             Type = "unfrozen"
	TypeReleaseUpdated       Type = "releaseUpdated"
	TypeMintingFinished      Type = "mintingFinished"
	TypeOwnershipTransferred Type = "ownershipTransferred"
	TypeDeposited            Type = "deposited"
	TypeRefunded             Type = "refunded"
	TypeWithdrawn            Type = "withdrawn"
	TypeRefundsEnabled       Type = "refundsEnabled"
	TypeWithdrawsEnabled     Type = "withdrawsEnabled"
	TypeVaultClosed          Type = "vaultClosed"
	TypeStageChanged         Type = "stageChanged"
	TypePurchase             Type = "purchase"
	TypeGrantIssued          Type = "grantIssued"
	TypeFinalized            Type = "finalized"
)

// Event is a single notification record. Addresses lists the accounts the
// event concerns so that subscribers can filter by address.
type Event interface {
	Type() Type
	Addresses() [][]byte
}

// Mint is emitted when tokens are created for a public-class account.
type Mint struct {
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (Mint) Type() Type            { return TypeMint }
func (e Mint) Addresses() [][]byte { return [][]byte{e.To[:]} }

// Grant is emitted when tokens are created for a partner-class account.
type Grant struct {
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (Grant) Type() Type            { return TypeGrant }
func (e Grant) Addresses() [][]byte { return [][]byte{e.To[:]} }

// Transfer is emitted when tokens move between accounts.
type Transfer struct {
	From   ids.ShortID `json:"from"`
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (Transfer) Type() Type            { return TypeTransfer }
func (e Transfer) Addresses() [][]byte { return [][]byte{e.From[:], e.To[:]} }

// Approval is emitted when an allowance is set or adjusted.
type Approval struct {
	Owner   ids.ShortID `json:"owner"`
	Spender ids.ShortID `json:"spender"`
	Amount  uint64      `json:"amount"`
}

func (Approval) Type() Type            { return TypeApproval }
func (e Approval) Addresses() [][]byte { return [][]byte{e.Owner[:], e.Spender[:]} }

// Burn is emitted when an account destroys its own tokens.
type Burn struct {
	From   ids.ShortID `json:"from"`
	Amount uint64      `json:"amount"`
}

func (Burn) Type() Type            { return TypeBurn }
func (e Burn) Addresses() [][]byte { return [][]byte{e.From[:]} }

// PartnerAdded is emitted when an account is flagged as a partner.
type PartnerAdded struct {
	Account ids.ShortID `json:"account"`
}

func (PartnerAdded) Type() Type            { return TypePartnerAdded }
func (e PartnerAdded) Addresses() [][]byte { return [][]byte{e.Account[:]} }

// PartnerRemoved is emitted when an account's partner flag is cleared.
type PartnerRemoved struct {
	Account ids.ShortID `json:"account"`
}

func (PartnerRemoved) Type() Type            { return TypePartnerRemoved }
func (e PartnerRemoved) Addresses() [][]byte { return [][]byte{e.Account[:]} }

// Blacklisted is emitted when an account is blacklisted. BurnedBalance is the
// balance that was destroyed with the flag; it is not restored on whitelist.
type Blacklisted struct {
	Account       ids.ShortID `json:"account"`
	BurnedBalance uint64      `json:"burnedBalance"`
}

func (Blacklisted) Type() Type            { return TypeBlacklisted }
func (e Blacklisted) Addresses() [][]byte { return [][]byte{e.Account[:]} }

// Whitelisted is emitted when an account's blacklist flag is cleared.
type Whitelisted struct {
	Account ids.ShortID `json:"account"`
}

func (Whitelisted) Type() Type            { return TypeWhitelisted }
func (e Whitelisted) Addresses() [][]byte { return [][]byte{e.Account[:]} }

// Frozen is emitted when an account is frozen.
type Frozen struct {
	Account ids.ShortID `json:"account"`
}

func (Frozen) Type() Type            { return TypeFrozen }
func (e Frozen) Addresses() [][]byte { return [][]byte{e.Account[:]} }

// Unfrozen is emitted when an account is unfrozen.
type Unfrozen struct {
	Account ids.ShortID `json:"account"`
}

func (Unfrozen) Type() Type            { return TypeUnfrozen }
func (e Unfrozen) Addresses() [][]byte { return [][]byte{e.Account[:]} }

// ReleaseClass names one of the two transfer timelock release dates.
type ReleaseClass string

const (
	PublicRelease   ReleaseClass = "public"
	PartnersRelease ReleaseClass = "partners"
)

// ReleaseUpdated is emitted when a timelock release date is moved forward.
type ReleaseUpdated struct {
	Class ReleaseClass `json:"class"`
	Date  time.Time    `json:"date"`
}

func (ReleaseUpdated) Type() Type          { return TypeReleaseUpdated }
func (ReleaseUpdated) Addresses() [][]byte { return nil }

// MintingFinished is emitted when the minting latch is permanently set.
type MintingFinished struct{}

func (MintingFinished) Type() Type          { return TypeMintingFinished }
func (MintingFinished) Addresses() [][]byte { return nil }

// OwnershipTransferred is emitted when a component's authority gate changes
// hands.
type OwnershipTransferred struct {
	Component string      `json:"component"`
	Previous  ids.ShortID `json:"previous"`
	New       ids.ShortID `json:"new"`
}

func (OwnershipTransferred) Type() Type { return TypeOwnershipTransferred }
func (e OwnershipTransferred) Addresses() [][]byte {
	return [][]byte{e.Previous[:], e.New[:]}
}

// Deposited is emitted when the vault accumulates funds for an investor.
type Deposited struct {
	Investor ids.ShortID `json:"investor"`
	Amount   uint64      `json:"amount"`
}

func (Deposited) Type() Type            { return TypeDeposited }
func (e Deposited) Addresses() [][]byte { return [][]byte{e.Investor[:]} }

// Refunded is emitted when an investor's full deposit is paid back.
type Refunded struct {
	Investor ids.ShortID `json:"investor"`
	Amount   uint64      `json:"amount"`
}

func (Refunded) Type() Type            { return TypeRefunded }
func (e Refunded) Addresses() [][]byte { return [][]byte{e.Investor[:]} }

// Withdrawn is emitted when funds are paid out to the sale wallet.
type Withdrawn struct {
	Wallet ids.ShortID `json:"wallet"`
	Amount uint64      `json:"amount"`
}

func (Withdrawn) Type() Type            { return TypeWithdrawn }
func (e Withdrawn) Addresses() [][]byte { return [][]byte{e.Wallet[:]} }

// RefundsEnabled is emitted when the vault enters its refunding state.
type RefundsEnabled struct{}

func (RefundsEnabled) Type() Type          { return TypeRefundsEnabled }
func (RefundsEnabled) Addresses() [][]byte { return nil }

// WithdrawsEnabled is emitted when the vault enters its withdrawing state.
type WithdrawsEnabled struct{}

func (WithdrawsEnabled) Type() Type          { return TypeWithdrawsEnabled }
func (WithdrawsEnabled) Addresses() [][]byte { return nil }

// VaultClosed is emitted when the vault closes and pays its full held
// balance to the sale wallet.
type VaultClosed struct {
	Wallet ids.ShortID `json:"wallet"`
	Amount uint64      `json:"amount"`
}

func (VaultClosed) Type() Type            { return TypeVaultClosed }
func (e VaultClosed) Addresses() [][]byte { return [][]byte{e.Wallet[:]} }

// StageChanged is emitted on every controller state/stage transition.
type StageChanged struct {
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

func (StageChanged) Type() Type          { return TypeStageChanged }
func (StageChanged) Addresses() [][]byte { return nil }

// Purchase is emitted on every successful token purchase.
type Purchase struct {
	Payer       ids.ShortID `json:"payer"`
	Beneficiary ids.ShortID `json:"beneficiary"`
	WeiAmount   uint64      `json:"weiAmount"`
	TokenAmount uint64      `json:"tokenAmount"`
}

func (Purchase) Type() Type { return TypePurchase }
func (e Purchase) Addresses() [][]byte {
	return [][]byte{e.Payer[:], e.Beneficiary[:]}
}

// GrantIssued is emitted when tokens are granted out of a reserved pool.
type GrantIssued struct {
	Pool   string      `json:"pool"`
	To     ids.ShortID `json:"to"`
	Amount uint64      `json:"amount"`
}

func (GrantIssued) Type() Type            { return TypeGrantIssued }
func (e GrantIssued) Addresses() [][]byte { return [][]byte{e.To[:]} }

// Finalized is emitted exactly once, when the sale outcome is locked.
type Finalized struct {
	GoalReached bool   `json:"goalReached"`
	WeiRaised   uint64 `json:"weiRaised"`
}

func (Finalized) Type() Type          { return TypeFinalized }
func (Finalized) Addresses() [][]byte { return nil }
