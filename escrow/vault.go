// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package escrow implements the custodial vault that holds raised funds
// until the sale settles.
//
// The vault is a one-way state machine. From Active it either enters
// Refunding, after which investors reclaim their deposits one by one, or
// Withdrawing, after which the sale wallet drains the balance in parts.
// Closed pays the entire held balance to the wallet at once. Refunding and
// Closed are terminal, so the refund and withdraw lifecycles can never both
// run for the same vault.
package escrow

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/crowdsale/authority"
	"github.com/luxfi/crowdsale/events"
	"github.com/luxfi/crowdsale/payment"
)

// State is the vault lifecycle state.
type State uint8

const (
	Active State = iota
	Withdrawing
	Refunding
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Withdrawing:
		return "withdrawing"
	case Refunding:
		return "refunding"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("unknown state %d", s)
	}
}

var (
	ErrNotActive        = errors.New("vault is not accepting deposits")
	ErrNotWithdrawing   = errors.New("vault is not in its withdrawing state")
	ErrNotRefunding     = errors.New("vault is not in its refunding state")
	ErrNothingDeposited = errors.New("nothing deposited")
	ErrInsufficientHeld = errors.New("amount exceeds held balance")
	ErrZeroAmount       = errors.New("amount must not be zero")
	ErrEmptyWallet      = errors.New("wallet must not be the empty address")

	// errUnknownState marks corrupted vault state. It is an invariant
	// violation, not a rejected precondition.
	errUnknownState = errors.New("unknown vault state")

	depositPrefix   = []byte{0x00}
	singletonPrefix = []byte{0x01}

	stateKey = []byte("state")
	heldKey  = []byte("held balance")
)

// Vault escrows deposits keyed by investor. Funds themselves sit in the
// vault's payment account; payouts move them out through the injected
// transferrer and fail the whole operation if the transfer fails.
//
// Like the ledger, the vault relies on its owning controller for locking
// and rollback.
type Vault struct {
	wallet  ids.ShortID
	account ids.ShortID
	gate    *authority.Gate
	bank    payment.Transferrer
	log     log.Logger
	sink    events.Sink

	depositDB   database.Database
	singletonDB database.Database
}

// New creates a vault over db. wallet receives withdrawals and the closing
// balance; account is the payment account the vault pays out of.
func New(
	db database.Database,
	wallet ids.ShortID,
	account ids.ShortID,
	owner ids.ShortID,
	bank payment.Transferrer,
	logger log.Logger,
	sink events.Sink,
) (*Vault, error) {
	if wallet == ids.ShortEmpty {
		return nil, ErrEmptyWallet
	}
	gate, err := authority.NewGate(owner)
	if err != nil {
		return nil, err
	}
	return &Vault{
		wallet:      wallet,
		account:     account,
		gate:        gate,
		bank:        bank,
		log:         logger,
		sink:        sink,
		depositDB:   prefixdb.New(depositPrefix, db),
		singletonDB: prefixdb.New(singletonPrefix, db),
	}, nil
}

// Gate returns the vault's authority gate.
func (v *Vault) Gate() *authority.Gate {
	return v.gate
}

// Wallet returns the address paid by Close and Withdraw.
func (v *Vault) Wallet() ids.ShortID {
	return v.wallet
}

// Account returns the vault's own payment account.
func (v *Vault) Account() ids.ShortID {
	return v.account
}

// State returns the current lifecycle state.
func (v *Vault) State() (State, error) {
	val, err := database.GetUInt64(v.singletonDB, stateKey)
	if errors.Is(err, database.ErrNotFound) {
		return Active, nil
	}
	if err != nil {
		return Active, err
	}
	state := State(val)
	if state > Closed {
		return Active, fmt.Errorf("%w: %d", errUnknownState, val)
	}
	return state, nil
}

// Held returns the total balance the vault still holds.
func (v *Vault) Held() (uint64, error) {
	held, err := database.GetUInt64(v.singletonDB, heldKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return held, err
}

// DepositOf returns the refundable deposit recorded for investor.
func (v *Vault) DepositOf(investor ids.ShortID) (uint64, error) {
	dep, err := database.GetUInt64(v.depositDB, investor[:])
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return dep, err
}

// Deposit records amount against investor. The funds are expected to
// already sit in the vault's payment account; the caller forwards them
// before depositing.
func (v *Vault) Deposit(caller, investor ids.ShortID, amount uint64) error {
	if err := v.gate.Authorize(caller); err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := v.requireState(Active, ErrNotActive); err != nil {
		return err
	}

	dep, err := v.DepositOf(investor)
	if err != nil {
		return err
	}
	newDep, err := safemath.Add(dep, amount)
	if err != nil {
		return err
	}
	held, err := v.Held()
	if err != nil {
		return err
	}
	newHeld, err := safemath.Add(held, amount)
	if err != nil {
		return err
	}

	if err := database.PutUInt64(v.depositDB, investor[:], newDep); err != nil {
		return err
	}
	if err := database.PutUInt64(v.singletonDB, heldKey, newHeld); err != nil {
		return err
	}

	v.log.Debug("recorded deposit",
		log.Stringer("investor", investor),
		log.Uint64("amount", amount),
		log.Uint64("held", newHeld),
	)
	v.sink.Publish(events.Deposited{Investor: investor, Amount: amount})
	return nil
}

// EnableRefunds moves the vault from Active to the terminal Refunding
// state.
func (v *Vault) EnableRefunds(caller ids.ShortID) error {
	if err := v.gate.Authorize(caller); err != nil {
		return err
	}
	if err := v.requireState(Active, ErrNotActive); err != nil {
		return err
	}
	if err := v.setState(Refunding); err != nil {
		return err
	}
	v.log.Info("refunds enabled")
	v.sink.Publish(events.RefundsEnabled{})
	return nil
}

// EnableWithdraws moves the vault from Active to Withdrawing.
func (v *Vault) EnableWithdraws(caller ids.ShortID) error {
	if err := v.gate.Authorize(caller); err != nil {
		return err
	}
	if err := v.requireState(Active, ErrNotActive); err != nil {
		return err
	}
	if err := v.setState(Withdrawing); err != nil {
		return err
	}
	v.log.Info("withdraws enabled")
	v.sink.Publish(events.WithdrawsEnabled{})
	return nil
}

// Withdraw pays amount from the held balance to the wallet. Only legal
// while Withdrawing.
func (v *Vault) Withdraw(caller ids.ShortID, amount uint64) error {
	if err := v.gate.Authorize(caller); err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := v.requireState(Withdrawing, ErrNotWithdrawing); err != nil {
		return err
	}

	held, err := v.Held()
	if err != nil {
		return err
	}
	if amount > held {
		return ErrInsufficientHeld
	}
	if err := v.bank.Transfer(v.account, v.wallet, amount); err != nil {
		return err
	}
	if err := database.PutUInt64(v.singletonDB, heldKey, held-amount); err != nil {
		return err
	}

	v.log.Info("withdrew from vault",
		log.Stringer("wallet", v.wallet),
		log.Uint64("amount", amount),
	)
	v.sink.Publish(events.Withdrawn{Wallet: v.wallet, Amount: amount})
	return nil
}

// Close pays the entire held balance to the wallet and enters the terminal
// Closed state. Legal from Active and from Withdrawing.
func (v *Vault) Close(caller ids.ShortID) error {
	if err := v.gate.Authorize(caller); err != nil {
		return err
	}
	state, err := v.State()
	if err != nil {
		return err
	}
	if state != Active && state != Withdrawing {
		return ErrNotActive
	}

	held, err := v.Held()
	if err != nil {
		return err
	}
	if held > 0 {
		if err := v.bank.Transfer(v.account, v.wallet, held); err != nil {
			return err
		}
		if err := database.PutUInt64(v.singletonDB, heldKey, 0); err != nil {
			return err
		}
	}
	if err := v.setState(Closed); err != nil {
		return err
	}

	v.log.Info("vault closed",
		log.Stringer("wallet", v.wallet),
		log.Uint64("amount", held),
	)
	v.sink.Publish(events.VaultClosed{Wallet: v.wallet, Amount: held})
	return nil
}

// Refund pays investor back their full recorded deposit and zeroes the
// entry. Anyone may trigger a refund; the money only ever moves to the
// recorded investor.
func (v *Vault) Refund(investor ids.ShortID) error {
	if err := v.requireState(Refunding, ErrNotRefunding); err != nil {
		return err
	}
	dep, err := v.DepositOf(investor)
	if err != nil {
		return err
	}
	if dep == 0 {
		return ErrNothingDeposited
	}

	held, err := v.Held()
	if err != nil {
		return err
	}
	newHeld, err := safemath.Sub(held, dep)
	if err != nil {
		return err
	}
	if err := v.bank.Transfer(v.account, investor, dep); err != nil {
		return err
	}
	if err := database.PutUInt64(v.depositDB, investor[:], 0); err != nil {
		return err
	}
	if err := database.PutUInt64(v.singletonDB, heldKey, newHeld); err != nil {
		return err
	}

	v.log.Info("refunded deposit",
		log.Stringer("investor", investor),
		log.Uint64("amount", dep),
	)
	v.sink.Publish(events.Refunded{Investor: investor, Amount: dep})
	return nil
}

func (v *Vault) requireState(want State, reject error) error {
	state, err := v.State()
	if err != nil {
		return err
	}
	if state != want {
		return fmt.Errorf("%w: %s", reject, state)
	}
	return nil
}

func (v *Vault) setState(state State) error {
	return database.PutUInt64(v.singletonDB, stateKey, uint64(state))
}
