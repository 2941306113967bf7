// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements balance and allowance bookkeeping with capped,
// authority-gated minting and timelocked transfers.
//
// Two release dates split accounts into timelock classes: ordinary accounts
// may transfer and burn once the public release passes, partner accounts
// only once the later partners release passes. Minting is a one-way latch;
// once finished it can never be re-enabled.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/crowdsale/authority"
	"github.com/luxfi/crowdsale/events"
	"github.com/luxfi/crowdsale/utils/timer/mockable"
)

const (
	// MaxReleaseSlip bounds how far a release date may be pushed forward in
	// a single adjustment.
	MaxReleaseSlip = 7 * 24 * time.Hour
)

var (
	ErrMintingFinished       = errors.New("minting is finished")
	ErrCapExceeded           = errors.New("supply cap exceeded")
	ErrZeroAmount            = errors.New("amount must not be zero")
	ErrEmptyAddress          = errors.New("address must not be the empty address")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrTimelocked            = errors.New("account is timelocked")
	ErrFrozen                = errors.New("account is frozen")
	ErrBlacklisted           = errors.New("account is blacklisted")
	ErrPartnerTarget         = errors.New("account is a partner")
	ErrNotPartner            = errors.New("account is not a partner")
	ErrNonzeroBalance        = errors.New("account balance must be zero")
	ErrAlreadyBlacklisted    = errors.New("account is already blacklisted")
	ErrNotBlacklisted        = errors.New("account is not blacklisted")
	ErrAlreadyFrozen         = errors.New("account is already frozen")
	ErrNotFrozen             = errors.New("account is not frozen")
	ErrReleasePassed         = errors.New("release date already passed")
	ErrReleaseNotForward     = errors.New("release date may only move forward")
	ErrReleaseTooFar         = errors.New("release date moved too far forward")
	ErrReleaseOrder          = errors.New("public release must not follow partners release")

	accountPrefix   = []byte{0x00}
	allowancePrefix = []byte{0x01}
	singletonPrefix = []byte{0x02}

	totalSupplyKey     = []byte("total supply")
	mintingFinishedKey = []byte("minting finished")
	publicReleaseKey   = []byte("public release")
	partnersReleaseKey = []byte("partners release")
)

// Config holds the immutable ledger parameters.
type Config struct {
	// Cap is the maximum total supply that can ever be minted.
	Cap uint64 `json:"cap"`

	// PublicRelease is the initial transfer unlock date for ordinary
	// accounts.
	PublicRelease time.Time `json:"publicRelease"`

	// PartnersRelease is the initial transfer unlock date for partner
	// accounts. It must not precede PublicRelease.
	PartnersRelease time.Time `json:"partnersRelease"`
}

// Ledger owns all token balances, allowances, and account flags. Mutating
// operations are keyed on the acting caller; authority-gated operations
// additionally require the caller to own the ledger's gate.
//
// The ledger does not serialize or roll back its own operations: the owning
// controller provides the transactional boundary.
type Ledger struct {
	cap  uint64
	gate *authority.Gate
	clk  *mockable.Clock
	log  log.Logger
	sink events.Sink

	accountDB   database.Database
	allowanceDB database.Database
	singletonDB database.Database
}

// New creates a ledger over db. If db already holds ledger state, the stored
// release dates take precedence over the configured ones.
func New(
	db database.Database,
	cfg Config,
	owner ids.ShortID,
	clk *mockable.Clock,
	logger log.Logger,
	sink events.Sink,
) (*Ledger, error) {
	if cfg.PartnersRelease.Before(cfg.PublicRelease) {
		return nil, ErrReleaseOrder
	}

	gate, err := authority.NewGate(owner)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		cap:         cfg.Cap,
		gate:        gate,
		clk:         clk,
		log:         logger,
		sink:        sink,
		accountDB:   prefixdb.New(accountPrefix, db),
		allowanceDB: prefixdb.New(allowancePrefix, db),
		singletonDB: prefixdb.New(singletonPrefix, db),
	}

	if err := l.initReleaseDate(publicReleaseKey, cfg.PublicRelease); err != nil {
		return nil, err
	}
	if err := l.initReleaseDate(partnersReleaseKey, cfg.PartnersRelease); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) initReleaseDate(key []byte, date time.Time) error {
	has, err := l.singletonDB.Has(key)
	if err != nil || has {
		return err
	}
	return database.PutTimestamp(l.singletonDB, key, date)
}

// Gate returns the ledger's authority gate. The owner of the gate controls
// minting, account flags, and release dates.
func (l *Ledger) Gate() *authority.Gate {
	return l.gate
}

// Cap returns the maximum mintable total supply.
func (l *Ledger) Cap() uint64 {
	return l.cap
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() (uint64, error) {
	return getUint64(l.singletonDB, totalSupplyKey)
}

// MintingFinished reports whether the minting latch has been set.
func (l *Ledger) MintingFinished() (bool, error) {
	v, err := getUint64(l.singletonDB, mintingFinishedKey)
	return v != 0, err
}

// GetAccount returns the stored record for addr, or a zero record if addr
// has never been referenced.
func (l *Ledger) GetAccount(addr ids.ShortID) (Account, error) {
	bytes, err := l.accountDB.Get(addr[:])
	if errors.Is(err, database.ErrNotFound) {
		return Account{}, nil
	}
	if err != nil {
		return Account{}, err
	}
	var acct Account
	if _, err := Codec.Unmarshal(bytes, &acct); err != nil {
		return Account{}, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return acct, nil
}

// BalanceOf returns the balance of addr.
func (l *Ledger) BalanceOf(addr ids.ShortID) (uint64, error) {
	acct, err := l.GetAccount(addr)
	return acct.Balance, err
}

// Allowance returns the amount spender may currently transfer out of owner's
// balance.
func (l *Ledger) Allowance(owner, spender ids.ShortID) (uint64, error) {
	return getUint64(l.allowanceDB, allowanceKey(owner, spender))
}

// PublicRelease returns the transfer unlock date for ordinary accounts.
func (l *Ledger) PublicRelease() (time.Time, error) {
	return database.GetTimestamp(l.singletonDB, publicReleaseKey)
}

// PartnersRelease returns the transfer unlock date for partner accounts.
func (l *Ledger) PartnersRelease() (time.Time, error) {
	return database.GetTimestamp(l.singletonDB, partnersReleaseKey)
}

// Mint creates amount new tokens for to. The target must be an ordinary
// account: partners receive their allocations through Grant so that their
// timelock class is fixed at mint time.
func (l *Ledger) Mint(caller, to ids.ShortID, amount uint64) error {
	return l.mint(caller, to, amount, false)
}

// Grant creates amount new tokens for the partner account to.
func (l *Ledger) Grant(caller, to ids.ShortID, amount uint64) error {
	return l.mint(caller, to, amount, true)
}

func (l *Ledger) mint(caller, to ids.ShortID, amount uint64, partner bool) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	finished, err := l.MintingFinished()
	if err != nil {
		return err
	}
	if finished {
		return ErrMintingFinished
	}

	acct, err := l.GetAccount(to)
	switch {
	case err != nil:
		return err
	case acct.Frozen:
		return ErrFrozen
	case acct.Blacklisted:
		return ErrBlacklisted
	case partner && !acct.Partner:
		return ErrNotPartner
	case !partner && acct.Partner:
		return ErrPartnerTarget
	}

	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := safemath.Add(supply, amount)
	if err != nil {
		return err
	}
	if newSupply > l.cap {
		return ErrCapExceeded
	}
	newBalance, err := safemath.Add(acct.Balance, amount)
	if err != nil {
		return err
	}

	acct.Balance = newBalance
	if err := l.putAccount(to, acct); err != nil {
		return err
	}
	if err := database.PutUInt64(l.singletonDB, totalSupplyKey, newSupply); err != nil {
		return err
	}

	l.log.Debug("minted tokens",
		log.Stringer("to", to),
		log.Uint64("amount", amount),
		log.Uint64("totalSupply", newSupply),
	)
	if partner {
		l.sink.Publish(events.Grant{To: to, Amount: amount})
	} else {
		l.sink.Publish(events.Mint{To: to, Amount: amount})
	}
	return nil
}

// FinishMinting permanently disables Mint and Grant.
func (l *Ledger) FinishMinting(caller ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	finished, err := l.MintingFinished()
	if err != nil {
		return err
	}
	if finished {
		return ErrMintingFinished
	}
	if err := database.PutUInt64(l.singletonDB, mintingFinishedKey, 1); err != nil {
		return err
	}

	l.log.Info("minting finished")
	l.sink.Publish(events.MintingFinished{})
	return nil
}

// Transfer moves amount from the caller to to.
func (l *Ledger) Transfer(caller, to ids.ShortID, amount uint64) error {
	if err := l.checkTransfer(caller, to, amount); err != nil {
		return err
	}
	if err := l.move(caller, to, amount); err != nil {
		return err
	}
	l.sink.Publish(events.Transfer{From: caller, To: to, Amount: amount})
	return nil
}

// TransferFrom moves amount from from to to, spending the caller's allowance.
func (l *Ledger) TransferFrom(caller, from, to ids.ShortID, amount uint64) error {
	if err := l.checkTransfer(from, to, amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(from, caller)
	if err != nil {
		return err
	}
	newAllowance, err := safemath.Sub(allowance, amount)
	if err != nil {
		return ErrInsufficientAllowance
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	if err := database.PutUInt64(l.allowanceDB, allowanceKey(from, caller), newAllowance); err != nil {
		return err
	}
	l.sink.Publish(events.Transfer{From: from, To: to, Amount: amount})
	return nil
}

// checkTransfer validates every transfer precondition without mutating
// anything.
func (l *Ledger) checkTransfer(from, to ids.ShortID, amount uint64) error {
	if to == ids.ShortEmpty {
		return ErrEmptyAddress
	}
	if amount == 0 {
		return ErrZeroAmount
	}

	fromAcct, err := l.GetAccount(from)
	switch {
	case err != nil:
		return err
	case fromAcct.Frozen:
		return ErrFrozen
	case fromAcct.Blacklisted:
		return ErrBlacklisted
	case fromAcct.Balance < amount:
		return ErrInsufficientBalance
	}

	toAcct, err := l.GetAccount(to)
	switch {
	case err != nil:
		return err
	case toAcct.Frozen:
		return ErrFrozen
	case toAcct.Blacklisted:
		return ErrBlacklisted
	}

	unlocked, err := l.unlocked(fromAcct)
	if err != nil {
		return err
	}
	if !unlocked {
		return ErrTimelocked
	}
	return nil
}

func (l *Ledger) move(from, to ids.ShortID, amount uint64) error {
	fromAcct, err := l.GetAccount(from)
	if err != nil {
		return err
	}
	fromAcct.Balance -= amount
	if from == to {
		return nil
	}
	toAcct, err := l.GetAccount(to)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Add(toAcct.Balance, amount)
	if err != nil {
		return err
	}
	toAcct.Balance = newBalance

	if err := l.putAccount(from, fromAcct); err != nil {
		return err
	}
	return l.putAccount(to, toAcct)
}

// Approve sets the caller's allowance for spender to amount.
func (l *Ledger) Approve(caller, spender ids.ShortID, amount uint64) error {
	for _, addr := range []ids.ShortID{caller, spender} {
		acct, err := l.GetAccount(addr)
		switch {
		case err != nil:
			return err
		case acct.Frozen:
			return ErrFrozen
		case acct.Blacklisted:
			return ErrBlacklisted
		}
	}
	if err := database.PutUInt64(l.allowanceDB, allowanceKey(caller, spender), amount); err != nil {
		return err
	}
	l.sink.Publish(events.Approval{Owner: caller, Spender: spender, Amount: amount})
	return nil
}

// IncreaseApproval raises the caller's allowance for spender by amount.
func (l *Ledger) IncreaseApproval(caller, spender ids.ShortID, amount uint64) error {
	allowance, err := l.Allowance(caller, spender)
	if err != nil {
		return err
	}
	newAllowance, err := safemath.Add(allowance, amount)
	if err != nil {
		return err
	}
	if err := database.PutUInt64(l.allowanceDB, allowanceKey(caller, spender), newAllowance); err != nil {
		return err
	}
	l.sink.Publish(events.Approval{Owner: caller, Spender: spender, Amount: newAllowance})
	return nil
}

// DecreaseApproval lowers the caller's allowance for spender by amount,
// flooring at zero.
func (l *Ledger) DecreaseApproval(caller, spender ids.ShortID, amount uint64) error {
	allowance, err := l.Allowance(caller, spender)
	if err != nil {
		return err
	}
	newAllowance, err := safemath.Sub(allowance, amount)
	if err != nil {
		newAllowance = 0
	}
	if err := database.PutUInt64(l.allowanceDB, allowanceKey(caller, spender), newAllowance); err != nil {
		return err
	}
	l.sink.Publish(events.Approval{Owner: caller, Spender: spender, Amount: newAllowance})
	return nil
}

// Burn destroys amount of the caller's tokens, reducing the total supply.
// Burning is subject to the same timelock gate as transferring.
func (l *Ledger) Burn(caller ids.ShortID, amount uint64) error {
	acct, err := l.GetAccount(caller)
	switch {
	case err != nil:
		return err
	case acct.Frozen:
		return ErrFrozen
	case acct.Blacklisted:
		return ErrBlacklisted
	case acct.Balance < amount:
		return ErrInsufficientBalance
	}

	unlocked, err := l.unlocked(acct)
	if err != nil {
		return err
	}
	if !unlocked {
		return ErrTimelocked
	}

	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := safemath.Sub(supply, amount)
	if err != nil {
		return err
	}

	acct.Balance -= amount
	if err := l.putAccount(caller, acct); err != nil {
		return err
	}
	if err := database.PutUInt64(l.singletonDB, totalSupplyKey, newSupply); err != nil {
		return err
	}

	l.sink.Publish(events.Burn{From: caller, Amount: amount})
	return nil
}

// AddPartner flags investor as a partner. The flag can only change while the
// balance is zero, so an account's timelock class is never altered while it
// holds funds.
func (l *Ledger) AddPartner(caller, investor ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	acct, err := l.GetAccount(investor)
	if err != nil {
		return err
	}
	if acct.Balance != 0 {
		return ErrNonzeroBalance
	}
	acct.Partner = true
	if err := l.putAccount(investor, acct); err != nil {
		return err
	}
	l.sink.Publish(events.PartnerAdded{Account: investor})
	return nil
}

// RemovePartner clears investor's partner flag.
func (l *Ledger) RemovePartner(caller, investor ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	acct, err := l.GetAccount(investor)
	switch {
	case err != nil:
		return err
	case !acct.Partner:
		return ErrNotPartner
	case acct.Balance != 0:
		return ErrNonzeroBalance
	}
	acct.Partner = false
	if err := l.putAccount(investor, acct); err != nil {
		return err
	}
	l.sink.Publish(events.PartnerRemoved{Account: investor})
	return nil
}

// Blacklist flags account and destroys its entire balance. This is an
// irreversible burn: Whitelist clears the flag but never restores funds.
func (l *Ledger) Blacklist(caller, account ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	acct, err := l.GetAccount(account)
	if err != nil {
		return err
	}
	if acct.Blacklisted {
		return ErrAlreadyBlacklisted
	}

	burned := acct.Balance
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := safemath.Sub(supply, burned)
	if err != nil {
		return err
	}

	acct.Blacklisted = true
	acct.Balance = 0
	if err := l.putAccount(account, acct); err != nil {
		return err
	}
	if err := database.PutUInt64(l.singletonDB, totalSupplyKey, newSupply); err != nil {
		return err
	}

	l.log.Info("blacklisted account",
		log.Stringer("account", account),
		log.Uint64("burnedBalance", burned),
	)
	l.sink.Publish(events.Blacklisted{Account: account, BurnedBalance: burned})
	return nil
}

// Whitelist clears account's blacklist flag. The balance destroyed by
// Blacklist stays destroyed.
func (l *Ledger) Whitelist(caller, account ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	acct, err := l.GetAccount(account)
	if err != nil {
		return err
	}
	if !acct.Blacklisted {
		return ErrNotBlacklisted
	}
	acct.Blacklisted = false
	if err := l.putAccount(account, acct); err != nil {
		return err
	}
	l.sink.Publish(events.Whitelisted{Account: account})
	return nil
}

// Freeze reversibly blocks investor from sending, receiving, approving, and
// burning. The balance is preserved.
func (l *Ledger) Freeze(caller, investor ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	acct, err := l.GetAccount(investor)
	if err != nil {
		return err
	}
	if acct.Frozen {
		return ErrAlreadyFrozen
	}
	acct.Frozen = true
	if err := l.putAccount(investor, acct); err != nil {
		return err
	}
	l.sink.Publish(events.Frozen{Account: investor})
	return nil
}

// Unfreeze lifts a freeze.
func (l *Ledger) Unfreeze(caller, investor ids.ShortID) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	acct, err := l.GetAccount(investor)
	if err != nil {
		return err
	}
	if !acct.Frozen {
		return ErrNotFrozen
	}
	acct.Frozen = false
	if err := l.putAccount(investor, acct); err != nil {
		return err
	}
	l.sink.Publish(events.Unfrozen{Account: investor})
	return nil
}

// SetPublicRelease moves the public release date forward. The current date
// must still be in the future and the move is limited to MaxReleaseSlip per
// adjustment.
func (l *Ledger) SetPublicRelease(caller ids.ShortID, date time.Time) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	current, err := l.PublicRelease()
	if err != nil {
		return err
	}
	if err := l.checkReleaseSlip(current, date); err != nil {
		return err
	}
	partners, err := l.PartnersRelease()
	if err != nil {
		return err
	}
	if date.After(partners) {
		return ErrReleaseOrder
	}
	if err := database.PutTimestamp(l.singletonDB, publicReleaseKey, date); err != nil {
		return err
	}
	l.sink.Publish(events.ReleaseUpdated{Class: events.PublicRelease, Date: date})
	return nil
}

// SetPartnersRelease moves the partners release date forward, under the same
// rate limit as SetPublicRelease.
func (l *Ledger) SetPartnersRelease(caller ids.ShortID, date time.Time) error {
	if err := l.gate.Authorize(caller); err != nil {
		return err
	}
	current, err := l.PartnersRelease()
	if err != nil {
		return err
	}
	if err := l.checkReleaseSlip(current, date); err != nil {
		return err
	}
	public, err := l.PublicRelease()
	if err != nil {
		return err
	}
	if date.Before(public) {
		return ErrReleaseOrder
	}
	if err := database.PutTimestamp(l.singletonDB, partnersReleaseKey, date); err != nil {
		return err
	}
	l.sink.Publish(events.ReleaseUpdated{Class: events.PartnersRelease, Date: date})
	return nil
}

func (l *Ledger) checkReleaseSlip(current, date time.Time) error {
	if !l.clk.Time().Before(current) {
		return ErrReleasePassed
	}
	if !date.After(current) {
		return ErrReleaseNotForward
	}
	if date.Sub(current) > MaxReleaseSlip {
		return ErrReleaseTooFar
	}
	return nil
}

// unlocked implements the timelock gate: ordinary accounts unlock at the
// public release, partners only at the partners release. Once the partners
// release passes, everyone is unlocked unconditionally.
func (l *Ledger) unlocked(acct Account) (bool, error) {
	now := l.clk.Time()
	partners, err := l.PartnersRelease()
	if err != nil {
		return false, err
	}
	if !now.Before(partners) {
		return true, nil
	}
	if acct.Partner {
		return false, nil
	}
	public, err := l.PublicRelease()
	if err != nil {
		return false, err
	}
	return !now.Before(public), nil
}

func (l *Ledger) putAccount(addr ids.ShortID, acct Account) error {
	bytes, err := Codec.Marshal(CodecVersion, &acct)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	return l.accountDB.Put(addr[:], bytes)
}

func allowanceKey(owner, spender ids.ShortID) []byte {
	key := make([]byte, len(owner)+len(spender))
	copy(key, owner[:])
	copy(key[len(owner):], spender[:])
	return key
}

func getUint64(db database.KeyValueReader, key []byte) (uint64, error) {
	val, err := database.GetUInt64(db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}
