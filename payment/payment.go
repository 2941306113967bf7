// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package payment abstracts the native-currency transfer primitive consumed
// by the vault and the purchase-forwarding path. The sale core never holds
// currency itself; it instructs a Transferrer and fails the surrounding
// operation if the transfer fails.
package payment

import (
	"errors"
	"sync"

	"github.com/luxfi/ids"
	safemath "github.com/luxfi/math"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEmptyRecipient    = errors.New("recipient must not be the empty address")

	_ Transferrer = (*Bank)(nil)
)

// Transferrer pays amount from one account to another, failing if the payer
// balance is insufficient or the recipient rejects the payment.
type Transferrer interface {
	Transfer(from, to ids.ShortID, amount uint64) error
}

// Bank is an in-memory Transferrer used by drivers and tests.
// It is safe for concurrent use.
type Bank struct {
	mu       sync.RWMutex
	balances map[ids.ShortID]uint64
}

func NewBank() *Bank {
	return &Bank{balances: make(map[ids.ShortID]uint64)}
}

// Issue credits amount to addr out of thin air.
func (b *Bank) Issue(addr ids.ShortID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	newBalance, err := safemath.Add(b.balances[addr], amount)
	if err != nil {
		return err
	}
	b.balances[addr] = newBalance
	return nil
}

func (b *Bank) BalanceOf(addr ids.ShortID) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[addr]
}

func (b *Bank) Transfer(from, to ids.ShortID, amount uint64) error {
	if to == ids.ShortEmpty {
		return ErrEmptyRecipient
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromBalance, err := safemath.Sub(b.balances[from], amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	toBalance, err := safemath.Add(b.balances[to], amount)
	if err != nil {
		return err
	}
	b.balances[from] = fromBalance
	b.balances[to] = toBalance
	return nil
}
