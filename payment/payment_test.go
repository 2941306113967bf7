// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package payment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func TestBankTransfer(t *testing.T) {
	require := require.New(t)

	bank := NewBank()
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(bank.Issue(alice, 100))
	require.Equal(uint64(100), bank.BalanceOf(alice))

	require.NoError(bank.Transfer(alice, bob, 40))
	require.Equal(uint64(60), bank.BalanceOf(alice))
	require.Equal(uint64(40), bank.BalanceOf(bob))
}

func TestBankTransferInsufficient(t *testing.T) {
	require := require.New(t)

	bank := NewBank()
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(bank.Issue(alice, 10))
	err := bank.Transfer(alice, bob, 11)
	require.ErrorIs(err, ErrInsufficientFunds)

	// Failed transfers must leave both balances untouched.
	require.Equal(uint64(10), bank.BalanceOf(alice))
	require.Zero(bank.BalanceOf(bob))
}

func TestBankTransferEmptyRecipient(t *testing.T) {
	require := require.New(t)

	bank := NewBank()
	alice := ids.GenerateTestShortID()
	require.NoError(bank.Issue(alice, 10))
	require.ErrorIs(bank.Transfer(alice, ids.ShortEmpty, 5), ErrEmptyRecipient)
}
