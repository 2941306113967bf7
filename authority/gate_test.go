// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authority

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func TestGateAuthorize(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	stranger := ids.GenerateTestShortID()

	gate, err := NewGate(owner)
	require.NoError(err)

	require.Equal(owner, gate.Owner())
	require.True(gate.IsOwner(owner))
	require.False(gate.IsOwner(stranger))
	require.NoError(gate.Authorize(owner))
	require.ErrorIs(gate.Authorize(stranger), ErrUnauthorized)
}

func TestGateTransferOwnership(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	next := ids.GenerateTestShortID()

	gate, err := NewGate(owner)
	require.NoError(err)

	require.ErrorIs(gate.TransferOwnership(next, next), ErrUnauthorized)
	require.ErrorIs(gate.TransferOwnership(owner, ids.ShortEmpty), ErrEmptyOwner)

	require.NoError(gate.TransferOwnership(owner, next))
	require.Equal(next, gate.Owner())
	require.ErrorIs(gate.Authorize(owner), ErrUnauthorized)
	require.NoError(gate.Authorize(next))
}

func TestGateEmptyOwner(t *testing.T) {
	_, err := NewGate(ids.ShortEmpty)
	require.ErrorIs(t, err, ErrEmptyOwner)
}
