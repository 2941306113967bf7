// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
	"github.com/luxfi/pubsub"
)

type addrFilter struct {
	addr []byte
}

func (f *addrFilter) Check(addr []byte) bool {
	return bytes.Equal(addr, f.addr)
}

func TestFiltererMatchesInvolvedAddresses(t *testing.T) {
	require := require.New(t)

	from := ids.ShortID{1}
	to := ids.ShortID{2}
	other := ids.ShortID{3}

	f := NewFilterer(Transfer{From: from, To: to, Amount: 7})

	matches, payload := f.Filter([]pubsub.Filter{
		&addrFilter{addr: from[:]},
		&addrFilter{addr: to[:]},
		&addrFilter{addr: other[:]},
	})
	require.Equal([]bool{true, true, false}, matches)

	ev, ok := payload.(Transfer)
	require.True(ok)
	require.Equal(uint64(7), ev.Amount)
}

func TestBufferFlushOrder(t *testing.T) {
	require := require.New(t)

	buf := &Buffer{}
	buf.Publish(Mint{To: ids.ShortID{1}, Amount: 1})
	buf.Publish(Deposited{Investor: ids.ShortID{2}, Amount: 2})
	require.Equal(2, buf.Len())

	out := &Buffer{}
	buf.Flush(out)
	require.Zero(buf.Len())
	require.Equal(2, out.Len())
	require.Equal(TypeMint, out.events[0].Type())
	require.Equal(TypeDeposited, out.events[1].Type())
}

func TestBufferDrop(t *testing.T) {
	require := require.New(t)

	buf := &Buffer{}
	buf.Publish(MintingFinished{})
	buf.Drop()
	require.Zero(buf.Len())

	out := &Buffer{}
	buf.Flush(out)
	require.Zero(out.Len())
}
