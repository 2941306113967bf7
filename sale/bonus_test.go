// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/crowdsale/utils/units"
)

func TestTokenAmountTiers(t *testing.T) {
	tiers := PresaleTiers()

	tests := []struct {
		name string
		paid uint64
		rate uint64
		want uint64
	}{
		{
			name: "below every threshold earns no bonus",
			paid: units.Ether / 2,
			rate: 100,
			want: units.Ether / 2 * 100,
		},
		{
			name: "exact lowest threshold qualifies",
			paid: 1 * units.Ether,
			rate: 100,
			want: 100 * units.Ether * 133 / 100,
		},
		{
			name: "just under the middle threshold stays in the lowest tier",
			paid: 19 * units.Ether,
			rate: 100,
			want: 1900 * units.Ether * 133 / 100,
		},
		{
			name: "exact middle threshold qualifies",
			paid: 20 * units.Ether,
			rate: 100,
			want: 2000 * units.Ether * 139 / 100,
		},
		{
			name: "highest tier wins",
			paid: 100 * units.Ether,
			rate: 100,
			want: 10000 * units.Ether * 149 / 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			got, err := tokenAmount(tt.paid, tt.rate, tiers)
			require.NoError(err)
			require.Equal(tt.want, got)
		})
	}
}

func TestTokenAmountTruncation(t *testing.T) {
	require := require.New(t)

	// base 1000, 33% bonus: 1000*33/100 = 330, total 1330.
	got, err := tokenAmount(1000, 1, []BonusTier{{Threshold: 1, Percent: 33}})
	require.NoError(err)
	require.Equal(uint64(1330), got)

	// base 101, 33% bonus: 101*33/100 truncates to 33.
	got, err = tokenAmount(101, 1, []BonusTier{{Threshold: 1, Percent: 33}})
	require.NoError(err)
	require.Equal(uint64(134), got)
}

func TestTokenAmountFlatTier(t *testing.T) {
	require := require.New(t)

	// The public sale table has one zero-threshold tier, so every payment
	// earns the flat bonus.
	got, err := tokenAmount(7, 100, PubsaleTiers(15))
	require.NoError(err)
	require.Equal(uint64(700+700*15/100), got)
}

func TestTokenAmountNoTiers(t *testing.T) {
	require := require.New(t)

	got, err := tokenAmount(50, 2, nil)
	require.NoError(err)
	require.Equal(uint64(100), got)
}
