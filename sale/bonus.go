// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	safemath "github.com/luxfi/math"
)

// tokenAmount converts a payment into a token amount: base tokens at the
// flat rate, plus the bonus of the highest tier whose threshold the payment
// meets. Exact threshold equality qualifies. A payment below every
// threshold earns no bonus.
//
// The bonus divides by 100 after multiplying, so fractional token amounts
// truncate toward zero.
func tokenAmount(paid, rate uint64, tiers []BonusTier) (uint64, error) {
	base, err := safemath.Mul(paid, rate)
	if err != nil {
		return 0, err
	}
	for i := len(tiers) - 1; i >= 0; i-- {
		if paid < tiers[i].Threshold {
			continue
		}
		bonus, err := safemath.Mul(base, tiers[i].Percent)
		if err != nil {
			return 0, err
		}
		return safemath.Add(base, bonus/100)
	}
	return base, nil
}
