// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package units

// Denominations of the payment currency.
// The sale core accounts wei-equivalents in a nano-denominated uint64, so one
// payment unit ("ether") is 10^9 base units and uint64 comfortably holds any
// realistic raise.
const (
	NanoEther  uint64 = 1
	MicroEther uint64 = 1000 * NanoEther
	MilliEther uint64 = 1000 * MicroEther
	Ether      uint64 = 1000 * MilliEther
)
