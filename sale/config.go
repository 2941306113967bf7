// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/crowdsale/utils/units"
)

var (
	ErrZeroRate         = errors.New("rate must not be zero")
	ErrZeroGoal         = errors.New("goal must not be zero")
	ErrEmptyWindow      = errors.New("stage window must not be empty")
	ErrWindowOverlap    = errors.New("public sale must not begin before the presale ends")
	ErrCapOrder         = errors.New("stage caps must not decrease across stages")
	ErrCapAboveTokenCap = errors.New("stage cap exceeds the token cap")
	ErrUnsortedTiers    = errors.New("bonus tiers must be sorted by ascending threshold")
	ErrSaleAfterRelease = errors.New("public sale must end before the public release")
)

// BonusTier pairs a payment threshold with the bonus percentage awarded to
// payments at or above it.
type BonusTier struct {
	Threshold uint64 `json:"threshold"`
	Percent   uint64 `json:"percent"`
}

// StageConfig describes one sale stage. Cap is a ceiling on the ledger's
// total supply while the stage runs, not on the stage's own sales.
type StageConfig struct {
	Begin   time.Time   `json:"begin"`
	End     time.Time   `json:"end"`
	Cap     uint64      `json:"cap"`
	Minimum uint64      `json:"minimum"`
	Tiers   []BonusTier `json:"tiers"`
}

// Config holds every sale parameter fixed at initialization.
type Config struct {
	// TokenCap is the ledger's maximum total supply.
	TokenCap uint64 `json:"tokenCap"`

	// Rate is the number of tokens minted per unit of payment, before any
	// bonus.
	Rate uint64 `json:"rate"`

	// Goal is the raised amount at or above which the sale succeeds.
	Goal uint64 `json:"goal"`

	// PublicRelease and PartnersRelease seed the ledger's timelock dates.
	PublicRelease   time.Time `json:"publicRelease"`
	PartnersRelease time.Time `json:"partnersRelease"`

	Presale StageConfig `json:"presale"`
	Pubsale StageConfig `json:"pubsale"`

	Pools PoolConfig `json:"pools"`
}

// PresaleTiers returns the standard presale bonus table.
func PresaleTiers() []BonusTier {
	return []BonusTier{
		{Threshold: 1 * units.Ether, Percent: 33},
		{Threshold: 20 * units.Ether, Percent: 39},
		{Threshold: 100 * units.Ether, Percent: 49},
	}
}

// PubsaleTiers returns the standard public sale bonus table, a single flat
// tier applied to every accepted payment.
func PubsaleTiers(percent uint64) []BonusTier {
	return []BonusTier{
		{Threshold: 0, Percent: percent},
	}
}

func (c *Config) Validate() error {
	if c.Rate == 0 {
		return ErrZeroRate
	}
	if c.Goal == 0 {
		return ErrZeroGoal
	}
	if err := c.Presale.validate(c.TokenCap); err != nil {
		return fmt.Errorf("presale: %w", err)
	}
	if err := c.Pubsale.validate(c.TokenCap); err != nil {
		return fmt.Errorf("public sale: %w", err)
	}
	if c.Pubsale.Begin.Before(c.Presale.End) {
		return ErrWindowOverlap
	}
	if c.Pubsale.Cap < c.Presale.Cap {
		return ErrCapOrder
	}
	// Funds must become tradable only after the sale has truly ended.
	if c.PublicRelease.Before(c.Pubsale.End) {
		return ErrSaleAfterRelease
	}
	return nil
}

func (s *StageConfig) validate(tokenCap uint64) error {
	if !s.Begin.Before(s.End) {
		return ErrEmptyWindow
	}
	if s.Cap > tokenCap {
		return ErrCapAboveTokenCap
	}
	for i := 1; i < len(s.Tiers); i++ {
		if s.Tiers[i].Threshold <= s.Tiers[i-1].Threshold {
			return ErrUnsortedTiers
		}
	}
	return nil
}
