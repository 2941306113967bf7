// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package authority implements the single-owner capability gate used by the
// sale core. A Gate compares a caller identity against its stored owner and
// supports handing ownership to a new owner.
package authority

import (
	"errors"
	"sync"

	"github.com/luxfi/ids"
)

var (
	ErrUnauthorized = errors.New("caller is not the owner")
	ErrEmptyOwner   = errors.New("owner must not be the empty address")
)

// Gate is a single-owner authorization check. It is safe for concurrent use.
type Gate struct {
	mu    sync.RWMutex
	owner ids.ShortID
}

// NewGate returns a gate owned by owner.
func NewGate(owner ids.ShortID) (*Gate, error) {
	if owner == ids.ShortEmpty {
		return nil, ErrEmptyOwner
	}
	return &Gate{owner: owner}, nil
}

// Owner returns the current owner.
func (g *Gate) Owner() ids.ShortID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.owner
}

// IsOwner reports whether caller is the current owner.
func (g *Gate) IsOwner(caller ids.ShortID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return caller == g.owner
}

// Authorize returns ErrUnauthorized unless caller is the current owner.
func (g *Gate) Authorize(caller ids.ShortID) error {
	if !g.IsOwner(caller) {
		return ErrUnauthorized
	}
	return nil
}

// TransferOwnership hands the gate to newOwner. Only the current owner may
// transfer, and ownership can never be transferred to the empty address.
func (g *Gate) TransferOwnership(caller, newOwner ids.ShortID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if caller != g.owner {
		return ErrUnauthorized
	}
	if newOwner == ids.ShortEmpty {
		return ErrEmptyOwner
	}
	g.owner = newOwner
	return nil
}
