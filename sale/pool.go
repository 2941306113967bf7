// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"errors"
	"fmt"
)

// Pool identifies one of the four fixed grant pools. The order is the
// storage order; it never changes.
type Pool uint8

const (
	Team Pool = iota
	Relay
	Bounty
	Legal

	numPools = 4
)

var ErrUnknownPool = errors.New("unknown grant pool")

func (p Pool) String() string {
	switch p {
	case Team:
		return "team"
	case Relay:
		return "relay"
	case Bounty:
		return "bounty"
	case Legal:
		return "legal"
	default:
		return fmt.Sprintf("unknown pool %d", p)
	}
}

// ParsePool maps a pool name to its Pool.
func ParsePool(name string) (Pool, error) {
	switch name {
	case "team":
		return Team, nil
	case "relay":
		return Relay, nil
	case "bounty":
		return Bounty, nil
	case "legal":
		return Legal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPool, name)
	}
}

// PoolConfig sets the initial size of each grant pool.
type PoolConfig struct {
	Team   uint64 `json:"team"`
	Relay  uint64 `json:"relay"`
	Bounty uint64 `json:"bounty"`
	Legal  uint64 `json:"legal"`
}

func (c PoolConfig) size(p Pool) uint64 {
	switch p {
	case Team:
		return c.Team
	case Relay:
		return c.Relay
	case Bounty:
		return c.Bounty
	default:
		return c.Legal
	}
}
