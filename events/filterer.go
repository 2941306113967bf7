// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import "github.com/luxfi/pubsub"

var _ pubsub.Filterer = (*filterer)(nil)

type filterer struct {
	ev Event
}

// NewFilterer adapts an event for pubsub publication, matching subscriber
// filters against the event's addresses.
func NewFilterer(ev Event) pubsub.Filterer {
	return &filterer{ev: ev}
}

// Apply the filter on the event's addresses.
func (f *filterer) Filter(filters []pubsub.Filter) ([]bool, interface{}) {
	resp := make([]bool, len(filters))
	for _, addr := range f.ev.Addresses() {
		for i, c := range filters {
			if resp[i] {
				continue
			}
			resp[i] = c.Check(addr)
		}
	}
	return resp, f.ev
}
