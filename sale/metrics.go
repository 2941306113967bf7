// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"errors"

	"github.com/luxfi/metric"
)

type saleMetrics struct {
	numPurchases metric.Counter
	numRefunds   metric.Counter
	numGrants    metric.Counter
	weiRaised    metric.Gauge
	totalSupply  metric.Gauge
}

func newMetrics(registerer metric.Registerer) (*saleMetrics, error) {
	m := &saleMetrics{
		numPurchases: metric.NewCounter(metric.CounterOpts{
			Name: "sale_purchases",
			Help: "Number of accepted purchases",
		}),
		numRefunds: metric.NewCounter(metric.CounterOpts{
			Name: "sale_refunds",
			Help: "Number of paid refunds",
		}),
		numGrants: metric.NewCounter(metric.CounterOpts{
			Name: "sale_grants",
			Help: "Number of issued pool grants",
		}),
		weiRaised: metric.NewGauge(metric.GaugeOpts{
			Name: "sale_wei_raised",
			Help: "Total payment amount raised",
		}),
		totalSupply: metric.NewGauge(metric.GaugeOpts{
			Name: "sale_total_supply",
			Help: "Total token supply",
		}),
	}

	err := errors.Join(
		registerer.Register(metric.AsCollector(m.numPurchases)),
		registerer.Register(metric.AsCollector(m.numRefunds)),
		registerer.Register(metric.AsCollector(m.numGrants)),
		registerer.Register(metric.AsCollector(m.weiRaised)),
		registerer.Register(metric.AsCollector(m.totalSupply)),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
