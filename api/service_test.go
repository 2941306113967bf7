// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/crowdsale/events"
	"github.com/luxfi/crowdsale/payment"
	"github.com/luxfi/crowdsale/sale"
	"github.com/luxfi/crowdsale/utils/json"
	"github.com/luxfi/crowdsale/utils/timer/mockable"
	"github.com/luxfi/crowdsale/utils/units"
)

const day = 24 * time.Hour

var testStart = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	service *Service
	owner   ids.ShortID
	payer   ids.ShortID
	bank    *payment.Bank
	clk     *mockable.Clock
	cfg     sale.Config
}

func newTestEnv(t *testing.T) *testEnv {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	payer := ids.GenerateTestShortID()

	cfg := sale.Config{
		TokenCap:        100_000 * units.Ether,
		Rate:            10,
		Goal:            50 * units.Ether,
		PublicRelease:   testStart.Add(40 * day),
		PartnersRelease: testStart.Add(70 * day),
		Presale: sale.StageConfig{
			Begin:   testStart.Add(time.Hour),
			End:     testStart.Add(10 * day),
			Cap:     20_000 * units.Ether,
			Minimum: units.Ether / 10,
			Tiers:   sale.PresaleTiers(),
		},
		Pubsale: sale.StageConfig{
			Begin:   testStart.Add(10 * day),
			End:     testStart.Add(30 * day),
			Cap:     60_000 * units.Ether,
			Minimum: units.Ether / 10,
			Tiers:   sale.PubsaleTiers(15),
		},
		Pools: sale.PoolConfig{
			Team:   1_000 * units.Ether,
			Relay:  500 * units.Ether,
			Bounty: 250 * units.Ether,
			Legal:  250 * units.Ether,
		},
	}

	clk := &mockable.Clock{}
	clk.Set(testStart)
	bank := payment.NewBank()

	controller, err := sale.New(
		memdb.New(),
		cfg,
		owner,
		ids.GenerateTestShortID(),
		ids.GenerateTestShortID(),
		clk,
		log.NewNoOpLogger(),
		bank,
		events.NopSink{},
		metric.NewNoOpRegistry(),
	)
	require.NoError(err)

	return &testEnv{
		service: NewService(controller, log.NewNoOpLogger()),
		owner:   owner,
		payer:   payer,
		bank:    bank,
		clk:     clk,
		cfg:     cfg,
	}
}

func TestServiceStatus(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)

	reply := StatusReply{}
	require.NoError(env.service.Status(nil, &StatusArgs{}, &reply))
	require.Equal("standby", reply.Status)
	require.Equal("suspended", reply.Stage)
	require.Equal("active", reply.VaultState)
	require.Zero(reply.WeiRaised)
	require.Equal(env.owner.String(), reply.Owner)
}

func TestServiceBuyTokens(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)

	started := SuccessReply{}
	require.NoError(env.service.Start(nil, &CallArgs{Caller: env.owner.String()}, &started))
	require.True(started.Success)

	env.clk.Set(env.cfg.Presale.Begin)
	require.NoError(env.bank.Issue(env.payer, 2*units.Ether))

	bought := SuccessReply{}
	require.NoError(env.service.BuyTokens(nil, &BuyTokensArgs{
		Payer:       env.payer.String(),
		Beneficiary: env.payer.String(),
		Amount:      json.Uint64(2 * units.Ether),
	}, &bought))
	require.True(bought.Success)

	acct := GetAccountReply{}
	require.NoError(env.service.GetAccount(nil, &GetAccountArgs{Address: env.payer.String()}, &acct))
	base := 2 * units.Ether * 10
	require.Equal(json.Uint64(base+base*33/100), acct.Balance)
	require.Equal(json.Uint64(2*units.Ether), acct.Deposit)

	status := StatusReply{}
	require.NoError(env.service.Status(nil, &StatusArgs{}, &status))
	require.Equal(json.Uint64(2*units.Ether), status.WeiRaised)
}

func TestServiceRejectsBadAddress(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)

	err := env.service.Start(nil, &CallArgs{Caller: "not an address"}, &SuccessReply{})
	require.ErrorContains(err, "invalid caller address")
}

func TestServicePools(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t)

	reply := PoolsReply{}
	require.NoError(env.service.Pools(nil, &PoolsArgs{}, &reply))
	require.Equal(json.Uint64(env.cfg.Pools.Team), reply.Team)
	require.Equal(json.Uint64(env.cfg.Pools.Legal), reply.Legal)
}
