// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sale implements the crowdsale controller. It owns the ledger and
// the escrow vault outright: every externally visible operation, including
// plain token transfers, enters through the controller so that each call is
// atomic with respect to all others.
package sale

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"
	"github.com/luxfi/metric"

	"github.com/luxfi/crowdsale/authority"
	"github.com/luxfi/crowdsale/escrow"
	"github.com/luxfi/crowdsale/events"
	"github.com/luxfi/crowdsale/ledger"
	"github.com/luxfi/crowdsale/payment"
	"github.com/luxfi/crowdsale/utils/timer/mockable"
)

// Status is the controller's operational state.
type Status uint8

const (
	Standby Status = iota
	Running
	Paused
	Finalized
)

func (s Status) String() string {
	switch s {
	case Standby:
		return "standby"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("unknown status %d", s)
	}
}

// Stage is the sale-period progression.
type Stage uint8

const (
	Suspended Stage = iota
	Presale
	Pubsale
	Terminated
)

func (s Stage) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Presale:
		return "presale"
	case Pubsale:
		return "pubsale"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("unknown stage %d", s)
	}
}

var (
	ErrIllegalTransition = errors.New("illegal status/stage transition")
	ErrNotRunning        = errors.New("sale is not running")
	ErrNotFinalized      = errors.New("sale is not finalized")
	ErrWrongStage        = errors.New("operation not legal in current stage")
	ErrStartTooLate      = errors.New("presale window already began")
	ErrPresaleNotEnded   = errors.New("presale period has not ended")
	ErrSaleNotEnded      = errors.New("sale period has not ended")
	ErrOutsideWindow     = errors.New("outside the purchase window")
	ErrZeroPayment       = errors.New("payment must not be zero")
	ErrZeroAmount        = errors.New("amount must not be zero")
	ErrBelowMinimum      = errors.New("payment below the stage minimum")
	ErrStageCapExceeded  = errors.New("purchase exceeds the stage supply cap")
	ErrGoalNotReached    = errors.New("funding goal not reached")
	ErrGoalReached       = errors.New("funding goal was reached")
	ErrGrantTooEarly     = errors.New("grants open only after the public sale ends")
	ErrPoolEmpty         = errors.New("grant pool is empty")
	ErrPoolExceeded      = errors.New("grant exceeds the remaining pool")
	ErrLedgerDetached    = errors.New("ledger ownership left the controller")

	ledgerPrefix = []byte{0x00}
	escrowPrefix = []byte{0x01}
	salePrefix   = []byte{0x02}
	poolPrefix   = []byte{0x03}

	statusKey    = []byte("status")
	stageKey     = []byte("stage")
	weiRaisedKey = []byte("wei raised")
)

type phase struct {
	status Status
	stage  Stage
}

// transitions is the complete allowed-transition table for the dual state
// machine. Any status/stage pair not reachable through it cannot occur.
var transitions = map[phase][]phase{
	{Standby, Suspended}: {{Running, Presale}},
	{Running, Presale}:   {{Running, Pubsale}, {Paused, Presale}},
	{Paused, Presale}:    {{Running, Presale}},
	{Running, Pubsale}:   {{Finalized, Terminated}, {Paused, Pubsale}},
	{Paused, Pubsale}:    {{Running, Pubsale}},
}

// Controller drives the sale. It holds the only references to its ledger
// and vault; their authority gates are owned by the controller's internal
// identity, so no call can bypass the controller's transactional boundary.
//
// Every mutating operation runs under one lock and one versioned database:
// a failed precondition or collaborator aborts the version with zero
// partial effects, a success commits it and only then publishes the
// operation's events.
type Controller struct {
	lock sync.Mutex

	cfg    Config
	self   ids.ShortID
	wallet ids.ShortID
	gate   *authority.Gate
	clk    *mockable.Clock
	log    log.Logger
	bank   payment.Transferrer
	sink   events.Sink
	buf    *events.Buffer

	metrics *saleMetrics

	db     *versiondb.Database
	saleDB database.Database
	poolDB database.Database

	ledger *ledger.Ledger
	vault  *escrow.Vault
}

// New initializes a controller over db. owner is the human administrator,
// self the internal identity the controller uses toward the ledger and
// vault, and wallet the recipient of successfully raised funds.
func New(
	db database.Database,
	cfg Config,
	owner ids.ShortID,
	self ids.ShortID,
	wallet ids.ShortID,
	clk *mockable.Clock,
	logger log.Logger,
	bank payment.Transferrer,
	sink events.Sink,
	registerer metric.Registerer,
) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sale config: %w", err)
	}
	gate, err := authority.NewGate(owner)
	if err != nil {
		return nil, err
	}

	vdb := versiondb.New(db)
	buf := &events.Buffer{}

	tokenLedger, err := ledger.New(
		prefixdb.New(ledgerPrefix, vdb),
		ledger.Config{
			Cap:             cfg.TokenCap,
			PublicRelease:   cfg.PublicRelease,
			PartnersRelease: cfg.PartnersRelease,
		},
		self,
		clk,
		logger,
		buf,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}

	vault, err := escrow.New(
		prefixdb.New(escrowPrefix, vdb),
		wallet,
		self,
		self,
		bank,
		logger,
		buf,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault: %w", err)
	}

	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:     cfg,
		self:    self,
		wallet:  wallet,
		gate:    gate,
		clk:     clk,
		log:     logger,
		bank:    bank,
		sink:    sink,
		buf:     buf,
		metrics: metrics,
		db:      vdb,
		saleDB:  prefixdb.New(salePrefix, vdb),
		poolDB:  prefixdb.New(poolPrefix, vdb),
		ledger:  tokenLedger,
		vault:   vault,
	}
	if err := c.initPools(); err != nil {
		return nil, err
	}
	if err := vdb.Commit(); err != nil {
		return nil, err
	}
	buf.Drop()
	return c, nil
}

func (c *Controller) initPools() error {
	for p := Team; p < numPools; p++ {
		has, err := c.poolDB.Has([]byte{byte(p)})
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if err := database.PutUInt64(c.poolDB, []byte{byte(p)}, c.cfg.Pools.size(p)); err != nil {
			return err
		}
	}
	return nil
}

// run is the transactional boundary for every mutating operation. On
// failure the version and all buffered events are dropped; on success the
// version commits and the events flush to the external sink.
func (c *Controller) run(op func() error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := op(); err != nil {
		c.buf.Drop()
		c.db.Abort()
		return err
	}
	if err := c.db.Commit(); err != nil {
		c.buf.Drop()
		c.db.Abort()
		return err
	}
	c.buf.Flush(c.sink)
	return nil
}

// Start opens the presale. Legal only from the initial phase and only
// before the presale window begins.
func (c *Controller) Start(caller ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		if c.clk.Time().After(c.cfg.Presale.Begin) {
			return ErrStartTooLate
		}
		return c.advance(phase{Running, Presale})
	})
}

// Launch advances from the presale to the public sale. The presale must
// have ended, by time or by hitting its supply cap.
func (c *Controller) Launch(caller ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		ended, err := c.stageEnded(c.cfg.Presale)
		if err != nil {
			return err
		}
		if !ended {
			return ErrPresaleNotEnded
		}
		return c.advance(phase{Running, Pubsale})
	})
}

// Pause suspends purchases without advancing the stage.
func (c *Controller) Pause(caller ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		current, err := c.phase()
		if err != nil {
			return err
		}
		return c.advance(phase{Paused, current.stage})
	})
}

// Resume reopens a paused sale. It refuses to run if the ledger's gate no
// longer answers to the controller, which would leave purchases unable to
// mint.
func (c *Controller) Resume(caller ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		if !c.ledger.Gate().IsOwner(c.self) {
			return ErrLedgerDetached
		}
		current, err := c.phase()
		if err != nil {
			return err
		}
		return c.advance(phase{Running, current.stage})
	})
}

// Finalize settles the sale: the vault closes if the goal was reached and
// opens refunds otherwise, minting stops for good, and ledger ownership
// passes to the controller's owner.
func (c *Controller) Finalize(caller ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		ended, err := c.stageEnded(c.cfg.Pubsale)
		if err != nil {
			return err
		}
		if !ended {
			return ErrSaleNotEnded
		}
		if err := c.advance(phase{Finalized, Terminated}); err != nil {
			return err
		}

		raised, err := c.weiRaised()
		if err != nil {
			return err
		}
		goalReached := raised >= c.cfg.Goal
		if goalReached {
			if err := c.vault.Close(c.self); err != nil {
				return err
			}
		} else {
			if err := c.vault.EnableRefunds(c.self); err != nil {
				return err
			}
		}
		if err := c.ledger.FinishMinting(c.self); err != nil {
			return err
		}

		// The gate lives in memory and cannot be rolled back, so the
		// handover is the last step that can possibly fail.
		owner := c.gate.Owner()
		if err := c.ledger.Gate().TransferOwnership(c.self, owner); err != nil {
			return err
		}
		c.buf.Publish(events.OwnershipTransferred{
			Component: "ledger",
			Previous:  c.self,
			New:       owner,
		})
		c.buf.Publish(events.Finalized{GoalReached: goalReached, WeiRaised: raised})

		c.log.Info("sale finalized",
			log.Bool("goalReached", goalReached),
			log.Uint64("weiRaised", raised),
		)
		return nil
	})
}

// BuyTokens accepts a payment from payer, mints the bonus-adjusted token
// amount to beneficiary, and escrows the payment keyed by payer.
//
// The bank transfer is the last fallible step: the bank sits outside the
// versioned database, so nothing may fail after it moves real funds.
func (c *Controller) BuyTokens(payer, beneficiary ids.ShortID, amount uint64) error {
	return c.run(func() error {
		tokens, err := c.validatePurchase(amount)
		if err != nil {
			return err
		}
		if err := c.ledger.Mint(c.self, beneficiary, tokens); err != nil {
			return err
		}
		raised, err := c.addWeiRaised(amount)
		if err != nil {
			return err
		}
		if err := c.vault.Deposit(c.self, payer, amount); err != nil {
			return err
		}
		supply, err := c.ledger.TotalSupply()
		if err != nil {
			return err
		}
		if err := c.bank.Transfer(payer, c.self, amount); err != nil {
			return err
		}
		c.finishPurchase(payer, beneficiary, amount, tokens, raised, supply)
		return nil
	})
}

// TradeEth records an off-platform payment: same validation and bonus math
// as BuyTokens, but no funds move through the payment primitive and the
// escrow entry is keyed by the beneficiary.
func (c *Controller) TradeEth(caller, beneficiary ids.ShortID, amount uint64) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		tokens, err := c.validatePurchase(amount)
		if err != nil {
			return err
		}
		if err := c.ledger.Mint(c.self, beneficiary, tokens); err != nil {
			return err
		}
		raised, err := c.addWeiRaised(amount)
		if err != nil {
			return err
		}
		if err := c.vault.Deposit(c.self, beneficiary, amount); err != nil {
			return err
		}
		supply, err := c.ledger.TotalSupply()
		if err != nil {
			return err
		}
		c.finishPurchase(beneficiary, beneficiary, amount, tokens, raised, supply)
		return nil
	})
}

// TradeTokens mints a pre-agreed exact token amount to beneficiary. No
// bonus applies and nothing is raised or escrowed; only the purchase
// window and the stage supply cap still bind.
func (c *Controller) TradeTokens(caller, beneficiary ids.ShortID, tokens uint64) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		if tokens == 0 {
			return ErrZeroAmount
		}
		stage, err := c.activeStage()
		if err != nil {
			return err
		}
		if err := c.checkWindow(stage); err != nil {
			return err
		}
		if err := c.checkStageCap(stage, tokens); err != nil {
			return err
		}
		if err := c.ledger.Mint(c.self, beneficiary, tokens); err != nil {
			return err
		}
		raised, err := c.weiRaised()
		if err != nil {
			return err
		}
		supply, err := c.ledger.TotalSupply()
		if err != nil {
			return err
		}
		c.finishPurchase(beneficiary, beneficiary, 0, tokens, raised, supply)
		return nil
	})
}

func (c *Controller) validatePurchase(amount uint64) (uint64, error) {
	stage, err := c.activeStage()
	if err != nil {
		return 0, err
	}
	if err := c.checkWindow(stage); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrZeroPayment
	}
	if amount < stage.Minimum {
		return 0, ErrBelowMinimum
	}
	tokens, err := tokenAmount(amount, c.cfg.Rate, stage.Tiers)
	if err != nil {
		return 0, err
	}
	if err := c.checkStageCap(stage, tokens); err != nil {
		return 0, err
	}
	return tokens, nil
}

func (c *Controller) finishPurchase(payer, beneficiary ids.ShortID, amount, tokens, raised, supply uint64) {
	c.buf.Publish(events.Purchase{
		Payer:       payer,
		Beneficiary: beneficiary,
		WeiAmount:   amount,
		TokenAmount: tokens,
	})
	c.log.Debug("accepted purchase",
		log.Stringer("payer", payer),
		log.Stringer("beneficiary", beneficiary),
		log.Uint64("amount", amount),
		log.Uint64("tokens", tokens),
	)

	c.metrics.numPurchases.Inc()
	c.metrics.weiRaised.Set(float64(raised))
	c.metrics.totalSupply.Set(float64(supply))
}

// Grant mints amount from the named pool to to. Grants open once the
// public sale window has ended and stop once finalization stops minting.
// The team pool allocates partner-class tokens; the others mint the public
// class.
func (c *Controller) Grant(caller ids.ShortID, pool Pool, to ids.ShortID, amount uint64) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		if amount == 0 {
			return ErrZeroAmount
		}
		if c.clk.Time().Before(c.cfg.Pubsale.End) {
			return ErrGrantTooEarly
		}

		remaining, err := c.poolRemaining(pool)
		if err != nil {
			return err
		}
		if remaining == 0 {
			return ErrPoolEmpty
		}
		if amount > remaining {
			return ErrPoolExceeded
		}

		if pool == Team {
			err = c.ledger.Grant(c.self, to, amount)
		} else {
			err = c.ledger.Mint(c.self, to, amount)
		}
		if err != nil {
			return err
		}
		if err := database.PutUInt64(c.poolDB, []byte{byte(pool)}, remaining-amount); err != nil {
			return err
		}

		c.buf.Publish(events.GrantIssued{Pool: pool.String(), To: to, Amount: amount})
		c.metrics.numGrants.Inc()
		return nil
	})
}

// ClaimRefund pays the caller back their escrowed deposit. Only available
// once the sale is finalized with the goal unmet.
func (c *Controller) ClaimRefund(caller ids.ShortID) error {
	return c.run(func() error {
		current, err := c.phase()
		if err != nil {
			return err
		}
		if current.status != Finalized {
			return ErrNotFinalized
		}
		reached, err := c.goalReached()
		if err != nil {
			return err
		}
		if reached {
			return ErrGoalReached
		}
		if err := c.vault.Refund(caller); err != nil {
			return err
		}
		c.metrics.numRefunds.Inc()
		return nil
	})
}

// EnableWithdraws lets the wallet start draining the vault before
// finalization. Only legal once the goal is reached.
func (c *Controller) EnableWithdraws(caller ids.ShortID) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		reached, err := c.goalReached()
		if err != nil {
			return err
		}
		if !reached {
			return ErrGoalNotReached
		}
		return c.vault.EnableWithdraws(c.self)
	})
}

// Withdraw pays amount of the vault's held balance to the wallet.
func (c *Controller) Withdraw(caller ids.ShortID, amount uint64) error {
	return c.run(func() error {
		if err := c.gate.Authorize(caller); err != nil {
			return err
		}
		reached, err := c.goalReached()
		if err != nil {
			return err
		}
		if !reached {
			return ErrGoalNotReached
		}
		return c.vault.Withdraw(c.self, amount)
	})
}

// TransferOwnership hands the controller itself to a new administrator.
func (c *Controller) TransferOwnership(caller, newOwner ids.ShortID) error {
	return c.run(func() error {
		previous := c.gate.Owner()
		if err := c.gate.TransferOwnership(caller, newOwner); err != nil {
			return err
		}
		c.buf.Publish(events.OwnershipTransferred{
			Component: "controller",
			Previous:  previous,
			New:       newOwner,
		})
		return nil
	})
}

func (c *Controller) activeStage() (StageConfig, error) {
	current, err := c.phase()
	if err != nil {
		return StageConfig{}, err
	}
	if current.status != Running {
		return StageConfig{}, ErrNotRunning
	}
	switch current.stage {
	case Presale:
		return c.cfg.Presale, nil
	case Pubsale:
		return c.cfg.Pubsale, nil
	default:
		return StageConfig{}, ErrWrongStage
	}
}

func (c *Controller) checkWindow(stage StageConfig) error {
	now := c.clk.Time()
	if now.Before(stage.Begin) || now.After(stage.End) {
		return ErrOutsideWindow
	}
	return nil
}

func (c *Controller) checkStageCap(stage StageConfig, tokens uint64) error {
	supply, err := c.ledger.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, err := safemath.Add(supply, tokens)
	if err != nil {
		return err
	}
	if newSupply > stage.Cap {
		return ErrStageCapExceeded
	}
	return nil
}

// stageEnded reports whether a stage is over, either because its window
// closed or because its supply cap was hit.
func (c *Controller) stageEnded(stage StageConfig) (bool, error) {
	if c.clk.Time().After(stage.End) {
		return true, nil
	}
	supply, err := c.ledger.TotalSupply()
	if err != nil {
		return false, err
	}
	return supply >= stage.Cap, nil
}

func (c *Controller) goalReached() (bool, error) {
	raised, err := c.weiRaised()
	if err != nil {
		return false, err
	}
	return raised >= c.cfg.Goal, nil
}

func (c *Controller) addWeiRaised(amount uint64) (uint64, error) {
	raised, err := c.weiRaised()
	if err != nil {
		return 0, err
	}
	newRaised, err := safemath.Add(raised, amount)
	if err != nil {
		return 0, err
	}
	return newRaised, database.PutUInt64(c.saleDB, weiRaisedKey, newRaised)
}

func (c *Controller) phase() (phase, error) {
	status, err := getEnum(c.saleDB, statusKey)
	if err != nil {
		return phase{}, err
	}
	stage, err := getEnum(c.saleDB, stageKey)
	if err != nil {
		return phase{}, err
	}
	return phase{Status(status), Stage(stage)}, nil
}

// advance validates the transition against the table and persists the new
// phase.
func (c *Controller) advance(to phase) error {
	current, err := c.phase()
	if err != nil {
		return err
	}
	if !transitionAllowed(current, to) {
		return fmt.Errorf("%w: %s/%s to %s/%s",
			ErrIllegalTransition,
			current.status, current.stage,
			to.status, to.stage,
		)
	}
	if err := database.PutUInt64(c.saleDB, statusKey, uint64(to.status)); err != nil {
		return err
	}
	if err := database.PutUInt64(c.saleDB, stageKey, uint64(to.stage)); err != nil {
		return err
	}

	c.log.Info("sale phase changed",
		log.Stringer("status", to.status),
		log.Stringer("stage", to.stage),
	)
	c.buf.Publish(events.StageChanged{
		Status: to.status.String(),
		Stage:  to.stage.String(),
	})
	return nil
}

func transitionAllowed(from, to phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (c *Controller) poolRemaining(pool Pool) (uint64, error) {
	if pool >= numPools {
		return 0, fmt.Errorf("%w: %d", ErrUnknownPool, pool)
	}
	remaining, err := database.GetUInt64(c.poolDB, []byte{byte(pool)})
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return remaining, err
}

func getEnum(db database.KeyValueReader, key []byte) (uint64, error) {
	val, err := database.GetUInt64(db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}
