// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/crowdsale/authority"
	"github.com/luxfi/crowdsale/events"
	"github.com/luxfi/crowdsale/utils/timer/mockable"
	"github.com/luxfi/crowdsale/utils/units"
)

var (
	testOwner    = ids.ShortID{'o', 'w', 'n', 'e', 'r'}
	testInvestor = ids.ShortID{'i', 'n', 'v'}
	testPartner  = ids.ShortID{'p', 'a', 'r', 't'}
	testSpender  = ids.ShortID{'s', 'p', 'e', 'n', 'd'}

	testStart = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func newTestLedger(t *testing.T) (*Ledger, *mockable.Clock) {
	require := require.New(t)

	clk := &mockable.Clock{}
	clk.Set(testStart)

	l, err := New(
		memdb.New(),
		Config{
			Cap:             1000 * units.Ether,
			PublicRelease:   testStart.Add(30 * 24 * time.Hour),
			PartnersRelease: testStart.Add(60 * 24 * time.Hour),
		},
		testOwner,
		clk,
		log.NewNoOpLogger(),
		events.NopSink{},
	)
	require.NoError(err)
	return l, clk
}

// unlock advances the clock past the partners release so transfers are not
// timelocked.
func unlock(t *testing.T, l *Ledger, clk *mockable.Clock) {
	release, err := l.PartnersRelease()
	require.NoError(t, err)
	clk.Set(release)
}

func TestMint(t *testing.T) {
	require := require.New(t)
	l, _ := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 5*units.Ether))

	balance, err := l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Equal(5*units.Ether, balance)

	supply, err := l.TotalSupply()
	require.NoError(err)
	require.Equal(5*units.Ether, supply)

	// Only the gate owner can mint.
	err = l.Mint(testInvestor, testInvestor, units.Ether)
	require.ErrorIs(err, authority.ErrUnauthorized)
}

func TestMintCap(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, l.Cap()))

	err := l.Mint(testOwner, testInvestor, 1)
	require.ErrorIs(err, ErrCapExceeded)

	// Burning frees room under the cap again.
	unlock(t, l, clk)
	require.NoError(l.Burn(testInvestor, units.Ether))
	require.NoError(l.Mint(testOwner, testInvestor, units.Ether))
}

func TestFinishMinting(t *testing.T) {
	require := require.New(t)
	l, _ := newTestLedger(t)

	require.NoError(l.FinishMinting(testOwner))

	err := l.Mint(testOwner, testInvestor, units.Ether)
	require.ErrorIs(err, ErrMintingFinished)

	err = l.FinishMinting(testOwner)
	require.ErrorIs(err, ErrMintingFinished)
}

func TestMintPartnerSeparation(t *testing.T) {
	require := require.New(t)
	l, _ := newTestLedger(t)

	require.NoError(l.AddPartner(testOwner, testPartner))

	// Mint refuses partners, Grant refuses ordinary accounts.
	err := l.Mint(testOwner, testPartner, units.Ether)
	require.ErrorIs(err, ErrPartnerTarget)

	err = l.Grant(testOwner, testInvestor, units.Ether)
	require.ErrorIs(err, ErrNotPartner)

	require.NoError(l.Grant(testOwner, testPartner, units.Ether))
}

func TestAddPartnerNonzeroBalance(t *testing.T) {
	require := require.New(t)
	l, _ := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, units.Ether))

	err := l.AddPartner(testOwner, testInvestor)
	require.ErrorIs(err, ErrNonzeroBalance)

	require.NoError(l.AddPartner(testOwner, testPartner))
	require.NoError(l.Grant(testOwner, testPartner, units.Ether))

	err = l.RemovePartner(testOwner, testPartner)
	require.ErrorIs(err, ErrNonzeroBalance)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 10*units.Ether))
	unlock(t, l, clk)

	require.NoError(l.Transfer(testInvestor, testSpender, 4*units.Ether))

	fromBalance, err := l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Equal(6*units.Ether, fromBalance)

	toBalance, err := l.BalanceOf(testSpender)
	require.NoError(err)
	require.Equal(4*units.Ether, toBalance)

	err = l.Transfer(testInvestor, testSpender, 7*units.Ether)
	require.ErrorIs(err, ErrInsufficientBalance)

	err = l.Transfer(testInvestor, ids.ShortEmpty, units.Ether)
	require.ErrorIs(err, ErrEmptyAddress)

	err = l.Transfer(testInvestor, testSpender, 0)
	require.ErrorIs(err, ErrZeroAmount)
}

func TestTransferToSelf(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 10*units.Ether))
	unlock(t, l, clk)

	require.NoError(l.Transfer(testInvestor, testInvestor, 3*units.Ether))

	balance, err := l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Equal(10*units.Ether, balance)
}

func TestTimelockClasses(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.AddPartner(testOwner, testPartner))
	require.NoError(l.Mint(testOwner, testInvestor, units.Ether))
	require.NoError(l.Grant(testOwner, testPartner, units.Ether))

	// Before the public release nobody transfers.
	err := l.Transfer(testInvestor, testSpender, 1)
	require.ErrorIs(err, ErrTimelocked)
	err = l.Transfer(testPartner, testSpender, 1)
	require.ErrorIs(err, ErrTimelocked)

	// After the public release only ordinary accounts transfer.
	public, err := l.PublicRelease()
	require.NoError(err)
	clk.Set(public)

	require.NoError(l.Transfer(testInvestor, testSpender, 1))
	err = l.Transfer(testPartner, testSpender, 1)
	require.ErrorIs(err, ErrTimelocked)

	// After the partners release everyone transfers.
	partners, err := l.PartnersRelease()
	require.NoError(err)
	clk.Set(partners)

	require.NoError(l.Transfer(testPartner, testSpender, 1))
}

func TestTransferFrom(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 10*units.Ether))
	unlock(t, l, clk)

	require.NoError(l.Approve(testInvestor, testSpender, 5*units.Ether))

	allowance, err := l.Allowance(testInvestor, testSpender)
	require.NoError(err)
	require.Equal(5*units.Ether, allowance)

	require.NoError(l.TransferFrom(testSpender, testInvestor, testSpender, 3*units.Ether))

	allowance, err = l.Allowance(testInvestor, testSpender)
	require.NoError(err)
	require.Equal(2*units.Ether, allowance)

	err = l.TransferFrom(testSpender, testInvestor, testSpender, 3*units.Ether)
	require.ErrorIs(err, ErrInsufficientAllowance)
}

func TestTransferFromTimelockFollowsOwner(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.AddPartner(testOwner, testPartner))
	require.NoError(l.Grant(testOwner, testPartner, units.Ether))
	require.NoError(l.Approve(testPartner, testSpender, units.Ether))

	// The spender being unlocked does not matter; the source account's
	// timelock class decides.
	public, err := l.PublicRelease()
	require.NoError(err)
	clk.Set(public)

	err = l.TransferFrom(testSpender, testPartner, testSpender, 1)
	require.ErrorIs(err, ErrTimelocked)
}

func TestApprovalAdjustments(t *testing.T) {
	require := require.New(t)
	l, _ := newTestLedger(t)

	require.NoError(l.IncreaseApproval(testInvestor, testSpender, 4))
	require.NoError(l.IncreaseApproval(testInvestor, testSpender, 3))

	allowance, err := l.Allowance(testInvestor, testSpender)
	require.NoError(err)
	require.Equal(uint64(7), allowance)

	// Decreasing past zero floors at zero.
	require.NoError(l.DecreaseApproval(testInvestor, testSpender, 100))

	allowance, err = l.Allowance(testInvestor, testSpender)
	require.NoError(err)
	require.Zero(allowance)
}

func TestBurn(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 10*units.Ether))

	// Burning is timelocked like transferring.
	err := l.Burn(testInvestor, units.Ether)
	require.ErrorIs(err, ErrTimelocked)

	unlock(t, l, clk)
	require.NoError(l.Burn(testInvestor, 4*units.Ether))

	balance, err := l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Equal(6*units.Ether, balance)

	supply, err := l.TotalSupply()
	require.NoError(err)
	require.Equal(6*units.Ether, supply)

	err = l.Burn(testInvestor, 7*units.Ether)
	require.ErrorIs(err, ErrInsufficientBalance)
}

func TestBlacklist(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 10*units.Ether))
	require.NoError(l.Mint(testOwner, testSpender, 5*units.Ether))

	require.NoError(l.Blacklist(testOwner, testInvestor))

	// The balance is destroyed and the supply shrinks by exactly that much.
	balance, err := l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Zero(balance)

	supply, err := l.TotalSupply()
	require.NoError(err)
	require.Equal(5*units.Ether, supply)

	err = l.Blacklist(testOwner, testInvestor)
	require.ErrorIs(err, ErrAlreadyBlacklisted)

	// A blacklisted account cannot send, receive, or be minted to.
	unlock(t, l, clk)
	err = l.Transfer(testSpender, testInvestor, 1)
	require.ErrorIs(err, ErrBlacklisted)
	err = l.Mint(testOwner, testInvestor, 1)
	require.ErrorIs(err, ErrBlacklisted)

	// Whitelisting restores standing but never the balance.
	require.NoError(l.Whitelist(testOwner, testInvestor))

	balance, err = l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Zero(balance)

	require.NoError(l.Transfer(testSpender, testInvestor, 1))

	err = l.Whitelist(testOwner, testInvestor)
	require.ErrorIs(err, ErrNotBlacklisted)
}

func TestFreeze(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	require.NoError(l.Mint(testOwner, testInvestor, 10*units.Ether))
	unlock(t, l, clk)

	require.NoError(l.Freeze(testOwner, testInvestor))

	err := l.Freeze(testOwner, testInvestor)
	require.ErrorIs(err, ErrAlreadyFrozen)

	err = l.Transfer(testInvestor, testSpender, 1)
	require.ErrorIs(err, ErrFrozen)
	err = l.Burn(testInvestor, 1)
	require.ErrorIs(err, ErrFrozen)
	err = l.Approve(testInvestor, testSpender, 1)
	require.ErrorIs(err, ErrFrozen)

	// Unlike blacklisting, the balance survives.
	require.NoError(l.Unfreeze(testOwner, testInvestor))

	balance, err := l.BalanceOf(testInvestor)
	require.NoError(err)
	require.Equal(10*units.Ether, balance)

	require.NoError(l.Transfer(testInvestor, testSpender, 1))

	err = l.Unfreeze(testOwner, testInvestor)
	require.ErrorIs(err, ErrNotFrozen)
}

func TestSetReleaseDates(t *testing.T) {
	require := require.New(t)
	l, clk := newTestLedger(t)

	public, err := l.PublicRelease()
	require.NoError(err)

	// Forward only, and at most MaxReleaseSlip at a time.
	err = l.SetPublicRelease(testOwner, public.Add(-time.Hour))
	require.ErrorIs(err, ErrReleaseNotForward)

	err = l.SetPublicRelease(testOwner, public.Add(MaxReleaseSlip+time.Second))
	require.ErrorIs(err, ErrReleaseTooFar)

	require.NoError(l.SetPublicRelease(testOwner, public.Add(time.Hour)))

	updated, err := l.PublicRelease()
	require.NoError(err)
	require.Equal(public.Add(time.Hour), updated)

	// The public release can never overtake the partners release.
	partners, err := l.PartnersRelease()
	require.NoError(err)
	for !updated.Add(MaxReleaseSlip).After(partners) {
		updated = updated.Add(MaxReleaseSlip)
		require.NoError(l.SetPublicRelease(testOwner, updated))
	}
	err = l.SetPublicRelease(testOwner, partners.Add(time.Hour))
	require.ErrorIs(err, ErrReleaseOrder)

	// Once a date has passed it is immutable.
	clk.Set(partners)
	err = l.SetPartnersRelease(testOwner, partners.Add(time.Hour))
	require.ErrorIs(err, ErrReleasePassed)
}

func TestReleaseOrderAtConstruction(t *testing.T) {
	require := require.New(t)

	clk := &mockable.Clock{}
	clk.Set(testStart)

	_, err := New(
		memdb.New(),
		Config{
			Cap:             units.Ether,
			PublicRelease:   testStart.Add(2 * time.Hour),
			PartnersRelease: testStart.Add(time.Hour),
		},
		testOwner,
		clk,
		log.NewNoOpLogger(),
		events.NopSink{},
	)
	require.ErrorIs(err, ErrReleaseOrder)
}

func TestEventsPublished(t *testing.T) {
	require := require.New(t)

	clk := &mockable.Clock{}
	clk.Set(testStart)
	buf := &events.Buffer{}

	l, err := New(
		memdb.New(),
		Config{
			Cap:             100 * units.Ether,
			PublicRelease:   testStart,
			PartnersRelease: testStart,
		},
		testOwner,
		clk,
		log.NewNoOpLogger(),
		buf,
	)
	require.NoError(err)

	require.NoError(l.Mint(testOwner, testInvestor, units.Ether))
	require.NoError(l.Transfer(testInvestor, testSpender, 1))
	require.NoError(l.FinishMinting(testOwner))
	require.Equal(3, buf.Len())
}
