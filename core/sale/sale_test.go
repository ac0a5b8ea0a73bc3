package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

const (
	owner    = "0xOwner"
	treasury = "0xTreasury"
	saleAddr = "0xSale"
	alice    = "0xAlice"
	bob      = "0xBob"
	carol    = "0xCarol"
)

func newTestSale(t *testing.T) (*Controller, *token.Ledger, *chain.NativeLedger) {
	t.Helper()

	native := chain.NewNativeLedger(nil)
	tok := token.NewLedger(owner, treasury, nil, nil)
	assert.NoError(t, tok.SetMinter(owner, saleAddr))

	c := NewController(owner, saleAddr, tok, native, nil, nil)

	for _, addr := range []string{alice, bob, carol} {
		assert.NoError(t, native.Credit(addr, chain.Units(40_000)))
	}
	return c, tok, native
}

func TestPhaseProgression(t *testing.T) {
	c, _, _ := newTestSale(t)

	t.Run("StartsInSeed", func(t *testing.T) {
		assert.Equal(t, "seed", c.CurrentPhase())
	})

	t.Run("OnlyOwnerAdvances", func(t *testing.T) {
		err := c.AdvancePhase(alice)
		assert.ErrorIs(t, err, chain.ErrUnauthorized)
		assert.Equal(t, PhaseSeed, c.Phase())
	})

	t.Run("AdvancesForward", func(t *testing.T) {
		assert.NoError(t, c.AdvancePhase(owner))
		assert.Equal(t, "general", c.CurrentPhase())
		assert.NoError(t, c.AdvancePhase(owner))
		assert.Equal(t, "open", c.CurrentPhase())
	})

	t.Run("OpenIsTerminal", func(t *testing.T) {
		err := c.AdvancePhase(owner)
		assert.ErrorIs(t, err, ErrTerminalPhase)
		assert.Equal(t, PhaseOpen, c.Phase())
	})
}

func TestPauseControls(t *testing.T) {
	c, _, _ := newTestSale(t)
	assert.NoError(t, c.AddPrivateInvestor(owner, alice))

	t.Run("OnlyOwnerPauses", func(t *testing.T) {
		assert.ErrorIs(t, c.Pause(alice), chain.ErrUnauthorized)
	})

	t.Run("PausedRejectsContributions", func(t *testing.T) {
		assert.NoError(t, c.Pause(owner))
		err := c.Contribute(alice, chain.Units(100))
		assert.ErrorIs(t, err, ErrPaused)
	})

	t.Run("DoublePauseRejected", func(t *testing.T) {
		assert.ErrorIs(t, c.Pause(owner), ErrAlreadyPaused)
	})

	t.Run("UnpauseResumes", func(t *testing.T) {
		assert.NoError(t, c.Unpause(owner))
		assert.NoError(t, c.Contribute(alice, chain.Units(100)))
		assert.ErrorIs(t, c.Unpause(owner), ErrNotPaused)
	})
}

func TestSeedPhase(t *testing.T) {
	c, _, native := newTestSale(t)

	t.Run("RequiresWhitelist", func(t *testing.T) {
		err := c.Contribute(alice, chain.Units(100))
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("OnlyOwnerWhitelists", func(t *testing.T) {
		assert.ErrorIs(t, c.AddPrivateInvestor(alice, bob), chain.ErrUnauthorized)
	})

	t.Run("WhitelistedMayContribute", func(t *testing.T) {
		assert.NoError(t, c.AddPrivateInvestor(owner, alice))
		assert.True(t, c.IsPrivateInvestor(alice))
		assert.NoError(t, c.Contribute(alice, chain.Units(1_000)))
		assert.Equal(t, chain.Units(1_000), c.ContributionOf(alice))
		assert.Equal(t, chain.Units(1_000), native.BalanceOf(saleAddr))
	})

	t.Run("AccountCapEnforced", func(t *testing.T) {
		assert.NoError(t, c.Contribute(alice, chain.Units(500)))
		err := c.Contribute(alice, chain.Units(1))
		assert.ErrorIs(t, err, ErrAccountCapExceeded)
		assert.Equal(t, chain.Units(1_500), c.ContributionOf(alice))
	})

	t.Run("PhaseCapEnforced", func(t *testing.T) {
		// Alice holds 1500 already; nine more maxed-out investors fill
		// the 15000 phase cap exactly.
		for i := 0; i < 9; i++ {
			addr := string(rune('a'+i)) + "-seed-investor"
			assert.NoError(t, native.Credit(addr, chain.Units(2_000)))
			assert.NoError(t, c.AddPrivateInvestor(owner, addr))
			assert.NoError(t, c.Contribute(addr, chain.Units(1_500)))
		}
		assert.Equal(t, chain.Units(15_000), c.TotalRaised())

		assert.NoError(t, c.AddPrivateInvestor(owner, bob))
		err := c.Contribute(bob, chain.Units(1))
		assert.ErrorIs(t, err, ErrPhaseCapExceeded)
	})
}

func TestGeneralPhase(t *testing.T) {
	c, _, _ := newTestSale(t)
	assert.NoError(t, c.AdvancePhase(owner))

	t.Run("NoWhitelistRequired", func(t *testing.T) {
		assert.NoError(t, c.Contribute(alice, chain.Units(600)))
	})

	t.Run("AccountCapEnforced", func(t *testing.T) {
		assert.NoError(t, c.Contribute(alice, chain.Units(400)))
		err := c.Contribute(alice, chain.Units(1))
		assert.ErrorIs(t, err, ErrAccountCapExceeded)
		assert.Equal(t, chain.Units(1_000), c.ContributionOf(alice))
	})
}

func TestOpenPhase(t *testing.T) {
	c, _, _ := newTestSale(t)
	assert.NoError(t, c.AdvancePhase(owner))
	assert.NoError(t, c.AdvancePhase(owner))

	t.Run("NoAccountCap", func(t *testing.T) {
		assert.NoError(t, c.Contribute(alice, chain.Units(4_000)))
		assert.NoError(t, c.Contribute(bob, chain.Units(5_000)))
	})

	t.Run("GlobalCapEnforced", func(t *testing.T) {
		err := c.Contribute(carol, chain.Units(21_001))
		assert.ErrorIs(t, err, ErrGlobalCapExceeded)

		assert.NoError(t, c.Contribute(carol, chain.Units(21_000)))
		assert.Equal(t, GlobalCap, c.TotalRaised())

		err = c.Contribute(alice, chain.Units(1))
		assert.ErrorIs(t, err, ErrGlobalCapExceeded)
	})
}

func TestRedemption(t *testing.T) {
	c, tok, _ := newTestSale(t)
	assert.NoError(t, c.AddPrivateInvestor(owner, alice))
	assert.NoError(t, c.Contribute(alice, chain.Units(100)))

	t.Run("RequiresOpenPhase", func(t *testing.T) {
		assert.ErrorIs(t, c.Redeem(alice), ErrWrongPhase)
		assert.NoError(t, c.AdvancePhase(owner))
		assert.ErrorIs(t, c.Redeem(alice), ErrWrongPhase)
		assert.NoError(t, c.AdvancePhase(owner))
	})

	t.Run("MintsAtFixedRatio", func(t *testing.T) {
		assert.NoError(t, c.Redeem(alice))
		assert.Equal(t, chain.Units(500), tok.BalanceOf(alice))
		assert.True(t, c.ContributionOf(alice).IsZero())
	})

	t.Run("SecondRedeemRejected", func(t *testing.T) {
		assert.ErrorIs(t, c.Redeem(alice), ErrNothingToRedeem)
		assert.Equal(t, chain.Units(500), tok.BalanceOf(alice))
	})

	t.Run("NonContributorRejected", func(t *testing.T) {
		assert.ErrorIs(t, c.Redeem(bob), ErrNothingToRedeem)
	})

	t.Run("ContributeThenRedeemInOpen", func(t *testing.T) {
		assert.NoError(t, c.Contribute(bob, chain.Units(40)))
		assert.NoError(t, c.Redeem(bob))
		assert.Equal(t, chain.Units(200), tok.BalanceOf(bob))
	})
}

func TestContributionMovesNative(t *testing.T) {
	c, _, native := newTestSale(t)
	assert.NoError(t, c.AddPrivateInvestor(owner, alice))

	before := native.BalanceOf(alice)
	assert.NoError(t, c.Contribute(alice, chain.Units(250)))

	after := native.BalanceOf(alice)
	spent, err := chain.Sub(before, after)
	assert.NoError(t, err)
	assert.Equal(t, chain.Units(250), spent)
	assert.Equal(t, chain.Units(250), native.BalanceOf(saleAddr))

	t.Run("ZeroRejected", func(t *testing.T) {
		assert.ErrorIs(t, c.Contribute(alice, chain.Units(0)), chain.ErrZeroAmount)
	})

	t.Run("InsufficientNativeRejected", func(t *testing.T) {
		assert.NoError(t, c.AdvancePhase(owner))
		assert.NoError(t, c.AdvancePhase(owner))
		assert.NoError(t, native.Credit("0xPoor", chain.Units(1)))
		err := c.Contribute("0xPoor", chain.Units(2))
		assert.ErrorIs(t, err, chain.ErrInsufficientBalance)
		assert.True(t, c.ContributionOf("0xPoor").IsZero())
	})
}
