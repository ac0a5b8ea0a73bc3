package sale

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

// Redeem converts the caller's full recorded contribution into freshly
// minted tokens at the fixed redemption ratio. Only available once the
// open phase has been reached, and only once per contribution.
func (c *Controller) Redeem(caller string) error {
	if !chain.ValidAccount(caller) {
		return chain.ErrInvalidAccount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseOpen {
		return fmt.Errorf("redeem by %s in phase %s: %w", caller, c.phase, ErrWrongPhase)
	}
	contribution := c.contributionLocked(caller)
	if contribution.IsZero() {
		return fmt.Errorf("redeem by %s: %w", caller, ErrNothingToRedeem)
	}

	payout, err := chain.Mul(contribution, RedemptionRatio)
	if err != nil {
		return fmt.Errorf("computing redemption: %w", err)
	}

	// Mint first; the contribution record is only cleared once the
	// tokens exist, so a cap rejection leaves it intact.
	if err := c.token.Mint(c.addr, caller, payout); err != nil {
		return fmt.Errorf("minting redemption: %w", err)
	}
	delete(c.contributions, caller)

	c.events.Emit(events.Event{
		Type:   events.EventRedemptionCompleted,
		To:     caller,
		Amount: payout.Dec(),
		Metadata: map[string]interface{}{
			"contribution": contribution.Dec(),
		},
	})
	c.log.WithFields(logrus.Fields{
		"caller": caller,
		"payout": payout.Dec(),
	}).Info("redemption completed")
	return nil
}
