package sale

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

// Contribute records the native amount attached to the call against the
// caller, subject to the active phase's rules and the global cap. The
// attached value moves into the sale account and stays there.
func (c *Controller) Contribute(caller string, amount *uint256.Int) error {
	if !chain.ValidAccount(caller) {
		return chain.ErrInvalidAccount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return ErrPaused
	}
	if amount == nil || amount.IsZero() {
		return chain.ErrZeroAmount
	}

	rules := rulesByPhase[c.phase]
	if rules.requireWhitelist && !c.investors[caller] {
		c.log.WithFields(logrus.Fields{
			"caller": caller,
			"phase":  c.phase.String(),
		}).Warn("contribution rejected")
		return fmt.Errorf("contribution by %s: %w", caller, ErrNotEligible)
	}

	newContribution, err := chain.Add(c.contributionLocked(caller), amount)
	if err != nil {
		return fmt.Errorf("recording contribution: %w", err)
	}
	if rules.accountCap != nil && newContribution.Gt(rules.accountCap) {
		return fmt.Errorf("contribution by %s: %w", caller, ErrAccountCapExceeded)
	}

	newPhaseRaised, err := chain.Add(c.phaseRaised, amount)
	if err != nil {
		return fmt.Errorf("recording contribution: %w", err)
	}
	if rules.phaseCap != nil && newPhaseRaised.Gt(rules.phaseCap) {
		return fmt.Errorf("contribution by %s: %w", caller, ErrPhaseCapExceeded)
	}

	newTotal, err := chain.Add(c.totalRaised, amount)
	if err != nil {
		return fmt.Errorf("recording contribution: %w", err)
	}
	if newTotal.Gt(GlobalCap) {
		return fmt.Errorf("contribution by %s: %w", caller, ErrGlobalCapExceeded)
	}

	// Retain the attached native asset. This is the only fallible effect;
	// nothing has been recorded yet if it rejects.
	if err := c.native.Transfer(caller, c.addr, amount); err != nil {
		return fmt.Errorf("retaining contribution: %w", err)
	}

	c.contributions[caller] = newContribution
	c.phaseRaised = newPhaseRaised
	c.totalRaised = newTotal

	c.events.Emit(events.Event{
		Type:   events.EventContributionRecorded,
		From:   caller,
		Amount: amount.Dec(),
		Metadata: map[string]interface{}{
			"phase":        c.phase.String(),
			"total_raised": newTotal.Dec(),
		},
	})
	c.log.WithFields(logrus.Fields{
		"caller":       caller,
		"amount":       amount.Dec(),
		"phase":        c.phase.String(),
		"total_raised": newTotal.Dec(),
	}).Info("contribution recorded")
	return nil
}
