package sale

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

func (c *Controller) requireOwner(caller string) error {
	if caller != c.owner {
		return fmt.Errorf("caller %s is not the sale owner: %w", caller, chain.ErrUnauthorized)
	}
	return nil
}

// AdvancePhase moves the sale forward one phase. Phases never move
// backward and the open phase is terminal. The per-phase raised counter
// resets on each transition.
func (c *Controller) AdvancePhase(caller string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if c.phase == PhaseOpen {
		return ErrTerminalPhase
	}

	previous := c.phase
	c.phase++
	c.phaseRaised = new(uint256.Int)

	c.events.Emit(events.Event{
		Type: events.EventPhaseAdvanced,
		Metadata: map[string]interface{}{
			"from": previous.String(),
			"to":   c.phase.String(),
		},
	})
	c.log.WithFields(logrus.Fields{
		"from": previous.String(),
		"to":   c.phase.String(),
	}).Info("phase advanced")
	return nil
}

// AddPrivateInvestor whitelists an account for seed phase participation.
// Adding an account twice is a no-op.
func (c *Controller) AddPrivateInvestor(caller, investor string) error {
	if !chain.ValidAccount(investor) {
		return chain.ErrInvalidAccount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if c.investors[investor] {
		return nil
	}
	c.investors[investor] = true

	c.events.Emit(events.Event{
		Type: events.EventInvestorAdded,
		To:   investor,
	})
	c.log.WithField("investor", investor).Info("private investor added")
	return nil
}

// Pause suspends contributions. Redemption and views stay available.
func (c *Controller) Pause(caller string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if c.paused {
		return ErrAlreadyPaused
	}
	c.paused = true

	c.events.Emit(events.Event{Type: events.EventSalePaused})
	c.log.Info("sale paused")
	return nil
}

// Unpause resumes contributions.
func (c *Controller) Unpause(caller string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if !c.paused {
		return ErrNotPaused
	}
	c.paused = false

	c.events.Emit(events.Event{Type: events.EventSaleUnpaused})
	c.log.Info("sale unpaused")
	return nil
}
