// Package sale implements the phased token-sale controller. It gates
// contributions by phase, tracks per-account totals, retains the attached
// native asset, and redeems contributions into token balance once the sale
// opens.
package sale

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

type Controller struct {
	mu     sync.RWMutex
	owner  string
	addr   string // account that retains contributed native asset
	phase  Phase
	paused bool

	totalRaised   *uint256.Int
	phaseRaised   *uint256.Int // reset at every transition; only Seed's rule reads it
	contributions map[string]*uint256.Int
	investors     map[string]bool

	token  *token.Ledger
	native *chain.NativeLedger
	events *events.Log
	log    *logrus.Entry
}

// NewController wires the sale against the token ledger it will mint on and
// the native ledger its contributions settle in. The token ledger's minter
// capability must be handed to `addr` separately at wiring time.
func NewController(owner, addr string, tok *token.Ledger, native *chain.NativeLedger, bus *events.Bus, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		owner:         owner,
		addr:          addr,
		phase:         PhaseSeed,
		totalRaised:   new(uint256.Int),
		phaseRaised:   new(uint256.Int),
		contributions: make(map[string]*uint256.Int),
		investors:     make(map[string]bool),
		token:         tok,
		native:        native,
		events:        events.NewLog("sale", bus),
		log:           logger.WithField("component", "sale"),
	}
}

func (c *Controller) Address() string {
	return c.addr
}

// Phase returns the current phase value.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// CurrentPhase returns the phase in its wire form ("seed", "general",
// "open").
func (c *Controller) CurrentPhase() string {
	return c.Phase().String()
}

func (c *Controller) TotalRaised() *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalRaised.Clone()
}

// PhaseRaised returns the amount raised in the active phase. Used when
// saving to persistence.
func (c *Controller) PhaseRaised() *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phaseRaised.Clone()
}

// ContributionOf returns the caller's unredeemed contribution balance.
func (c *Controller) ContributionOf(addr string) *uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contributionLocked(addr).Clone()
}

func (c *Controller) IsPaused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

func (c *Controller) IsPrivateInvestor(addr string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.investors[addr]
}

// Events returns everything the controller has emitted.
func (c *Controller) Events() []events.Event {
	return c.events.Events()
}

func (c *Controller) contributionLocked(addr string) *uint256.Int {
	if b, ok := c.contributions[addr]; ok {
		return b
	}
	return new(uint256.Int)
}

// Contributions returns a copy of every non-zero contribution. Used when
// saving to persistence.
func (c *Controller) Contributions() map[string]*uint256.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*uint256.Int, len(c.contributions))
	for addr, b := range c.contributions {
		if !b.IsZero() {
			out[addr] = b.Clone()
		}
	}
	return out
}

// PrivateInvestors returns the whitelist. Used when saving to persistence.
func (c *Controller) PrivateInvestors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.investors))
	for addr := range c.investors {
		out = append(out, addr)
	}
	return out
}

// RestoreState overwrites the controller's full state. Used only when
// loading from persistence.
func (c *Controller) RestoreState(phase Phase, paused bool, totalRaised, phaseRaised *uint256.Int, contributions map[string]*uint256.Int, investors []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = phase
	c.paused = paused
	c.totalRaised = totalRaised.Clone()
	c.phaseRaised = phaseRaised.Clone()
	c.contributions = make(map[string]*uint256.Int, len(contributions))
	for addr, b := range contributions {
		c.contributions[addr] = b.Clone()
	}
	c.investors = make(map[string]bool, len(investors))
	for _, addr := range investors {
		c.investors[addr] = true
	}
}
