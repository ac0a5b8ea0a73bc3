// Package lpt implements the liquidity-share ledger: a mint/burn-only
// fungible ledger whose supply is controlled exclusively by the liquidity
// pool once the controller capability is bound.
package lpt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

var (
	// ErrControllerBound rejects a second controller grant; the capability
	// is settable exactly once, at wiring time.
	ErrControllerBound = errors.New("controller already bound")

	ErrInsufficientShares = errors.New("insufficient shares")
)

type ShareLedger struct {
	mu          sync.RWMutex
	owner       string
	controller  string // empty until bound
	totalShares *uint256.Int
	shares      map[string]*uint256.Int
	events      *events.Log
	log         *logrus.Entry
}

func NewShareLedger(owner string, bus *events.Bus, logger *logrus.Logger) *ShareLedger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ShareLedger{
		owner:       owner,
		totalShares: new(uint256.Int),
		shares:      make(map[string]*uint256.Int),
		events:      events.NewLog("lpt", bus),
		log:         logger.WithField("component", "lpt"),
	}
}

// SetController grants the mint/burn capability to the pool. Owner-only and
// one-time: the grant models the original ownership handoff at deployment.
func (s *ShareLedger) SetController(caller, controller string) error {
	if !chain.ValidAccount(controller) {
		return chain.ErrInvalidAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return fmt.Errorf("set controller by %s: %w", caller, chain.ErrUnauthorized)
	}
	if s.controller != "" {
		return ErrControllerBound
	}
	s.controller = controller
	s.log.WithField("controller", controller).Info("controller bound")
	return nil
}

func (s *ShareLedger) requireController(caller string) error {
	if s.controller == "" || caller != s.controller {
		s.log.WithFields(logrus.Fields{
			"caller":     caller,
			"controller": s.controller,
		}).Warn("controller-only call rejected")
		return fmt.Errorf("call by %s: %w", caller, chain.ErrUnauthorized)
	}
	return nil
}

// Mint issues new shares to `to`. Controller-only.
func (s *ShareLedger) Mint(caller, to string, amount *uint256.Int) error {
	if !chain.ValidAccount(to) {
		return chain.ErrInvalidAccount
	}
	if amount == nil || amount.IsZero() {
		return chain.ErrZeroAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireController(caller); err != nil {
		return err
	}

	newTotal, err := chain.Add(s.totalShares, amount)
	if err != nil {
		return fmt.Errorf("minting shares: %w", err)
	}
	newBalance, err := chain.Add(s.sharesLocked(to), amount)
	if err != nil {
		return fmt.Errorf("minting shares to %s: %w", to, err)
	}

	s.shares[to] = newBalance
	s.totalShares = newTotal

	s.events.Emit(events.Event{
		Type:   events.EventSharesMinted,
		To:     to,
		Amount: amount.Dec(),
		Metadata: map[string]interface{}{
			"total_shares": newTotal.Dec(),
		},
	})
	return nil
}

// Burn destroys shares held by `from`. Controller-only.
func (s *ShareLedger) Burn(caller, from string, amount *uint256.Int) error {
	if !chain.ValidAccount(from) {
		return chain.ErrInvalidAccount
	}
	if amount == nil || amount.IsZero() {
		return chain.ErrZeroAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireController(caller); err != nil {
		return err
	}

	held := s.sharesLocked(from)
	if held.Lt(amount) {
		return fmt.Errorf("burning %s shares of %s: %w", amount.Dec(), from, ErrInsufficientShares)
	}

	s.shares[from] = new(uint256.Int).Sub(held, amount)
	s.totalShares = new(uint256.Int).Sub(s.totalShares, amount)

	s.events.Emit(events.Event{
		Type:   events.EventSharesBurned,
		From:   from,
		Amount: amount.Dec(),
		Metadata: map[string]interface{}{
			"total_shares": s.totalShares.Dec(),
		},
	})
	return nil
}

func (s *ShareLedger) SharesOf(addr string) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sharesLocked(addr).Clone()
}

func (s *ShareLedger) TotalShares() *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalShares.Clone()
}

func (s *ShareLedger) Controller() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller
}

func (s *ShareLedger) sharesLocked(addr string) *uint256.Int {
	if b, ok := s.shares[addr]; ok {
		return b
	}
	return new(uint256.Int)
}

// AllShares returns a copy of every non-zero holding. Used when saving to
// persistence.
func (s *ShareLedger) AllShares() map[string]*uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*uint256.Int, len(s.shares))
	for addr, b := range s.shares {
		if !b.IsZero() {
			out[addr] = b.Clone()
		}
	}
	return out
}

// RestoreState overwrites holdings and the controller binding. Used only
// when loading from persistence.
func (s *ShareLedger) RestoreState(shares map[string]*uint256.Int, totalShares *uint256.Int, controller string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shares = make(map[string]*uint256.Int, len(shares))
	for addr, b := range shares {
		s.shares[addr] = b.Clone()
	}
	s.totalShares = totalShares.Clone()
	s.controller = controller
}
