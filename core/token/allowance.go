package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

// Approve sets the spender's allowance over the owner's balance, replacing
// any prior approval.
func (l *Ledger) Approve(owner, spender string, amount *uint256.Int) error {
	if !chain.ValidAccount(owner) || !chain.ValidAccount(spender) {
		return chain.ErrInvalidAccount
	}
	if owner == spender {
		return fmt.Errorf("approve to self: %w", chain.ErrInvalidAccount)
	}
	if amount == nil {
		amount = new(uint256.Int)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]*uint256.Int)
	}
	previous := l.allowanceLocked(owner, spender)
	l.allowances[owner][spender] = amount.Clone()

	l.events.Emit(events.Event{
		Type:   events.EventApproval,
		From:   owner,
		To:     spender,
		Amount: amount.Dec(),
		Metadata: map[string]interface{}{
			"previous": previous.Dec(),
		},
	})
	l.log.WithFields(logrus.Fields{
		"owner":   owner,
		"spender": spender,
		"amount":  amount.Dec(),
	}).Info("approval successful")
	return nil
}

// Allowance returns how much the spender may still pull from the owner.
func (l *Ledger) Allowance(owner, spender string) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowanceLocked(owner, spender).Clone()
}

func (l *Ledger) allowanceLocked(owner, spender string) *uint256.Int {
	if inner, ok := l.allowances[owner]; ok {
		if a, ok := inner[spender]; ok {
			return a
		}
	}
	return new(uint256.Int)
}

// TransferFrom spends the caller's allowance to move the owner's tokens to
// `to`. The allowance is decremented by the requested amount; tax, if
// enabled, is applied to the transferred amount exactly as in Transfer.
func (l *Ledger) TransferFrom(owner, spender, to string, amount *uint256.Int) error {
	if !chain.ValidAccount(owner) || !chain.ValidAccount(spender) || !chain.ValidAccount(to) {
		return chain.ErrInvalidAccount
	}
	if owner == to {
		return fmt.Errorf("transfer to self: %w", chain.ErrInvalidAccount)
	}
	if amount == nil || amount.IsZero() {
		return chain.ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowanceLocked(owner, spender)
	if allowance.Lt(amount) {
		l.log.WithFields(logrus.Fields{
			"owner":     owner,
			"spender":   spender,
			"allowance": allowance.Dec(),
			"requested": amount.Dec(),
		}).Warn("transferFrom rejected")
		return fmt.Errorf("transferFrom by %s: %w", spender, ErrAllowanceExceeded)
	}

	if err := l.moveLocked(owner, to, amount); err != nil {
		return err
	}
	l.allowances[owner][spender] = new(uint256.Int).Sub(allowance, amount)
	return nil
}
