package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

// Transfer moves tokens from the caller to `to`. While tax is enabled, the
// tax share is skimmed out of the transferred amount and credited to the
// treasury; the sender is debited the full amount either way.
func (l *Ledger) Transfer(from, to string, amount *uint256.Int) error {
	if !chain.ValidAccount(from) || !chain.ValidAccount(to) {
		return chain.ErrInvalidAccount
	}
	if from == to {
		return fmt.Errorf("transfer to self: %w", chain.ErrInvalidAccount)
	}
	if amount == nil || amount.IsZero() {
		return chain.ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveLocked(from, to, amount)
}

// moveLocked debits `from` and credits `to` (and the treasury when tax is
// on). Callers hold the write lock and have validated the accounts.
func (l *Ledger) moveLocked(from, to string, amount *uint256.Int) error {
	fromBalance := l.balanceLocked(from)
	if fromBalance.Lt(amount) {
		l.log.WithFields(logrus.Fields{
			"from":      from,
			"balance":   fromBalance.Dec(),
			"requested": amount.Dec(),
		}).Warn("transfer rejected")
		return fmt.Errorf("transfer from %s: %w", from, chain.ErrInsufficientBalance)
	}

	tax := new(uint256.Int)
	// A transfer into the treasury already lands the full amount there, so
	// skimming it would be a bookkeeping no-op.
	if l.taxEnabled && to != l.treasury {
		var err error
		tax, err = chain.ApplyBps(amount, TaxRateBps)
		if err != nil {
			return fmt.Errorf("computing tax: %w", err)
		}
	}
	net := new(uint256.Int).Sub(amount, tax) // tax ≤ amount by construction

	newToBalance, err := chain.Add(l.balanceLocked(to), net)
	if err != nil {
		return fmt.Errorf("transfer to %s: %w", to, err)
	}
	var newTreasuryBalance *uint256.Int
	if !tax.IsZero() {
		newTreasuryBalance, err = chain.Add(l.balanceLocked(l.treasury), tax)
		if err != nil {
			return fmt.Errorf("crediting treasury: %w", err)
		}
	}

	l.balances[from] = new(uint256.Int).Sub(fromBalance, amount)
	l.balances[to] = newToBalance
	if newTreasuryBalance != nil {
		l.balances[l.treasury] = newTreasuryBalance
	}

	l.events.Emit(events.Event{
		Type:   events.EventTransfer,
		From:   from,
		To:     to,
		Amount: amount.Dec(),
		Metadata: map[string]interface{}{
			"net": net.Dec(),
			"tax": tax.Dec(),
		},
	})
	if !tax.IsZero() {
		l.events.Emit(events.Event{
			Type:   events.EventTaxCollected,
			From:   from,
			To:     l.treasury,
			Amount: tax.Dec(),
		})
	}
	l.log.WithFields(logrus.Fields{
		"from":   from,
		"to":     to,
		"amount": amount.Dec(),
		"tax":    tax.Dec(),
	}).Info("transfer successful")
	return nil
}
