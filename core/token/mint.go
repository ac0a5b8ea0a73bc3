package token

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

// Mint creates new tokens for `to`. Only the account holding the minter
// capability may call it, and total supply can never pass SupplyCap.
func (l *Ledger) Mint(caller, to string, amount *uint256.Int) error {
	if !chain.ValidAccount(caller) || !chain.ValidAccount(to) {
		return chain.ErrInvalidAccount
	}
	if amount == nil || amount.IsZero() {
		return chain.ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.minter {
		l.log.WithFields(logrus.Fields{
			"caller": caller,
			"minter": l.minter,
		}).Warn("mint rejected")
		return fmt.Errorf("mint by %s: %w", caller, chain.ErrUnauthorized)
	}

	newSupply, err := chain.Add(l.totalSupply, amount)
	if err != nil {
		return fmt.Errorf("minting %s: %w", amount.Dec(), err)
	}
	if newSupply.Gt(SupplyCap) {
		l.log.WithFields(logrus.Fields{
			"supply":    l.totalSupply.Dec(),
			"requested": amount.Dec(),
			"cap":       SupplyCap.Dec(),
		}).Warn("mint rejected")
		return fmt.Errorf("minting %s: %w", amount.Dec(), ErrCapExceeded)
	}
	newBalance, err := chain.Add(l.balanceLocked(to), amount)
	if err != nil {
		return fmt.Errorf("minting to %s: %w", to, err)
	}

	l.balances[to] = newBalance
	l.totalSupply = newSupply

	l.events.Emit(events.Event{
		Type:   events.EventMint,
		To:     to,
		Amount: amount.Dec(),
		Metadata: map[string]interface{}{
			"new_balance":  newBalance.Dec(),
			"total_supply": newSupply.Dec(),
		},
	})
	l.log.WithFields(logrus.Fields{
		"to":           to,
		"amount":       amount.Dec(),
		"total_supply": newSupply.Dec(),
	}).Info("mint successful")
	return nil
}
