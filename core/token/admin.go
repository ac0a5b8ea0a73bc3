package token

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
)

func (l *Ledger) requireOwner(caller string) error {
	if caller != l.owner {
		l.log.WithFields(logrus.Fields{
			"caller": caller,
			"owner":  l.owner,
		}).Warn("owner-only call rejected")
		return fmt.Errorf("call by %s: %w", caller, chain.ErrUnauthorized)
	}
	return nil
}

// SetMinter hands the minter capability to another account. Owner-only; the
// sale controller receives it at wiring time.
func (l *Ledger) SetMinter(caller, minter string) error {
	if !chain.ValidAccount(minter) {
		return chain.ErrInvalidAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.minter = minter
	l.log.WithField("minter", minter).Info("minter updated")
	return nil
}

// EnableTax turns on the transfer tax. Owner-only; idempotent.
func (l *Ledger) EnableTax(caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.taxEnabled = true
	l.log.Info("tax enabled")
	return nil
}

// DisableTax turns off the transfer tax. Owner-only; idempotent.
func (l *Ledger) DisableTax(caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	l.taxEnabled = false
	l.log.Info("tax disabled")
	return nil
}
