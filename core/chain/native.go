package chain

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// NativeLedger is the balance sheet of the settlement asset that the host
// environment moves alongside calls. Components hold native balance under
// their own account identity, the same way any caller does.
type NativeLedger struct {
	mu       sync.RWMutex
	balances map[string]*uint256.Int
	log      *logrus.Entry
}

func NewNativeLedger(logger *logrus.Logger) *NativeLedger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NativeLedger{
		balances: make(map[string]*uint256.Int),
		log:      logger.WithField("component", "native"),
	}
}

// Credit creates native units out of band (genesis funding, faucets). It is
// not reachable from any ledger entry point.
func (l *NativeLedger) Credit(to string, amount *uint256.Int) error {
	if !ValidAccount(to) {
		return ErrInvalidAccount
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	newBalance, err := Add(l.balanceLocked(to), amount)
	if err != nil {
		return fmt.Errorf("crediting %s: %w", to, err)
	}
	l.balances[to] = newBalance
	return nil
}

// Transfer moves native balance between accounts. Zero-value and
// self-transfers are no-ops so that proportional payouts that floor to zero
// do not abort a call.
func (l *NativeLedger) Transfer(from, to string, amount *uint256.Int) error {
	if !ValidAccount(from) || !ValidAccount(to) {
		return ErrInvalidAccount
	}
	if amount == nil || amount.IsZero() || from == to {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance := l.balanceLocked(from)
	if fromBalance.Lt(amount) {
		l.log.WithFields(logrus.Fields{
			"from":      from,
			"balance":   fromBalance.Dec(),
			"requested": amount.Dec(),
		}).Warn("native transfer rejected")
		return fmt.Errorf("native transfer from %s: %w", from, ErrInsufficientBalance)
	}
	newToBalance, err := Add(l.balanceLocked(to), amount)
	if err != nil {
		return fmt.Errorf("native transfer to %s: %w", to, err)
	}

	l.balances[from] = new(uint256.Int).Sub(fromBalance, amount)
	l.balances[to] = newToBalance
	return nil
}

// BalanceOf returns the native balance of an account. Unknown accounts hold
// zero; first touch creates them implicitly.
func (l *NativeLedger) BalanceOf(addr string) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(addr).Clone()
}

func (l *NativeLedger) balanceLocked(addr string) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return new(uint256.Int)
}

// AllBalances returns a copy of every non-zero balance. Used when saving to
// persistence.
func (l *NativeLedger) AllBalances() map[string]*uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]*uint256.Int, len(l.balances))
	for addr, b := range l.balances {
		if !b.IsZero() {
			out[addr] = b.Clone()
		}
	}
	return out
}

// SetBalance overwrites an account balance. Used when loading from
// persistence.
func (l *NativeLedger) SetBalance(addr string, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] = amount.Clone()
}
