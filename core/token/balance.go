package token

import (
	"github.com/holiman/uint256"
)

func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply.Clone()
}

func (l *Ledger) BalanceOf(addr string) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(addr).Clone()
}

func (l *Ledger) Minter() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minter
}

func (l *Ledger) Owner() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owner
}

func (l *Ledger) TaxEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.taxEnabled
}

// AllBalances returns a copy of every non-zero balance. Used when saving to
// persistence.
func (l *Ledger) AllBalances() map[string]*uint256.Int {
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

// RestoreState overwrites the ledger's balances, supply, and flags. Used
// only when loading from persistence.
func (l *Ledger) RestoreState(balances map[string]*uint256.Int, totalSupply *uint256.Int, minter string, taxEnabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = make(map[string]*uint256.Int, len(balances))
	for addr, b := range balances {
		l.balances[addr] = b.Clone()
	}
	l.totalSupply = totalSupply.Clone()
	l.minter = minter
	l.taxEnabled = taxEnabled
}
