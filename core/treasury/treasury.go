// Package treasury models the passive account that accumulates the reserved
// token allocation and all tax proceeds. It has no mutating operations; the
// ledgers credit it directly.
package treasury

import (
	"github.com/holiman/uint256"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

type Treasury struct {
	addr   string
	token  *token.Ledger
	native *chain.NativeLedger
}

func New(addr string) *Treasury {
	return &Treasury{addr: addr}
}

// Bind attaches the ledgers the treasury reads from. Wiring-time only; the
// token ledger needs the treasury address before the treasury can see it.
func (t *Treasury) Bind(tok *token.Ledger, native *chain.NativeLedger) {
	t.token = tok
	t.native = native
}

func (t *Treasury) Address() string {
	return t.addr
}

func (t *Treasury) TokenBalance() *uint256.Int {
	if t.token == nil {
		return new(uint256.Int)
	}
	return t.token.BalanceOf(t.addr)
}

func (t *Treasury) NativeBalance() *uint256.Int {
	if t.native == nil {
		return new(uint256.Int)
	}
	return t.native.BalanceOf(t.addr)
}
