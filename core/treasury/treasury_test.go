package treasury

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

func TestTreasuryViews(t *testing.T) {
	native := chain.NewNativeLedger(nil)
	vault := New("treasury")
	ledger := token.NewLedger("owner", vault.Address(), nil, nil)
	vault.Bind(ledger, native)

	// Reserved allocation is already there at creation.
	assert.Equal(t, chain.Units(50_000).Dec(), vault.TokenBalance().Dec())
	assert.True(t, vault.NativeBalance().IsZero())

	// Tax proceeds accumulate passively.
	assert.NoError(t, ledger.Mint("owner", "alice", chain.Units(100)))
	assert.NoError(t, ledger.EnableTax("owner"))
	assert.NoError(t, ledger.Transfer("alice", "bob", chain.Units(100)))

	expected, err := chain.Add(chain.Units(50_000), chain.Units(2))
	assert.NoError(t, err)
	assert.Equal(t, expected.Dec(), vault.TokenBalance().Dec())
}

func TestUnboundTreasuryReadsZero(t *testing.T) {
	vault := New("treasury")
	assert.True(t, vault.TokenBalance().IsZero())
	assert.True(t, vault.NativeBalance().IsZero())
}
