package chain

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestNativeLedgerTransfer(t *testing.T) {
	ledger := NewNativeLedger(nil)
	assert.NoError(t, ledger.Credit("alice", Units(10)))

	t.Run("moves balance between accounts", func(t *testing.T) {
		err := ledger.Transfer("alice", "bob", Units(3))
		assert.NoError(t, err)
		assert.Equal(t, Units(7).Dec(), ledger.BalanceOf("alice").Dec())
		assert.Equal(t, Units(3).Dec(), ledger.BalanceOf("bob").Dec())
	})

	t.Run("rejects insufficient balance without partial effects", func(t *testing.T) {
		err := ledger.Transfer("bob", "alice", Units(4))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, Units(3).Dec(), ledger.BalanceOf("bob").Dec())
		assert.Equal(t, Units(7).Dec(), ledger.BalanceOf("alice").Dec())
	})

	t.Run("zero-value transfer is a no-op", func(t *testing.T) {
		err := ledger.Transfer("bob", "alice", new(uint256.Int))
		assert.NoError(t, err)
		assert.Equal(t, Units(3).Dec(), ledger.BalanceOf("bob").Dec())
	})

	t.Run("rejects invalid accounts", func(t *testing.T) {
		assert.ErrorIs(t, ledger.Transfer("", "bob", Units(1)), ErrInvalidAccount)
		assert.ErrorIs(t, ledger.Credit("", Units(1)), ErrInvalidAccount)
	})

	t.Run("unknown accounts hold zero", func(t *testing.T) {
		assert.True(t, ledger.BalanceOf("nobody").IsZero())
	})
}

func TestNativeLedgerPersistenceHooks(t *testing.T) {
	ledger := NewNativeLedger(nil)
	assert.NoError(t, ledger.Credit("alice", Units(5)))

	snapshot := ledger.AllBalances()
	restored := NewNativeLedger(nil)
	for addr, balance := range snapshot {
		restored.SetBalance(addr, balance)
	}
	assert.Equal(t, Units(5).Dec(), restored.BalanceOf("alice").Dec())
}
