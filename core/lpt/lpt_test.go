package lpt

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/noahlitvin/TomatoCoin/core/chain"
)

func TestControllerBinding(t *testing.T) {
	ledger := NewShareLedger("owner", nil, nil)

	t.Run("no mint before the capability is bound", func(t *testing.T) {
		err := ledger.Mint("pool", "alice", uint256.NewInt(1))
		assert.ErrorIs(t, err, chain.ErrUnauthorized)
	})

	t.Run("only the owner may bind", func(t *testing.T) {
		assert.ErrorIs(t, ledger.SetController("alice", "pool"), chain.ErrUnauthorized)
		assert.NoError(t, ledger.SetController("owner", "pool"))
		assert.Equal(t, "pool", ledger.Controller())
	})

	t.Run("binding is one-time", func(t *testing.T) {
		assert.ErrorIs(t, ledger.SetController("owner", "other"), ErrControllerBound)
	})
}

func TestMintAndBurn(t *testing.T) {
	ledger := NewShareLedger("owner", nil, nil)
	assert.NoError(t, ledger.SetController("owner", "pool"))

	assert.NoError(t, ledger.Mint("pool", "alice", uint256.NewInt(100)))
	assert.NoError(t, ledger.Mint("pool", "bob", uint256.NewInt(50)))
	assert.Equal(t, uint64(150), ledger.TotalShares().Uint64())

	t.Run("non-controller may not mint or burn", func(t *testing.T) {
		assert.ErrorIs(t, ledger.Mint("alice", "alice", uint256.NewInt(1)), chain.ErrUnauthorized)
		assert.ErrorIs(t, ledger.Burn("alice", "alice", uint256.NewInt(1)), chain.ErrUnauthorized)
	})

	t.Run("burn more than held fails", func(t *testing.T) {
		err := ledger.Burn("pool", "bob", uint256.NewInt(51))
		assert.ErrorIs(t, err, ErrInsufficientShares)
		assert.Equal(t, uint64(50), ledger.SharesOf("bob").Uint64())
	})

	t.Run("burn keeps the share sum equal to the total", func(t *testing.T) {
		assert.NoError(t, ledger.Burn("pool", "alice", uint256.NewInt(100)))
		assert.True(t, ledger.SharesOf("alice").IsZero())
		assert.Equal(t, uint64(50), ledger.TotalShares().Uint64())

		sum := new(uint256.Int)
		for _, b := range ledger.AllShares() {
			var err error
			sum, err = chain.Add(sum, b)
			assert.NoError(t, err)
		}
		assert.Equal(t, ledger.TotalShares().Dec(), sum.Dec())
	})

	t.Run("zero amounts are rejected", func(t *testing.T) {
		assert.ErrorIs(t, ledger.Mint("pool", "alice", new(uint256.Int)), chain.ErrZeroAmount)
		assert.ErrorIs(t, ledger.Burn("pool", "bob", nil), chain.ErrZeroAmount)
	})
}
