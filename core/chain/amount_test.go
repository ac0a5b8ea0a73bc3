package chain

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestUnits(t *testing.T) {
	assert.Equal(t, "1000000000000000000", Units(1).Dec())
	assert.Equal(t, "500000000000000000000000", Units(500000).Dec())
}

func TestOverflowCheckedArithmetic(t *testing.T) {
	maxUint256 := new(uint256.Int).SetAllOne()

	t.Run("Add overflow fails closed", func(t *testing.T) {
		_, err := Add(maxUint256, uint256.NewInt(1))
		assert.ErrorIs(t, err, ErrOverflow)

		sum, err := Add(uint256.NewInt(2), uint256.NewInt(3))
		assert.NoError(t, err)
		assert.Equal(t, uint64(5), sum.Uint64())
	})

	t.Run("Sub underflow fails closed", func(t *testing.T) {
		_, err := Sub(uint256.NewInt(1), uint256.NewInt(2))
		assert.ErrorIs(t, err, ErrUnderflow)

		diff, err := Sub(uint256.NewInt(5), uint256.NewInt(2))
		assert.NoError(t, err)
		assert.Equal(t, uint64(3), diff.Uint64())
	})

	t.Run("Mul overflow fails closed", func(t *testing.T) {
		_, err := Mul(maxUint256, uint256.NewInt(2))
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("inputs are never mutated", func(t *testing.T) {
		x := uint256.NewInt(10)
		y := uint256.NewInt(3)
		_, err := Add(x, y)
		assert.NoError(t, err)
		_, err = Mul(x, y)
		assert.NoError(t, err)
		assert.Equal(t, uint64(10), x.Uint64())
		assert.Equal(t, uint64(3), y.Uint64())
	})
}

func TestMulDiv(t *testing.T) {
	t.Run("truncates toward zero", func(t *testing.T) {
		q, err := MulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
		assert.NoError(t, err)
		assert.Equal(t, uint64(10), q.Uint64()) // 21/2 = 10.5
	})

	t.Run("ceiling rounds up on remainder only", func(t *testing.T) {
		q, err := MulDivCeil(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
		assert.NoError(t, err)
		assert.Equal(t, uint64(11), q.Uint64())

		q, err = MulDivCeil(uint256.NewInt(4), uint256.NewInt(3), uint256.NewInt(2))
		assert.NoError(t, err)
		assert.Equal(t, uint64(6), q.Uint64())
	})

	t.Run("division by zero fails closed", func(t *testing.T) {
		_, err := MulDiv(uint256.NewInt(1), uint256.NewInt(1), new(uint256.Int))
		assert.ErrorIs(t, err, ErrDivisionByZero)
		_, err = MulDivCeil(uint256.NewInt(1), uint256.NewInt(1), new(uint256.Int))
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})
}

func TestApplyBps(t *testing.T) {
	// 2% of 100 units
	tax, err := ApplyBps(Units(100), 200)
	assert.NoError(t, err)
	assert.Equal(t, Units(2).Dec(), tax.Dec())

	// 1% fee on 0.5 units
	fee, err := ApplyBps(uint256.MustFromDecimal("500000000000000000"), 100)
	assert.NoError(t, err)
	assert.Equal(t, "5000000000000000", fee.Dec())
}
