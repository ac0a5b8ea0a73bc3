package chain

import (
	"github.com/holiman/uint256"
)

// All ledger amounts are unsigned 256-bit integers carrying 18 implied
// decimal places, the full-precision unit of both the native asset and the
// utility token.

// BpsDenominator is the denominator for basis-point rates.
const BpsDenominator = 10000

var unitScale = uint256.MustFromDecimal("1000000000000000000")

// Units returns n whole asset units scaled to 18 decimals.
func Units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), unitScale)
}

// Add returns x+y, failing closed on overflow. Inputs are never mutated.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sub returns x-y, failing closed when y exceeds x.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	if x.Lt(y) {
		return nil, ErrUnderflow
	}
	return new(uint256.Int).Sub(x, y), nil
}

// Mul returns x*y, failing closed on overflow.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDiv returns x*y/d with the division truncated toward zero.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	p, err := Mul(x, y)
	if err != nil {
		return nil, err
	}
	return p.Div(p, d), nil
}

// MulDivCeil returns x*y/d rounded up. Used where rounding must favor the
// pool over the caller.
func MulDivCeil(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	p, err := Mul(x, y)
	if err != nil {
		return nil, err
	}
	rem := new(uint256.Int).Mod(p, d)
	q := p.Div(p, d)
	if !rem.IsZero() {
		return Add(q, uint256.NewInt(1))
	}
	return q, nil
}

// ApplyBps returns amount*bps/10000, truncated.
func ApplyBps(amount *uint256.Int, bps uint64) (*uint256.Int, error) {
	return MulDiv(amount, uint256.NewInt(bps), uint256.NewInt(BpsDenominator))
}
