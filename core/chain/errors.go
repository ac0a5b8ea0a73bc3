package chain

import "errors"

var (
	// ErrUnauthorized is returned when a caller lacks the role a call requires.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidAccount      = errors.New("invalid account")
	ErrZeroAmount          = errors.New("amount must be > 0")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Arithmetic failures. Every operation that could wrap fails closed
	// with one of these instead of committing a partial result.
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// ValidAccount reports whether an externally supplied account identifier is
// acceptable. Identifiers are opaque; only emptiness and absurd length are
// rejected.
func ValidAccount(addr string) bool {
	return addr != "" && len(addr) < 256
}
