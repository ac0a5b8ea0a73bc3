package token

import "errors"

var (
	// ErrCapExceeded rejects a mint that would push total supply past
	// SupplyCap.
	ErrCapExceeded = errors.New("mint would exceed supply cap")

	// ErrAllowanceExceeded rejects a TransferFrom for more than the spender
	// was approved.
	ErrAllowanceExceeded = errors.New("allowance exceeded")
)
