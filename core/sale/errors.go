package sale

import "errors"

var (
	ErrPaused             = errors.New("sale is paused")
	ErrAlreadyPaused      = errors.New("sale is already paused")
	ErrNotPaused          = errors.New("sale is not paused")
	ErrNotEligible        = errors.New("caller is not a private investor")
	ErrAccountCapExceeded = errors.New("contribution would exceed the per-account cap")
	ErrPhaseCapExceeded   = errors.New("contribution would exceed the phase cap")
	ErrGlobalCapExceeded  = errors.New("contribution would exceed the global cap")
	ErrWrongPhase         = errors.New("redemption requires the open phase")
	ErrTerminalPhase      = errors.New("sale is already in its terminal phase")
	ErrNothingToRedeem    = errors.New("nothing to redeem")
)
