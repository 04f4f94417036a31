package engine

import "errors"

// Error taxonomy for the public command surface, per spec.md 7. Arithmetic
// and domain-math errors (overflow, InvalidTickLiquidity, ...) originate
// in internal/numeric and internal/clmm and are propagated unwrapped; this
// file covers the errors that only make sense at the engine/command layer.
var (
	ErrNotAdmin            = errors.New("engine: not admin")
	ErrNotFeeReceiver      = errors.New("engine: not fee receiver")
	ErrInvalidTickSpacing  = errors.New("engine: invalid tick spacing")
	ErrInvalidFee          = errors.New("engine: invalid fee")
	ErrFeeTierAlreadyExist = errors.New("engine: fee tier already exists")
	ErrFeeTierNotFound     = errors.New("engine: fee tier not found")
	ErrPoolAlreadyExist    = errors.New("engine: pool already exists")
	ErrPoolNotFound        = errors.New("engine: pool not found")
	ErrPositionNotFound    = errors.New("engine: position not found")
	ErrZeroLiquidity       = errors.New("engine: zero liquidity")
	ErrInvalidTickIndex    = errors.New("engine: invalid tick index")
	ErrAmountIsZero        = errors.New("engine: amount is zero")
	ErrWrongLimit          = errors.New("engine: wrong limit")
	ErrNoGainSwap          = errors.New("engine: no gain swap")
	ErrTickNotFound        = errors.New("engine: tick not found")
)
