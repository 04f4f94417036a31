package main

import (
	"cosmossdk.io/math"

	"invariant/internal/clmm"
	"invariant/internal/engine"
	"invariant/internal/numeric"
)

// Request is one newline-delimited JSON command read by "serve". Op
// selects which engine method runs; the remaining fields are interpreted
// according to Op, matching spec.md 6's command table — amounts cross the
// JSON boundary as decimal strings via cosmossdk.io/math.Int, the same
// boundary type the teacher uses for on-chain amounts (cmd/quote).
type Request struct {
	Op string `json:"op"`

	Actor     string `json:"actor,omitempty"`
	Recipient string `json:"recipient,omitempty"`

	FeePercent  uint64 `json:"fee_percent,omitempty"` // scale-12 numerator
	TickSpacing uint16 `json:"tick_spacing,omitempty"`

	Index uint32 `json:"index,omitempty"`

	LowerTick int32  `json:"lower_tick,omitempty"`
	UpperTick int32  `json:"upper_tick,omitempty"`
	Liquidity string `json:"liquidity,omitempty"`

	XToY       bool   `json:"x_to_y,omitempty"`
	ByAmountIn bool   `json:"by_amount_in,omitempty"`
	Amount     string `json:"amount,omitempty"`

	NewFee string `json:"new_fee,omitempty"` // scale-12 numerator, for change_protocol_fee
}

// Response is the JSON line written back for each Request.
type Response struct {
	OK                bool   `json:"ok"`
	Error             string `json:"error,omitempty"`
	Index             uint32 `json:"index,omitempty"`
	AmountIn          string `json:"amount_in,omitempty"`
	AmountOut         string `json:"amount_out,omitempty"`
	Fee               string `json:"fee,omitempty"`
	TerminationReason string `json:"termination_reason,omitempty"`
}

func errResponse(err error) Response { return Response{OK: false, Error: err.Error()} }

func terminationString(r engine.TerminationReason) string {
	switch r {
	case engine.TerminationFilled:
		return "filled"
	case engine.TerminationMaxSwapStepsReached:
		return "max_swap_steps_reached"
	case engine.TerminationStateOutdated:
		return "state_outdated"
	case engine.TerminationGlobalInsufficientLiquidity:
		return "global_insufficient_liquidity"
	default:
		return "unknown"
	}
}

func swapResponse(result engine.CalculateSwapResult) Response {
	return Response{
		OK:                true,
		AmountIn:          result.AmountIn.Get().String(),
		AmountOut:         result.AmountOut.Get().String(),
		Fee:               result.Fee.Get().String(),
		TerminationReason: terminationString(result.TerminationReason),
	}
}

// amountFromString parses a decimal string into a TokenAmount via
// cosmossdk.io/math.Int, the same JSON-boundary conversion SPEC_FULL §6
// wires for request/response amounts.
func amountFromString(s string) (numeric.TokenAmount, error) {
	n, ok := math.NewIntFromString(s)
	if !ok {
		return numeric.TokenAmount{}, errInvalidAmount(s)
	}
	return numeric.TokenAmountFromCosmosInt(n), nil
}

func errInvalidAmount(s string) error {
	return &invalidAmountError{s: s}
}

type invalidAmountError struct{ s string }

func (e *invalidAmountError) Error() string { return "invariant-cli: invalid amount " + e.s }

// actorOrAdmin resolves an optional base58 actor field, defaulting to the
// session's seeded admin actor when empty — the CLI has no real wallets,
// so every command not explicitly naming an actor acts as the admin.
func actorOrAdmin(s string) (clmm.ActorID, error) {
	if s == "" {
		return adminActor, nil
	}
	return clmm.ActorIDFromBase58(s)
}
