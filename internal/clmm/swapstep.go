package clmm

import "invariant/internal/numeric"

// SwapStepResult is the outcome of one bounded sub-swap: the reachable
// sqrt-price and the amounts it moves.
type SwapStepResult struct {
	NextSqrtPrice numeric.SqrtPrice
	AmountIn      numeric.TokenAmount
	AmountOut     numeric.TokenAmount
	FeeAmount     numeric.TokenAmount
}

// ComputeSwapStep determines how far a swap can move within a single tick
// region: from current toward target, bounded by liquidity L and the
// amount A, charging fee. Grounded on calc/math/clamm.rs::compute_swap_step
// (spec.md 4.4).
func ComputeSwapStep(
	current, target numeric.SqrtPrice,
	l numeric.Liquidity,
	amount numeric.TokenAmount,
	byAmountIn bool,
	fee numeric.Percentage,
) (SwapStepResult, error) {
	if l.IsZero() {
		return SwapStepResult{NextSqrtPrice: target}, nil
	}

	xToY := current.Gte(target)
	var next numeric.SqrtPrice
	var err error

	if byAmountIn {
		complement, err := numeric.PercentageFromInteger(1).CheckedSub(fee)
		if err != nil {
			return SwapStepResult{}, err
		}
		aPrime := amount.BigMul(complement)

		var neededIn numeric.TokenAmount
		if xToY {
			neededIn, err = GetDeltaX(target, current, l, true)
		} else {
			neededIn, err = GetDeltaY(current, target, l, true)
		}
		if err != nil {
			return SwapStepResult{}, err
		}

		if aPrime.Gte(neededIn) {
			next = target
		} else {
			next, err = GetNextSqrtPriceFromInput(current, l, aPrime, xToY)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
	} else {
		var availableOut numeric.TokenAmount
		if xToY {
			availableOut, err = GetDeltaY(target, current, l, false)
		} else {
			availableOut, err = GetDeltaX(current, target, l, false)
		}
		if err != nil {
			return SwapStepResult{}, err
		}

		if amount.Gte(availableOut) {
			next = target
		} else {
			next, err = GetNextSqrtPriceFromOutput(current, l, amount, xToY)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
	}

	// reached is true when the amount was exhausted before the price
	// target, i.e. the step did NOT fill all the way to target.
	reached := !next.Eq(target)

	// amount_in always rounds up and amount_out always rounds down against
	// [current, next] — the pool never gives away value to rounding.
	var amountIn, amountOut numeric.TokenAmount
	if xToY {
		amountIn, err = GetDeltaX(next, current, l, true)
	} else {
		amountIn, err = GetDeltaY(current, next, l, true)
	}
	if err != nil {
		return SwapStepResult{}, err
	}

	if xToY {
		amountOut, err = GetDeltaY(next, current, l, false)
	} else {
		amountOut, err = GetDeltaX(current, next, l, false)
	}
	if err != nil {
		return SwapStepResult{}, err
	}

	if !byAmountIn && amountOut.Gt(amount) {
		amountOut = amount
	}

	var feeAmount numeric.TokenAmount
	if byAmountIn && reached {
		feeAmount, err = amount.CheckedSub(amountIn)
		if err != nil {
			return SwapStepResult{}, err
		}
	} else {
		feeAmount = amountIn.BigMulUp(fee)
	}

	return SwapStepResult{
		NextSqrtPrice: next,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     feeAmount,
	}, nil
}
