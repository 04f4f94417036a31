package engine

import (
	"invariant/internal/clmm"
	"invariant/internal/numeric"
	"invariant/internal/tickmap"
)

// MaxSwapSteps bounds Quote's non-committing run of calculateSwap. Supplemented from
// original_source's SDK-side simulator, which annotates
// max_swap_steps_reached once a quote has walked this many tick regions
// without settling — dropped from the distilled swap-orchestrator
// description but present in the original API surface.
const MaxSwapSteps = 100

// TerminationReason classifies why calculateSwap's loop stopped, for callers
// that want to distinguish "fully filled" from the boundary conditions the
// original SDK simulator surfaces as informational metadata rather than
// hard errors.
type TerminationReason int

const (
	TerminationFilled TerminationReason = iota
	TerminationMaxSwapStepsReached
	TerminationStateOutdated
	TerminationGlobalInsufficientLiquidity
)

// CalculateSwapResult is the outcome of one orchestrator run: the mutated
// pool copy, the ticks that were crossed (independent copies the caller
// writes back into its own store on success), and the aggregate amounts.
type CalculateSwapResult struct {
	Pool              clmm.Pool
	StartSqrtPrice    numeric.SqrtPrice
	TargetSqrtPrice   numeric.SqrtPrice
	AmountIn          numeric.TokenAmount
	AmountOut         numeric.TokenAmount
	Fee               numeric.TokenAmount
	CrossedTicks      []*clmm.Tick
	TerminationReason TerminationReason
}

// tickLookup resolves a tick index to its stored *Tick (nil, false if the
// tickmap claims initialized but the store disagrees — StateOutdated).
type tickLookup func(index int32) (*clmm.Tick, bool)

// calculateSwap runs the state-machine loop of the swap orchestrator
// against a local copy of pool and whatever tick copies lookup hands back,
// so a run that ultimately errors (or a read-only Quote) never mutates
// anything the caller hasn't explicitly committed. Engine.Swap commits the
// result on success; Engine.Quote discards it. bounded caps the loop at
// MaxSwapSteps, annotating the stop reason instead of looping forever.
func calculateSwap(
	pool clmm.Pool,
	poolKey clmm.PoolKey,
	xToY bool,
	amount numeric.TokenAmount,
	byAmountIn bool,
	sqrtPriceLimit numeric.SqrtPrice,
	now uint64,
	protocolFee numeric.Percentage,
	tm *tickmap.Tickmap,
	lookup tickLookup,
	bounded bool,
) (CalculateSwapResult, error) {
	if amount.IsZero() {
		return CalculateSwapResult{}, ErrAmountIsZero
	}

	if xToY {
		if !pool.SqrtPrice.Gt(sqrtPriceLimit) || sqrtPriceLimit.Lt(clmm.MinSqrtPrice) {
			return CalculateSwapResult{}, ErrWrongLimit
		}
	} else {
		if !pool.SqrtPrice.Lt(sqrtPriceLimit) || sqrtPriceLimit.Gt(clmm.MaxSqrtPrice) {
			return CalculateSwapResult{}, ErrWrongLimit
		}
	}

	tickSpacing := poolKey.FeeTier.TickSpacing
	startSqrtPrice := pool.SqrtPrice
	// tick_limit is the fixed domain edge (MIN_TICK/MAX_TICK, not a
	// 256-step search window), matching calculate_swap in
	// invariant_storage.rs: the 256-tick bound only governs a single
	// GetCloserLimit lookup, not the loop's overall stop condition.
	var tickLimit int32
	if xToY {
		tickLimit = clmm.GetMinTick(tickSpacing)
	} else {
		tickLimit = clmm.GetMaxTick(tickSpacing)
	}

	remaining := amount
	totalIn := numeric.TokenAmountZero()
	totalOut := numeric.TokenAmountZero()
	totalFee := numeric.TokenAmountZero()
	var crossed []*clmm.Tick

	reason := TerminationFilled
	steps := 0
swapLoop:
	for !remaining.IsZero() {
		steps++
		if bounded && steps > MaxSwapSteps {
			reason = TerminationMaxSwapStepsReached
			break swapLoop
		}

		if pool.Liquidity.IsZero() {
			reason = TerminationGlobalInsufficientLiquidity
			break swapLoop
		}

		swapLimit, limitingTick, err := tm.GetCloserLimit(sqrtPriceLimit, xToY, pool.CurrentTickIndex, tickSpacing, poolKey)
		if err != nil {
			return CalculateSwapResult{}, err
		}

		var tick *clmm.Tick
		if limitingTick != nil && limitingTick.Initialized {
			var ok bool
			tick, ok = lookup(limitingTick.Index)
			if !ok {
				reason = TerminationStateOutdated
				break swapLoop
			}
		}

		step, err := clmm.ComputeSwapStep(pool.SqrtPrice, swapLimit, pool.Liquidity, remaining, byAmountIn, poolKey.FeeTier.Fee)
		if err != nil {
			return CalculateSwapResult{}, err
		}

		var consumed numeric.TokenAmount
		if byAmountIn {
			consumed, err = step.AmountIn.CheckedAdd(step.FeeAmount)
		} else {
			consumed = step.AmountOut
		}
		if err != nil {
			return CalculateSwapResult{}, err
		}
		if consumed.Gt(remaining) {
			remaining = numeric.TokenAmountZero()
		} else {
			remaining, err = remaining.CheckedSub(consumed)
			if err != nil {
				return CalculateSwapResult{}, err
			}
		}

		if err := pool.AddFee(step.FeeAmount, xToY, protocolFee); err != nil {
			return CalculateSwapResult{}, err
		}
		totalFee, err = totalFee.CheckedAdd(step.FeeAmount)
		if err != nil {
			return CalculateSwapResult{}, err
		}

		pool.SqrtPrice = step.NextSqrtPrice

		stepIn, err := step.AmountIn.CheckedAdd(step.FeeAmount)
		if err != nil {
			return CalculateSwapResult{}, err
		}
		totalIn, err = totalIn.CheckedAdd(stepIn)
		if err != nil {
			return CalculateSwapResult{}, err
		}
		totalOut, err = totalOut.CheckedAdd(step.AmountOut)
		if err != nil {
			return CalculateSwapResult{}, err
		}

		if pool.SqrtPrice.Eq(sqrtPriceLimit) && !remaining.IsZero() {
			return CalculateSwapResult{}, clmm.ErrPriceLimitReached
		}

		addIn, newRemaining, hasCrossed, err := pool.UpdateTick(step, tick, swapLimit, remaining, byAmountIn, xToY, now, protocolFee, poolKey.FeeTier)
		if err != nil {
			return CalculateSwapResult{}, err
		}
		remaining = newRemaining
		totalIn, err = totalIn.CheckedAdd(addIn)
		if err != nil {
			return CalculateSwapResult{}, err
		}
		if hasCrossed && tick != nil {
			crossed = append(crossed, tick)
		}

		if xToY {
			if pool.CurrentTickIndex <= tickLimit {
				return CalculateSwapResult{}, tickmap.ErrTickLimitReached
			}
		} else {
			if pool.CurrentTickIndex >= tickLimit {
				return CalculateSwapResult{}, tickmap.ErrTickLimitReached
			}
		}
	}

	if totalOut.IsZero() {
		return CalculateSwapResult{}, ErrNoGainSwap
	}

	return CalculateSwapResult{
		Pool:              pool,
		StartSqrtPrice:    startSqrtPrice,
		TargetSqrtPrice:   pool.SqrtPrice,
		AmountIn:          totalIn,
		AmountOut:         totalOut,
		Fee:               totalFee,
		CrossedTicks:      crossed,
		TerminationReason: reason,
	}, nil
}
