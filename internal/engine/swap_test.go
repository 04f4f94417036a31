package engine

import (
	"testing"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
	"invariant/internal/token"
)

// TestSwapAgainstEmptyPoolReturnsNoGainSwap is a regression test for an
// earlier draft where the three non-Filled termination branches returned
// straight out of the orchestrator loop, skipping the mandatory
// "total_out == 0" check. A pool with no liquidity at all should still
// surface ErrNoGainSwap rather than a zero-output "success".
func TestSwapAgainstEmptyPoolReturnsNoGainSwap(t *testing.T) {
	e, transferer := newTestEngine()
	poolKey, err := setupPool(e)
	if err != nil {
		t.Fatalf("setupPool: %v", err)
	}
	if err := fundAndDeposit(e, transferer, testActorB, testTokenX, numeric.TokenAmountFromU64(1_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	_, err = e.Swap(testActorB, poolKey, true, numeric.TokenAmountFromU64(100), true, clmm.MinSqrtPrice)
	if err != ErrNoGainSwap {
		t.Fatalf("Swap against a zero-liquidity pool = %v, want ErrNoGainSwap", err)
	}

	// the failed swap must not have touched the caller's ledger balance.
	if bal := e.ledger.Balance(testActorB, testTokenX); !bal.Eq(numeric.TokenAmountFromU64(1_000)) {
		t.Fatalf("ledger balance after failed swap = %s, want unchanged 1000", bal.Get())
	}
}

func TestSwapRejectsZeroAmount(t *testing.T) {
	e, _ := newTestEngine()
	poolKey, err := setupPool(e)
	if err != nil {
		t.Fatalf("setupPool: %v", err)
	}
	_, err = e.Swap(testActorB, poolKey, true, numeric.TokenAmountZero(), true, clmm.MinSqrtPrice)
	if err != ErrAmountIsZero {
		t.Fatalf("Swap with zero amount = %v, want ErrAmountIsZero", err)
	}
}

func TestSwapRejectsWrongLimitDirection(t *testing.T) {
	e, transferer := newTestEngine()
	poolKey, err := setupPool(e)
	if err != nil {
		t.Fatalf("setupPool: %v", err)
	}
	if err := fundAndDeposit(e, transferer, testActorB, testTokenX, numeric.TokenAmountFromU64(1_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// xToY moves price down; a limit above the current price is backwards.
	_, err = e.Swap(testActorB, poolKey, true, numeric.TokenAmountFromU64(100), true, clmm.MaxSqrtPrice)
	if err != ErrWrongLimit {
		t.Fatalf("Swap with an inverted limit = %v, want ErrWrongLimit", err)
	}
}

// setupLiquidPool registers a pool with a wide position around tick 0 so a
// small swap can fill entirely within the position's range.
func setupLiquidPool(t *testing.T) (*Engine, *token.InMemory, clmm.PoolKey) {
	t.Helper()
	e, transferer := newTestEngine()
	poolKey, err := setupPool(e)
	if err != nil {
		t.Fatalf("setupPool: %v", err)
	}

	if err := fundAndDeposit(e, transferer, testActorA, testTokenX, numeric.TokenAmountFromU64(bigFund)); err != nil {
		t.Fatalf("deposit X: %v", err)
	}
	if err := fundAndDeposit(e, transferer, testActorA, testTokenY, numeric.TokenAmountFromU64(bigFund)); err != nil {
		t.Fatalf("deposit Y: %v", err)
	}

	if _, err := e.CreatePosition(testActorA, poolKey, -1_000, 1_000, numeric.LiquidityFromInteger(1_000_000),
		clmm.MinSqrtPrice, clmm.MaxSqrtPrice); err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}

	return e, transferer, poolKey
}

func TestSwapFillsAndCreditsLedger(t *testing.T) {
	e, transferer, poolKey := setupLiquidPool(t)

	swapAmount := numeric.TokenAmountFromU64(10)
	if err := fundAndDeposit(e, transferer, testActorB, testTokenX, swapAmount); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	result, err := e.Swap(testActorB, poolKey, true, swapAmount, true, clmm.MinSqrtPrice)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if result.TerminationReason != TerminationFilled {
		t.Fatalf("TerminationReason = %v, want TerminationFilled", result.TerminationReason)
	}
	if result.AmountOut.IsZero() {
		t.Fatal("swap against a liquid pool produced zero output")
	}

	if bal := e.ledger.Balance(testActorB, testTokenX); !bal.IsZero() {
		t.Fatalf("input-token ledger balance after a fully-consumed by-amount-in swap = %s, want 0", bal.Get())
	}
	if bal := e.ledger.Balance(testActorB, testTokenY); !bal.Eq(result.AmountOut) {
		t.Fatalf("output-token ledger balance = %s, want %s", bal.Get(), result.AmountOut.Get())
	}
}

// TestQuoteDoesNotMutateState exercises the copy-then-commit discipline:
// running the same Quote twice must produce identical results, which
// would not hold if the first call had mutated the live pool/tick store.
func TestQuoteDoesNotMutateState(t *testing.T) {
	e, _, poolKey := setupLiquidPool(t)

	amount := numeric.TokenAmountFromU64(10)
	first, err := e.Quote(poolKey, true, amount, true, clmm.MinSqrtPrice)
	if err != nil {
		t.Fatalf("first Quote: %v", err)
	}
	second, err := e.Quote(poolKey, true, amount, true, clmm.MinSqrtPrice)
	if err != nil {
		t.Fatalf("second Quote: %v", err)
	}

	if !first.AmountOut.Eq(second.AmountOut) {
		t.Fatalf("Quote mutated pool state: first AmountOut=%s, second=%s", first.AmountOut.Get(), second.AmountOut.Get())
	}
	if !first.TargetSqrtPrice.Eq(second.TargetSqrtPrice) {
		t.Fatal("Quote mutated pool state: TargetSqrtPrice differs between identical calls")
	}

	// the committed pool's sqrt price must still be the StartSqrtPrice
	// both quotes reported, so neither Quote wrote its result back.
	pool, ok := e.pool(poolKey)
	if !ok {
		t.Fatal("pool missing after Quote")
	}
	if !pool.SqrtPrice.Eq(first.StartSqrtPrice) {
		t.Fatal("Quote changed the committed pool's sqrt price")
	}
}

// TestSwapCrossesIntoAdjacentPositionRange mirrors the cross-both-sides
// seed scenario from spec.md §8: two adjacent positions of equal liquidity
// straddle tick -10, and a swap large enough to exhaust the first position's
// range crosses into the second, continuing to fill rather than stopping at
// the shared boundary.
func TestSwapCrossesIntoAdjacentPositionRange(t *testing.T) {
	e, transferer := newTestEngine()
	poolKey, err := setupPool(e)
	if err != nil {
		t.Fatalf("setupPool: %v", err)
	}

	if err := fundAndDeposit(e, transferer, testActorA, testTokenX, numeric.TokenAmountFromU64(bigFund)); err != nil {
		t.Fatalf("deposit X: %v", err)
	}
	if err := fundAndDeposit(e, transferer, testActorA, testTokenY, numeric.TokenAmountFromU64(bigFund)); err != nil {
		t.Fatalf("deposit Y: %v", err)
	}

	liquidity := numeric.LiquidityFromInteger(20_006_000)
	if _, err := e.CreatePosition(testActorA, poolKey, -20, -10, liquidity, clmm.MinSqrtPrice, clmm.MaxSqrtPrice); err != nil {
		t.Fatalf("CreatePosition [-20,-10]: %v", err)
	}
	if _, err := e.CreatePosition(testActorA, poolKey, -10, 10, liquidity, clmm.MinSqrtPrice, clmm.MaxSqrtPrice); err != nil {
		t.Fatalf("CreatePosition [-10,10]: %v", err)
	}

	if err := fundAndDeposit(e, transferer, testActorB, testTokenX, numeric.TokenAmountFromU64(10_068)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	result, err := e.Swap(testActorB, poolKey, true, numeric.TokenAmountFromU64(10_068), true, clmm.MinSqrtPrice)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if result.TerminationReason != TerminationFilled {
		t.Fatalf("TerminationReason = %v, want TerminationFilled", result.TerminationReason)
	}
	if result.AmountOut.IsZero() {
		t.Fatal("swap crossing into the adjacent range produced zero output")
	}

	pool, ok := e.pool(poolKey)
	if !ok {
		t.Fatal("pool missing after Swap")
	}
	if pool.CurrentTickIndex > -10 {
		t.Fatalf("CurrentTickIndex = %d, want at or below the shared boundary -10", pool.CurrentTickIndex)
	}
	if pool.Liquidity.IsZero() {
		t.Fatal("pool liquidity dropped to zero after crossing into a still-active range")
	}
}

func TestSwapByAmountOutDebitsComputedInput(t *testing.T) {
	e, transferer, poolKey := setupLiquidPool(t)

	desiredOut := numeric.TokenAmountFromU64(5)
	// fund generously since the exact required input isn't known up front.
	if err := fundAndDeposit(e, transferer, testActorB, testTokenX, numeric.TokenAmountFromU64(bigFund)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	result, err := e.Swap(testActorB, poolKey, true, desiredOut, false, clmm.MinSqrtPrice)
	if err != nil {
		t.Fatalf("Swap by amount out: %v", err)
	}
	if !result.AmountOut.Eq(desiredOut) {
		t.Fatalf("AmountOut = %s, want exactly the requested %s", result.AmountOut.Get(), desiredOut.Get())
	}

	wantRemaining, err := numeric.TokenAmountFromU64(bigFund).CheckedSub(result.AmountIn)
	if err != nil {
		t.Fatalf("CheckedSub: %v", err)
	}
	if bal := e.ledger.Balance(testActorB, testTokenX); !bal.Eq(wantRemaining) {
		t.Fatalf("input-token ledger balance = %s, want %s", bal.Get(), wantRemaining.Get())
	}
}
