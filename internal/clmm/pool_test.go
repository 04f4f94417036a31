package clmm

import (
	"testing"

	"invariant/internal/numeric"
)

func TestCreatePoolRejectsMismatchedSqrtPrice(t *testing.T) {
	sp, err := TickToSqrtPrice(10)
	if err != nil {
		t.Fatalf("TickToSqrtPrice: %v", err)
	}
	if _, err := CreatePool(sp, 0, 0, 10, ActorID{}); err == nil {
		t.Fatal("expected invalid init sqrt price when initTick and initSqrtPrice disagree")
	}
}

func TestCreatePoolAcceptsMatchingSqrtPrice(t *testing.T) {
	sp, err := TickToSqrtPrice(20)
	if err != nil {
		t.Fatalf("TickToSqrtPrice: %v", err)
	}
	pool, err := CreatePool(sp, 20, 100, 10, ActorID{0x01})
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if pool.CurrentTickIndex != 20 {
		t.Fatalf("CurrentTickIndex = %d, want 20", pool.CurrentTickIndex)
	}
	if !pool.Liquidity.IsZero() {
		t.Fatal("a freshly created pool should start with zero liquidity")
	}
}

func TestAddFeeSplitsProtocolAndLPShares(t *testing.T) {
	pool := samplePool(t)
	pool.Liquidity = numeric.LiquidityFromInteger(1000)

	protocolFee := numeric.PercentageFromScale(100_000_000_000, 12) // 10%
	if err := pool.AddFee(numeric.TokenAmountFromU64(100), true, protocolFee); err != nil {
		t.Fatalf("AddFee: %v", err)
	}
	if pool.FeeProtocolTokenX.IsZero() {
		t.Fatal("protocol share should be nonzero")
	}
	if pool.FeeGrowthGlobalX.Eq(numeric.FeeGrowthZero()) {
		t.Fatal("LP share should have folded into fee_growth_global_x")
	}
}

func TestAddFeeNoopWithoutLiquidity(t *testing.T) {
	pool := samplePool(t)
	protocolFee := numeric.PercentageZero()
	if err := pool.AddFee(numeric.TokenAmountFromU64(100), true, protocolFee); err != nil {
		t.Fatalf("AddFee: %v", err)
	}
	if !pool.FeeGrowthGlobalX.Eq(numeric.FeeGrowthZero()) {
		t.Fatal("AddFee against a pool with zero liquidity should not grow fee_growth_global_x")
	}
}

func TestCalculateAmountDeltaBelowRangeIsAllX(t *testing.T) {
	x, y, updateLiquidity, err := CalculateAmountDelta(-100, mustSqrtPrice(t, -100), numeric.LiquidityFromInteger(10), true, 50, 0)
	if err != nil {
		t.Fatalf("CalculateAmountDelta: %v", err)
	}
	if x.IsZero() {
		t.Fatal("current tick below range should require token X")
	}
	if !y.IsZero() {
		t.Fatal("current tick below range should require no token Y")
	}
	if updateLiquidity {
		t.Fatal("current tick below range should not touch the pool's active liquidity")
	}
}

func TestCalculateAmountDeltaInsideRangeIsBoth(t *testing.T) {
	x, y, updateLiquidity, err := CalculateAmountDelta(25, mustSqrtPrice(t, 25), numeric.LiquidityFromInteger(10), true, 50, 0)
	if err != nil {
		t.Fatalf("CalculateAmountDelta: %v", err)
	}
	if x.IsZero() || y.IsZero() {
		t.Fatal("current tick inside range should require both tokens")
	}
	if !updateLiquidity {
		t.Fatal("current tick inside range should update the pool's active liquidity")
	}
}

func TestCalculateAmountDeltaAboveRangeIsAllY(t *testing.T) {
	x, y, updateLiquidity, err := CalculateAmountDelta(100, mustSqrtPrice(t, 100), numeric.LiquidityFromInteger(10), true, 50, 0)
	if err != nil {
		t.Fatalf("CalculateAmountDelta: %v", err)
	}
	if !x.IsZero() {
		t.Fatal("current tick above range should require no token X")
	}
	if y.IsZero() {
		t.Fatal("current tick above range should require token Y")
	}
	if updateLiquidity {
		t.Fatal("current tick above range should not touch the pool's active liquidity")
	}
}

func TestCalculateAmountDeltaRejectsInvertedRange(t *testing.T) {
	if _, _, _, err := CalculateAmountDelta(0, mustSqrtPrice(t, 0), numeric.LiquidityFromInteger(1), true, 0, 50); err == nil {
		t.Fatal("expected upper_tick < lower_tick to be rejected")
	}
}

func TestUpdateLiquidityOutsideRangeLeavesPoolLiquidityUntouched(t *testing.T) {
	pool := samplePool(t)
	pool.CurrentTickIndex = 100
	pool.SqrtPrice = mustSqrtPrice(t, 100)
	before := pool.Liquidity

	if _, _, err := pool.UpdateLiquidity(numeric.LiquidityFromInteger(10), true, 50, 0); err != nil {
		t.Fatalf("UpdateLiquidity: %v", err)
	}
	if !pool.Liquidity.Eq(before) {
		t.Fatal("updating a range the current price sits outside of should not change pool liquidity")
	}
}

func TestUpdateLiquidityInsideRangeAdjustsPoolLiquidity(t *testing.T) {
	pool := samplePool(t)
	pool.CurrentTickIndex = 25
	pool.SqrtPrice = mustSqrtPrice(t, 25)

	if _, _, err := pool.UpdateLiquidity(numeric.LiquidityFromInteger(10), true, 50, 0); err != nil {
		t.Fatalf("UpdateLiquidity: %v", err)
	}
	if !pool.Liquidity.Eq(numeric.LiquidityFromInteger(10)) {
		t.Fatalf("pool.Liquidity = %s, want 10", pool.Liquidity.Get())
	}
}

func TestIsEnoughAmountToChangePriceZeroLiquidityIsAlwaysEnough(t *testing.T) {
	ok, err := IsEnoughAmountToChangePrice(numeric.TokenAmountFromU64(1), numeric.SqrtPriceFromInteger(1), numeric.LiquidityZero(), numeric.PercentageZero(), true, true)
	if err != nil {
		t.Fatalf("IsEnoughAmountToChangePrice: %v", err)
	}
	if !ok {
		t.Fatal("with zero pool liquidity any amount should be reported as enough")
	}
}

func TestWithdrawProtocolFeeZeroesBalances(t *testing.T) {
	pool := samplePool(t)
	pool.FeeProtocolTokenX = numeric.TokenAmountFromU64(50)
	pool.FeeProtocolTokenY = numeric.TokenAmountFromU64(75)

	x, y := pool.WithdrawProtocolFee()
	if !x.Eq(numeric.TokenAmountFromU64(50)) || !y.Eq(numeric.TokenAmountFromU64(75)) {
		t.Fatalf("WithdrawProtocolFee returned (%s, %s), want (50, 75)", x.Get(), y.Get())
	}
	if !pool.FeeProtocolTokenX.IsZero() || !pool.FeeProtocolTokenY.IsZero() {
		t.Fatal("WithdrawProtocolFee should zero the pool's protocol fee balances")
	}
}

func mustSqrtPrice(t *testing.T, tick int32) numeric.SqrtPrice {
	t.Helper()
	sp, err := TickToSqrtPrice(tick)
	if err != nil {
		t.Fatalf("TickToSqrtPrice(%d): %v", tick, err)
	}
	return sp
}
