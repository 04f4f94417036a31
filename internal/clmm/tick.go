package clmm

import (
	"errors"
	"math/big"

	"invariant/internal/numeric"
)

// Errors returned by Tick.Update/Tick.Cross, grounded on
// contracts/storage/tick.rs.
var (
	ErrInvalidTickLiquidity  = errors.New("clmm: invalid tick liquidity")
	ErrSecondsPassedUnderflow = errors.New("clmm: current_timestamp - pool.start_timestamp underflow")
)

// Tick holds the per-tick state needed to track liquidity entering and
// leaving, and the fee/seconds snapshots used to compute "inside" values.
// Grounded on contracts/storage/tick.rs::Tick.
type Tick struct {
	Index             int32
	Sign              bool
	LiquidityChange   numeric.Liquidity
	LiquidityGross    numeric.Liquidity
	SqrtPrice         numeric.SqrtPrice
	FeeGrowthOutsideX numeric.FeeGrowth
	FeeGrowthOutsideY numeric.FeeGrowth
	SecondsOutside    uint64
}

// CreateTick initializes a tick at the given index, snapshotting the pool's
// global fee growth and elapsed seconds when the tick is already below the
// pool's current price (the tick was "always" active from the pool's
// perspective, so its outside accounting starts at the global total rather
// than zero). Grounded on contracts/storage/tick.rs::Tick::create.
func CreateTick(index int32, pool *Pool, currentTimestamp uint64) (Tick, error) {
	sqrtPrice, err := TickToSqrtPrice(index)
	if err != nil {
		return Tick{}, err
	}

	belowCurrent := index <= pool.CurrentTickIndex
	t := Tick{
		Index:           index,
		Sign:            true,
		LiquidityChange: numeric.LiquidityZero(),
		LiquidityGross:  numeric.LiquidityZero(),
		SqrtPrice:       sqrtPrice,
	}
	if belowCurrent {
		t.FeeGrowthOutsideX = pool.FeeGrowthGlobalX
		t.FeeGrowthOutsideY = pool.FeeGrowthGlobalY
		t.SecondsOutside = currentTimestamp - pool.StartTimestamp
	} else {
		t.FeeGrowthOutsideX = numeric.FeeGrowthZero()
		t.FeeGrowthOutsideY = numeric.FeeGrowthZero()
		t.SecondsOutside = 0
	}
	return t, nil
}

// Cross flips this tick's outside snapshots to their complements (wrapping,
// since FeeGrowth and the seconds counter are modular), then applies this
// tick's liquidity_change to the pool's active liquidity in the direction
// implied by the price crossing it. Grounded on
// contracts/storage/tick.rs::Tick::cross.
func (t *Tick) Cross(pool *Pool, currentTimestamp uint64) error {
	t.FeeGrowthOutsideX = pool.FeeGrowthGlobalX.UncheckedSub(t.FeeGrowthOutsideX)
	t.FeeGrowthOutsideY = pool.FeeGrowthGlobalY.UncheckedSub(t.FeeGrowthOutsideY)

	if currentTimestamp < pool.StartTimestamp {
		return ErrSecondsPassedUnderflow
	}
	secondsPassed := currentTimestamp - pool.StartTimestamp
	t.SecondsOutside = wrappingSubUint64(secondsPassed, t.SecondsOutside)

	pool.LastTimestamp = currentTimestamp

	goingUp := (pool.CurrentTickIndex >= t.Index) != t.Sign
	if goingUp {
		l, err := pool.Liquidity.CheckedAdd(t.LiquidityChange)
		if err != nil {
			return err
		}
		pool.Liquidity = l
	} else {
		l, err := pool.Liquidity.CheckedSub(t.LiquidityChange)
		if err != nil {
			return err
		}
		pool.Liquidity = l
	}
	return nil
}

// wrappingSubUint64 performs modular subtraction at 64-bit width, matching
// Rust's u64::wrapping_sub for the seconds_outside counter.
func wrappingSubUint64(a, b uint64) uint64 { return a - b }

// Update applies a liquidity delta to the tick on deposit or withdrawal,
// updating both liquidity_gross (the total active liquidity referencing
// this tick) and liquidity_change (the signed net liquidity added when
// price crosses this tick upward). Grounded on
// contracts/storage/tick.rs::Tick::update.
func (t *Tick) Update(liquidityDelta numeric.Liquidity, maxLiquidityPerTick numeric.Liquidity, isUpper, isDeposit bool) error {
	gross, err := t.calculateNewLiquidityGross(isDeposit, liquidityDelta, maxLiquidityPerTick)
	if err != nil {
		return err
	}
	t.LiquidityGross = gross
	t.updateLiquidityChange(liquidityDelta, isDeposit != isUpper)
	return nil
}

func (t *Tick) updateLiquidityChange(liquidityDelta numeric.Liquidity, add bool) {
	if t.Sign != add {
		if t.LiquidityChange.Gt(liquidityDelta) {
			t.LiquidityChange = t.LiquidityChange.Sub(liquidityDelta)
		} else {
			t.LiquidityChange = liquidityDelta.Sub(t.LiquidityChange)
			t.Sign = !t.Sign
		}
	} else {
		t.LiquidityChange = t.LiquidityChange.Add(liquidityDelta)
	}
}

func (t *Tick) calculateNewLiquidityGross(sign bool, liquidityDelta numeric.Liquidity, maxLiquidityPerTick numeric.Liquidity) (numeric.Liquidity, error) {
	if !sign && t.LiquidityGross.Lt(liquidityDelta) {
		return numeric.Liquidity{}, ErrInvalidTickLiquidity
	}

	var newLiquidity numeric.Liquidity
	var err error
	if sign {
		newLiquidity, err = t.LiquidityGross.CheckedAdd(liquidityDelta)
	} else {
		newLiquidity, err = t.LiquidityGross.CheckedSub(liquidityDelta)
	}
	if err != nil {
		return numeric.Liquidity{}, err
	}

	if sign && newLiquidity.Gte(maxLiquidityPerTick) {
		return numeric.Liquidity{}, ErrInvalidTickLiquidity
	}
	return newLiquidity, nil
}

// CalculateMaxLiquidityPerTick returns Liquidity::max / ((2*MAX_TICK+1) /
// tick_spacing), recomputed per tick_spacing so that the bound isn't baked
// in at compile time. Grounded on contracts/storage/tick.rs's
// LIQUIDITY_TICK_LIMIT-adjacent invariant, spec.md 4.6.
func CalculateMaxLiquidityPerTick(tickSpacing uint16) numeric.Liquidity {
	divisor := (uint64(2*MaxTick) + 1) / uint64(tickSpacing)
	max := numeric.LiquidityMax().Get()
	result := new(big.Int).Quo(max, new(big.Int).SetUint64(divisor))
	return numeric.NewLiquidity(result)
}
