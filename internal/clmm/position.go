package clmm

import (
	"errors"

	"invariant/internal/numeric"
)

var (
	ErrEmptyPositionPokes  = errors.New("clmm: empty position pokes")
	ErrInsufficientLiquidity = errors.New("clmm: insufficient liquidity")
	ErrPriceLimitReached   = errors.New("clmm: price limit reached")
)

// Position is a caller's liquidity range within a single pool: the
// liquidity currently deposited, the two fee-growth snapshots last settled
// against it, and any fee collected but not yet withdrawn. Grounded on
// contracts/storage/position.rs::Position.
type Position struct {
	PoolKey          PoolKey
	Liquidity        numeric.Liquidity
	LowerTickIndex   int32
	UpperTickIndex   int32
	FeeGrowthInsideX numeric.FeeGrowth
	FeeGrowthInsideY numeric.FeeGrowth
	LastBlockNumber  uint64
	TokensOwedX      numeric.TokenAmount
	TokensOwedY      numeric.TokenAmount
}

// Modify changes a position's liquidity by liquidityDelta (add when true,
// remove when false), settling any fee accrued since the position's last
// touch into TokensOwed{X,Y}, then folds the same delta into the pool's
// tick and active-liquidity state. Returns the token amounts the change
// requires (or returns, on removal). Grounded on
// contracts/storage/position.rs::Position::modify.
func (p *Position) Modify(pool *Pool, upperTick, lowerTick *Tick, liquidityDelta numeric.Liquidity, add bool, currentTimestamp uint64, tickSpacing uint16) (numeric.TokenAmount, numeric.TokenAmount, error) {
	pool.LastTimestamp = currentTimestamp

	maxLiquidityPerTick := CalculateMaxLiquidityPerTick(tickSpacing)

	if err := lowerTick.Update(liquidityDelta, maxLiquidityPerTick, false, add); err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}
	if err := upperTick.Update(liquidityDelta, maxLiquidityPerTick, true, add); err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}

	feeGrowthInsideX, feeGrowthInsideY := numeric.CalculateFeeGrowthInside(
		lowerTick.Index, lowerTick.FeeGrowthOutsideX, lowerTick.FeeGrowthOutsideY,
		upperTick.Index, upperTick.FeeGrowthOutsideX, upperTick.FeeGrowthOutsideY,
		pool.CurrentTickIndex,
		pool.FeeGrowthGlobalX, pool.FeeGrowthGlobalY,
	)

	if err := p.Update(add, liquidityDelta, feeGrowthInsideX, feeGrowthInsideY); err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}

	return pool.UpdateLiquidity(liquidityDelta, add, upperTick.Index, lowerTick.Index)
}

// Update settles accrued fee (the difference between the newly-computed
// inside fee growth and what was last snapshotted, converted to token
// units at the position's liquidity *before* this change) and then applies
// liquidityDelta. Rejects a zero-delta update on an already-empty position
// (EmptyPositionPokes), since that call would be a pure no-op that a caller
// should never issue. Grounded on
// contracts/storage/position.rs::Position::update.
func (p *Position) Update(sign bool, liquidityDelta numeric.Liquidity, feeGrowthInsideX, feeGrowthInsideY numeric.FeeGrowth) error {
	if liquidityDelta.IsZero() && p.Liquidity.IsZero() {
		return ErrEmptyPositionPokes
	}

	tokensOwedX, err := feeGrowthInsideX.UncheckedSub(p.FeeGrowthInsideX).ToFee(p.Liquidity)
	if err != nil {
		return err
	}
	tokensOwedY, err := feeGrowthInsideY.UncheckedSub(p.FeeGrowthInsideY).ToFee(p.Liquidity)
	if err != nil {
		return err
	}

	newLiquidity, err := p.calculateNewLiquidity(sign, liquidityDelta)
	if err != nil {
		return err
	}

	p.Liquidity = newLiquidity
	p.FeeGrowthInsideX = feeGrowthInsideX
	p.FeeGrowthInsideY = feeGrowthInsideY

	p.TokensOwedX, err = p.TokensOwedX.CheckedAdd(tokensOwedX)
	if err != nil {
		return err
	}
	p.TokensOwedY, err = p.TokensOwedY.CheckedAdd(tokensOwedY)
	if err != nil {
		return err
	}
	return nil
}

func (p *Position) calculateNewLiquidity(sign bool, liquidityDelta numeric.Liquidity) (numeric.Liquidity, error) {
	if !sign && p.Liquidity.Lt(liquidityDelta) {
		return numeric.Liquidity{}, ErrInsufficientLiquidity
	}
	if sign {
		return p.Liquidity.CheckedAdd(liquidityDelta)
	}
	return p.Liquidity.CheckedSub(liquidityDelta)
}

// ClaimFee settles the position against the pool's current fee growth
// (a zero-delta Modify) and returns, then zeroes, whatever accumulated in
// TokensOwed{X,Y}. Grounded on
// contracts/storage/position.rs::Position::claim_fee.
func (p *Position) ClaimFee(pool *Pool, upperTick, lowerTick *Tick, currentTimestamp uint64) (numeric.TokenAmount, numeric.TokenAmount, error) {
	if _, _, err := p.Modify(pool, upperTick, lowerTick, numeric.LiquidityZero(), true, currentTimestamp, p.PoolKey.FeeTier.TickSpacing); err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}

	tokensOwedX, tokensOwedY := p.TokensOwedX, p.TokensOwedY
	p.TokensOwedX = numeric.TokenAmountZero()
	p.TokensOwedY = numeric.TokenAmountZero()
	return tokensOwedX, tokensOwedY, nil
}

// CreatePosition opens a new position over [lowerTick, upperTick] at
// liquidityDelta, failing with PriceLimitReached if the pool's current
// sqrt price has slipped outside [slippageLimitLower, slippageLimitUpper]
// since the caller last observed it. Grounded on
// contracts/storage/position.rs::Position::create.
func CreatePosition(pool *Pool, poolKey PoolKey, lowerTick, upperTick *Tick, currentTimestamp uint64, liquidityDelta numeric.Liquidity, slippageLimitLower, slippageLimitUpper numeric.SqrtPrice, blockNumber uint64, tickSpacing uint16) (Position, numeric.TokenAmount, numeric.TokenAmount, error) {
	if pool.SqrtPrice.Lt(slippageLimitLower) || pool.SqrtPrice.Gt(slippageLimitUpper) {
		return Position{}, numeric.TokenAmount{}, numeric.TokenAmount{}, ErrPriceLimitReached
	}

	position := Position{
		PoolKey:          poolKey,
		Liquidity:        numeric.LiquidityZero(),
		LowerTickIndex:   lowerTick.Index,
		UpperTickIndex:   upperTick.Index,
		FeeGrowthInsideX: numeric.FeeGrowthZero(),
		FeeGrowthInsideY: numeric.FeeGrowthZero(),
		LastBlockNumber:  blockNumber,
		TokensOwedX:      numeric.TokenAmountZero(),
		TokensOwedY:      numeric.TokenAmountZero(),
	}

	requiredX, requiredY, err := position.Modify(pool, upperTick, lowerTick, liquidityDelta, true, currentTimestamp, tickSpacing)
	if err != nil {
		return Position{}, numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}
	return position, requiredX, requiredY, nil
}

// RemovePosition withdraws all of a position's liquidity, folding in any
// owed fee, and reports whether either boundary tick is now fully
// deinitialized (liquidity_gross back to zero) so the caller can drop it
// from storage and the tickmap. Grounded on
// contracts/storage/position.rs::Position::remove.
func (p *Position) RemovePosition(pool *Pool, currentTimestamp uint64, lowerTick, upperTick *Tick, tickSpacing uint16) (numeric.TokenAmount, numeric.TokenAmount, bool, bool, error) {
	liquidityDelta := p.Liquidity
	amountX, amountY, err := p.Modify(pool, upperTick, lowerTick, liquidityDelta, false, currentTimestamp, tickSpacing)
	if err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, false, false, err
	}

	amountX, err = amountX.CheckedAdd(p.TokensOwedX)
	if err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, false, false, err
	}
	amountY, err = amountY.CheckedAdd(p.TokensOwedY)
	if err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, false, false, err
	}

	deinitializeLower := lowerTick.LiquidityGross.IsZero()
	deinitializeUpper := upperTick.LiquidityGross.IsZero()

	return amountX, amountY, deinitializeLower, deinitializeUpper, nil
}
