package clmm

import (
	"errors"

	"invariant/internal/numeric"
)

var (
	ErrInvalidInitTick      = errors.New("clmm: invalid init tick")
	ErrInvalidInitSqrtPrice = errors.New("clmm: invalid init sqrt price")
	ErrUpperLowerTickOrder  = errors.New("clmm: upper_tick is not greater than lower_tick")
)

// Pool is the per-(token pair, fee tier) engine state: active liquidity,
// current price, running fee-growth accumulators, and the protocol's
// uncollected fee balances. Grounded on
// contracts/storage/pool.rs::Pool.
type Pool struct {
	Liquidity         numeric.Liquidity
	SqrtPrice         numeric.SqrtPrice
	CurrentTickIndex  int32
	FeeGrowthGlobalX  numeric.FeeGrowth
	FeeGrowthGlobalY  numeric.FeeGrowth
	FeeProtocolTokenX numeric.TokenAmount
	FeeProtocolTokenY numeric.TokenAmount
	StartTimestamp    uint64
	LastTimestamp     uint64
	FeeReceiver       ActorID
}

// CreatePool validates that initSqrtPrice actually corresponds to initTick
// under tickSpacing before admitting the pool. Grounded on
// contracts/storage/pool.rs::Pool::create.
func CreatePool(initSqrtPrice numeric.SqrtPrice, initTick int32, currentTimestamp uint64, tickSpacing uint16, feeReceiver ActorID) (Pool, error) {
	inRelationship, err := CheckTickToSqrtPriceRelationship(initTick, tickSpacing, initSqrtPrice)
	if err != nil {
		return Pool{}, ErrInvalidInitTick
	}
	if !inRelationship {
		return Pool{}, ErrInvalidInitSqrtPrice
	}

	return Pool{
		Liquidity:         numeric.LiquidityZero(),
		SqrtPrice:         initSqrtPrice,
		CurrentTickIndex:  initTick,
		FeeGrowthGlobalX:  numeric.FeeGrowthZero(),
		FeeGrowthGlobalY:  numeric.FeeGrowthZero(),
		FeeProtocolTokenX: numeric.TokenAmountZero(),
		FeeProtocolTokenY: numeric.TokenAmountZero(),
		StartTimestamp:    currentTimestamp,
		LastTimestamp:     currentTimestamp,
		FeeReceiver:       feeReceiver,
	}, nil
}

// AddFee splits amount into a protocol cut (rounded up) and the remaining
// LP fee, folding the LP share into the running fee-growth accumulator for
// whichever token the fee was collected in. A no-op when both shares are
// zero or the pool currently has no liquidity to distribute into.
// Grounded on contracts/storage/pool.rs::Pool::add_fee.
func (p *Pool) AddFee(amount numeric.TokenAmount, inX bool, protocolFee numeric.Percentage) error {
	protocolShare := amount.BigMulUp(protocolFee)
	poolShare, err := amount.CheckedSub(protocolShare)
	if err != nil {
		return err
	}

	if (poolShare.IsZero() && protocolShare.IsZero()) || p.Liquidity.IsZero() {
		return nil
	}

	feeGrowth, err := numeric.FeeGrowthFromFee(p.Liquidity, poolShare)
	if err != nil {
		return err
	}

	if inX {
		p.FeeGrowthGlobalX = p.FeeGrowthGlobalX.UncheckedAdd(feeGrowth)
		p.FeeProtocolTokenX, err = p.FeeProtocolTokenX.CheckedAdd(protocolShare)
	} else {
		p.FeeGrowthGlobalY = p.FeeGrowthGlobalY.UncheckedAdd(feeGrowth)
		p.FeeProtocolTokenY, err = p.FeeProtocolTokenY.CheckedAdd(protocolShare)
	}
	return err
}

// CalculateAmountDelta computes the (amountX, amountY) a liquidity change of
// liquidityDelta requires across [lowerTick, upperTick], given the pool's
// current tick and sqrt price, and reports whether the pool's active
// liquidity itself needs updating (true only when the current tick lies
// inside the range). Grounded on calc/math/clamm.rs::calculate_amount_delta.
func CalculateAmountDelta(currentTickIndex int32, currentSqrtPrice numeric.SqrtPrice, liquidityDelta numeric.Liquidity, liquiditySign bool, upperTick, lowerTick int32) (numeric.TokenAmount, numeric.TokenAmount, bool, error) {
	if upperTick < lowerTick {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, false, ErrUpperLowerTickOrder
	}

	amountX := numeric.TokenAmountZero()
	amountY := numeric.TokenAmountZero()
	updateLiquidity := false

	switch {
	case currentTickIndex < lowerTick:
		lowerSP, err := TickToSqrtPrice(lowerTick)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		upperSP, err := TickToSqrtPrice(upperTick)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		amountX, err = GetDeltaX(lowerSP, upperSP, liquidityDelta, liquiditySign)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}

	case currentTickIndex < upperTick:
		upperSP, err := TickToSqrtPrice(upperTick)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		lowerSP, err := TickToSqrtPrice(lowerTick)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		amountX, err = GetDeltaX(currentSqrtPrice, upperSP, liquidityDelta, liquiditySign)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		amountY, err = GetDeltaY(lowerSP, currentSqrtPrice, liquidityDelta, liquiditySign)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		updateLiquidity = true

	default:
		lowerSP, err := TickToSqrtPrice(lowerTick)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		upperSP, err := TickToSqrtPrice(upperTick)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		amountY, err = GetDeltaY(lowerSP, upperSP, liquidityDelta, liquiditySign)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
	}

	return amountX, amountY, updateLiquidity, nil
}

// UpdateLiquidity applies a liquidity change to a [lowerTick, upperTick]
// range, adjusting the pool's active liquidity only when the current price
// sits inside that range. Grounded on
// contracts/storage/pool.rs::Pool::update_liquidity.
func (p *Pool) UpdateLiquidity(liquidityDelta numeric.Liquidity, liquiditySign bool, upperTick, lowerTick int32) (numeric.TokenAmount, numeric.TokenAmount, error) {
	x, y, updateLiquidity, err := CalculateAmountDelta(p.CurrentTickIndex, p.SqrtPrice, liquidityDelta, liquiditySign, upperTick, lowerTick)
	if err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}
	if !updateLiquidity {
		return x, y, nil
	}

	if liquiditySign {
		p.Liquidity, err = p.Liquidity.CheckedAdd(liquidityDelta)
	} else {
		p.Liquidity, err = p.Liquidity.CheckedSub(liquidityDelta)
	}
	if err != nil {
		return numeric.TokenAmount{}, numeric.TokenAmount{}, err
	}
	return x, y, nil
}

// IsEnoughAmountToChangePrice reports whether the remaining swap amount is
// able to move the price at all starting from startingSqrtPrice — used by
// UpdateTick to decide whether a boundary tick is actually crossed, or the
// swap simply stalls against it. Grounded on
// calc/math/clamm.rs::is_enough_amount_to_change_price; returns an error
// instead of panicking on the boundary inputs the source notes can trip its
// denominator guard (spec.md 7).
func IsEnoughAmountToChangePrice(amount numeric.TokenAmount, startingSqrtPrice numeric.SqrtPrice, liquidity numeric.Liquidity, fee numeric.Percentage, byAmountIn, xToY bool) (bool, error) {
	if liquidity.IsZero() {
		return true, nil
	}

	var nextSqrtPrice numeric.SqrtPrice
	var err error
	if byAmountIn {
		complement, cerr := numeric.PercentageFromInteger(1).CheckedSub(fee)
		if cerr != nil {
			return false, cerr
		}
		amountAfterFee := amount.BigMul(complement)
		nextSqrtPrice, err = GetNextSqrtPriceFromInput(startingSqrtPrice, liquidity, amountAfterFee, xToY)
	} else {
		nextSqrtPrice, err = GetNextSqrtPriceFromOutput(startingSqrtPrice, liquidity, amount, xToY)
	}
	if err != nil {
		return false, err
	}

	return !startingSqrtPrice.Eq(nextSqrtPrice), nil
}

// UpdateTick is the glue between a completed SwapStepResult and the tick
// being crossed: it decides whether the boundary tick is actually crossed
// (folding any residual fee on a stall), then repositions
// current_tick_index. Grounded on
// contracts/storage/pool.rs::Pool::update_tick.
func (p *Pool) UpdateTick(result SwapStepResult, tick *Tick, swapLimit numeric.SqrtPrice, remainingAmount numeric.TokenAmount, byAmountIn, xToY bool, currentTimestamp uint64, protocolFee numeric.Percentage, feeTier FeeTier) (numeric.TokenAmount, numeric.TokenAmount, bool, error) {
	hasCrossed := false
	totalAmount := numeric.TokenAmountZero()

	if tick != nil && swapLimit.Eq(result.NextSqrtPrice) {
		isEnoughToCross, err := IsEnoughAmountToChangePrice(remainingAmount, result.NextSqrtPrice, p.Liquidity, feeTier.Fee, byAmountIn, xToY)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}

		if !xToY || isEnoughToCross {
			if err := tick.Cross(p, currentTimestamp); err != nil {
				return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
			}
			hasCrossed = true
		} else if !remainingAmount.IsZero() {
			if byAmountIn {
				if err := p.AddFee(remainingAmount, xToY, protocolFee); err != nil {
					return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
				}
				totalAmount = remainingAmount
			}
			remainingAmount = numeric.TokenAmountZero()
		}

		if xToY && isEnoughToCross {
			p.CurrentTickIndex = tick.Index - int32(feeTier.TickSpacing)
		} else {
			p.CurrentTickIndex = tick.Index
		}
	} else {
		idx, err := GetTickAtSqrtPrice(result.NextSqrtPrice, feeTier.TickSpacing)
		if err != nil {
			return numeric.TokenAmount{}, numeric.TokenAmount{}, false, err
		}
		p.CurrentTickIndex = idx
	}

	return totalAmount, remainingAmount, hasCrossed, nil
}

// WithdrawProtocolFee zeroes and returns the pool's accumulated protocol fee
// balances. Grounded on contracts/storage/pool.rs::Pool::withdraw_protocol_fee.
func (p *Pool) WithdrawProtocolFee() (numeric.TokenAmount, numeric.TokenAmount) {
	x, y := p.FeeProtocolTokenX, p.FeeProtocolTokenY
	p.FeeProtocolTokenX = numeric.TokenAmountZero()
	p.FeeProtocolTokenY = numeric.TokenAmountZero()
	return x, y
}
