package engine

import (
	"context"

	"go.uber.org/zap"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
)

func validateTickIndex(index int32, tickSpacing uint16) error {
	if index%int32(tickSpacing) != 0 {
		return ErrInvalidTickIndex
	}
	if index < clmm.GetMinTick(tickSpacing) || index > clmm.GetMaxTick(tickSpacing) {
		return ErrInvalidTickIndex
	}
	return nil
}

// AddFeeTier registers a new (fee, tick_spacing) pair admin can later open
// pools under. Grounded on spec.md 6's add_fee_tier row.
func (e *Engine) AddFeeTier(actor clmm.ActorID, feeTier clmm.FeeTier) error {
	if err := e.requireAdmin(actor); err != nil {
		return e.logError("add_fee_tier", err)
	}
	if feeTier.TickSpacing == 0 {
		return e.logError("add_fee_tier", ErrInvalidTickSpacing)
	}
	if feeTier.Fee.Gte(numeric.PercentageFromInteger(1)) {
		return e.logError("add_fee_tier", ErrInvalidFee)
	}
	if e.hasFeeTier(feeTier) {
		return e.logError("add_fee_tier", ErrFeeTierAlreadyExist)
	}
	e.setFeeTier(feeTier, true)
	e.logOK("add_fee_tier", zap.Uint32("tick_spacing", uint32(feeTier.TickSpacing)))
	return nil
}

// RemoveFeeTier unregisters a fee tier; existing pools created under it are
// unaffected, matching the original contract (fee tiers gate new pools
// only).
func (e *Engine) RemoveFeeTier(actor clmm.ActorID, feeTier clmm.FeeTier) error {
	if err := e.requireAdmin(actor); err != nil {
		return e.logError("remove_fee_tier", err)
	}
	if !e.hasFeeTier(feeTier) {
		return e.logError("remove_fee_tier", ErrFeeTierNotFound)
	}
	e.setFeeTier(feeTier, false)
	e.logOK("remove_fee_tier")
	return nil
}

// CreatePool opens a new pool for (tokenX, tokenY, feeTier) at the given
// initial price, canonicalizing token order via clmm.NewPoolKey. Grounded
// on spec.md 6's create_pool row and contracts/storage/pool.rs::Pool::create.
func (e *Engine) CreatePool(actor clmm.ActorID, tokenX, tokenY clmm.TokenID, feeTier clmm.FeeTier, initSqrtPrice numeric.SqrtPrice, initTick int32) (clmm.PoolKey, error) {
	poolKey, err := clmm.NewPoolKey(tokenX, tokenY, feeTier)
	if err != nil {
		return clmm.PoolKey{}, e.logError("create_pool", err)
	}
	if !e.hasFeeTier(feeTier) {
		return clmm.PoolKey{}, e.logError("create_pool", ErrFeeTierNotFound)
	}
	if _, exists := e.pool(poolKey); exists {
		return clmm.PoolKey{}, e.logError("create_pool", ErrPoolAlreadyExist)
	}

	pool, err := clmm.CreatePool(initSqrtPrice, initTick, e.now(), feeTier.TickSpacing, actor)
	if err != nil {
		return clmm.PoolKey{}, e.logError("create_pool", err)
	}

	e.setPool(poolKey, &pool)
	e.logOK("create_pool", zap.String("pool", poolKey.TokenX.String()+"/"+poolKey.TokenY.String()))
	return poolKey, nil
}

// CreatePosition opens a liquidity range [lowerTick, upperTick] in poolKey,
// debiting the caller's ledger balance for the required token amounts
// (amounts were already moved from the external token program into the
// ledger by an earlier Deposit*). Returns the new position's index within
// the caller's position list. Grounded on spec.md 6's create_position row.
//
// Computes against copies of the pool and both boundary ticks and commits
// them only once the ledger debit has actually gone through, so a caller
// short on balance never leaves a half-created position or a zombie tick
// behind (the same atomicity discipline swap.go applies to its own state).
func (e *Engine) CreatePosition(actor clmm.ActorID, poolKey clmm.PoolKey, lowerTick, upperTick int32, liquidityDelta numeric.Liquidity, slippageLower, slippageUpper numeric.SqrtPrice) (uint32, error) {
	pool, ok := e.pool(poolKey)
	if !ok {
		return 0, e.logError("create_position", ErrPoolNotFound)
	}
	if liquidityDelta.IsZero() {
		return 0, e.logError("create_position", ErrZeroLiquidity)
	}
	if upperTick <= lowerTick {
		return 0, e.logError("create_position", ErrInvalidTickIndex)
	}
	tickSpacing := poolKey.FeeTier.TickSpacing
	if err := validateTickIndex(lowerTick, tickSpacing); err != nil {
		return 0, e.logError("create_position", err)
	}
	if err := validateTickIndex(upperTick, tickSpacing); err != nil {
		return 0, e.logError("create_position", err)
	}

	poolCopy := *pool
	lower, lowerNew, err := e.prepareTick(poolKey, &poolCopy, lowerTick)
	if err != nil {
		return 0, e.logError("create_position", err)
	}
	upper, upperNew, err := e.prepareTick(poolKey, &poolCopy, upperTick)
	if err != nil {
		return 0, e.logError("create_position", err)
	}

	position, requiredX, requiredY, err := clmm.CreatePosition(&poolCopy, poolKey, lower, upper, e.now(), liquidityDelta, slippageLower, slippageUpper, e.blockNumber(), tickSpacing)
	if err != nil {
		return 0, e.logError("create_position", err)
	}

	if _, err := e.ledger.Decrease(actor, poolKey.TokenX, &requiredX); err != nil {
		return 0, e.logError("create_position", err)
	}
	if _, err := e.ledger.Decrease(actor, poolKey.TokenY, &requiredY); err != nil {
		_ = e.ledger.Increase(actor, poolKey.TokenX, requiredX)
		return 0, e.logError("create_position", err)
	}

	e.setPool(poolKey, &poolCopy)
	e.commitTick(poolKey, lower, lowerNew, tickSpacing)
	e.commitTick(poolKey, upper, upperNew, tickSpacing)

	e.positions[actor] = append(e.positions[actor], &position)
	index := uint32(len(e.positions[actor]) - 1)
	e.logOK("create_position", zap.Uint32("index", index))
	return index, nil
}

func (e *Engine) position(actor clmm.ActorID, index uint32) (*clmm.Position, error) {
	list := e.positions[actor]
	if int(index) >= len(list) || list[index] == nil {
		return nil, ErrPositionNotFound
	}
	return list[index], nil
}

func (e *Engine) positionTicks(position *clmm.Position) (*clmm.Tick, *clmm.Tick, error) {
	lower, ok := e.tick(position.PoolKey, position.LowerTickIndex)
	if !ok {
		return nil, nil, ErrTickNotFound
	}
	upper, ok := e.tick(position.PoolKey, position.UpperTickIndex)
	if !ok {
		return nil, nil, ErrTickNotFound
	}
	return lower, upper, nil
}

// RemovePosition withdraws all of a position's liquidity plus any owed
// fee, crediting the caller's ledger, and drops the position and any
// boundary tick left with zero liquidity_gross. Grounded on spec.md 6's
// remove_position row.
//
// Runs against copies of the position, pool, and both boundary ticks (the
// same discipline CreatePosition uses) so a ledger failure — unlikely, but
// possible on overflow — never leaves a position marked withdrawn without
// having actually credited the caller.
func (e *Engine) RemovePosition(actor clmm.ActorID, index uint32) error {
	position, err := e.position(actor, index)
	if err != nil {
		return e.logError("remove_position", err)
	}
	pool, ok := e.pool(position.PoolKey)
	if !ok {
		return e.logError("remove_position", ErrPoolNotFound)
	}
	lower, upper, err := e.positionTicks(position)
	if err != nil {
		return e.logError("remove_position", err)
	}

	positionCopy := *position
	poolCopy := *pool
	lowerCopy := *lower
	upperCopy := *upper

	tickSpacing := position.PoolKey.FeeTier.TickSpacing
	amountX, amountY, deinitLower, deinitUpper, err := positionCopy.RemovePosition(&poolCopy, e.now(), &lowerCopy, &upperCopy, tickSpacing)
	if err != nil {
		return e.logError("remove_position", err)
	}

	if err := e.ledger.Increase(actor, position.PoolKey.TokenX, amountX); err != nil {
		return e.logError("remove_position", err)
	}
	if err := e.ledger.Increase(actor, position.PoolKey.TokenY, amountY); err != nil {
		_, _ = e.ledger.Decrease(actor, position.PoolKey.TokenX, &amountX)
		return e.logError("remove_position", err)
	}

	e.setPool(position.PoolKey, &poolCopy)
	if deinitLower {
		e.tickmap.Flip(false, lowerCopy.Index, tickSpacing, position.PoolKey)
		e.deleteTick(position.PoolKey, lowerCopy.Index)
	} else {
		e.setTick(position.PoolKey, &lowerCopy)
	}
	if deinitUpper {
		e.tickmap.Flip(false, upperCopy.Index, tickSpacing, position.PoolKey)
		e.deleteTick(position.PoolKey, upperCopy.Index)
	} else {
		e.setTick(position.PoolKey, &upperCopy)
	}

	e.positions[actor][index] = nil
	e.logOK("remove_position", zap.Uint32("index", index))
	return nil
}

// ClaimFee settles a position's owed fee into the caller's ledger without
// touching its liquidity. Runs against copies for the same reason
// RemovePosition does: ClaimFee internally calls Modify with a zero
// liquidity delta, which still advances the pool's fee-growth accounting
// and both boundary ticks' fee-growth-outside fields, so it must not
// commit ahead of the ledger credit succeeding.
func (e *Engine) ClaimFee(actor clmm.ActorID, index uint32) error {
	position, err := e.position(actor, index)
	if err != nil {
		return e.logError("claim_fee", err)
	}
	pool, ok := e.pool(position.PoolKey)
	if !ok {
		return e.logError("claim_fee", ErrPoolNotFound)
	}
	lower, upper, err := e.positionTicks(position)
	if err != nil {
		return e.logError("claim_fee", err)
	}

	positionCopy := *position
	poolCopy := *pool
	lowerCopy := *lower
	upperCopy := *upper

	amountX, amountY, err := positionCopy.ClaimFee(&poolCopy, &upperCopy, &lowerCopy, e.now())
	if err != nil {
		return e.logError("claim_fee", err)
	}

	if err := e.ledger.Increase(actor, position.PoolKey.TokenX, amountX); err != nil {
		return e.logError("claim_fee", err)
	}
	if err := e.ledger.Increase(actor, position.PoolKey.TokenY, amountY); err != nil {
		_, _ = e.ledger.Decrease(actor, position.PoolKey.TokenX, &amountX)
		return e.logError("claim_fee", err)
	}

	e.setPool(position.PoolKey, &poolCopy)
	e.setTick(position.PoolKey, &lowerCopy)
	e.setTick(position.PoolKey, &upperCopy)
	*e.positions[actor][index] = positionCopy

	e.logOK("claim_fee", zap.Uint32("index", index))
	return nil
}

// TransferPosition moves a position from actor's list to recipient's,
// leaving a hole in actor's list the same way RemovePosition does.
func (e *Engine) TransferPosition(actor clmm.ActorID, index uint32, recipient clmm.ActorID) error {
	position, err := e.position(actor, index)
	if err != nil {
		return e.logError("transfer_position", err)
	}
	e.positions[actor][index] = nil
	e.positions[recipient] = append(e.positions[recipient], position)
	e.logOK("transfer_position", zap.Uint32("index", index), zap.String("to", recipient.String()))
	return nil
}

// Swap runs the orchestrator loop to completion and commits the resulting
// pool/tick state, then moves tokens across the caller's ledger (debiting
// the input token, crediting the output token) — swap never touches the
// external token program directly, matching spec.md 4.9's "transfers the
// swapped token off the caller's ledger balance".
func (e *Engine) Swap(actor clmm.ActorID, poolKey clmm.PoolKey, xToY bool, amount numeric.TokenAmount, byAmountIn bool, sqrtPriceLimit numeric.SqrtPrice) (CalculateSwapResult, error) {
	pool, ok := e.pool(poolKey)
	if !ok {
		return CalculateSwapResult{}, e.logError("swap", ErrPoolNotFound)
	}

	inToken, outToken := poolKey.TokenX, poolKey.TokenY
	if !xToY {
		inToken, outToken = poolKey.TokenY, poolKey.TokenX
	}

	if byAmountIn {
		if _, err := e.ledger.Decrease(actor, inToken, &amount); err != nil {
			return CalculateSwapResult{}, e.logError("swap", err)
		}
	}

	result, err := calculateSwap(*pool, poolKey, xToY, amount, byAmountIn, sqrtPriceLimit, e.now(), e.protocolFee, e.tickmap, e.copyTick(poolKey), false)
	if err != nil {
		if byAmountIn {
			_ = e.ledger.Increase(actor, inToken, amount)
		}
		return CalculateSwapResult{}, e.logError("swap", err)
	}

	if !byAmountIn {
		if _, err := e.ledger.Decrease(actor, inToken, &result.AmountIn); err != nil {
			return CalculateSwapResult{}, e.logError("swap", err)
		}
	}
	if err := e.ledger.Increase(actor, outToken, result.AmountOut); err != nil {
		return CalculateSwapResult{}, e.logError("swap", err)
	}

	e.setPool(poolKey, &result.Pool)
	for _, t := range result.CrossedTicks {
		e.setTick(poolKey, t)
	}

	e.logOK("swap", zap.String("pool", poolKey.TokenX.String()+"/"+poolKey.TokenY.String()),
		zap.Bool("x_to_y", xToY))
	return result, nil
}

// Quote runs the orchestrator read-only (bounded calculateSwap), annotating
// MaxSwapSteps/StateOutdated/GlobalInsufficientLiquidity termination
// instead of erroring on them, per spec.md 4.9's simulate_invariant_swap.
func (e *Engine) Quote(poolKey clmm.PoolKey, xToY bool, amount numeric.TokenAmount, byAmountIn bool, sqrtPriceLimit numeric.SqrtPrice) (CalculateSwapResult, error) {
	pool, ok := e.pool(poolKey)
	if !ok {
		return CalculateSwapResult{}, e.logError("quote", ErrPoolNotFound)
	}
	result, err := calculateSwap(*pool, poolKey, xToY, amount, byAmountIn, sqrtPriceLimit, e.now(), e.protocolFee, e.tickmap, e.copyTick(poolKey), true)
	if err != nil {
		return CalculateSwapResult{}, e.logError("quote", err)
	}
	return result, nil
}

// copyTick builds a tickLookup that hands calculateSwap an independent
// copy of each tick it touches, so a swap that ultimately fails (or a
// Quote, which must never mutate the store) never leaves a partially
// applied Tick.Cross behind. Grounded on spec.md 9's "computing on local
// copies of Pool and Tick ... committing only on successful completion".
func (e *Engine) copyTick(poolKey clmm.PoolKey) tickLookup {
	return func(index int32) (*clmm.Tick, bool) {
		t, ok := e.tick(poolKey, index)
		if !ok {
			return nil, false
		}
		cp := *t
		return &cp, true
	}
}

// DepositSingleToken moves amount of tok from the external token program
// into the caller's ledger balance. Grounded on spec.md 4.10's Deposit and
// 6's deposit_single_token row.
func (e *Engine) DepositSingleToken(ctx context.Context, actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) error {
	if err := e.deposit(ctx, actor, tok, amount); err != nil {
		return e.logError("deposit_single_token", err)
	}
	e.logOK("deposit_single_token", zap.String("token", tok.String()))
	return nil
}

// DepositTokenPair deposits both legs of a pair in one call, classifying a
// partial failure as Recoverable (spec.md 4.10).
func (e *Engine) DepositTokenPair(ctx context.Context, actor clmm.ActorID, tokenX, tokenY clmm.TokenID, amountX, amountY numeric.TokenAmount) error {
	if tokenX == tokenY {
		return e.logError("deposit_token_pair", clmm.ErrTokensAreSame)
	}
	if err := e.ledger.DepositPair(ctx, e.transferer, actor, tokenX, tokenY, amountX, amountY); err != nil {
		return e.logError("deposit_token_pair", err)
	}
	e.logOK("deposit_token_pair")
	return nil
}

// WithdrawSingleToken releases amount (or, if nil, the entire balance) of
// tok from the caller's ledger and transfers it out via the external token
// program. Grounded on spec.md 4.10's Withdrawal and 6's
// withdraw_single_token row.
func (e *Engine) WithdrawSingleToken(ctx context.Context, actor clmm.ActorID, tok clmm.TokenID, amount *numeric.TokenAmount) (numeric.TokenAmount, error) {
	drained, err := e.withdraw(ctx, actor, tok, amount)
	if err != nil {
		return numeric.TokenAmount{}, e.logError("withdraw_single_token", err)
	}
	e.logOK("withdraw_single_token", zap.String("token", tok.String()))
	return drained, nil
}

// WithdrawTokenPair withdraws both legs of a pair; each leg's own
// Recoverable/Unrecoverable classification happens independently since,
// unlike deposit, a withdrawal failure on one leg does not affect the
// other's already-released reservation.
func (e *Engine) WithdrawTokenPair(ctx context.Context, actor clmm.ActorID, tokenX, tokenY clmm.TokenID, amountX, amountY *numeric.TokenAmount) (numeric.TokenAmount, numeric.TokenAmount, error) {
	drainedX, errX := e.withdraw(ctx, actor, tokenX, amountX)
	drainedY, errY := e.withdraw(ctx, actor, tokenY, amountY)
	if errX != nil || errY != nil {
		err := errX
		if err == nil {
			err = errY
		}
		return drainedX, drainedY, e.logError("withdraw_token_pair", err)
	}
	e.logOK("withdraw_token_pair")
	return drainedX, drainedY, nil
}

// ChangeProtocolFee updates the engine-wide protocol fee that every pool's
// AddFee calls apply from the next swap on. Grounded on spec.md 6's change_protocol_fee row
// (supplemented from original_source/src/invariant_service.rs).
func (e *Engine) ChangeProtocolFee(actor clmm.ActorID, newFee numeric.Percentage) error {
	if err := e.requireAdmin(actor); err != nil {
		return e.logError("change_protocol_fee", err)
	}
	if newFee.Gte(numeric.PercentageFromInteger(1)) {
		return e.logError("change_protocol_fee", ErrInvalidFee)
	}
	e.protocolFee = newFee
	e.logOK("change_protocol_fee")
	return nil
}

// ChangeFeeReceiver reassigns which actor withdraw_protocol_fee pays out
// to for a given pool. Grounded on spec.md 6's change_fee_receiver row
// (supplemented from original_source/src/invariant_service.rs).
func (e *Engine) ChangeFeeReceiver(actor clmm.ActorID, poolKey clmm.PoolKey, receiver clmm.ActorID) error {
	if err := e.requireAdmin(actor); err != nil {
		return e.logError("change_fee_receiver", err)
	}
	pool, ok := e.pool(poolKey)
	if !ok {
		return e.logError("change_fee_receiver", ErrPoolNotFound)
	}
	pool.FeeReceiver = receiver
	e.logOK("change_fee_receiver", zap.String("receiver", receiver.String()))
	return nil
}

// WithdrawProtocolFee drains a pool's accumulated protocol fee balances
// into the pool's fee_receiver's ledger entry. Callable by the admin or
// the fee receiver itself. Grounded on spec.md 6's withdraw_protocol_fee
// row (supplemented from original_source/src/invariant_service.rs).
func (e *Engine) WithdrawProtocolFee(poolKey clmm.PoolKey, actor clmm.ActorID) error {
	pool, ok := e.pool(poolKey)
	if !ok {
		return e.logError("withdraw_protocol_fee", ErrPoolNotFound)
	}
	if actor != pool.FeeReceiver && actor != e.admin {
		return e.logError("withdraw_protocol_fee", ErrNotFeeReceiver)
	}

	poolCopy := *pool
	amountX, amountY := poolCopy.WithdrawProtocolFee()
	if err := e.ledger.Increase(pool.FeeReceiver, poolKey.TokenX, amountX); err != nil {
		return e.logError("withdraw_protocol_fee", err)
	}
	if err := e.ledger.Increase(pool.FeeReceiver, poolKey.TokenY, amountY); err != nil {
		_, _ = e.ledger.Decrease(pool.FeeReceiver, poolKey.TokenX, &amountX)
		return e.logError("withdraw_protocol_fee", err)
	}

	e.setPool(poolKey, &poolCopy)
	e.logOK("withdraw_protocol_fee")
	return nil
}
