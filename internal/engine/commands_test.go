package engine

import (
	"context"
	"testing"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
)

// TestAddFeeTierDuplicateDetected guards against the map-key regression
// where FeeTier (and PoolKey) embed a Percentage backed by *big.Int: two
// independently-constructed FeeTier values with an equal fee used to
// compare unequal as map keys, since struct equality on a pointer field
// compares the pointer, not what it points to.
func TestAddFeeTierDuplicateDetected(t *testing.T) {
	e, _ := newTestEngine()

	first := clmm.FeeTier{Fee: numeric.PercentageFromScale(5, 4), TickSpacing: 10}
	second := clmm.FeeTier{Fee: numeric.PercentageFromScale(5, 4), TickSpacing: 10}

	if err := e.AddFeeTier(testAdmin, first); err != nil {
		t.Fatalf("first AddFeeTier: %v", err)
	}
	if err := e.AddFeeTier(testAdmin, second); err != ErrFeeTierAlreadyExist {
		t.Fatalf("AddFeeTier duplicate = %v, want ErrFeeTierAlreadyExist", err)
	}
}

func TestAddFeeTierRejectsNonAdmin(t *testing.T) {
	e, _ := newTestEngine()
	if err := e.AddFeeTier(testActorA, testFeeTier); err != ErrNotAdmin {
		t.Fatalf("AddFeeTier by non-admin = %v, want ErrNotAdmin", err)
	}
}

func TestAddFeeTierRejectsFeeAtOrAboveWhole(t *testing.T) {
	e, _ := newTestEngine()
	tier := clmm.FeeTier{Fee: numeric.PercentageFromInteger(1), TickSpacing: 1}
	if err := e.AddFeeTier(testAdmin, tier); err != ErrInvalidFee {
		t.Fatalf("AddFeeTier with fee == 1 = %v, want ErrInvalidFee", err)
	}
}

// TestCreatePoolCanonicalizesAndDedupes exercises the same PoolKeyID
// map-key fix from the pool side: creating the pool with the token
// arguments swapped must still collide with the existing pool.
func TestCreatePoolCanonicalizesAndDedupes(t *testing.T) {
	e, _ := newTestEngine()
	if _, err := setupPool(e); err != nil {
		t.Fatalf("setupPool: %v", err)
	}

	initSqrtPrice, _ := clmm.TickToSqrtPrice(0)
	_, err := e.CreatePool(testAdmin, testTokenY, testTokenX, testFeeTier, initSqrtPrice, 0)
	if err != ErrPoolAlreadyExist {
		t.Fatalf("CreatePool with swapped token order = %v, want ErrPoolAlreadyExist", err)
	}
}

func TestCreatePoolRequiresRegisteredFeeTier(t *testing.T) {
	e, _ := newTestEngine()
	initSqrtPrice, _ := clmm.TickToSqrtPrice(0)
	_, err := e.CreatePool(testAdmin, testTokenX, testTokenY, testFeeTier, initSqrtPrice, 0)
	if err != ErrFeeTierNotFound {
		t.Fatalf("CreatePool before AddFeeTier = %v, want ErrFeeTierNotFound", err)
	}
}

const bigFund = 1_000_000_000_000

func TestCreatePositionDebitsLedgerAndClaimFeeRemovePosition(t *testing.T) {
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

	balBefore := e.ledger.Balance(testActorA, testTokenX)

	index, err := e.CreatePosition(testActorA, poolKey, -100, 100, numeric.LiquidityFromInteger(1_000),
		clmm.MinSqrtPrice, clmm.MaxSqrtPrice)
	if err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}

	balAfter := e.ledger.Balance(testActorA, testTokenX)
	if !balAfter.Lt(balBefore) {
		t.Fatalf("CreatePosition did not debit ledger: before=%s after=%s", balBefore.Get(), balAfter.Get())
	}

	if err := e.ClaimFee(testActorA, index); err != nil {
		t.Fatalf("ClaimFee on a position with no accrued fee: %v", err)
	}

	if err := e.RemovePosition(testActorA, index); err != nil {
		t.Fatalf("RemovePosition: %v", err)
	}

	// the position slot is now a hole: removing it again must report
	// ErrPositionNotFound, not panic on a nil dereference.
	if err := e.RemovePosition(testActorA, index); err != ErrPositionNotFound {
		t.Fatalf("RemovePosition on an already-removed slot = %v, want ErrPositionNotFound", err)
	}
}

func TestCreatePositionRejectsZeroLiquidity(t *testing.T) {
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

	_, err = e.CreatePosition(testActorA, poolKey, -100, 100, numeric.LiquidityZero(), clmm.MinSqrtPrice, clmm.MaxSqrtPrice)
	if err != ErrZeroLiquidity {
		t.Fatalf("CreatePosition with zero liquidity = %v, want ErrZeroLiquidity", err)
	}
}

func TestCreatePositionRejectsOutOfRangeTick(t *testing.T) {
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

	// testFeeTier has tick_spacing 1, so every index is aligned; the
	// rejected index is one past GetMaxTick(1), the real ceiling.
	tooHigh := clmm.GetMaxTick(poolKey.FeeTier.TickSpacing) + 1
	_, err = e.CreatePosition(testActorA, poolKey, -100, tooHigh, numeric.LiquidityFromInteger(1_000), clmm.MinSqrtPrice, clmm.MaxSqrtPrice)
	if err != ErrInvalidTickIndex {
		t.Fatalf("CreatePosition with out-of-range tick = %v, want ErrInvalidTickIndex", err)
	}
}

func TestTransferPositionMovesOwnership(t *testing.T) {
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

	index, err := e.CreatePosition(testActorA, poolKey, -100, 100, numeric.LiquidityFromInteger(1_000), clmm.MinSqrtPrice, clmm.MaxSqrtPrice)
	if err != nil {
		t.Fatalf("CreatePosition: %v", err)
	}

	if err := e.TransferPosition(testActorA, index, testActorB); err != nil {
		t.Fatalf("TransferPosition: %v", err)
	}

	if _, err := e.position(testActorA, index); err != ErrPositionNotFound {
		t.Fatalf("sender's slot after transfer = %v, want ErrPositionNotFound", err)
	}
	if _, err := e.position(testActorB, 0); err != nil {
		t.Fatalf("recipient should hold the transferred position: %v", err)
	}
}

func TestWithdrawProtocolFeeAuthorization(t *testing.T) {
	e, _ := newTestEngine()
	poolKey, err := setupPool(e)
	if err != nil {
		t.Fatalf("setupPool: %v", err)
	}

	// CreatePool registered testAdmin as the fee receiver.
	if err := e.WithdrawProtocolFee(poolKey, testActorA); err != ErrNotFeeReceiver {
		t.Fatalf("WithdrawProtocolFee by stranger = %v, want ErrNotFeeReceiver", err)
	}
	if err := e.WithdrawProtocolFee(poolKey, testAdmin); err != nil {
		t.Fatalf("WithdrawProtocolFee by admin: %v", err)
	}

	if err := e.ChangeFeeReceiver(testAdmin, poolKey, testActorB); err != nil {
		t.Fatalf("ChangeFeeReceiver: %v", err)
	}
	if err := e.WithdrawProtocolFee(poolKey, testActorB); err != nil {
		t.Fatalf("WithdrawProtocolFee by new receiver: %v", err)
	}
}

func TestChangeProtocolFeeValidatesRange(t *testing.T) {
	e, _ := newTestEngine()
	if err := e.ChangeProtocolFee(testAdmin, numeric.PercentageFromInteger(1)); err != ErrInvalidFee {
		t.Fatalf("ChangeProtocolFee(1.0) = %v, want ErrInvalidFee", err)
	}
	if err := e.ChangeProtocolFee(testActorA, numeric.PercentageFromScale(2, 2)); err != ErrNotAdmin {
		t.Fatalf("ChangeProtocolFee by non-admin = %v, want ErrNotAdmin", err)
	}
	if err := e.ChangeProtocolFee(testAdmin, numeric.PercentageFromScale(2, 2)); err != nil {
		t.Fatalf("ChangeProtocolFee: %v", err)
	}
}

func TestDepositTokenPairRejectsSameToken(t *testing.T) {
	e, transferer := newTestEngine()
	transferer.Fund(testActorA, testTokenX, numeric.TokenAmountFromU64(10))
	err := e.DepositTokenPair(context.Background(), testActorA, testTokenX, testTokenX,
		numeric.TokenAmountFromU64(1), numeric.TokenAmountFromU64(1))
	if err != clmm.ErrTokensAreSame {
		t.Fatalf("DepositTokenPair(X, X) = %v, want ErrTokensAreSame", err)
	}
}

func TestWithdrawSingleTokenRoundTrips(t *testing.T) {
	e, transferer := newTestEngine()
	ctx := context.Background()
	amount := numeric.TokenAmountFromU64(500)
	if err := fundAndDeposit(e, transferer, testActorA, testTokenX, amount); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	drained, err := e.WithdrawSingleToken(ctx, testActorA, testTokenX, nil)
	if err != nil {
		t.Fatalf("WithdrawSingleToken: %v", err)
	}
	if !drained.Eq(amount) {
		t.Fatalf("WithdrawSingleToken drained = %s, want %s", drained.Get(), amount.Get())
	}
	if !e.ledger.Balance(testActorA, testTokenX).IsZero() {
		t.Fatal("ledger balance should be zero after draining the whole amount")
	}
}
