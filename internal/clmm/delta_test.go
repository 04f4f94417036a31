package clmm

import (
	"testing"

	"invariant/internal/numeric"
)

func TestGetDeltaXAndYAgainstEqualPrices(t *testing.T) {
	sp := numeric.SqrtPriceFromInteger(2)
	l := numeric.LiquidityFromInteger(5)

	x, err := GetDeltaX(sp, sp, l, true)
	if err != nil {
		t.Fatalf("GetDeltaX: %v", err)
	}
	if !x.IsZero() {
		t.Fatalf("GetDeltaX over an empty range should be zero, got %s", x.Get())
	}

	y, err := GetDeltaY(sp, sp, l, true)
	if err != nil {
		t.Fatalf("GetDeltaY: %v", err)
	}
	if !y.IsZero() {
		t.Fatalf("GetDeltaY over an empty range should be zero, got %s", y.Get())
	}
}

func TestGetDeltaXRoundingDirection(t *testing.T) {
	a := numeric.SqrtPriceFromInteger(1)
	b, err := TickToSqrtPrice(100)
	if err != nil {
		t.Fatalf("TickToSqrtPrice: %v", err)
	}
	l := numeric.LiquidityFromInteger(1)

	down, err := GetDeltaX(a, b, l, false)
	if err != nil {
		t.Fatalf("GetDeltaX down: %v", err)
	}
	up, err := GetDeltaX(a, b, l, true)
	if err != nil {
		t.Fatalf("GetDeltaX up: %v", err)
	}
	if up.Lt(down) {
		t.Fatalf("rounding up (%s) should never be less than rounding down (%s)", up.Get(), down.Get())
	}
}

func TestGetNextSqrtPriceXUpZeroAmountIsNoop(t *testing.T) {
	starting := numeric.SqrtPriceFromInteger(3)
	l := numeric.LiquidityFromInteger(10)
	next, err := GetNextSqrtPriceXUp(starting, l, numeric.TokenAmountZero(), true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceXUp: %v", err)
	}
	if !next.Eq(starting) {
		t.Fatalf("zero amount should leave sqrt price unchanged, got %s", next.Get())
	}
}

func TestGetNextSqrtPriceXUpAddMovesPriceDown(t *testing.T) {
	starting := numeric.SqrtPriceFromInteger(2)
	l := numeric.LiquidityFromInteger(100)
	amount := numeric.TokenAmountFromU64(10)

	next, err := GetNextSqrtPriceXUp(starting, l, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceXUp: %v", err)
	}
	if !next.Lt(starting) {
		t.Fatalf("adding token X should push sqrt price down: got %s, starting %s", next.Get(), starting.Get())
	}
}

func TestGetNextSqrtPriceXUpRemoveUnderflows(t *testing.T) {
	starting := numeric.SqrtPriceFromInteger(1)
	l := numeric.LiquidityFromInteger(1)
	amount := numeric.TokenAmountMax()

	if _, err := GetNextSqrtPriceXUp(starting, l, amount, false); err == nil {
		t.Fatal("expected denominator under/overflow removing more X than the pool can hold")
	}
}

func TestGetNextSqrtPriceYDownZeroLiquidityErrors(t *testing.T) {
	starting := numeric.SqrtPriceFromInteger(1)
	amount := numeric.TokenAmountFromU64(10)
	if _, err := GetNextSqrtPriceYDown(starting, numeric.LiquidityZero(), amount, true); err == nil {
		t.Fatal("expected division by zero with zero liquidity")
	}
}

func TestGetNextSqrtPriceYDownAddMovesPriceUp(t *testing.T) {
	starting := numeric.SqrtPriceFromInteger(2)
	l := numeric.LiquidityFromInteger(100)
	amount := numeric.TokenAmountFromU64(10)

	next, err := GetNextSqrtPriceYDown(starting, l, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceYDown: %v", err)
	}
	if !next.Gt(starting) {
		t.Fatalf("adding token Y should push sqrt price up: got %s, starting %s", next.Get(), starting.Get())
	}
}

func TestGetNextSqrtPriceFromInputDispatch(t *testing.T) {
	starting := numeric.SqrtPriceFromInteger(2)
	l := numeric.LiquidityFromInteger(100)
	amount := numeric.TokenAmountFromU64(10)

	xToY, err := GetNextSqrtPriceFromInput(starting, l, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceFromInput(xToY): %v", err)
	}
	wantXToY, err := GetNextSqrtPriceXUp(starting, l, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceXUp: %v", err)
	}
	if !xToY.Eq(wantXToY) {
		t.Fatalf("GetNextSqrtPriceFromInput(xToY=true) did not dispatch to GetNextSqrtPriceXUp")
	}

	yToX, err := GetNextSqrtPriceFromInput(starting, l, amount, false)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceFromInput(yToX): %v", err)
	}
	wantYToX, err := GetNextSqrtPriceYDown(starting, l, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceYDown: %v", err)
	}
	if !yToX.Eq(wantYToX) {
		t.Fatalf("GetNextSqrtPriceFromInput(xToY=false) did not dispatch to GetNextSqrtPriceYDown")
	}
}
