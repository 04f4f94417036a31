package numeric

import "testing"

func TestLiquidityAddSub(t *testing.T) {
	a := LiquidityFromInteger(100)
	b := LiquidityFromInteger(40)
	sum, err := a.CheckedAdd(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Eq(LiquidityFromInteger(140)) {
		t.Fatalf("100 + 40 = %s, want 140", sum.Get())
	}
	diff, err := sum.CheckedSub(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.Eq(a) {
		t.Fatalf("140 - 40 = %s, want 100", diff.Get())
	}
}

func TestLiquiditySubUnderflowErrors(t *testing.T) {
	a := LiquidityFromInteger(1)
	b := LiquidityFromInteger(2)
	if _, err := a.CheckedSub(b); err == nil {
		t.Fatal("expected underflow error")
	}
}

func TestLiquidityAddOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on overflow")
		}
	}()
	LiquidityMax().Add(LiquidityFromInteger(1))
}

func TestLiquidityOneMatchesScale(t *testing.T) {
	if LiquidityOne().Cmp(pow10(LiquidityScale)) != 0 {
		t.Fatalf("LiquidityOne() = %s, want 10^%d", LiquidityOne(), LiquidityScale)
	}
}
