package clmm

import (
	"testing"

	"invariant/internal/numeric"
)

// want values are the domain limits' own precomputed constants
// (MaxSqrtPrice/MinSqrtPrice), which calc/math/types/sqrt_price.rs's
// test_sqrt_price_limitation checks equal TickToSqrtPrice(MaxTick)/
// TickToSqrtPrice(MinTick).
func TestTickToSqrtPriceKnownValues(t *testing.T) {
	cases := []struct {
		tick int32
		want numeric.SqrtPrice
	}{
		{0, numeric.SqrtPriceOne()},
		{MaxTick, MaxSqrtPrice},
		{MinTick, MinSqrtPrice},
	}
	for _, c := range cases {
		got, err := TickToSqrtPrice(c.tick)
		if err != nil {
			t.Fatalf("TickToSqrtPrice(%d): %v", c.tick, err)
		}
		if !got.Eq(c.want) {
			t.Fatalf("TickToSqrtPrice(%d) = %s, want %s", c.tick, got.Get(), c.want.Get())
		}
	}
}

func TestTickToSqrtPriceOverBounds(t *testing.T) {
	if _, err := TickToSqrtPrice(MaxTick + 1); err == nil {
		t.Fatal("expected tick over bounds error above MaxTick")
	}
	if _, err := TickToSqrtPrice(MinTick - 1); err == nil {
		t.Fatal("expected tick over bounds error below MinTick")
	}
}

func TestGetTickAtSqrtPriceInvertsTickToSqrtPrice(t *testing.T) {
	for _, tick := range []int32{0, 100, -100, 20_000, -20_000} {
		sp, err := TickToSqrtPrice(tick)
		if err != nil {
			t.Fatalf("TickToSqrtPrice(%d): %v", tick, err)
		}
		got, err := GetTickAtSqrtPrice(sp, 1)
		if err != nil {
			t.Fatalf("GetTickAtSqrtPrice: %v", err)
		}
		if got != tick {
			t.Fatalf("GetTickAtSqrtPrice(TickToSqrtPrice(%d)) = %d, want %d", tick, got, tick)
		}
	}
}

func TestGetMaxMinTickRespectTickSpacing(t *testing.T) {
	const spacing = 4
	max := GetMaxTick(spacing)
	if max%spacing != 0 {
		t.Fatalf("GetMaxTick(%d) = %d is not a multiple of spacing", spacing, max)
	}
	if max > MaxTick {
		t.Fatalf("GetMaxTick(%d) = %d exceeds MaxTick", spacing, max)
	}
	if GetMinTick(spacing) != -max {
		t.Fatalf("GetMinTick(%d) = %d, want %d", spacing, GetMinTick(spacing), -max)
	}
}

func TestCheckTickToSqrtPriceRelationship(t *testing.T) {
	const spacing = 10
	sp, err := TickToSqrtPrice(0)
	if err != nil {
		t.Fatalf("TickToSqrtPrice: %v", err)
	}
	ok, err := CheckTickToSqrtPriceRelationship(0, spacing, sp)
	if err != nil {
		t.Fatalf("CheckTickToSqrtPriceRelationship: %v", err)
	}
	if !ok {
		t.Fatal("sqrt price at tick 0 should satisfy the relationship for tick 0")
	}

	nextSP, err := TickToSqrtPrice(spacing)
	if err != nil {
		t.Fatalf("TickToSqrtPrice(spacing): %v", err)
	}
	ok, err = CheckTickToSqrtPriceRelationship(0, spacing, nextSP)
	if err != nil {
		t.Fatalf("CheckTickToSqrtPriceRelationship: %v", err)
	}
	if ok {
		t.Fatal("sqrt price at the next tick should not satisfy the relationship for tick 0")
	}
}
