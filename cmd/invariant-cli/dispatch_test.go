package main

import (
	"context"
	"testing"

	"invariant/internal/clmm"
	"invariant/internal/config"
	"invariant/internal/engine"
	"invariant/internal/logging"
	"invariant/internal/numeric"
)

func newTestSession(t *testing.T) (*engine.Engine, clmm.PoolKey) {
	t.Helper()
	cfg := config.Default()
	e, transferer, poolKey, err := buildEngine(cfg, logging.Noop())
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	ctx := context.Background()
	if err := fundAdmin(ctx, e, transferer, poolKey, numeric.TokenAmountFromU64(1_000_000_000_000)); err != nil {
		t.Fatalf("fundAdmin: %v", err)
	}
	return e, poolKey
}

func TestDispatchCreatePositionThenSwap(t *testing.T) {
	e, poolKey := newTestSession(t)
	ctx := context.Background()

	createResp := dispatch(ctx, e, poolKey, Request{
		Op:        "create_position",
		LowerTick: -1000,
		UpperTick: 1000,
		Liquidity: "1000000000000",
	})
	if !createResp.OK {
		t.Fatalf("create_position failed: %s", createResp.Error)
	}

	depositResp := dispatch(ctx, e, poolKey, Request{
		Op:     "deposit_single_token",
		XToY:   true,
		Amount: "1000",
	})
	if !depositResp.OK {
		t.Fatalf("deposit_single_token failed: %s", depositResp.Error)
	}

	swapResp := dispatch(ctx, e, poolKey, Request{
		Op:         "swap",
		XToY:       true,
		ByAmountIn: true,
		Amount:     "10",
	})
	if !swapResp.OK {
		t.Fatalf("swap failed: %s", swapResp.Error)
	}
	if swapResp.AmountOut == "" || swapResp.AmountOut == "0" {
		t.Fatalf("swap against a liquid pool produced no output: %+v", swapResp)
	}
}

func TestDispatchUnknownOp(t *testing.T) {
	e, poolKey := newTestSession(t)
	resp := dispatch(context.Background(), e, poolKey, Request{Op: "not_a_real_op"})
	if resp.OK {
		t.Fatal("dispatch of an unknown op should fail")
	}
}

func TestDispatchQuoteDoesNotRequireFunds(t *testing.T) {
	e, poolKey := newTestSession(t)

	// seed liquidity so the quote has something to fill against.
	if resp := dispatch(context.Background(), e, poolKey, Request{
		Op: "create_position", LowerTick: -1000, UpperTick: 1000, Liquidity: "1000000000000",
	}); !resp.OK {
		t.Fatalf("create_position: %s", resp.Error)
	}

	resp := dispatch(context.Background(), e, poolKey, Request{
		Op: "quote", XToY: true, ByAmountIn: true, Amount: "10",
	})
	if !resp.OK {
		t.Fatalf("quote failed: %s", resp.Error)
	}
}
