package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"invariant/internal/clmm"
	"invariant/internal/config"
	"invariant/internal/engine"
	"invariant/internal/numeric"
	"invariant/internal/token"
)

// adminActor and seedTokenX/seedTokenY are fixed stand-ins for the
// addresses a real deployment would take from its own key material; the
// simulator has no wallet of its own, so it mints them the same way
// cmd/quote-service hardcodes WSOL/USDC for its default quote pairs.
var (
	adminActor = clmm.ActorID{0x01}
	seedTokenX = clmm.TokenID{0x01}
	seedTokenY = clmm.TokenID{0x02}
)

// newClock returns a fake clock fixed at the process start time (it does
// not advance between calls), standing in for the host-supplied
// timestamp/slot a real deployment would receive with every call
// (engine.New's clock/blockNumber parameters).
func newClock() func() uint64 {
	start := time.Now().Unix()
	return func() uint64 { return uint64(start) }
}

// buildEngine wires a fresh Engine per cfg, registers cfg's initial fee
// tiers, and opens one pool for (seedTokenX, seedTokenY) at tick 0 under
// the first fee tier — the "seed a pool from config" step both
// subcommands need before they can do anything useful.
func buildEngine(cfg config.Config, logger *zap.Logger) (*engine.Engine, *token.InMemory, clmm.PoolKey, error) {
	if len(cfg.InitialFeeTiers) == 0 {
		return nil, nil, clmm.PoolKey{}, fmt.Errorf("invariant-cli: config has no initial fee tiers to seed a pool under")
	}

	transferer := token.NewInMemory()
	clock := newClock()
	e := engine.New(adminActor, numeric.PercentageFromScale(cfg.ProtocolFeePercent, 12), transferer, logger, clock, clock)

	for _, ft := range cfg.InitialFeeTiers {
		tier := clmm.FeeTier{Fee: numeric.PercentageFromScale(ft.FeePercent, 12), TickSpacing: ft.TickSpacing}
		if err := e.AddFeeTier(adminActor, tier); err != nil {
			return nil, nil, clmm.PoolKey{}, fmt.Errorf("invariant-cli: seeding fee tier: %w", err)
		}
	}

	primary := cfg.InitialFeeTiers[0]
	tier := clmm.FeeTier{Fee: numeric.PercentageFromScale(primary.FeePercent, 12), TickSpacing: primary.TickSpacing}
	initSqrtPrice, err := clmm.TickToSqrtPrice(0)
	if err != nil {
		return nil, nil, clmm.PoolKey{}, fmt.Errorf("invariant-cli: computing initial sqrt price: %w", err)
	}
	poolKey, err := e.CreatePool(adminActor, seedTokenX, seedTokenY, tier, initSqrtPrice, 0)
	if err != nil {
		return nil, nil, clmm.PoolKey{}, fmt.Errorf("invariant-cli: seeding pool: %w", err)
	}

	return e, transferer, poolKey, nil
}

// fundAdmin credits the admin actor's external balance and deposits it into
// the engine ledger, giving the seeded session enough to open a liquidity
// position against before any swaps run.
func fundAdmin(ctx context.Context, e *engine.Engine, transferer *token.InMemory, poolKey clmm.PoolKey, amount numeric.TokenAmount) error {
	transferer.Fund(adminActor, poolKey.TokenX, amount)
	transferer.Fund(adminActor, poolKey.TokenY, amount)
	if err := e.DepositSingleToken(ctx, adminActor, poolKey.TokenX, amount); err != nil {
		return err
	}
	return e.DepositSingleToken(ctx, adminActor, poolKey.TokenY, amount)
}
