package engine

import (
	"context"

	"invariant/internal/clmm"
	"invariant/internal/logging"
	"invariant/internal/numeric"
	"invariant/internal/token"
)

var (
	testAdmin  = clmm.ActorID{0xAD, 0x01}
	testActorA = clmm.ActorID{0xAC, 0x0A}
	testActorB = clmm.ActorID{0xAC, 0x0B}
	testTokenX = clmm.TokenID{0x01}
	testTokenY = clmm.TokenID{0x02}
)

// newTestEngine builds an Engine with a fixed clock/block number and an
// InMemory transferer, matching the teacher's preference for a fake
// collaborator over a mock in package tests (pkg/sol tests use the same
// in-memory-double idiom).
func newTestEngine() (*Engine, *token.InMemory) {
	transferer := token.NewInMemory()
	e := New(testAdmin, numeric.PercentageFromScale(1, 2), transferer, logging.Noop(),
		func() uint64 { return 1000 },
		func() uint64 { return 1 },
	)
	return e, transferer
}

var testFeeTier = clmm.FeeTier{Fee: numeric.PercentageFromScale(1, 3), TickSpacing: 1}

// fundAndDeposit credits actor's external balance and moves it into the
// engine ledger in one step, the precondition every position/swap test
// needs before it can call a ledger-debiting command.
func fundAndDeposit(e *Engine, transferer *token.InMemory, actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) error {
	transferer.Fund(actor, tok, amount)
	return e.DepositSingleToken(context.Background(), actor, tok, amount)
}

// setupPool registers testFeeTier, opens a pool at tick 0 for (testTokenX,
// testTokenY), and returns its canonical key.
func setupPool(e *Engine) (clmm.PoolKey, error) {
	if err := e.AddFeeTier(testAdmin, testFeeTier); err != nil {
		return clmm.PoolKey{}, err
	}
	initSqrtPrice, err := clmm.TickToSqrtPrice(0)
	if err != nil {
		return clmm.PoolKey{}, err
	}
	return e.CreatePool(testAdmin, testTokenX, testTokenY, testFeeTier, initSqrtPrice, 0)
}
