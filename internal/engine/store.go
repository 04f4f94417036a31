// Package engine wires the clmm/tickmap math packages, the ledger, and the
// token collaborator together behind the public command surface: the
// swap orchestrator plus the pool/position/fee-tier/admin operations a
// front-end (the CLI, or a future RPC layer) drives. Grounded on the
// teacher's cmd/quote-service main loop, which holds an in-memory pool
// cache and dispatches one request at a time against it — generalized
// here into a single-threaded engine the caller is responsible for
// serializing, per spec §5.
package engine

import (
	"context"

	"go.uber.org/zap"

	"invariant/internal/clmm"
	"invariant/internal/ledger"
	"invariant/internal/numeric"
	"invariant/internal/tickmap"
	"invariant/internal/token"
)

type tickKey struct {
	poolKey clmm.PoolKeyID
	index   int32
}

// Engine is the in-memory state machine: pools, ticks, positions, the
// tickmap binding swap steps to tick boundaries, the registered fee
// tiers, and the admin/protocol-fee settings spec.md §4.7/§6 describe.
// Its public methods are not internally synchronized (spec §5): a caller
// must serialize calls against one Engine.
type Engine struct {
	pools     map[clmm.PoolKeyID]*clmm.Pool
	ticks     map[tickKey]*clmm.Tick
	positions map[clmm.ActorID][]*clmm.Position
	tickmap   *tickmap.Tickmap
	feeTiers  map[clmm.FeeTierID]bool

	admin       clmm.ActorID
	protocolFee numeric.Percentage

	ledger     *ledger.Ledger
	transferer token.Transferer
	logger     *zap.Logger

	now         func() uint64
	blockNumber func() uint64
}

// New builds an empty engine. clock and blockNumber stand in for the
// host-provided timestamp/slot the original contract receives with every
// call; the CLI front-end supplies real ones, tests supply fixed ones.
func New(admin clmm.ActorID, protocolFee numeric.Percentage, transferer token.Transferer, logger *zap.Logger, clock func() uint64, blockNumber func() uint64) *Engine {
	return &Engine{
		pools:       make(map[clmm.PoolKeyID]*clmm.Pool),
		ticks:       make(map[tickKey]*clmm.Tick),
		positions:   make(map[clmm.ActorID][]*clmm.Position),
		tickmap:     tickmap.New(),
		feeTiers:    make(map[clmm.FeeTierID]bool),
		admin:       admin,
		protocolFee: protocolFee,
		ledger:      ledger.New(),
		transferer:  transferer,
		logger:      logger,
		now:         clock,
		blockNumber: blockNumber,
	}
}

func (e *Engine) requireAdmin(actor clmm.ActorID) error {
	if actor != e.admin {
		return ErrNotAdmin
	}
	return nil
}

func (e *Engine) tick(poolKey clmm.PoolKey, index int32) (*clmm.Tick, bool) {
	t, ok := e.ticks[tickKey{poolKey: poolKey.ID(), index: index}]
	return t, ok
}

func (e *Engine) setTick(poolKey clmm.PoolKey, t *clmm.Tick) {
	e.ticks[tickKey{poolKey: poolKey.ID(), index: t.Index}] = t
}

func (e *Engine) deleteTick(poolKey clmm.PoolKey, index int32) {
	delete(e.ticks, tickKey{poolKey: poolKey.ID(), index: index})
}

// prepareTick returns a tick copy for index under poolKey — an independent
// copy of the stored tick if one is already initialized, or a freshly
// created (not yet committed) one otherwise — and whether it is new. This
// mirrors copyTick's non-mutating discipline (see swap.go) for the
// position commands: CreatePosition/RemovePosition/ClaimFee compute
// against copies and only commitTick writes the result back,
// so a command that fails after this point (e.g. on the ledger step)
// never leaves a half-applied tick behind.
func (e *Engine) prepareTick(poolKey clmm.PoolKey, pool *clmm.Pool, index int32) (*clmm.Tick, bool, error) {
	if t, ok := e.tick(poolKey, index); ok {
		cp := *t
		return &cp, false, nil
	}
	created, err := clmm.CreateTick(index, pool, e.now())
	if err != nil {
		return nil, false, err
	}
	return &created, true, nil
}

// commitTick writes back a tick prepareTick handed out, registering it
// with the tickmap first if isNew is set.
func (e *Engine) commitTick(poolKey clmm.PoolKey, t *clmm.Tick, isNew bool, tickSpacing uint16) {
	if isNew {
		e.tickmap.Flip(true, t.Index, tickSpacing, poolKey)
	}
	e.setTick(poolKey, t)
}

func (e *Engine) pool(poolKey clmm.PoolKey) (*clmm.Pool, bool) {
	p, ok := e.pools[poolKey.ID()]
	return p, ok
}

func (e *Engine) setPool(poolKey clmm.PoolKey, p *clmm.Pool) {
	e.pools[poolKey.ID()] = p
}

func (e *Engine) hasFeeTier(feeTier clmm.FeeTier) bool {
	return e.feeTiers[feeTier.ID()]
}

func (e *Engine) setFeeTier(feeTier clmm.FeeTier, present bool) {
	if present {
		e.feeTiers[feeTier.ID()] = true
		return
	}
	delete(e.feeTiers, feeTier.ID())
}

func (e *Engine) logError(op string, err error, fields ...zap.Field) error {
	e.logger.Error(op, append(fields, zap.Error(err))...)
	return err
}

func (e *Engine) logOK(op string, fields ...zap.Field) {
	e.logger.Info(op, fields...)
}

// transferer/ledger accessors used by the token-movement commands (kept
// unexported; the public surface is the command methods in commands.go).
func (e *Engine) deposit(ctx context.Context, actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) error {
	return e.ledger.Deposit(ctx, e.transferer, actor, tok, amount)
}

func (e *Engine) withdraw(ctx context.Context, actor clmm.ActorID, tok clmm.TokenID, amount *numeric.TokenAmount) (numeric.TokenAmount, error) {
	return e.ledger.Withdraw(ctx, e.transferer, actor, tok, amount)
}
