package token

import (
	"context"

	"golang.org/x/time/rate"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
)

// Faulty wraps a Transferer and deliberately fails a configurable fraction
// of calls, exercising the ledger's Recoverable/Unrecoverable transfer
// paths (spec.md 4.10, 7). FailEvery N means every Nth call fails; the
// limiter throttles how fast the wrapped transferer can be hit, mirroring
// the teacher's reqLimitPerSecond-guarded RPC pool (pkg/sol.RPCPool) —
// here standing in for the gas/latency budget a real external call would
// consume.
type Faulty struct {
	inner    Transferer
	limiter  *rate.Limiter
	failEvery uint64
	calls    uint64
}

// NewFaulty wraps inner, failing every failEveryNth call (0 disables fault
// injection) and limiting throughput to ratePerSecond calls/sec.
func NewFaulty(inner Transferer, failEveryNth uint64, ratePerSecond float64) *Faulty {
	return &Faulty{
		inner:     inner,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		failEvery: failEveryNth,
	}
}

func (f *Faulty) TransferFrom(ctx context.Context, from, to clmm.ActorID, token clmm.TokenID, amount numeric.TokenAmount) (bool, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return false, err
	}

	f.calls++
	if f.failEvery != 0 && f.calls%f.failEvery == 0 {
		return false, nil
	}
	return f.inner.TransferFrom(ctx, from, to, token, amount)
}
