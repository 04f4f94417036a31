// Package ledger implements the engine's two-phase external-transfer
// discipline (spec §4.10): a balance reservation is checked and applied
// around every external Transferer call so a failed transfer never
// silently mutates a caller's tracked balance. Structurally modeled on the
// teacher's sync.RWMutex-guarded map idiom (pkg/subscription/manager.go,
// cmd/quote-service/cache.go).
package ledger

import (
	"context"
	"errors"
	"sync"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
	"invariant/internal/token"
)

var (
	ErrNoBalanceForToken          = errors.New("ledger: no balance for the token")
	ErrRecoverableTransferError   = errors.New("ledger: recoverable transfer error")
	ErrUnrecoverableTransferError = errors.New("ledger: unrecoverable transfer error")
)

// Ledger tracks per-actor, per-token balances reserved inside the engine
// (as opposed to the external Transferer's own balance sheet).
type Ledger struct {
	mu       sync.RWMutex
	balances map[clmm.ActorID]map[clmm.TokenID]numeric.TokenAmount
}

func New() *Ledger {
	return &Ledger{balances: make(map[clmm.ActorID]map[clmm.TokenID]numeric.TokenAmount)}
}

// CanIncrease reports whether crediting amount to actor/token would not
// overflow TokenAmount's width.
func (l *Ledger) CanIncrease(actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	current := l.balanceLocked(actor, tok)
	_, err := current.CheckedAdd(amount)
	return err == nil
}

// Increase credits actor's reserved balance for tok.
func (l *Ledger) Increase(actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.balanceLocked(actor, tok)
	next, err := current.CheckedAdd(amount)
	if err != nil {
		return err
	}
	l.setLocked(actor, tok, next)
	return nil
}

// Decrease debits actor's reserved balance for tok; amount == nil drains
// the entire balance. Grounded on spec.md 4.10's "decrease with None means
// drain entire balance; explicit Some(a) requires a <= balance".
func (l *Ledger) Decrease(actor clmm.ActorID, tok clmm.TokenID, amount *numeric.TokenAmount) (numeric.TokenAmount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.balanceLocked(actor, tok)
	if current.IsZero() && amount == nil {
		return numeric.TokenAmount{}, ErrNoBalanceForToken
	}

	var drained numeric.TokenAmount
	if amount == nil {
		drained = current
		l.setLocked(actor, tok, numeric.TokenAmountZero())
		return drained, nil
	}

	if current.Lt(*amount) {
		return numeric.TokenAmount{}, ErrNoBalanceForToken
	}
	next, err := current.CheckedSub(*amount)
	if err != nil {
		return numeric.TokenAmount{}, err
	}
	l.setLocked(actor, tok, next)
	return *amount, nil
}

func (l *Ledger) Balance(actor clmm.ActorID, tok clmm.TokenID) numeric.TokenAmount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(actor, tok)
}

func (l *Ledger) balanceLocked(actor clmm.ActorID, tok clmm.TokenID) numeric.TokenAmount {
	perToken, ok := l.balances[actor]
	if !ok {
		return numeric.TokenAmountZero()
	}
	amount, ok := perToken[tok]
	if !ok {
		return numeric.TokenAmountZero()
	}
	return amount
}

func (l *Ledger) setLocked(actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) {
	if amount.IsZero() {
		if perToken, ok := l.balances[actor]; ok {
			delete(perToken, tok)
			if len(perToken) == 0 {
				delete(l.balances, actor)
			}
		}
		return
	}

	perToken, ok := l.balances[actor]
	if !ok {
		perToken = make(map[clmm.TokenID]numeric.TokenAmount)
		l.balances[actor] = perToken
	}
	perToken[tok] = amount
}

// Deposit runs the two-phase deposit discipline for a single token: it
// first checks CanIncrease, then calls the Transferer, and only credits
// the ledger on success. Grounded on spec.md 4.10's Deposit description.
func (l *Ledger) Deposit(ctx context.Context, transferer token.Transferer, actor clmm.ActorID, tok clmm.TokenID, amount numeric.TokenAmount) error {
	if !l.CanIncrease(actor, tok, amount) {
		return errors.New("ledger: deposit would overflow balance")
	}

	ok, err := transferer.TransferFrom(ctx, actor, actor, tok, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRecoverableTransferError
	}
	return l.Increase(actor, tok, amount)
}

// DepositPair runs Deposit for two tokens, classifying a partial failure
// as recoverable (the successful leg is already credited, so the caller
// can withdraw it) and a total failure as unrecoverable. Grounded on
// spec.md 4.10's "if two tokens are transferred concurrently and one
// fails" clause.
func (l *Ledger) DepositPair(ctx context.Context, transferer token.Transferer, actor clmm.ActorID, tokenX, tokenY clmm.TokenID, amountX, amountY numeric.TokenAmount) error {
	errX := l.Deposit(ctx, transferer, actor, tokenX, amountX)
	errY := l.Deposit(ctx, transferer, actor, tokenY, amountY)

	if errX == nil && errY == nil {
		return nil
	}
	if errX != nil && errY != nil {
		return ErrUnrecoverableTransferError
	}
	return ErrRecoverableTransferError
}

// Withdraw runs the two-phase withdrawal discipline: Decrease happens
// synchronously first (releasing the reservation), then the external
// transfer is attempted; on failure the decrement is NOT reverted, per
// spec.md 4.10 ("the decrement stays — the user must request again").
func (l *Ledger) Withdraw(ctx context.Context, transferer token.Transferer, actor clmm.ActorID, tok clmm.TokenID, amount *numeric.TokenAmount) (numeric.TokenAmount, error) {
	drained, err := l.Decrease(actor, tok, amount)
	if err != nil {
		return numeric.TokenAmount{}, err
	}

	ok, err := transferer.TransferFrom(ctx, actor, actor, tok, drained)
	if err != nil {
		return numeric.TokenAmount{}, err
	}
	if !ok {
		return numeric.TokenAmount{}, ErrRecoverableTransferError
	}
	return drained, nil
}
