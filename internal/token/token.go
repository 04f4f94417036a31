// Package token stands in for the external fungible-token program the
// ledger's two-phase transfer discipline depends on (spec §6's Token
// collaborator). Grounded on the teacher's treatment of external
// collaborators as narrow interfaces (pkg/sol.Client is called only
// through a handful of methods from pkg/router/pkg/protocol).
package token

import (
	"context"
	"errors"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
)

// ErrInsufficientBalance names an insufficient-balance failure. The
// in-memory Transferer does not return it: when the sender's modeled
// balance can't cover the transfer, InMemory.TransferFrom reports
// (false, nil).
var ErrInsufficientBalance = errors.New("token: insufficient balance")

// Transferer is the external token program's narrow surface: move amount
// of token from from to to, reporting whether the transfer succeeded.
// Grounded on spec.md 6's "TransferFrom(from, to, amount) -> bool".
type Transferer interface {
	TransferFrom(ctx context.Context, from, to clmm.ActorID, token clmm.TokenID, amount numeric.TokenAmount) (bool, error)
}

// InMemory is a balance-sheet Transferer for tests and the CLI: it always
// succeeds unless the sender's modeled balance is insufficient, and it has
// no notion of an external chain to fail against.
type InMemory struct {
	balances map[clmm.ActorID]map[clmm.TokenID]numeric.TokenAmount
}

func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[clmm.ActorID]map[clmm.TokenID]numeric.TokenAmount)}
}

// Fund credits an actor's external (off-ledger) balance, e.g. to seed a
// CLI session before any deposits.
func (m *InMemory) Fund(actor clmm.ActorID, token clmm.TokenID, amount numeric.TokenAmount) {
	perToken, ok := m.balances[actor]
	if !ok {
		perToken = make(map[clmm.TokenID]numeric.TokenAmount)
		m.balances[actor] = perToken
	}
	current, ok := perToken[token]
	if !ok {
		current = numeric.TokenAmountZero()
	}
	perToken[token] = current.Add(amount)
}

func (m *InMemory) TransferFrom(_ context.Context, from, to clmm.ActorID, token clmm.TokenID, amount numeric.TokenAmount) (bool, error) {
	fromBalances, ok := m.balances[from]
	if !ok {
		return false, nil
	}
	current, ok := fromBalances[token]
	if !ok || current.Lt(amount) {
		return false, nil
	}

	fromBalances[token] = current.Sub(amount)
	if fromBalances[token].IsZero() {
		delete(fromBalances, token)
	}
	if len(fromBalances) == 0 {
		delete(m.balances, from)
	}

	toBalances, ok := m.balances[to]
	if !ok {
		toBalances = make(map[clmm.TokenID]numeric.TokenAmount)
		m.balances[to] = toBalances
	}
	existing, ok := toBalances[token]
	if !ok {
		existing = numeric.TokenAmountZero()
	}
	toBalances[token] = existing.Add(amount)

	return true, nil
}
