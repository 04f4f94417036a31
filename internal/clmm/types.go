package clmm

import (
	"errors"

	"github.com/mr-tron/base58"

	"invariant/internal/numeric"
)

// ActorID identifies a caller or fee receiver. The teacher represents
// on-chain parties as base58-encoded 32-byte public keys
// (solana.PublicKey); solana-go itself isn't wired in here (see
// DESIGN.md), so ActorID keeps just the encoding, not the RPC-facing type.
type ActorID [32]byte

func (a ActorID) String() string { return base58.Encode(a[:]) }

func (a ActorID) IsZero() bool { return a == ActorID{} }

func ActorIDFromBase58(s string) (ActorID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return ActorID{}, err
	}
	if len(raw) != 32 {
		return ActorID{}, errors.New("clmm: actor id must decode to 32 bytes")
	}
	var a ActorID
	copy(a[:], raw)
	return a, nil
}

// TokenID identifies a token mint, using the same 32-byte/base58
// representation as ActorID — grounded on the teacher's treatment of SPL
// mint addresses (WSOL/USDC constants in cmd/quote-service/main.go).
type TokenID [32]byte

func (t TokenID) String() string { return base58.Encode(t[:]) }

func (a TokenID) Less(b TokenID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func TokenIDFromBase58(s string) (TokenID, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return TokenID{}, err
	}
	if len(raw) != 32 {
		return TokenID{}, errors.New("clmm: token id must decode to 32 bytes")
	}
	var t TokenID
	copy(t[:], raw)
	return t, nil
}

// FeeTier is a registered (fee, tick_spacing) pair. Grounded on
// contracts/storage/fee_tier.rs's FeeTier struct (not retained verbatim in
// the pack, but named identically in spec.md 3).
type FeeTier struct {
	Fee         numeric.Percentage
	TickSpacing uint16
}

// PoolKey canonicalizes a pool's identity so that TokenX < TokenY by
// address-byte ordering; NewPoolKey rejects TokenX == TokenY.
type PoolKey struct {
	TokenX  TokenID
	TokenY  TokenID
	FeeTier FeeTier
}

// FeeTierID is the comparable map-key form of FeeTier. FeeTier embeds a
// Percentage, which wraps a *big.Int; two FeeTier values built from equal
// fees but distinct big.Int instances compare != under Go's struct/map-key
// equality, since that compares the pointers, not the referents. FeeTierID
// flattens Fee down to its raw scale-12 integer (well within uint64 for any
// fee below 100%) so FeeTier values can be used as map keys correctly.
type FeeTierID struct {
	FeeRaw      uint64
	TickSpacing uint16
}

// ID returns f's comparable map-key form. See FeeTierID.
func (f FeeTier) ID() FeeTierID {
	return FeeTierID{FeeRaw: f.Fee.Get().Uint64(), TickSpacing: f.TickSpacing}
}

// PoolKeyID is the comparable map-key form of PoolKey, for the same reason
// as FeeTierID: PoolKey embeds a FeeTier.
type PoolKeyID struct {
	TokenX  TokenID
	TokenY  TokenID
	FeeTier FeeTierID
}

// ID returns k's comparable map-key form. See PoolKeyID.
func (k PoolKey) ID() PoolKeyID {
	return PoolKeyID{TokenX: k.TokenX, TokenY: k.TokenY, FeeTier: k.FeeTier.ID()}
}

var ErrTokensAreSame = errors.New("clmm: tokens are the same")

// NewPoolKey canonicalizes the token order, matching
// contracts/storage/pool_key.rs::PoolKey::new (not retained verbatim in the
// pack; behavior restated from spec.md 3's canonicalization rule).
func NewPoolKey(tokenA, tokenB TokenID, feeTier FeeTier) (PoolKey, error) {
	if tokenA == tokenB {
		return PoolKey{}, ErrTokensAreSame
	}
	if tokenA.Less(tokenB) {
		return PoolKey{TokenX: tokenA, TokenY: tokenB, FeeTier: feeTier}, nil
	}
	return PoolKey{TokenX: tokenB, TokenY: tokenA, FeeTier: feeTier}, nil
}
