// Package tickmap implements the sparse bitset of initialized tick
// indices, one bitset per pool, with the bounded next/prev-initialized
// search the swap orchestrator relies on. Grounded on
// contracts/collections/tickmap.rs.
package tickmap

import (
	"errors"
	"math/bits"

	"invariant/internal/clmm"
	"invariant/internal/numeric"
)

const (
	ChunkSize       = 64
	TickSearchRange = 256
)

// ErrTickLimitReached mirrors the source's TickLimitReached: the swap
// walked all the way to the bounded search limit without finding either an
// initialized tick or the caller's own price limit.
var ErrTickLimitReached = errors.New("clmm: tick limit reached")

type chunkKey struct {
	chunk   uint16
	poolKey clmm.PoolKeyID
}

// Tickmap holds one 64-bit chunk per (chunk index, pool) pair; a pool with
// no initialized ticks near a given chunk simply has no entry, which reads
// as all-zero.
type Tickmap struct {
	bitmap map[chunkKey]uint64
}

func New() *Tickmap {
	return &Tickmap{bitmap: make(map[chunkKey]uint64)}
}

func (m *Tickmap) chunkValue(chunk uint16, poolKey clmm.PoolKey) uint64 {
	return m.bitmap[chunkKey{chunk: chunk, poolKey: poolKey.ID()}]
}

// TickToPosition maps a tick index to its (chunk, bit) coordinates within
// the bitset. Grounded on tickmap.rs::tick_to_position.
func TickToPosition(tick int32, tickSpacing uint16) (uint16, uint8) {
	bitmapIndex := (tick + clmm.MaxTick) / int32(tickSpacing)
	chunk := uint16(bitmapIndex / ChunkSize)
	bit := uint8(bitmapIndex % ChunkSize)
	return chunk, bit
}

// PositionToTick inverts TickToPosition. Grounded on
// tickmap.rs::position_to_tick.
func PositionToTick(chunk uint16, bit uint8, tickSpacing uint16) int32 {
	tickRangeLimit := clmm.GetMaxTick(tickSpacing)
	return int32(chunk)*ChunkSize*int32(tickSpacing) + int32(bit)*int32(tickSpacing) - tickRangeLimit
}

func getBitAtPosition(value uint64, position uint8) uint64 {
	return (value >> position) & 1
}

func flipBitAtPosition(value uint64, position uint8) uint64 {
	return value ^ (1 << position)
}

// GetSearchLimit bounds a next/prev-initialized scan to at most
// TickSearchRange tick_spacing-steps away, clamped to the domain edge.
// Grounded on tickmap.rs::get_search_limit.
func GetSearchLimit(tick int32, tickSpacing uint16, up bool) int32 {
	index := tick / int32(tickSpacing)

	var limit int32
	if up {
		rangeLimit := index + TickSearchRange
		sqrtPriceLimit := clmm.MaxTick / int32(tickSpacing)
		limit = min32(rangeLimit, sqrtPriceLimit)
	} else {
		rangeLimit := index - TickSearchRange
		sqrtPriceLimit := -clmm.MaxTick / int32(tickSpacing)
		limit = max32(rangeLimit, sqrtPriceLimit)
	}
	return limit * int32(tickSpacing)
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Get reports whether tick is initialized for poolKey.
func (m *Tickmap) Get(tick int32, tickSpacing uint16, poolKey clmm.PoolKey) bool {
	chunk, bit := TickToPosition(tick, tickSpacing)
	return getBitAtPosition(m.chunkValue(chunk, poolKey), bit) == 1
}

// Flip toggles tick's bit, requiring the caller to already know the bit's
// current state (the source asserts this invariant rather than silently
// tolerating a double-initialize or double-deinitialize).
func (m *Tickmap) Flip(value bool, tick int32, tickSpacing uint16, poolKey clmm.PoolKey) {
	chunk, bit := TickToPosition(tick, tickSpacing)
	key := chunkKey{chunk: chunk, poolKey: poolKey.ID()}
	current := m.bitmap[key]

	if (getBitAtPosition(current, bit) == 0) != value {
		panic("tickmap: tick initialize tick again")
	}

	m.bitmap[key] = flipBitAtPosition(current, bit)
}

// NextInitialized searches upward from tick (exclusive) for the nearest
// initialized tick within GetSearchLimit, returning ok=false if none is
// found in range. Grounded on tickmap.rs::Tickmap::next_initialized.
func (m *Tickmap) NextInitialized(tick int32, tickSpacing uint16, poolKey clmm.PoolKey) (int32, bool) {
	limit := GetSearchLimit(tick, tickSpacing, true)

	if tick+int32(tickSpacing) > clmm.MaxTick {
		return 0, false
	}

	chunk, bit := TickToPosition(tick+int32(tickSpacing), tickSpacing)
	limitingChunk, limitingBit := TickToPosition(limit, tickSpacing)

	for chunk < limitingChunk || (chunk == limitingChunk && bit <= limitingBit) {
		shifted := m.chunkValue(chunk, poolKey) >> bit

		if shifted != 0 {
			advance := uint8(bits.TrailingZeros64(shifted))
			bit += advance

			if chunk < limitingChunk || (chunk == limitingChunk && bit <= limitingBit) {
				index := int32(chunk)*ChunkSize + int32(bit)
				return (index - clmm.MaxTick/int32(tickSpacing)) * int32(tickSpacing), true
			}
			return 0, false
		}

		chunk++
		bit = 0
	}
	return 0, false
}

// PrevInitialized searches downward from tick (inclusive) for the nearest
// initialized tick within GetSearchLimit. Grounded on
// tickmap.rs::Tickmap::prev_initialized.
func (m *Tickmap) PrevInitialized(tick int32, tickSpacing uint16, poolKey clmm.PoolKey) (int32, bool) {
	limit := GetSearchLimit(tick, tickSpacing, false)
	chunk, bit := TickToPosition(tick, tickSpacing)
	limitingChunk, limitingBit := TickToPosition(limit, tickSpacing)

	for chunk > limitingChunk || (chunk == limitingChunk && bit >= limitingBit) {
		value := m.chunkValue(chunk, poolKey)
		mask := uint64(1) << bit

		if value&((mask<<1)-1) != 0 {
			for value&mask == 0 {
				mask >>= 1
				bit--
			}
			if chunk > limitingChunk || (chunk == limitingChunk && bit >= limitingBit) {
				index := int32(chunk)*ChunkSize + int32(bit)
				return (index - clmm.MaxTick/int32(tickSpacing)) * int32(tickSpacing), true
			}
			return 0, false
		}

		if chunk == 0 {
			return 0, false
		}
		chunk--
		bit = ChunkSize - 1
	}
	return 0, false
}

// LimitingTick is the (index, initialized) pair GetCloserLimit binds to,
// mirroring the source's Option<(i32, bool)>; a nil *LimitingTick means the
// caller's own sqrtPriceLimit bound the step, not a tick.
type LimitingTick struct {
	Index       int32
	Initialized bool
}

// GetCloserLimit finds the nearer of (a) the closest initialized tick in
// the swap direction or (b) the caller's sqrtPriceLimit, returning the
// sqrt-price to swap toward and, when a tick bound it, which one. Grounded
// on tickmap.rs::Tickmap::get_closer_limit.
func (m *Tickmap) GetCloserLimit(sqrtPriceLimit numeric.SqrtPrice, xToY bool, currentTick int32, tickSpacing uint16, poolKey clmm.PoolKey) (numeric.SqrtPrice, *LimitingTick, error) {
	var closestTick int32
	var found bool
	if xToY {
		closestTick, found = m.PrevInitialized(currentTick, tickSpacing, poolKey)
	} else {
		closestTick, found = m.NextInitialized(currentTick, tickSpacing, poolKey)
	}

	if found {
		sqrtPrice, err := clmm.TickToSqrtPrice(closestTick)
		if err != nil {
			return numeric.SqrtPrice{}, nil, err
		}

		if (xToY && sqrtPrice.Gt(sqrtPriceLimit)) || (!xToY && sqrtPrice.Lt(sqrtPriceLimit)) {
			return sqrtPrice, &LimitingTick{Index: closestTick, Initialized: true}, nil
		}
		return sqrtPriceLimit, nil, nil
	}

	index := GetSearchLimit(currentTick, tickSpacing, !xToY)
	sqrtPrice, err := clmm.TickToSqrtPrice(index)
	if err != nil {
		return numeric.SqrtPrice{}, nil, err
	}

	if currentTick == index {
		return numeric.SqrtPrice{}, nil, ErrTickLimitReached
	}

	if (xToY && sqrtPrice.Gt(sqrtPriceLimit)) || (!xToY && sqrtPrice.Lt(sqrtPriceLimit)) {
		return sqrtPrice, &LimitingTick{Index: index, Initialized: false}, nil
	}
	return sqrtPriceLimit, nil, nil
}
