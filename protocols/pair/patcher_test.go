package pair

import (
	"testing"

	"github.com/defistate/pairpool-go/protocols/pair/calculator/safemath"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(a1, a2 uint64) Pool {
	return Pool{
		Token1: Token{Amount: uint256.NewInt(a1), Asset: NativeAsset{Denom: "uatom"}},
		Token2: Token{Amount: uint256.NewInt(a2), Asset: NativeAsset{Denom: "uosmo"}},
	}
}

func TestPatcher(t *testing.T) {
	t.Run("should add to both slots", func(t *testing.T) {
		prev := newPool(100, 200)
		diff := PoolDiff{
			Token1: SlotDelta{Added: uint256.NewInt(50)},
			Token2: SlotDelta{Added: uint256.NewInt(100)},
		}

		next, err := Patcher(prev, diff)
		require.NoError(t, err)
		assert.Equal(t, uint64(150), next.Token1.Amount.Uint64())
		assert.Equal(t, uint64(300), next.Token2.Amount.Uint64())
		assert.Equal(t, prev.Token1.Asset, next.Token1.Asset, "assets must be carried over")
	})

	t.Run("should add to one slot and remove from the other", func(t *testing.T) {
		prev := newPool(150, 300)
		diff := PoolDiff{
			Token1: SlotDelta{Added: uint256.NewInt(50)},
			Token2: SlotDelta{Removed: uint256.NewInt(75)},
		}

		next, err := Patcher(prev, diff)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), next.Token1.Amount.Uint64())
		assert.Equal(t, uint64(225), next.Token2.Amount.Uint64())
	})

	t.Run("should not mutate the previous state", func(t *testing.T) {
		prev := newPool(10, 20)
		next, err := Patcher(prev, PoolDiff{Token1: SlotDelta{Added: uint256.NewInt(5)}})
		require.NoError(t, err)

		next.Token2.Amount.SetUint64(999)
		assert.Equal(t, uint64(10), prev.Token1.Amount.Uint64())
		assert.Equal(t, uint64(20), prev.Token2.Amount.Uint64())
	})

	t.Run("should fail when a reserve would go negative", func(t *testing.T) {
		_, err := Patcher(newPool(10, 20), PoolDiff{Token2: SlotDelta{Removed: uint256.NewInt(21)}})
		assert.ErrorIs(t, err, safemath.ErrOverflow)
	})

	t.Run("should fail when a reserve would overflow", func(t *testing.T) {
		prev := newPool(0, 0)
		prev.Token1.Amount = safemath.Max()
		_, err := Patcher(prev, PoolDiff{Token1: SlotDelta{Added: uint256.NewInt(1)}})
		assert.ErrorIs(t, err, safemath.ErrOverflow)
	})

	t.Run("should handle an empty diff", func(t *testing.T) {
		prev := newPool(7, 9)
		diff := PoolDiff{}
		assert.True(t, diff.IsEmpty())

		next, err := Patcher(prev, diff)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), next.Token1.Amount.Uint64())
		assert.Equal(t, uint64(9), next.Token2.Amount.Uint64())
	})
}
