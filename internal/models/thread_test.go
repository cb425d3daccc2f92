package models

import (
	"testing"

	"floorlottery/internal/errorx"

	"github.com/stretchr/testify/require"
)

func sampleFloors() EligibleFloors {
	return EligibleFloors{
		IDs:     []int64{10, 11, 12, 13, 14},
		Numbers: []int{3, 4, 5, 8, 9},
		CreatedAt: []string{
			"2023-01-01T00:01:00.000Z",
			"2023-01-01T00:02:00.000Z",
			"2023-01-01T00:03:00.000Z",
			"2023-01-01T00:04:00.000Z",
			"2023-01-01T00:05:00.000Z",
		},
	}
}

func TestEligibleFloors_Truncate(t *testing.T) {
	floors := sampleFloors()

	t.Run("cutoff between floors keeps ascending prefix", func(t *testing.T) {
		got := floors.Truncate(7)
		require.Equal(t, []int{3, 4, 5}, got.Numbers)
		require.Equal(t, []int64{10, 11, 12}, got.IDs)
		require.Equal(t, floors.CreatedAt[:3], got.CreatedAt)
		require.NoError(t, got.Validate())
	})

	t.Run("cutoff is inclusive", func(t *testing.T) {
		got := floors.Truncate(8)
		require.Equal(t, []int{3, 4, 5, 8}, got.Numbers)
	})

	t.Run("cutoff past the end keeps everything", func(t *testing.T) {
		got := floors.Truncate(1000)
		require.Equal(t, floors, got)
	})

	t.Run("cutoff before the first floor keeps nothing", func(t *testing.T) {
		got := floors.Truncate(2)
		require.Zero(t, got.Len())
		require.Empty(t, got.IDs)
		require.Empty(t, got.CreatedAt)
	})

	t.Run("receiver is untouched", func(t *testing.T) {
		_ = floors.Truncate(4)
		require.Equal(t, sampleFloors(), floors)
	})
}

func TestEligibleFloors_Validate(t *testing.T) {
	require.NoError(t, sampleFloors().Validate())

	t.Run("mismatched lengths", func(t *testing.T) {
		floors := sampleFloors()
		floors.IDs = floors.IDs[:4]
		require.ErrorIs(t, floors.Validate(), errorx.ErrInvariant)
	})

	t.Run("unordered floors", func(t *testing.T) {
		floors := sampleFloors()
		floors.Numbers = []int{3, 5, 4, 8, 9}
		require.ErrorIs(t, floors.Validate(), errorx.ErrInvariant)
	})

	t.Run("duplicate floors", func(t *testing.T) {
		floors := sampleFloors()
		floors.Numbers = []int{3, 4, 4, 8, 9}
		require.ErrorIs(t, floors.Validate(), errorx.ErrInvariant)
	})
}

func TestEligibleFloors_LastCreatedAt(t *testing.T) {
	last, ok := sampleFloors().LastCreatedAt()
	require.True(t, ok)
	require.Equal(t, "2023-01-01T00:05:00.000Z", last)

	_, ok = EligibleFloors{}.LastCreatedAt()
	require.False(t, ok)
}
