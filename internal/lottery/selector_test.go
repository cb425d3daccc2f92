package lottery

import (
	"testing"

	"floorlottery/internal/errorx"

	"github.com/stretchr/testify/require"
)

func TestSelectWinners(t *testing.T) {
	floors := []int{3, 4, 5, 6, 7}
	seed := "8230596e8428130f8803fe4d0067466028fcdd827b0c4c9ea8f0f70e21938f3b"

	t.Run("reference draw", func(t *testing.T) {
		winners, err := SelectWinners(seed, floors, 2)
		require.NoError(t, err)
		require.Equal(t, []int{5, 3}, winners)
	})

	t.Run("draw order is a permutation prefix", func(t *testing.T) {
		all, err := SelectWinners(seed, floors, 5)
		require.NoError(t, err)
		require.Equal(t, []int{5, 3, 6, 4, 7}, all)

		two, err := SelectWinners(seed, floors, 2)
		require.NoError(t, err)
		require.Equal(t, all[:2], two)
	})

	t.Run("larger pool", func(t *testing.T) {
		pool := make([]int, 0, 300)
		for f := 2; f < 302; f++ {
			pool = append(pool, f)
		}
		winners, err := SelectWinners("hello", pool, 10)
		require.NoError(t, err)
		require.Equal(t, []int{183, 283, 58, 69, 186, 28, 197, 87, 90, 27}, winners)
	})

	t.Run("with creator and beacon seeds", func(t *testing.T) {
		winners, err := SelectWinners("daf795dc250692e465cede2e7fddc5d733f6f87ea4e7ec9c3879445df4f27ac6", floors, 2)
		require.NoError(t, err)
		require.Equal(t, []int{7, 3}, winners)

		winners, err = SelectWinners("c29c2e1eda1acb8e3dbf92f5d9ad735018bbaa16bbc2142ef26b7626021e87bd", floors, 2)
		require.NoError(t, err)
		require.Equal(t, []int{7, 5}, winners)
	})

	t.Run("no replacement and membership", func(t *testing.T) {
		pool := []int{2, 9, 11, 15, 16, 23, 42, 57}
		for _, s := range []string{"a", "b", "c", "d", seed} {
			winners, err := SelectWinners(s, pool, 6)
			require.NoError(t, err)
			require.Len(t, winners, 6)

			seen := map[int]bool{}
			for _, w := range winners {
				require.Contains(t, pool, w)
				require.False(t, seen[w], "floor %d drawn twice", w)
				seen[w] = true
			}
		}
	})

	t.Run("input pool is untouched", func(t *testing.T) {
		pool := []int{3, 4, 5, 6, 7}
		_, err := SelectWinners(seed, pool, 3)
		require.NoError(t, err)
		require.Equal(t, []int{3, 4, 5, 6, 7}, pool)
	})

	t.Run("too many winners", func(t *testing.T) {
		winners, err := SelectWinners(seed, floors, 10)
		require.ErrorIs(t, err, errorx.ErrValidation)
		require.Nil(t, winners)
	})

	t.Run("non-positive count", func(t *testing.T) {
		_, err := SelectWinners(seed, floors, 0)
		require.ErrorIs(t, err, errorx.ErrValidation)
	})
}

func TestResolveCount(t *testing.T) {
	t.Run("within bounds", func(t *testing.T) {
		n, err := ResolveCount(2, 5, CountStrict)
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("strict rejects excess", func(t *testing.T) {
		_, err := ResolveCount(10, 5, CountStrict)
		require.ErrorIs(t, err, errorx.ErrValidation)
	})

	t.Run("clamp lowers excess", func(t *testing.T) {
		n, err := ResolveCount(10, 5, CountClamp)
		require.NoError(t, err)
		require.Equal(t, 5, n)
	})

	t.Run("non-positive", func(t *testing.T) {
		_, err := ResolveCount(0, 5, CountClamp)
		require.ErrorIs(t, err, errorx.ErrValidation)
		_, err = ResolveCount(-1, 5, CountStrict)
		require.ErrorIs(t, err, errorx.ErrValidation)
	})
}
