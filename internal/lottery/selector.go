package lottery

import (
	"floorlottery/internal/errorx"
	"floorlottery/internal/prng"
)

// CountPolicy decides what happens when more winners are requested than
// there are eligible floors.
type CountPolicy int

const (
	// CountStrict rejects the draw.
	CountStrict CountPolicy = iota
	// CountClamp lowers the count to the number of eligible floors.
	CountClamp
)

// ResolveCount applies policy to a requested winner count.
func ResolveCount(requested, eligible int, policy CountPolicy) (int, error) {
	if requested <= 0 {
		return 0, errorx.Validation("中奖人数必须为大于0的整数")
	}
	if requested <= eligible {
		return requested, nil
	}
	if policy == CountClamp {
		return eligible, nil
	}
	return 0, errorx.Validation("中奖人数(%d)不能大于有效楼层数(%d)", requested, eligible)
}

// SelectWinners draws count distinct floors from floors without replacement.
// The generator is seeded from seed; each round picks a uniform index into
// the remaining pool, records that floor and removes it while keeping the
// rest of the pool in order. The result is in draw order. floors is not
// modified.
func SelectWinners(seed string, floors []int, count int) ([]int, error) {
	if count <= 0 {
		return nil, errorx.Validation("中奖人数必须为大于0的整数")
	}
	if count > len(floors) {
		return nil, errorx.Validation("中奖人数(%d)不能大于有效楼层数(%d)", count, len(floors))
	}

	rng := prng.NewFromString(seed)
	pool := make([]int, len(floors))
	copy(pool, floors)

	winners := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx := rng.RandBelow(len(pool))
		winners = append(winners, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return winners, nil
}
