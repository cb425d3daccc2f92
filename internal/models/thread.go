package models

import (
	"floorlottery/internal/errorx"
)

// ThreadFacts holds the immutable facts of a forum topic that commit a draw.
// Timestamps are kept verbatim as returned by the forum so the seed material
// can be reproduced byte for byte.
type ThreadFacts struct {
	TopicID           string `json:"topic_id"`
	Title             string `json:"title"`
	CreatedBy         string `json:"created_by"`
	CreatedAt         string `json:"created_at"`
	LastPostedAt      string `json:"last_posted_at,omitempty"`
	HighestPostNumber int    `json:"highest_post_number"`
	CategoryID        int    `json:"category_id"`
	Closed            bool   `json:"closed"`
	Archived          bool   `json:"archived"`
}

// EligibleFloors is the list of replies allowed to take part in a draw, as
// three parallel slices in ascending floor order.
type EligibleFloors struct {
	IDs       []int64  `json:"ids"`
	Numbers   []int    `json:"rows"`
	CreatedAt []string `json:"created"`
}

// Len returns the number of eligible floors.
func (f EligibleFloors) Len() int {
	return len(f.Numbers)
}

// Validate checks the parallel-slice invariant and the ascending, distinct
// floor order.
func (f EligibleFloors) Validate() error {
	if len(f.IDs) != len(f.Numbers) || len(f.CreatedAt) != len(f.Numbers) {
		return errorx.Invariant("有效楼层数据不一致: ids=%d rows=%d created=%d",
			len(f.IDs), len(f.Numbers), len(f.CreatedAt))
	}
	for i := 1; i < len(f.Numbers); i++ {
		if f.Numbers[i] <= f.Numbers[i-1] {
			return errorx.Invariant("有效楼层未按升序排列: %d 位于 %d 之后", f.Numbers[i], f.Numbers[i-1])
		}
	}
	return nil
}

// Truncate keeps the prefix of floors up to and including the last floor
// number <= cutoff. The receiver is not modified.
func (f EligibleFloors) Truncate(cutoff int) EligibleFloors {
	cut := len(f.Numbers)
	for i, n := range f.Numbers {
		if n > cutoff {
			cut = i
			break
		}
	}

	return EligibleFloors{
		IDs:       f.IDs[:min(cut, len(f.IDs))],
		Numbers:   f.Numbers[:cut],
		CreatedAt: f.CreatedAt[:min(cut, len(f.CreatedAt))],
	}
}

// LastCreatedAt returns the creation timestamp of the last eligible floor.
func (f EligibleFloors) LastCreatedAt() (string, bool) {
	if len(f.CreatedAt) == 0 {
		return "", false
	}
	return f.CreatedAt[len(f.CreatedAt)-1], true
}
