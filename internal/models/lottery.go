package models

import "time"

// DrawRequest describes one draw as submitted by a caller. LastFloor is an
// inclusive upper bound on eligible floor numbers.
type DrawRequest struct {
	TopicURL     string `json:"topic_url"`
	WinnersCount int    `json:"winners_count"`
	LastFloor    *int   `json:"last_floor,omitempty"`
	UseBeacon    bool   `json:"use_drand"`
	Cookies      string `json:"-"`
}

// BeaconRound is one published value of the public randomness beacon.
type BeaconRound struct {
	Round      int64  `json:"round"`
	Randomness string `json:"randomness"`
}

// DrawResult is the outcome of a completed draw. WinningFloors is in draw
// order: index 0 was drawn first.
type DrawResult struct {
	ID            string         `json:"id,omitempty"`
	TopicURL      string         `json:"topic_url"`
	ThreadURL     string         `json:"thread_url"`
	Thread        ThreadFacts    `json:"thread"`
	Floors        EligibleFloors `json:"-"`
	WinnersCount  int            `json:"winners_count"`
	FinalSeed     string         `json:"final_seed"`
	WinningFloors []int          `json:"winning_floors"`
	WinningURLs   []string       `json:"winning_urls"`
	Beacon        *BeaconRound   `json:"drand_randomness,omitempty"`
	SeedContent   string         `json:"seed_content"`
	DrawnAt       time.Time      `json:"drawn_at"`
}

// ValidFloors returns the eligible floor numbers in ascending order.
func (r *DrawResult) ValidFloors() []int {
	return r.Floors.Numbers
}

// DrawRecord is the persisted audit entry of a draw.
type DrawRecord struct {
	ID               string `gorm:"primaryKey"`
	TopicID          string `gorm:"index"`
	TopicURL         string
	Title            string
	WinnersCount     int
	ValidFloors      string
	WinningFloors    string
	SeedContent      string
	FinalSeed        string `gorm:"index"`
	UseBeacon        bool
	BeaconRound      int64
	BeaconRandomness string
	CreatedAt        time.Time
}

// VerifyResult compares a stored draw with a fresh recomputation.
type VerifyResult struct {
	ID                string `json:"id"`
	FinalSeed         string `json:"final_seed"`
	RecomputedSeed    string `json:"recomputed_seed"`
	WinningFloors     []int  `json:"winning_floors"`
	RecomputedWinners []int  `json:"recomputed_winners"`
	Valid             bool   `json:"valid"`
}
