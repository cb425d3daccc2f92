package report

import (
	"floorlottery/internal/lottery"
	"floorlottery/internal/models"
)

// Response is the JSON body returned by the draw endpoint.
type Response struct {
	ID                string `json:"id,omitempty"`
	TopicURL          string `json:"topic_url"`
	Title             string `json:"title"`
	CreatedAt         int64  `json:"created_at"`
	LastPostedAt      *int64 `json:"last_posted_at"`
	HighestPostNumber int    `json:"highest_post_number"`
	ValidPostNumbers  []int  `json:"valid_post_numbers"`
	WinnersCount      int    `json:"winners_count"`
	FinalSeed         string `json:"final_seed"`
	WinningFloors     []int  `json:"winning_floors"`
	// DrandRandomness is [randomness, round], or null without a beacon.
	DrandRandomness []any `json:"drand_randomness"`
}

// NewResponse converts a draw result into its API shape.
func NewResponse(result *models.DrawResult) Response {
	resp := Response{
		ID:                result.ID,
		TopicURL:          result.TopicURL,
		Title:             result.Thread.Title,
		HighestPostNumber: result.Thread.HighestPostNumber,
		ValidPostNumbers:  result.ValidFloors(),
		WinnersCount:      result.WinnersCount,
		FinalSeed:         result.FinalSeed,
		WinningFloors:     result.WinningFloors,
	}

	if t, err := lottery.ParseTimestamp(result.Thread.CreatedAt); err == nil {
		resp.CreatedAt = t.Unix()
	}
	if t, err := lottery.ParseTimestamp(result.Thread.LastPostedAt); err == nil {
		unix := t.Unix()
		resp.LastPostedAt = &unix
	}
	if result.Beacon != nil {
		resp.DrandRandomness = []any{result.Beacon.Randomness, result.Beacon.Round}
	}
	return resp
}
