package services

import (
	"context"
	"fmt"

	"floorlottery/internal/models"
)

type mockThreadSource struct {
	FetchThreadFactsFunc    func(ctx context.Context, topicID, cookies string) (models.ThreadFacts, error)
	FetchEligibleFloorsFunc func(ctx context.Context, topicID, cookies string, cutoff *int) (models.EligibleFloors, error)
}

func (m *mockThreadSource) FetchThreadFacts(ctx context.Context, topicID, cookies string) (models.ThreadFacts, error) {
	return m.FetchThreadFactsFunc(ctx, topicID, cookies)
}

func (m *mockThreadSource) FetchEligibleFloors(ctx context.Context, topicID, cookies string, cutoff *int) (models.EligibleFloors, error) {
	return m.FetchEligibleFloorsFunc(ctx, topicID, cookies, cutoff)
}

func (m *mockThreadSource) TopicURL(topicID string) string {
	return "https://linux.do/t/topic/" + topicID
}

func (m *mockThreadSource) PostURL(topicID string, floor int) string {
	return fmt.Sprintf("https://linux.do/t/topic/%s/%d", topicID, floor)
}

type mockFetcher struct {
	FetchRoundFunc func(ctx context.Context, round int64) (models.BeaconRound, error)
}

func (m *mockFetcher) FetchRound(ctx context.Context, round int64) (models.BeaconRound, error) {
	return m.FetchRoundFunc(ctx, round)
}
