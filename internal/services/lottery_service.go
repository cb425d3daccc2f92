package services

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"floorlottery/internal/beacon"
	"floorlottery/internal/errorx"
	"floorlottery/internal/forum"
	"floorlottery/internal/lottery"
	"floorlottery/internal/models"
	"floorlottery/internal/storage"

	"github.com/google/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ThreadSource supplies thread facts and eligible floors.
type ThreadSource interface {
	FetchThreadFacts(ctx context.Context, topicID, cookies string) (models.ThreadFacts, error)
	FetchEligibleFloors(ctx context.Context, topicID, cookies string, cutoff *int) (models.EligibleFloors, error)
	TopicURL(topicID string) string
	PostURL(topicID string, floor int) string
}

// Policy holds the draw options that differ between deployments.
type Policy struct {
	CountPolicy       lottery.CountPolicy
	IncludeCreator    bool
	MinEligibleFloors int
}

// LotteryService runs draws against a forum and records them.
type LotteryService struct {
	threads ThreadSource
	beacon  beacon.Fetcher
	chain   lottery.BeaconConfig
	store   storage.DrawStore
	policy  Policy
	now     func() time.Time
}

// NewLotteryService creates and initializes a new LotteryService. store may
// be nil, in which case draws are not recorded.
func NewLotteryService(
	threads ThreadSource,
	fetcher beacon.Fetcher,
	chain lottery.BeaconConfig,
	store storage.DrawStore,
	policy Policy,
) *LotteryService {
	if policy.MinEligibleFloors < 1 {
		policy.MinEligibleFloors = 1
	}

	return &LotteryService{
		threads: threads,
		beacon:  fetcher,
		chain:   chain,
		store:   store,
		policy:  policy,
		now:     time.Now,
	}
}

// Draw performs the lottery draw for one topic.
func (s *LotteryService) Draw(ctx context.Context, req models.DrawRequest) (*models.DrawResult, error) {
	if req.WinnersCount <= 0 {
		return nil, errorx.Validation("中奖人数必须为大于0的整数")
	}
	if req.LastFloor != nil && *req.LastFloor < 1 {
		return nil, errorx.Validation("截止楼层必须为大于0的整数")
	}

	topicID, err := forum.ParseTopicURL(req.TopicURL)
	if err != nil {
		return nil, err
	}

	var (
		thread models.ThreadFacts
		floors models.EligibleFloors
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		thread, err = s.threads.FetchThreadFacts(egCtx, topicID, req.Cookies)
		return err
	})
	eg.Go(func() error {
		var err error
		floors, err = s.threads.FetchEligibleFloors(egCtx, topicID, req.Cookies, req.LastFloor)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if floors.Len() < s.policy.MinEligibleFloors {
		return nil, errorx.Validation("没有足够的参与楼层")
	}

	count, err := lottery.ResolveCount(req.WinnersCount, floors.Len(), s.policy.CountPolicy)
	if err != nil {
		return nil, err
	}

	material := lottery.SeedMaterial{
		WinnersCount:   count,
		Thread:         thread,
		Floors:         floors,
		IncludeCreator: s.policy.IncludeCreator,
	}
	content, err := material.Content()
	if err != nil {
		return nil, err
	}

	var round *models.BeaconRound
	if req.UseBeacon {
		if round, err = s.fetchBeacon(ctx, floors); err != nil {
			return nil, err
		}
	}

	seed := lottery.SeedFromContent(content, round)
	winners, err := lottery.SelectWinners(seed, floors.Numbers, count)
	if err != nil {
		return nil, err
	}

	result := &models.DrawResult{
		TopicURL:      req.TopicURL,
		ThreadURL:     s.threads.TopicURL(topicID),
		Thread:        thread,
		Floors:        floors,
		WinnersCount:  count,
		FinalSeed:     seed,
		WinningFloors: winners,
		WinningURLs:   make([]string, len(winners)),
		Beacon:        round,
		SeedContent:   content,
		DrawnAt:       s.now(),
	}
	for i, floor := range winners {
		result.WinningURLs[i] = s.threads.PostURL(topicID, floor)
	}

	logger.Infof("Drew %d of %d floors for topic %s, seed %s", count, floors.Len(), topicID, seed)
	s.record(ctx, result)
	return result, nil
}

// fetchBeacon resolves the beacon round anchored at the creation time of
// the last eligible floor and fetches its value.
func (s *LotteryService) fetchBeacon(ctx context.Context, floors models.EligibleFloors) (*models.BeaconRound, error) {
	if s.beacon == nil {
		return nil, errorx.Validation("未配置云端随机数服务")
	}

	anchor, ok := floors.LastCreatedAt()
	if !ok {
		return nil, errorx.Validation("没有足够的参与楼层")
	}
	number, err := s.chain.RoundAtTimestamp(anchor)
	if err != nil {
		return nil, err
	}

	value, err := s.beacon.FetchRound(ctx, number)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (s *LotteryService) record(ctx context.Context, result *models.DrawResult) {
	if s.store == nil {
		return
	}

	record := &models.DrawRecord{
		ID:            uuid.NewString(),
		TopicID:       result.Thread.TopicID,
		TopicURL:      result.TopicURL,
		Title:         result.Thread.Title,
		WinnersCount:  result.WinnersCount,
		ValidFloors:   joinInts(result.Floors.Numbers),
		WinningFloors: joinInts(result.WinningFloors),
		SeedContent:   result.SeedContent,
		FinalSeed:     result.FinalSeed,
		CreatedAt:     result.DrawnAt,
	}
	if result.Beacon != nil {
		record.UseBeacon = true
		record.BeaconRound = result.Beacon.Round
		record.BeaconRandomness = result.Beacon.Randomness
	}

	if err := s.store.Save(ctx, record); err != nil {
		logger.Errorf("Failed to record draw for topic %s: %v", record.TopicID, err)
		return
	}
	result.ID = record.ID
}

// Verify recomputes a recorded draw from its stored seed material.
func (s *LotteryService) Verify(ctx context.Context, id string) (*models.VerifyResult, error) {
	if s.store == nil {
		return nil, errorx.NotFound("未启用抽奖记录")
	}

	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var round *models.BeaconRound
	if record.UseBeacon {
		round = &models.BeaconRound{Round: record.BeaconRound, Randomness: record.BeaconRandomness}
	}

	validFloors, err := splitInts(record.ValidFloors)
	if err != nil {
		return nil, err
	}
	stored, err := splitInts(record.WinningFloors)
	if err != nil {
		return nil, err
	}

	// The winners are redrawn from the count and floors the seed content
	// commits to, not from the stored copies.
	count, committedFloors, err := lottery.ParseContent(record.SeedContent)
	if err != nil {
		return nil, err
	}
	floors, err := splitInts(committedFloors)
	if err != nil {
		return nil, err
	}
	consistent := count == record.WinnersCount && slices.Equal(floors, validFloors)

	seed := lottery.SeedFromContent(record.SeedContent, round)
	recomputed, err := lottery.SelectWinners(seed, floors, count)
	if err != nil {
		return nil, err
	}

	return &models.VerifyResult{
		ID:                record.ID,
		FinalSeed:         record.FinalSeed,
		RecomputedSeed:    seed,
		WinningFloors:     stored,
		RecomputedWinners: recomputed,
		Valid:             consistent && seed == record.FinalSeed && slices.Equal(stored, recomputed),
	}, nil
}

// History returns the most recent recorded draws.
func (s *LotteryService) History(ctx context.Context, limit int) ([]models.DrawRecord, error) {
	if s.store == nil {
		return nil, errorx.NotFound("未启用抽奖记录")
	}
	return s.store.List(ctx, limit)
}

// Record returns one recorded draw.
func (s *LotteryService) Record(ctx context.Context, id string) (*models.DrawRecord, error) {
	if s.store == nil {
		return nil, errorx.NotFound("未启用抽奖记录")
	}
	return s.store.Get(ctx, id)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, errorx.Invariant("抽奖记录楼层数据损坏: %q", s)
		}
		values[i] = v
	}
	return values, nil
}
