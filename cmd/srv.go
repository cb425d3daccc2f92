package main

import (
	"context"
	"io"
	"time"

	"floorlottery/internal/beacon"
	"floorlottery/internal/config"
	"floorlottery/internal/forum"
	"floorlottery/internal/lottery"
	"floorlottery/internal/services"
	"floorlottery/internal/storage"

	"github.com/google/logger"
	"github.com/urfave/cli/v2"
)

type srv struct {
	configs     config.Configs
	forum       *forum.Client
	memoryCache *beacon.MemoryCache
	fetcher     beacon.Fetcher
	store       storage.DrawStore
	service     *services.LotteryService
}

func (s *srv) load(ct *cli.Context, verbose bool) error {
	if err := s.loadConfig(ct); err != nil {
		return err
	}
	s.loadLogger(verbose || ct.Bool("verbose") || s.configs.Verbose)
	s.loadForum()
	if err := s.loadBeacon(ct.Context); err != nil {
		return err
	}
	if err := s.loadStorage(); err != nil {
		return err
	}
	s.loadService()
	return nil
}

func (s *srv) loadConfig(ct *cli.Context) error {
	cfg, err := config.Load(ct.String("config"))
	if err != nil {
		return err
	}
	s.configs = cfg
	return nil
}

func (s *srv) loadLogger(verbose bool) {
	logger.Init("floorlottery", verbose, false, io.Discard)
}

func (s *srv) loadForum() {
	s.forum = forum.NewClient(forum.Options{
		BaseURL:           s.configs.Forum.BaseURL,
		ConnectURL:        s.configs.Forum.ConnectURL,
		Timeout:           s.configs.Forum.Timeout,
		AllowedCategories: s.configs.Policy.AllowedCategories,
	})
}

func (s *srv) loadBeacon(ctx context.Context) error {
	client := beacon.NewClient(s.configs.Drand.Server, s.configs.Drand.Hash, s.configs.Drand.Timeout)

	if s.configs.Redis.Addr == "" {
		s.memoryCache = beacon.NewMemoryCache()
		s.fetcher = beacon.NewCachedFetcher(client, s.memoryCache)
		return nil
	}

	rdb, err := beacon.NewRedisClient(ctx, s.configs.Redis.Addr)
	if err != nil {
		return err
	}
	logger.Infof("Caching drand rounds in redis at %s", s.configs.Redis.Addr)
	s.fetcher = beacon.NewCachedFetcher(client, beacon.NewRedisCache(rdb))
	return nil
}

func (s *srv) loadStorage() error {
	if s.configs.Storage.Path == "" {
		return nil
	}

	db, err := storage.Open(s.configs.Storage.Path)
	if err != nil {
		return err
	}
	logger.Infof("Recording draws in %s", s.configs.Storage.Path)
	s.store = storage.NewDrawStore(db)
	return nil
}

func (s *srv) loadService() {
	countPolicy := lottery.CountStrict
	if !s.configs.Policy.StrictCount {
		countPolicy = lottery.CountClamp
	}

	s.service = services.NewLotteryService(
		s.forum,
		s.fetcher,
		lottery.BeaconConfig{
			Hash:        s.configs.Drand.Hash,
			Period:      s.configs.Drand.Period,
			GenesisTime: s.configs.Drand.GenesisTime,
		},
		s.store,
		services.Policy{
			CountPolicy:       countPolicy,
			IncludeCreator:    s.configs.Policy.IncludeCreator,
			MinEligibleFloors: s.configs.Policy.MinEligibleFloors,
		},
	)
}

func (s *srv) cookies() string {
	cookies, err := forum.LoadCookies(s.configs.Forum.CookiesFile)
	if err != nil {
		logger.Warningf("Failed to read cookies from %s: %v", s.configs.Forum.CookiesFile, err)
		return ""
	}
	return cookies
}

// janitor evicts idle drand rounds from the in-memory cache.
func (s *srv) janitor(ctx context.Context) {
	if s.memoryCache == nil {
		return
	}
	go s.memoryCache.RunJanitor(ctx, 10*time.Minute, time.Hour)
}
