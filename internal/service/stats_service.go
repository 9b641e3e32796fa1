package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ace-portal/enquiry-api/internal/dto"
	appErrors "github.com/ace-portal/enquiry-api/pkg/errors"
)

const statsCacheKey = "enquiries:stats"

type statsRepository interface {
	CountAll(ctx context.Context) (int, error)
	CountByBranch(ctx context.Context) (map[string]int, error)
	CountByYear(ctx context.Context) (map[int]int, error)
}

// StatsService aggregates dashboard counters. Results are cached in redis
// for a short TTL; without redis every call hits the database directly.
type StatsService struct {
	repo   statsRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the stats service. client may be nil.
func NewStatsService(repo statsRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, client: client, ttl: ttl, logger: logger}
}

// Get returns the aggregated counters, serving from cache when fresh.
func (s *StatsService) Get(ctx context.Context) (*dto.StatsResponse, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enquiries")
	}
	byBranch, err := s.repo.CountByBranch(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enquiries by branch")
	}
	byYear, err := s.repo.CountByYear(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enquiries by year")
	}

	stats := &dto.StatsResponse{
		Total:       total,
		ByBranch:    byBranch,
		ByYear:      byYear,
		GeneratedAt: time.Now().UTC(),
	}
	s.toCache(ctx, stats)
	return stats, nil
}

// Invalidate drops the cached counters. Called after each new submission.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate stats cache", "error", err)
	}
}

func (s *StatsService) fromCache(ctx context.Context) *dto.StatsResponse {
	if s.client == nil {
		return nil
	}
	raw, err := s.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Sugar().Warnw("stats cache read failed", "error", err)
		}
		return nil
	}
	var stats dto.StatsResponse
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Sugar().Warnw("stats cache entry corrupt", "error", err)
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, stats *dto.StatsResponse) {
	if s.client == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Sugar().Warnw("stats cache write failed", "error", err)
	}
}
