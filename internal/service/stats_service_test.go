package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStatsRepo struct {
	total     int
	byBranch  map[string]int
	byYear    map[int]int
	callCount int
	err       error
}

func (m *mockStatsRepo) CountAll(ctx context.Context) (int, error) {
	m.callCount++
	if m.err != nil {
		return 0, m.err
	}
	return m.total, nil
}

func (m *mockStatsRepo) CountByBranch(ctx context.Context) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byBranch, nil
}

func (m *mockStatsRepo) CountByYear(ctx context.Context) (map[int]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byYear, nil
}

func TestStatsServiceAggregatesWithoutRedis(t *testing.T) {
	repo := &mockStatsRepo{
		total:    7,
		byBranch: map[string]int{"Architecture": 2, "Computer Science & Engineering": 5},
		byYear:   map[int]int{2024: 3, 2025: 4},
	}
	svc := NewStatsService(repo, nil, time.Minute, nil)

	stats, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 2, stats.ByBranch["Architecture"])
	assert.Equal(t, 4, stats.ByYear[2025])
	assert.False(t, stats.GeneratedAt.IsZero())

	// Without redis every call recomputes.
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount)
}

func TestStatsServicePropagatesRepositoryErrors(t *testing.T) {
	repo := &mockStatsRepo{err: errors.New("connection refused")}
	svc := NewStatsService(repo, nil, time.Minute, nil)

	_, err := svc.Get(context.Background())
	require.Error(t, err)
}

func TestStatsServiceInvalidateWithoutRedisIsNoop(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, nil, time.Minute, nil)
	svc.Invalidate(context.Background())
}
