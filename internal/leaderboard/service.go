package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quizly/api/internal/metrics"
	"quizly/api/internal/models"
	"quizly/api/internal/repositories"
)

const (
	DefaultLimit    = 20
	DefaultMaxLimit = 100
	DefaultCacheTTL = time.Minute
)

// UserDirectory resolves user IDs to accounts; unknown IDs are omitted.
type UserDirectory interface {
	GetUsersByIDs(userIDs []string) (map[string]models.User, error)
}

type Config struct {
	Results      repositories.ResultRepository
	Users        UserDirectory
	Redis        redis.UniversalClient
	Prefix       string
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
	Logger       *zap.Logger
}

// Service ranks users by average score, caching rankings in redis when a
// client is configured.
type Service struct {
	results      repositories.ResultRepository
	users        UserDirectory
	redis        redis.UniversalClient
	prefix       string
	ttl          time.Duration
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewService(c Config) *Service {
	s := &Service{
		results:      c.Results,
		users:        c.Users,
		redis:        c.Redis,
		prefix:       c.Prefix,
		ttl:          c.CacheTTL,
		defaultLimit: c.DefaultLimit,
		maxLimit:     c.MaxLimit,
		logger:       c.Logger,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCacheTTL
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultLimit
	}
	if s.maxLimit < s.defaultLimit {
		s.maxLimit = DefaultMaxLimit
		if s.maxLimit < s.defaultLimit {
			s.maxLimit = s.defaultLimit
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Top returns up to limit entries. A non-positive limit selects the default;
// larger limits are capped.
func (s *Service) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	limit = s.clampLimit(limit)

	if entries, ok := s.readCache(ctx, limit); ok {
		return entries, nil
	}

	entries, err := s.compute(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, limit, entries)
	return entries, nil
}

// Refresh recomputes the default leaderboard and replaces cached rankings.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.Invalidate(ctx); err != nil {
		return err
	}
	entries, err := s.compute(ctx, s.defaultLimit)
	if err != nil {
		return err
	}
	s.writeCache(ctx, s.defaultLimit, entries)
	return nil
}

// Invalidate drops every cached ranking.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+"leaderboard:*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan leaderboard keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete leaderboard keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// compute pages through the ranked aggregates until limit known users are
// collected. Results whose user no longer exists do not take a slot.
func (s *Service) compute(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0, limit)
	for offset := 0; len(entries) < limit; {
		aggregates, err := s.results.Aggregate(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
		offset += len(aggregates)

		ids := make([]string, 0, len(aggregates))
		for _, a := range aggregates {
			ids = append(ids, a.UserID)
		}
		users, err := s.users.GetUsersByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("resolve leaderboard users: %w", err)
		}

		for _, a := range aggregates {
			user, ok := users[a.UserID]
			if !ok {
				continue
			}
			entries = append(entries, models.LeaderboardEntry{
				UserID:       a.UserID,
				Name:         user.Name,
				TotalQuizzes: a.TotalQuizzes,
				AvgScore:     AverageScore(a.TotalScore, a.TotalQuestions),
			})
			if len(entries) == limit {
				break
			}
		}

		if len(aggregates) < limit {
			break
		}
	}
	return entries, nil
}

// AverageScore is 100*score/total rounded to two decimals, or 0 when total is 0.
func AverageScore(score, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(score).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(2).
		InexactFloat64()
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func (s *Service) cacheKey(limit int) string {
	return s.prefix + "leaderboard:" + strconv.Itoa(limit)
}

func (s *Service) readCache(ctx context.Context, limit int) ([]models.LeaderboardEntry, bool) {
	if s.redis == nil {
		return nil, false
	}

	raw, err := s.redis.Get(ctx, s.cacheKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveLeaderboardCache("miss")
		return nil, false
	}
	if err != nil {
		metrics.ObserveLeaderboardCache("error")
		s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		return nil, false
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		metrics.ObserveLeaderboardCache("error")
		s.logger.Warn("leaderboard cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	metrics.ObserveLeaderboardCache("hit")
	return entries, true
}

func (s *Service) writeCache(ctx context.Context, limit int, entries []models.LeaderboardEntry) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(limit), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}
}
