package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Entry is one leaderboard row.
type Entry struct {
	Rank            int     `json:"rank"`
	Fid             uint64  `json:"fid"`
	FinalScore      int64   `json:"finalScore"`
	TotalMultiplier float64 `json:"totalMultiplier"`
	TokenAllocation int64   `json:"tokenAllocation"`
	Percentage      float64 `json:"percentage"`
}

// Service serves the airdrop leaderboard from a TTL cache. Reads are cheap
// and slightly stale; writes (batch runs, distributions) call Invalidate to
// force a refresh on the next read.
type Service struct {
	store        storage.AirdropStore
	logger       *zap.Logger
	globalConfig *config.Config

	mu            sync.Mutex
	entries       []*Entry
	lastRefreshed time.Time
}

func NewService(store storage.AirdropStore, l *zap.Logger, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		logger:       l,
		globalConfig: cfg,
	}
}

// GetLeaderboard returns up to limit entries, refreshing the cache when it is
// older than the configured TTL.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := s.globalConfig.LeaderboardConfig.CacheTTL
	if s.entries == nil || time.Since(s.lastRefreshed) > ttl {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
	}

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

// Invalidate drops the cache so the next read hits the database.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.lastRefreshed = time.Time{}
}

func (s *Service) refresh(ctx context.Context) error {
	scores, err := s.store.ListTopScoresByFinalScore(ctx, s.globalConfig.AirdropConfig.SnapshotSize)
	if err != nil {
		return errors.Wrap(err, "failed to refresh leaderboard")
	}

	entries := make([]*Entry, len(scores))
	for i, score := range scores {
		entries[i] = &Entry{
			Rank:            i + 1,
			Fid:             score.Fid,
			FinalScore:      score.FinalScore,
			TotalMultiplier: score.TotalMultiplier,
			TokenAllocation: score.TokenAllocation,
			Percentage:      score.Percentage,
		}
	}
	s.entries = entries
	s.lastRefreshed = time.Now()
	s.logger.Sugar().Debugw("Refreshed leaderboard cache", zap.Int("entries", len(entries)))
	return nil
}
