package leaderboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingStore struct {
	mu     sync.Mutex
	calls  int
	scores []*storage.AirdropScore
}

func (c *countingStore) ListTopScoresByFinalScore(ctx context.Context, limit int) ([]*storage.AirdropScore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if limit > len(c.scores) {
		limit = len(c.scores)
	}
	return c.scores[:limit], nil
}

func (c *countingStore) GetScore(ctx context.Context, fid uint64) (*storage.AirdropScore, error) {
	return nil, nil
}
func (c *countingStore) SaveScore(ctx context.Context, score *storage.AirdropScore) error { return nil }
func (c *countingStore) ListScores(ctx context.Context) ([]*storage.AirdropScore, error) {
	return nil, nil
}
func (c *countingStore) UpdateAllocations(ctx context.Context, scores []*storage.AirdropScore) error {
	return nil
}
func (c *countingStore) GetActiveSnapshot(ctx context.Context) (*storage.AirdropSnapshot, error) {
	return nil, nil
}
func (c *countingStore) GetSnapshot(ctx context.Context, id uint64) (*storage.AirdropSnapshot, error) {
	return nil, storage.ErrSnapshotNotFound
}
func (c *countingStore) ReplaceSnapshot(ctx context.Context, snapshot *storage.AirdropSnapshot, leaves []*storage.AirdropLeaf) error {
	return nil
}
func (c *countingStore) FreezeSnapshot(ctx context.Context, id uint64, merkleRoot string) error {
	return nil
}
func (c *countingStore) ListLeavesForSnapshot(ctx context.Context, snapshotId uint64) ([]*storage.AirdropLeaf, error) {
	return nil, nil
}
func (c *countingStore) GetLeaf(ctx context.Context, snapshotId uint64, fid uint64) (*storage.AirdropLeaf, error) {
	return nil, storage.ErrLeafNotFound
}

func newTestService(store *countingStore, ttl time.Duration) *Service {
	cfg := &config.Config{
		AirdropConfig:     config.AirdropConfig{SnapshotSize: 100},
		LeaderboardConfig: config.LeaderboardConfig{CacheTTL: ttl},
	}
	return NewService(store, zap.NewNop(), cfg)
}

func Test_GetLeaderboard(t *testing.T) {
	store := &countingStore{
		scores: []*storage.AirdropScore{
			{Fid: 2, FinalScore: 300, TokenAllocation: 30, Percentage: 60},
			{Fid: 1, FinalScore: 200, TokenAllocation: 20, Percentage: 40},
		},
	}
	service := newTestService(store, time.Minute)
	ctx := context.Background()

	entries, err := service.GetLeaderboard(ctx, 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, uint64(2), entries[0].Fid)
	assert.Equal(t, 2, entries[1].Rank)

	t.Run("Should serve repeated reads from the cache", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := service.GetLeaderboard(ctx, 10)
			assert.Nil(t, err)
		}
		assert.Equal(t, 1, store.calls)
	})

	t.Run("Should truncate to the requested limit", func(t *testing.T) {
		entries, err := service.GetLeaderboard(ctx, 1)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(entries))
		assert.Equal(t, uint64(2), entries[0].Fid)
	})

	t.Run("Should refresh after Invalidate", func(t *testing.T) {
		service.Invalidate()
		_, err := service.GetLeaderboard(ctx, 10)
		assert.Nil(t, err)
		assert.Equal(t, 2, store.calls)
	})
}

func Test_GetLeaderboardRefreshesAfterTTL(t *testing.T) {
	store := &countingStore{
		scores: []*storage.AirdropScore{{Fid: 1, FinalScore: 100}},
	}
	service := newTestService(store, 10*time.Millisecond)
	ctx := context.Background()

	_, err := service.GetLeaderboard(ctx, 10)
	assert.Nil(t, err)
	assert.Equal(t, 1, store.calls)

	time.Sleep(20 * time.Millisecond)

	_, err = service.GetLeaderboard(ctx, 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, store.calls)
}
