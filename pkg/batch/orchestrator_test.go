package batch

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/activity"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/clients/socialgraph"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/scoring"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeActivityStore struct {
	participants []*activity.Participant
}

func (f *fakeActivityStore) GetBasePoints(ctx context.Context, fid uint64) (int64, error) {
	return 100, nil
}

func (f *fakeActivityStore) GetDistinctVoteTargets(ctx context.Context, fid uint64) (int, error) {
	return 0, nil
}

func (f *fakeActivityStore) GetShareCount(ctx context.Context, fid uint64) (int, error) {
	return 0, nil
}

func (f *fakeActivityStore) BulkVoteAggregates(ctx context.Context, fids []uint64) (map[uint64]*activity.VoteAggregates, error) {
	aggregates := make(map[uint64]*activity.VoteAggregates, len(fids))
	for _, fid := range fids {
		aggregates[fid] = &activity.VoteAggregates{DistinctBrands: 6, ShareCount: 4}
	}
	return aggregates, nil
}

func (f *fakeActivityStore) ListTopParticipants(ctx context.Context, limit int, excludedFids []uint64) ([]*activity.Participant, error) {
	excluded := make(map[uint64]bool, len(excludedFids))
	for _, fid := range excludedFids {
		excluded[fid] = true
	}
	participants := make([]*activity.Participant, 0, limit)
	for _, p := range f.participants {
		if excluded[p.Fid] {
			continue
		}
		participants = append(participants, p)
		if len(participants) == limit {
			break
		}
	}
	return participants, nil
}

type fakeProfileReader struct {
	bulkCalls int
}

func (f *fakeProfileReader) GetUsersBulk(ctx context.Context, fids []uint64) (map[uint64]*socialgraph.UserProfile, error) {
	f.bulkCalls++
	profiles := make(map[uint64]*socialgraph.UserProfile, len(fids))
	for _, fid := range fids {
		profiles[fid] = &socialgraph.UserProfile{Fid: fid, FollowerCount: 500, Score: 0.6}
	}
	return profiles, nil
}

func (f *fakeProfileReader) GetUser(ctx context.Context, fid uint64) (*socialgraph.UserProfile, error) {
	return nil, errors.New("unexpected per-user fetch during a batch run")
}

func (f *fakeProfileReader) GetChannelEngagement(ctx context.Context, fid uint64) (*socialgraph.ChannelEngagement, error) {
	return &socialgraph.ChannelEngagement{Following: true, CastCount: 1}, nil
}

type fakeLedger struct{}

func (f *fakeLedger) TotalHoldings(ctx context.Context, addresses []string) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakeLedger) CollectibleCount(ctx context.Context, addresses []string) (int64, error) {
	return 0, nil
}

// failingAirdropStore fails SaveScore for a chosen set of fids.
type failingAirdropStore struct {
	mu       sync.Mutex
	failFids map[uint64]bool
	saved    map[uint64]*storage.AirdropScore
}

func newFailingAirdropStore(failFids map[uint64]bool) *failingAirdropStore {
	return &failingAirdropStore{
		failFids: failFids,
		saved:    make(map[uint64]*storage.AirdropScore),
	}
}

func (f *failingAirdropStore) GetScore(ctx context.Context, fid uint64) (*storage.AirdropScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[fid], nil
}

func (f *failingAirdropStore) SaveScore(ctx context.Context, score *storage.AirdropScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFids[score.Fid] {
		return errors.New("database write failed")
	}
	f.saved[score.Fid] = score
	return nil
}

func (f *failingAirdropStore) ListScores(ctx context.Context) ([]*storage.AirdropScore, error) {
	return nil, nil
}

func (f *failingAirdropStore) ListTopScoresByFinalScore(ctx context.Context, limit int) ([]*storage.AirdropScore, error) {
	return nil, nil
}

func (f *failingAirdropStore) UpdateAllocations(ctx context.Context, scores []*storage.AirdropScore) error {
	return nil
}

func (f *failingAirdropStore) GetActiveSnapshot(ctx context.Context) (*storage.AirdropSnapshot, error) {
	return nil, nil
}

func (f *failingAirdropStore) GetSnapshot(ctx context.Context, id uint64) (*storage.AirdropSnapshot, error) {
	return nil, storage.ErrSnapshotNotFound
}

func (f *failingAirdropStore) ReplaceSnapshot(ctx context.Context, snapshot *storage.AirdropSnapshot, leaves []*storage.AirdropLeaf) error {
	return nil
}

func (f *failingAirdropStore) FreezeSnapshot(ctx context.Context, id uint64, merkleRoot string) error {
	return nil
}

func (f *failingAirdropStore) ListLeavesForSnapshot(ctx context.Context, snapshotId uint64) ([]*storage.AirdropLeaf, error) {
	return nil, nil
}

func (f *failingAirdropStore) GetLeaf(ctx context.Context, snapshotId uint64, fid uint64) (*storage.AirdropLeaf, error) {
	return nil, storage.ErrLeafNotFound
}

func Test_Run(t *testing.T) {
	cohort := make([]*activity.Participant, 100)
	failFids := make(map[uint64]bool)
	for i := range cohort {
		fid := uint64(i + 1)
		cohort[i] = &activity.Participant{Fid: fid, BasePoints: int64(1000 - i)}
		if fid%10 == 0 {
			failFids[fid] = true
		}
	}

	activityStore := &fakeActivityStore{participants: cohort}
	profiles := &fakeProfileReader{}
	airdropStore := newFailingAirdropStore(failFids)
	cfg := &config.Config{}
	l := zap.NewNop()

	calculator := scoring.NewCalculator(activityStore, profiles, &fakeLedger{}, l, cfg)
	aggregator := scoring.NewAggregator(airdropStore, l)
	orchestrator := NewOrchestrator(calculator, aggregator, activityStore, profiles, nil, l, cfg)

	batchCompletions := 0
	orchestrator.OnBatchComplete = func(processed int, total int) {
		batchCompletions++
		assert.Equal(t, 100, total)
	}

	result, err := orchestrator.Run(context.Background(), 100, 10)
	assert.Nil(t, err)

	assert.Equal(t, 100, result.Processed)
	assert.Equal(t, 90, result.Successful)
	assert.Equal(t, 10, result.Failed)
	assert.Equal(t, 10, len(result.Errors))
	assert.Equal(t, 10, batchCompletions)

	// One bulk profile call per batch, never one per participant.
	assert.Equal(t, 10, profiles.bulkCalls)

	for _, batchErr := range result.Errors {
		assert.Equal(t, uint64(0), batchErr.Fid%10)
	}

	// Survivors got their multipliers persisted.
	score, err := airdropStore.GetScore(context.Background(), 1)
	assert.Nil(t, err)
	assert.NotNil(t, score)
	assert.Equal(t, int64(1000), score.BasePoints)
	assert.Greater(t, score.TotalMultiplier, 1.0)
}

func Test_RunExcludesConfiguredFids(t *testing.T) {
	cohort := []*activity.Participant{
		{Fid: 1, BasePoints: 100},
		{Fid: 2, BasePoints: 90},
		{Fid: 3, BasePoints: 80},
	}
	activityStore := &fakeActivityStore{participants: cohort}
	profiles := &fakeProfileReader{}
	airdropStore := newFailingAirdropStore(nil)
	cfg := &config.Config{
		AirdropConfig: config.AirdropConfig{ExcludedFids: []uint64{2}},
	}
	l := zap.NewNop()

	calculator := scoring.NewCalculator(activityStore, profiles, &fakeLedger{}, l, cfg)
	aggregator := scoring.NewAggregator(airdropStore, l)
	orchestrator := NewOrchestrator(calculator, aggregator, activityStore, profiles, nil, l, cfg)

	result, err := orchestrator.Run(context.Background(), 10, 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, result.Processed)

	score, err := airdropStore.GetScore(context.Background(), 2)
	assert.Nil(t, err)
	assert.Nil(t, score)
}
