package snapshot

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics/metricsTypes"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoEligibleScores is returned when a snapshot is requested before any
// participant has a positive final score.
var ErrNoEligibleScores = errors.New("no eligible scores to snapshot")

// ErrNoAllocations is returned when scores exist but no tokens have been
// allocated yet; a snapshot of all-zero claims would be meaningless.
var ErrNoAllocations = errors.New("no token allocations present, run a distribution first")

// Builder freezes the top of the score table into a Merkle-committed
// snapshot. Generation replaces any previous snapshot and its leaves in one
// transaction, then records the root in a second; a snapshot is therefore
// either absent, fully populated, or frozen, never partial.
type Builder struct {
	store        storage.AirdropStore
	metricsSink  *metrics.MetricsSink
	logger       *zap.Logger
	globalConfig *config.Config
}

func NewBuilder(store storage.AirdropStore, ms *metrics.MetricsSink, l *zap.Logger, cfg *config.Config) *Builder {
	return &Builder{
		store:        store,
		metricsSink:  ms,
		logger:       l,
		globalConfig: cfg,
	}
}

// GenerateSnapshot selects the top SnapshotSize participants by final score,
// commits their allocations as leaves ordered by fid ascending, and freezes
// the resulting sorted-pair keccak256 root.
func (b *Builder) GenerateSnapshot(ctx context.Context) (*storage.AirdropSnapshot, error) {
	start := time.Now()

	scores, err := b.store.ListTopScoresByFinalScore(ctx, b.globalConfig.AirdropConfig.SnapshotSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list top scores")
	}
	if len(scores) == 0 {
		return nil, ErrNoEligibleScores
	}

	var totalTokens int64
	leaves := make([]*storage.AirdropLeaf, len(scores))
	for i, score := range scores {
		leaves[i] = &storage.AirdropLeaf{
			Fid:        score.Fid,
			BaseAmount: score.TokenAllocation,
			Rank:       i + 1,
			Percentage: score.Percentage,
			FinalScore: score.FinalScore,
		}
		totalTokens += score.TokenAllocation
	}
	if totalTokens == 0 {
		return nil, ErrNoAllocations
	}

	// Leaves are committed in fid order so any rebuild from storage
	// reproduces the tree bit for bit.
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].Fid < leaves[j].Fid
	})

	scale := b.globalConfig.AirdropConfig.AmountScale()
	encodedLeaves := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		amount := new(big.Int).Mul(big.NewInt(leaf.BaseAmount), scale)
		encoded, err := EncodeLeaf(leaf.Fid, amount)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode leaf for fid %d", leaf.Fid)
		}
		encodedLeaves[i] = encoded
		leaf.LeafHash = utils.ConvertBytesToString(crypto.Keccak256(encoded))
	}

	tree, err := BuildTree(encodedLeaves)
	if err != nil {
		return nil, err
	}
	root := utils.ConvertBytesToString(tree.Root())

	snap := &storage.AirdropSnapshot{
		TotalParticipants: len(leaves),
		TotalTokens:       totalTokens,
	}
	if err := b.store.ReplaceSnapshot(ctx, snap, leaves); err != nil {
		return nil, errors.Wrap(err, "failed to replace snapshot")
	}
	if err := b.store.FreezeSnapshot(ctx, snap.Id, root); err != nil {
		return nil, errors.Wrap(err, "failed to freeze snapshot")
	}
	snap.MerkleRoot = root
	snap.IsFrozen = true

	if b.metricsSink != nil {
		_ = b.metricsSink.Gauge(metricsTypes.Metric_Gauge_SnapshotLeaves, float64(len(leaves)), nil)
		_ = b.metricsSink.Timing(metricsTypes.Metric_Timing_SnapshotDuration, time.Since(start), nil)
	}
	b.logger.Sugar().Infow("Generated airdrop snapshot",
		zap.Uint64("snapshotId", snap.Id),
		zap.String("merkleRoot", root),
		zap.Int("participants", len(leaves)),
		zap.Int64("totalTokens", totalTokens),
	)
	return snap, nil
}
