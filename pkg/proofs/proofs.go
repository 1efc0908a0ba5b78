package proofs

import (
	"context"
	"math/big"
	"sync"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics/metricsTypes"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/snapshot"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/utils"
	"github.com/pkg/errors"
	"github.com/wealdtech/go-merkletree/v2"
	"go.uber.org/zap"
)

// ErrNotEligible is returned when a fid has no leaf in the frozen snapshot.
var ErrNotEligible = errors.New("fid is not part of the frozen snapshot")

// ErrSnapshotNotFrozen is returned when proofs are requested before the
// active snapshot's root has been committed.
var ErrSnapshotNotFrozen = errors.New("active snapshot is not frozen")

// ErrIntegrity is returned when the tree rebuilt from stored leaves does not
// reproduce the frozen root, or a generated proof fails local verification.
// It means the stored leaves have diverged from the committed root and no
// proof from them can be trusted.
var ErrIntegrity = errors.New("rebuilt tree does not match the frozen merkle root")

// ClaimProof is everything a client needs to call the claim contract.
type ClaimProof struct {
	Fid        uint64   `json:"fid"`
	Amount     string   `json:"amount"`
	LeafHash   string   `json:"leafHash"`
	Proof      []string `json:"proof"`
	MerkleRoot string   `json:"merkleRoot"`
	Rank       int      `json:"rank"`
}

type proofData struct {
	snapshotId uint64
	root       []byte
	tree       *merkletree.MerkleTree
	leafByFid  map[uint64]*storage.AirdropLeaf
	encodedFor map[uint64][]byte
}

// ProofService generates Merkle claim proofs against the frozen snapshot. The
// tree is rebuilt from stored leaves on first use and cached per snapshot id;
// a regenerated snapshot gets a fresh id so stale entries are never served.
type ProofService struct {
	store        storage.AirdropStore
	metricsSink  *metrics.MetricsSink
	logger       *zap.Logger
	globalConfig *config.Config

	mu        sync.Mutex
	proofData map[uint64]*proofData
}

func NewProofService(store storage.AirdropStore, ms *metrics.MetricsSink, l *zap.Logger, cfg *config.Config) *ProofService {
	return &ProofService{
		store:        store,
		metricsSink:  ms,
		logger:       l,
		globalConfig: cfg,
		proofData:    make(map[uint64]*proofData),
	}
}

func (ps *ProofService) getProofDataForSnapshot(ctx context.Context, snap *storage.AirdropSnapshot) (*proofData, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	data, ok := ps.proofData[snap.Id]
	if ok {
		return data, nil
	}

	leaves, err := ps.store.ListLeavesForSnapshot(ctx, snap.Id)
	if err != nil {
		ps.logger.Sugar().Errorw("Failed to load leaves for snapshot",
			zap.Uint64("snapshotId", snap.Id),
			zap.Error(err),
		)
		return nil, err
	}

	// ListLeavesForSnapshot returns fid-ascending order, the order the tree
	// was built in.
	scale := ps.globalConfig.AirdropConfig.AmountScale()
	encodedLeaves := make([][]byte, len(leaves))
	leafByFid := make(map[uint64]*storage.AirdropLeaf, len(leaves))
	encodedFor := make(map[uint64][]byte, len(leaves))
	for i, leaf := range leaves {
		amount := new(big.Int).Mul(big.NewInt(leaf.BaseAmount), scale)
		encoded, err := snapshot.EncodeLeaf(leaf.Fid, amount)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode leaf for fid %d", leaf.Fid)
		}
		encodedLeaves[i] = encoded
		leafByFid[leaf.Fid] = leaf
		encodedFor[leaf.Fid] = encoded
	}

	tree, err := snapshot.BuildTree(encodedLeaves)
	if err != nil {
		return nil, err
	}

	root := gethcommon.FromHex(snap.MerkleRoot)
	if utils.ConvertBytesToString(tree.Root()) != snap.MerkleRoot {
		ps.logger.Sugar().Errorw("Rebuilt tree does not reproduce the frozen root",
			zap.Uint64("snapshotId", snap.Id),
			zap.String("frozenRoot", snap.MerkleRoot),
			zap.String("rebuiltRoot", utils.ConvertBytesToString(tree.Root())),
		)
		return nil, ErrIntegrity
	}

	data = &proofData{
		snapshotId: snap.Id,
		root:       root,
		tree:       tree,
		leafByFid:  leafByFid,
		encodedFor: encodedFor,
	}
	ps.proofData[snap.Id] = data
	return data, nil
}

// GenerateProof builds and locally verifies the claim proof for a fid against
// the frozen snapshot.
func (ps *ProofService) GenerateProof(ctx context.Context, fid uint64) (*ClaimProof, error) {
	snap, err := ps.store.GetActiveSnapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active snapshot")
	}
	if snap == nil {
		return nil, storage.ErrSnapshotNotFound
	}
	return ps.generateProof(ctx, snap, fid)
}

// GenerateProofForSnapshot targets a specific snapshot id rather than the
// active one.
func (ps *ProofService) GenerateProofForSnapshot(ctx context.Context, snapshotId uint64, fid uint64) (*ClaimProof, error) {
	snap, err := ps.store.GetSnapshot(ctx, snapshotId)
	if err != nil {
		return nil, err
	}
	return ps.generateProof(ctx, snap, fid)
}

func (ps *ProofService) generateProof(ctx context.Context, snap *storage.AirdropSnapshot, fid uint64) (*ClaimProof, error) {
	start := time.Now()
	if ps.metricsSink != nil {
		_ = ps.metricsSink.Incr(metricsTypes.Metric_Incr_ProofRequest, nil, 1)
	}

	if !snap.IsFrozen {
		return nil, ErrSnapshotNotFrozen
	}

	data, err := ps.getProofDataForSnapshot(ctx, snap)
	if err != nil {
		return nil, err
	}

	leaf, ok := data.leafByFid[fid]
	if !ok {
		return nil, ErrNotEligible
	}

	proof, err := data.tree.GenerateProof(data.encodedFor[fid], 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate proof for fid %d", fid)
	}

	leafHash := gethcommon.FromHex(leaf.LeafHash)
	if !snapshot.VerifySortedProof(leafHash, proof.Hashes, data.root) {
		ps.logger.Sugar().Errorw("Generated proof failed local verification",
			zap.Uint64("fid", fid),
			zap.Uint64("snapshotId", snap.Id),
		)
		return nil, ErrIntegrity
	}

	scale := ps.globalConfig.AirdropConfig.AmountScale()
	amount := new(big.Int).Mul(big.NewInt(leaf.BaseAmount), scale)

	if ps.metricsSink != nil {
		_ = ps.metricsSink.Timing(metricsTypes.Metric_Timing_ProofDuration, time.Since(start), nil)
	}
	return &ClaimProof{
		Fid:      fid,
		Amount:   amount.String(),
		LeafHash: leaf.LeafHash,
		Proof: utils.Map(proof.Hashes, func(h []byte, i uint64) string {
			return utils.ConvertBytesToString(h)
		}),
		MerkleRoot: snap.MerkleRoot,
		Rank:       leaf.Rank,
	}, nil
}
