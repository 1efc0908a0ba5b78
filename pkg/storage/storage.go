package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrSnapshotNotFound is returned when a requested snapshot does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrLeafNotFound is returned when a participant has no leaf in a snapshot.
var ErrLeafNotFound = errors.New("leaf not found in snapshot")

// AirdropStore is the persistence boundary for scores, snapshots and leaves.
type AirdropStore interface {
	// GetScore returns the score row for a fid, or (nil, nil) if none exists.
	GetScore(ctx context.Context, fid uint64) (*AirdropScore, error)

	// SaveScore inserts or fully updates a score row.
	SaveScore(ctx context.Context, score *AirdropScore) error

	// ListScores returns every score row.
	ListScores(ctx context.Context) ([]*AirdropScore, error)

	// ListTopScoresByFinalScore returns up to limit rows with final_score > 0,
	// ordered by final_score descending, fid ascending on ties.
	ListTopScoresByFinalScore(ctx context.Context, limit int) ([]*AirdropScore, error)

	// UpdateAllocations writes token_allocation and percentage for the given
	// rows in a single transaction.
	UpdateAllocations(ctx context.Context, scores []*AirdropScore) error

	// GetActiveSnapshot returns the current snapshot, or (nil, nil) if none.
	GetActiveSnapshot(ctx context.Context) (*AirdropSnapshot, error)

	// GetSnapshot returns a snapshot by id, or ErrSnapshotNotFound.
	GetSnapshot(ctx context.Context, id uint64) (*AirdropSnapshot, error)

	// ReplaceSnapshot deletes any existing snapshots and their leaves, then
	// creates the given snapshot row and bulk-inserts its leaves, all within
	// one transaction. The leaves' SnapshotId is filled in from the created
	// row. On any failure nothing is committed.
	ReplaceSnapshot(ctx context.Context, snapshot *AirdropSnapshot, leaves []*AirdropLeaf) error

	// FreezeSnapshot records the Merkle root and flips is_frozen. Called only
	// after ReplaceSnapshot has committed.
	FreezeSnapshot(ctx context.Context, id uint64, merkleRoot string) error

	// ListLeavesForSnapshot returns every leaf belonging to a snapshot.
	ListLeavesForSnapshot(ctx context.Context, snapshotId uint64) ([]*AirdropLeaf, error)

	// GetLeaf returns the leaf for a fid within a snapshot, or ErrLeafNotFound.
	GetLeaf(ctx context.Context, snapshotId uint64, fid uint64) (*AirdropLeaf, error)
}
