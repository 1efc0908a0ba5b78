package postgres

import (
	"context"

	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leafInsertBatchSize = 500

type PostgresAirdropStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostgresAirdropStore(db *gorm.DB, l *zap.Logger) *PostgresAirdropStore {
	return &PostgresAirdropStore{
		db:     db,
		logger: l,
	}
}

// AutoMigrate creates the airdrop tables. Production deployments run this at
// startup; tests run it against an in-memory database.
func (s *PostgresAirdropStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&storage.AirdropScore{},
		&storage.AirdropSnapshot{},
		&storage.AirdropLeaf{},
	)
}

func (s *PostgresAirdropStore) GetScore(ctx context.Context, fid uint64) (*storage.AirdropScore, error) {
	var score storage.AirdropScore
	res := s.db.WithContext(ctx).Where("fid = ?", fid).First(&score)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &score, nil
}

func (s *PostgresAirdropStore) SaveScore(ctx context.Context, score *storage.AirdropScore) error {
	res := s.db.WithContext(ctx).Save(score)
	return res.Error
}

func (s *PostgresAirdropStore) ListScores(ctx context.Context) ([]*storage.AirdropScore, error) {
	scores := make([]*storage.AirdropScore, 0)
	res := s.db.WithContext(ctx).Order("fid asc").Find(&scores)
	if res.Error != nil {
		return nil, res.Error
	}
	return scores, nil
}

func (s *PostgresAirdropStore) ListTopScoresByFinalScore(ctx context.Context, limit int) ([]*storage.AirdropScore, error) {
	scores := make([]*storage.AirdropScore, 0)
	res := s.db.WithContext(ctx).
		Where("final_score > 0").
		Order("final_score desc, fid asc").
		Limit(limit).
		Find(&scores)
	if res.Error != nil {
		return nil, res.Error
	}
	return scores, nil
}

func (s *PostgresAirdropStore) UpdateAllocations(ctx context.Context, scores []*storage.AirdropScore) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, score := range scores {
			res := tx.Model(&storage.AirdropScore{}).
				Where("fid = ?", score.Fid).
				Updates(map[string]interface{}{
					"token_allocation": score.TokenAllocation,
					"percentage":       score.Percentage,
				})
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
}

func (s *PostgresAirdropStore) GetActiveSnapshot(ctx context.Context) (*storage.AirdropSnapshot, error) {
	var snapshot storage.AirdropSnapshot
	res := s.db.WithContext(ctx).Order("id desc").First(&snapshot)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &snapshot, nil
}

func (s *PostgresAirdropStore) GetSnapshot(ctx context.Context, id uint64) (*storage.AirdropSnapshot, error) {
	var snapshot storage.AirdropSnapshot
	res := s.db.WithContext(ctx).Where("id = ?", id).First(&snapshot)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, storage.ErrSnapshotNotFound
		}
		return nil, res.Error
	}
	return &snapshot, nil
}

func (s *PostgresAirdropStore) ReplaceSnapshot(ctx context.Context, snapshot *storage.AirdropSnapshot, leaves []*storage.AirdropLeaf) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Application-level cascade: leaves first, then their snapshots.
		if res := tx.Where("1 = 1").Delete(&storage.AirdropLeaf{}); res.Error != nil {
			return errors.Wrap(res.Error, "failed to delete previous leaves")
		}
		if res := tx.Where("1 = 1").Delete(&storage.AirdropSnapshot{}); res.Error != nil {
			return errors.Wrap(res.Error, "failed to delete previous snapshots")
		}

		if res := tx.Create(snapshot); res.Error != nil {
			return errors.Wrap(res.Error, "failed to create snapshot")
		}

		for _, leaf := range leaves {
			leaf.SnapshotId = snapshot.Id
		}

		if len(leaves) > 0 {
			res := tx.Model(&storage.AirdropLeaf{}).CreateInBatches(leaves, leafInsertBatchSize)
			if res.Error != nil {
				return errors.Wrap(res.Error, "failed to bulk insert leaves")
			}
		}
		return nil
	})
}

func (s *PostgresAirdropStore) FreezeSnapshot(ctx context.Context, id uint64, merkleRoot string) error {
	res := s.db.WithContext(ctx).Model(&storage.AirdropSnapshot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"merkle_root": merkleRoot,
			"is_frozen":   true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrSnapshotNotFound
	}
	return nil
}

func (s *PostgresAirdropStore) ListLeavesForSnapshot(ctx context.Context, snapshotId uint64) ([]*storage.AirdropLeaf, error) {
	leaves := make([]*storage.AirdropLeaf, 0)
	res := s.db.WithContext(ctx).
		Where("snapshot_id = ?", snapshotId).
		Order("fid asc").
		Find(&leaves)
	if res.Error != nil {
		return nil, res.Error
	}
	return leaves, nil
}

func (s *PostgresAirdropStore) GetLeaf(ctx context.Context, snapshotId uint64, fid uint64) (*storage.AirdropLeaf, error) {
	var leaf storage.AirdropLeaf
	res := s.db.WithContext(ctx).
		Where("snapshot_id = ? and fid = ?", snapshotId, fid).
		First(&leaf)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, storage.ErrLeafNotFound
		}
		return nil, res.Error
	}
	return &leaf, nil
}
