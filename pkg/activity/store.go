package activity

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Participant is one cohort member, ordered by accumulated base points.
type Participant struct {
	Fid        uint64
	BasePoints int64
}

// VoteAggregates carries the vote-derived signals for one fid, prefetched in
// bulk so batch runs avoid per-participant queries.
type VoteAggregates struct {
	DistinctBrands int
	ShareCount     int
}

// Store reads activity aggregates from the voting tables.
type Store interface {
	GetBasePoints(ctx context.Context, fid uint64) (int64, error)
	GetDistinctVoteTargets(ctx context.Context, fid uint64) (int, error)
	GetShareCount(ctx context.Context, fid uint64) (int, error)

	// BulkVoteAggregates returns vote aggregates for every fid in the set in
	// two grouped queries. Fids with no votes are present with zero values.
	BulkVoteAggregates(ctx context.Context, fids []uint64) (map[uint64]*VoteAggregates, error)

	// ListTopParticipants returns up to limit users ordered by points
	// descending (fid ascending on ties), skipping excluded fids.
	ListTopParticipants(ctx context.Context, limit int, excludedFids []uint64) ([]*Participant, error)
}

type GormActivityStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormActivityStore(db *gorm.DB, l *zap.Logger) *GormActivityStore {
	return &GormActivityStore{
		db:     db,
		logger: l,
	}
}

func (s *GormActivityStore) GetBasePoints(ctx context.Context, fid uint64) (int64, error) {
	var user User
	res := s.db.WithContext(ctx).Where("fid = ?", fid).First(&user)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, res.Error
	}
	return user.Points, nil
}

func (s *GormActivityStore) GetDistinctVoteTargets(ctx context.Context, fid uint64) (int, error) {
	var count int64
	res := s.db.WithContext(ctx).Model(&Vote{}).
		Where("fid = ?", fid).
		Distinct("brand_id").
		Count(&count)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(count), nil
}

func (s *GormActivityStore) GetShareCount(ctx context.Context, fid uint64) (int, error) {
	var count int64
	res := s.db.WithContext(ctx).Model(&VoteShare{}).
		Where("fid = ?", fid).
		Count(&count)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(count), nil
}

func (s *GormActivityStore) BulkVoteAggregates(ctx context.Context, fids []uint64) (map[uint64]*VoteAggregates, error) {
	aggregates := make(map[uint64]*VoteAggregates, len(fids))
	for _, fid := range fids {
		aggregates[fid] = &VoteAggregates{}
	}
	if len(fids) == 0 {
		return aggregates, nil
	}

	type fidCount struct {
		Fid   uint64
		Count int
	}

	brandCounts := make([]*fidCount, 0)
	res := s.db.WithContext(ctx).Raw(`
		select
			fid,
			count(distinct brand_id) as count
		from votes
		where fid in (?)
		group by fid
	`, fids).Scan(&brandCounts)
	if res.Error != nil {
		return nil, res.Error
	}
	for _, bc := range brandCounts {
		aggregates[bc.Fid].DistinctBrands = bc.Count
	}

	shareCounts := make([]*fidCount, 0)
	res = s.db.WithContext(ctx).Raw(`
		select
			fid,
			count(*) as count
		from vote_shares
		where fid in (?)
		group by fid
	`, fids).Scan(&shareCounts)
	if res.Error != nil {
		return nil, res.Error
	}
	for _, sc := range shareCounts {
		aggregates[sc.Fid].ShareCount = sc.Count
	}

	return aggregates, nil
}

func (s *GormActivityStore) ListTopParticipants(ctx context.Context, limit int, excludedFids []uint64) ([]*Participant, error) {
	participants := make([]*Participant, 0)

	query := s.db.WithContext(ctx).Model(&User{}).
		Select("fid", "points as base_points").
		Order("points desc, fid asc").
		Limit(limit)
	if len(excludedFids) > 0 {
		query = query.Where("fid not in (?)", excludedFids)
	}

	res := query.Scan(&participants)
	if res.Error != nil {
		return nil, res.Error
	}
	return participants, nil
}
