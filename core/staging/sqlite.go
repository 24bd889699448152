package staging

import (
	"context"
	"fmt"

	"datarecon/core/record"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// stagingEntry is the gorm model backing the disk-based store. Seq preserves
// insertion order for deterministic samples.
type stagingEntry struct {
	Seq          int64  `gorm:"primaryKey;autoIncrement"`
	RecordID     string `gorm:"column:record_id;uniqueIndex;size:255"`
	SourceDigest string `gorm:"size:64"`
	TargetDigest string `gorm:"size:64"`
}

func (stagingEntry) TableName() string {
	return "staging_entries"
}

// gormStore is the disk-backed Store for datasets whose id space exceeds
// memory. It runs on SQLite through gorm.
type gormStore struct {
	db *gorm.DB
}

// idChunkSize bounds IN(...) lists for CountExisting probes.
const idChunkSize = 500

// NewGorm wraps an open gorm connection as a staging store and ensures the
// staging table exists.
func NewGorm(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&stagingEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate staging table: %w", err)
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) Reset(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM staging_entries").Error; err != nil {
		return fmt.Errorf("failed to reset staging table: %w", err)
	}
	return nil
}

func (s *gormStore) UpsertSourceBatch(ctx context.Context, pairs []Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	rows := make([]stagingEntry, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, stagingEntry{RecordID: p.ID, SourceDigest: string(p.Digest)})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_digest"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert source batch: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateTargetBatch(ctx context.Context, pairs []Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	// One transaction per batch; individual updates on unknown ids affect
	// zero rows, which is the intended no-op.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			res := tx.Model(&stagingEntry{}).
				Where("record_id = ?", p.ID).
				Update("target_digest", string(p.Digest))
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update target batch: %w", err)
	}
	return nil
}

func (s *gormStore) Count(ctx context.Context, pred Predicate) (int64, error) {
	var n int64
	q := s.predicateQuery(ctx, pred)
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count staging entries: %w", err)
	}
	return n, nil
}

func (s *gormStore) Sample(ctx context.Context, pred Predicate, limit int) ([]Entry, error) {
	var rows []stagingEntry
	q := s.predicateQuery(ctx, pred).Order("seq ASC").Limit(limit)
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sample staging entries: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			ID:           r.RecordID,
			SourceDigest: record.Digest(r.SourceDigest),
			TargetDigest: record.Digest(r.TargetDigest),
		})
	}
	return entries, nil
}

func (s *gormStore) CountExisting(ctx context.Context, ids map[string]struct{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	all := make([]string, 0, len(ids))
	for id := range ids {
		all = append(all, id)
	}

	var total int64
	for start := 0; start < len(all); start += idChunkSize {
		end := start + idChunkSize
		if end > len(all) {
			end = len(all)
		}
		var n int64
		err := s.db.WithContext(ctx).Model(&stagingEntry{}).
			Where("record_id IN ?", all[start:end]).
			Count(&n).Error
		if err != nil {
			return 0, fmt.Errorf("failed to probe staged ids: %w", err)
		}
		total += n
	}
	return total, nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *gormStore) predicateQuery(ctx context.Context, pred Predicate) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&stagingEntry{})
	switch pred {
	case Match:
		return q.Where("source_digest <> '' AND target_digest <> '' AND source_digest = target_digest")
	case SourceOnly:
		return q.Where("target_digest = ''")
	case Differing:
		return q.Where("source_digest <> '' AND target_digest <> '' AND source_digest <> target_digest")
	default:
		return q
	}
}
