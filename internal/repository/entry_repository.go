//go:generate mockery --name EntryRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryRepository はCPD記録の永続化と、目標進捗計算で使う集計を担うリポジトリ
type EntryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *model.CPDEntry) error
	FindByID(ctx context.Context, db *gorm.DB, entryID uuid.UUID) (*model.CPDEntry, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.CPDEntry, error)
	Update(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error
	// Aggregate は指定ユーザー群の記録を一括集計する (審査状況は問わない)
	Aggregate(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) (*model.EntryAggregate, error)
	// AggregatePerUser はユーザーごとの集計を返す。記録の無いユーザーはキーに含まれない
	AggregatePerUser(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID]model.EntryAggregate, error)
}

type gormEntryRepository struct{}

func NewGormEntryRepository() EntryRepository {
	return &gormEntryRepository{}
}

func (r *gormEntryRepository) Create(ctx context.Context, tx *gorm.DB, entry *model.CPDEntry) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(entry)
	if result.Error != nil {
		logger.Error("Error creating CPD entry in DB",
			"error", result.Error,
			"user_id", entry.UserID.String(),
			"title", entry.Title,
		)
		return fmt.Errorf("gormEntryRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormEntryRepository) FindByID(ctx context.Context, db *gorm.DB, entryID uuid.UUID) (*model.CPDEntry, error) {
	var entry model.CPDEntry
	result := db.WithContext(ctx).Where("entry_id = ?", entryID).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormEntryRepository.FindByID: %w", result.Error)
	}
	return &entry, nil
}

func (r *gormEntryRepository) FindByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]*model.CPDEntry, error) {
	var entries []*model.CPDEntry
	result := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_completed DESC, created_at DESC").
		Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEntryRepository.FindByUser: %w", result.Error)
	}
	return entries, nil
}

func (r *gormEntryRepository) Update(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.CPDEntry{}).Where("entry_id = ?", entryID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gormEntryRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormEntryRepository) Delete(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("entry_id = ?", entryID).Delete(&model.CPDEntry{})
	if result.Error != nil {
		return fmt.Errorf("gormEntryRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormEntryRepository) Aggregate(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) (*model.EntryAggregate, error) {
	// 対象ユーザーが空なら集計はゼロで確定する
	if len(userIDs) == 0 {
		return &model.EntryAggregate{}, nil
	}
	var agg model.EntryAggregate
	result := db.WithContext(ctx).Model(&model.CPDEntry{}).
		Select("COALESCE(SUM(hours), 0) AS total_hours, COALESCE(SUM(points), 0) AS total_points, COUNT(*) AS entry_count").
		Where("user_id IN ?", userIDs).
		Scan(&agg)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEntryRepository.Aggregate: %w", result.Error)
	}

	// 最終記録日は列をそのまま引く (集約式だとドライバによって日付型が崩れる)
	var lastDates []time.Time
	result = db.WithContext(ctx).Model(&model.CPDEntry{}).
		Where("user_id IN ?", userIDs).
		Order("date_completed DESC").
		Limit(1).
		Pluck("date_completed", &lastDates)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEntryRepository.Aggregate: %w", result.Error)
	}
	if len(lastDates) > 0 {
		agg.LastEntryDate = &lastDates[0]
	}
	return &agg, nil
}

func (r *gormEntryRepository) AggregatePerUser(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID]model.EntryAggregate, error) {
	aggs := make(map[uuid.UUID]model.EntryAggregate, len(userIDs))
	if len(userIDs) == 0 {
		return aggs, nil
	}

	type userAggregate struct {
		UserID      uuid.UUID
		TotalHours  float64
		TotalPoints float64
		EntryCount  int
	}
	var rows []userAggregate
	result := db.WithContext(ctx).Model(&model.CPDEntry{}).
		Select("user_id, COALESCE(SUM(hours), 0) AS total_hours, COALESCE(SUM(points), 0) AS total_points, COUNT(*) AS entry_count").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEntryRepository.AggregatePerUser: %w", result.Error)
	}

	type lastDateRow struct {
		UserID        uuid.UUID
		DateCompleted time.Time
	}
	var dateRows []lastDateRow
	result = db.WithContext(ctx).Model(&model.CPDEntry{}).
		Select("user_id, date_completed").
		Where("user_id IN ?", userIDs).
		Scan(&dateRows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormEntryRepository.AggregatePerUser: %w", result.Error)
	}
	lastDates := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range dateRows {
		if current, ok := lastDates[row.UserID]; !ok || row.DateCompleted.After(current) {
			lastDates[row.UserID] = row.DateCompleted
		}
	}

	for _, row := range rows {
		agg := model.EntryAggregate{
			TotalHours:  row.TotalHours,
			TotalPoints: row.TotalPoints,
			EntryCount:  row.EntryCount,
		}
		if last, ok := lastDates[row.UserID]; ok {
			lastCopy := last
			agg.LastEntryDate = &lastCopy
		}
		aggs[row.UserID] = agg
	}
	return aggs, nil
}
