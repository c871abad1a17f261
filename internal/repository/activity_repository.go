package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studymate/internal/model"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create activity log failed: %w", err)
	}
	return nil
}

// ListRecent returns the latest entries, newest first.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []model.ActivityLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list activity logs failed: %w", err)
	}
	return entries, nil
}

// CountByAction returns the number of entries per action.
func (r *ActivityRepository) CountByAction(ctx context.Context) (map[model.ActivityAction]int64, error) {
	var rows []struct {
		Action string
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.ActivityLog{}).
		Select("action, COUNT(*) AS total").
		Group("action").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count activity logs failed: %w", err)
	}

	counts := make(map[model.ActivityAction]int64, len(rows))
	for _, row := range rows {
		counts[model.ActivityAction(row.Action)] = row.Total
	}
	return counts, nil
}
