package repository

import (
	"context"

	"farmcloud/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository stores the per-day order number counters.
type SequenceRepository interface {
	// Increment bumps the day's counter, creating it at seed, and returns the new value.
	Increment(ctx context.Context, day string, seed int) (int, error)
	Set(ctx context.Context, day string, value int) error
	Get(ctx context.Context, day string) (int, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Increment(ctx context.Context, day string, seed int) (int, error) {
	db := r.db.WithContext(ctx)

	row := models.OrderSequence{Day: day, Value: seed}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value": gorm.Expr("order_sequences.value + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, translate(err)
	}
	return r.Get(ctx, day)
}

func (r *sequenceRepository) Set(ctx context.Context, day string, value int) error {
	err := r.db.WithContext(ctx).
		Model(&models.OrderSequence{}).
		Where("day = ?", day).
		Update("value", value).Error
	return translate(err)
}

func (r *sequenceRepository) Get(ctx context.Context, day string) (int, error) {
	var row models.OrderSequence
	if err := r.db.WithContext(ctx).Where("day = ?", day).First(&row).Error; err != nil {
		return 0, translate(err)
	}
	return row.Value, nil
}
