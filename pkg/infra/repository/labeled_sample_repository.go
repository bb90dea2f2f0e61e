package repository

import (
	"context"
	"fmt"

	"github.com/triage-ai/triage-guard/pkg/domain/sample"
	"gorm.io/gorm"
)

type LabeledSampleRepository struct {
	db *gorm.DB
}

func NewLabeledSampleRepository(db *gorm.DB) sample.Repository {
	return &LabeledSampleRepository{
		db: db,
	}
}

func (r *LabeledSampleRepository) SaveBatch(ctx context.Context, samples []sample.LabeledSample) error {
	if len(samples) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&samples).Error; err != nil {
		return fmt.Errorf("failed to save labeled samples: %w", err)
	}
	return nil
}

func (r *LabeledSampleRepository) ListByDataset(ctx context.Context, dataset string) ([]sample.LabeledSample, error) {
	var samples []sample.LabeledSample
	if err := r.db.WithContext(ctx).
		Where("dataset = ?", dataset).
		Order("sample_index ASC").
		Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("failed to list labeled samples: %w", err)
	}
	return samples, nil
}

func (r *LabeledSampleRepository) CountParsed(ctx context.Context) (parsed int64, total int64, err error) {
	if err = r.db.WithContext(ctx).
		Model(&sample.LabeledSample{}).
		Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count labeled samples: %w", err)
	}
	if err = r.db.WithContext(ctx).
		Model(&sample.LabeledSample{}).
		Where("parse_success = ?", true).
		Count(&parsed).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count parsed samples: %w", err)
	}
	return parsed, total, nil
}
