package repository

import (
	"context"

	"github.com/lshigami/heartscan/internal/model"
	"gorm.io/gorm"
)

type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *model.Result) error
	FindByAssessmentID(ctx context.Context, assessmentID string) (*model.Result, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, tx *gorm.DB, result *model.Result) error {
	return conn(ctx, r.db, tx).Create(result).Error
}

func (r *resultRepository) FindByAssessmentID(ctx context.Context, assessmentID string) (*model.Result, error) {
	var result model.Result
	err := r.db.WithContext(ctx).Where("assessment_id = ?", assessmentID).First(&result).Error
	return &result, err
}
