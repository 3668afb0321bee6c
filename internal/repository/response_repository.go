package repository

import (
	"context"

	"github.com/lshigami/heartscan/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository interface {
	// Upsert stores responses keyed by (assessment_id, question_id),
	// overwriting the answer of an existing row.
	Upsert(ctx context.Context, tx *gorm.DB, responses []model.Response) error
	FindByAssessment(ctx context.Context, tx *gorm.DB, assessmentID string) ([]model.Response, error)
	CountByAssessment(ctx context.Context, assessmentID string) (int64, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Upsert(ctx context.Context, tx *gorm.DB, responses []model.Response) error {
	if len(responses) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assessment_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "value", "selected_option_id", "response_time_ms", "updated_at"}),
	}).Create(&responses).Error
}

func (r *responseRepository) FindByAssessment(ctx context.Context, tx *gorm.DB, assessmentID string) ([]model.Response, error) {
	var responses []model.Response
	err := conn(ctx, r.db, tx).Where("assessment_id = ?", assessmentID).Order("id").Find(&responses).Error
	return responses, err
}

func (r *responseRepository) CountByAssessment(ctx context.Context, assessmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Response{}).Where("assessment_id = ?", assessmentID).Count(&count).Error
	return count, err
}
