package repository

import (
	"context"
	"time"

	"github.com/lshigami/heartscan/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assessment *model.Assessment) error
	FindByID(ctx context.Context, tx *gorm.DB, id string) (*model.Assessment, error)
	FindAllByUser(ctx context.Context, userID, assessmentType string) ([]model.Assessment, error)
	// Transition moves an assessment from one status to another and reports
	// whether this call performed the move. It is the single-writer gate for
	// completion and abandonment.
	Transition(ctx context.Context, tx *gorm.DB, id, from, to string, at time.Time) (bool, error)
	AbandonInProgress(ctx context.Context, tx *gorm.DB, userID, assessmentType string, at time.Time) (int64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, tx *gorm.DB, assessment *model.Assessment) error {
	return conn(ctx, r.db, tx).Create(assessment).Error
}

func (r *assessmentRepository) FindByID(ctx context.Context, tx *gorm.DB, id string) (*model.Assessment, error) {
	var assessment model.Assessment
	err := conn(ctx, r.db, tx).Where("id = ?", id).First(&assessment).Error
	return &assessment, err
}

func (r *assessmentRepository) FindAllByUser(ctx context.Context, userID, assessmentType string) ([]model.Assessment, error) {
	var assessments []model.Assessment
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if assessmentType != "" {
		query = query.Where("assessment_type = ?", assessmentType)
	}
	err := query.Order("started_at DESC").Order("id").Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) Transition(ctx context.Context, tx *gorm.DB, id, from, to string, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	switch to {
	case model.StatusCompleted:
		updates["completed_at"] = at
	case model.StatusAbandoned:
		updates["abandoned_at"] = at
	}
	res := conn(ctx, r.db, tx).Model(&model.Assessment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *assessmentRepository) AbandonInProgress(ctx context.Context, tx *gorm.DB, userID, assessmentType string, at time.Time) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.Assessment{}).
		Where("user_id = ? AND assessment_type = ? AND status = ?", userID, assessmentType, model.StatusInProgress).
		Updates(map[string]interface{}{"status": model.StatusAbandoned, "abandoned_at": at})
	return res.RowsAffected, res.Error
}
