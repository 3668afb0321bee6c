package repository

import (
	"context"
	"time"

	"github.com/lshigami/heartscan/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	Find(ctx context.Context, tx *gorm.DB, userID, assessmentType string) (*model.Progress, error)
	// RecordCompletion creates or bumps the progress row of (user, type).
	RecordCompletion(ctx context.Context, tx *gorm.DB, userID, assessmentType, assessmentID string, completedAt, canRetakeAfter time.Time) error
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Find(ctx context.Context, tx *gorm.DB, userID, assessmentType string) (*model.Progress, error) {
	var progress model.Progress
	err := conn(ctx, r.db, tx).
		Where("user_id = ? AND assessment_type = ?", userID, assessmentType).
		First(&progress).Error
	return &progress, err
}

func (r *progressRepository) RecordCompletion(ctx context.Context, tx *gorm.DB, userID, assessmentType, assessmentID string, completedAt, canRetakeAfter time.Time) error {
	progress := model.Progress{
		UserID:           userID,
		AssessmentType:   assessmentType,
		LastAssessmentID: assessmentID,
		AssessmentCount:  1,
		CanRetakeAfter:   &canRetakeAfter,
	}
	return conn(ctx, r.db, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "assessment_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_assessment_id": assessmentID,
			"assessment_count":   gorm.Expr("assessment_progress.assessment_count + 1"),
			"can_retake_after":   canRetakeAfter,
			"updated_at":         completedAt,
		}),
	}).Create(&progress).Error
}
