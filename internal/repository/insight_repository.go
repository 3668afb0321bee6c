package repository

import (
	"context"

	"github.com/lshigami/heartscan/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InsightRepository interface {
	Save(ctx context.Context, insight *model.Insight) error
	FindByAssessmentID(ctx context.Context, assessmentID string) (*model.Insight, error)
}

type insightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) InsightRepository {
	return &insightRepository{db: db}
}

// Save replaces any earlier insight of the same assessment.
func (r *insightRepository) Save(ctx context.Context, insight *model.Insight) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assessment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"result_id", "source", "profile", "interpretation", "content_keys"}),
	}).Create(insight).Error
}

func (r *insightRepository) FindByAssessmentID(ctx context.Context, assessmentID string) (*model.Insight, error) {
	var insight model.Insight
	err := r.db.WithContext(ctx).Where("assessment_id = ?", assessmentID).First(&insight).Error
	return &insight, err
}
