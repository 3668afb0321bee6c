package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/heartscan/database"
	"github.com/lshigami/heartscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedAssessment(t *testing.T, db *gorm.DB, userID string) *model.Assessment {
	t.Helper()
	a := &model.Assessment{
		ID:             uuid.NewString(),
		UserID:         userID,
		AssessmentType: "attachment_style",
		BankVersion:    3,
		Status:         model.StatusInProgress,
		StartedAt:      time.Now().UTC(),
		MicroIntake:    datatypes.JSONMap{"stress_level": 3},
	}
	require.NoError(t, NewAssessmentRepository(db).Create(context.Background(), nil, a))
	return a
}

func intPtr(v int) *int { return &v }

func storedResponse(t *testing.T, db *gorm.DB, assessmentID, questionID string) model.Response {
	t.Helper()
	var r model.Response
	require.NoError(t, db.Where("assessment_id = ? AND question_id = ?", assessmentID, questionID).First(&r).Error)
	return r
}

func TestResponseRepository_UpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAssessment(t, db, "u1")
	repo := NewResponseRepository(db)

	resp := model.Response{AssessmentID: a.ID, QuestionID: "as_q01", Kind: "statement", Value: intPtr(4), ResponseTimeMs: 2000}
	require.NoError(t, repo.Upsert(ctx, nil, []model.Response{resp}))
	require.NoError(t, repo.Upsert(ctx, nil, []model.Response{resp}))

	count, err := repo.CountByAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	resp.Value = intPtr(2)
	resp.ResponseTimeMs = 3100
	require.NoError(t, repo.Upsert(ctx, nil, []model.Response{resp}))

	stored := storedResponse(t, db, a.ID, "as_q01")
	require.NotNil(t, stored.Value)
	assert.Equal(t, 2, *stored.Value)
	assert.Equal(t, int64(3100), stored.ResponseTimeMs)

	all, err := repo.FindByAssessment(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResponseRepository_UpsertScenarioSwitchesToOption(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAssessment(t, db, "u1")
	repo := NewResponseRepository(db)

	opt := "b"
	require.NoError(t, repo.Upsert(ctx, nil, []model.Response{
		{AssessmentID: a.ID, QuestionID: "as_s01", Kind: "scenario", SelectedOptionID: &opt},
		{AssessmentID: a.ID, QuestionID: "as_q02", Kind: "statement", Value: intPtr(5)},
	}))
	other := "d"
	require.NoError(t, repo.Upsert(ctx, nil, []model.Response{
		{AssessmentID: a.ID, QuestionID: "as_s01", Kind: "scenario", SelectedOptionID: &other},
	}))

	stored := storedResponse(t, db, a.ID, "as_s01")
	require.NotNil(t, stored.SelectedOptionID)
	assert.Equal(t, "d", *stored.SelectedOptionID)
	assert.Nil(t, stored.Value)

	count, err := repo.CountByAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestAssessmentRepository_TransitionIsSingleWriter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAssessment(t, db, "u1")
	repo := NewAssessmentRepository(db)
	now := time.Now().UTC()

	moved, err := repo.Transition(ctx, nil, a.ID, model.StatusInProgress, model.StatusCompleted, now)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.Transition(ctx, nil, a.ID, model.StatusInProgress, model.StatusCompleted, now)
	require.NoError(t, err)
	assert.False(t, moved)

	stored, err := repo.FindByID(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.Nil(t, stored.AbandonedAt)
	assert.EqualValues(t, 3, stored.MicroIntake["stress_level"])
}

func TestAssessmentRepository_AbandonInProgressAndHistory(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAssessmentRepository(db)

	first := seedAssessment(t, db, "u1")
	second := seedAssessment(t, db, "u1")
	seedAssessment(t, db, "u2")

	n, err := repo.AbandonInProgress(ctx, nil, "u1", "attachment_style", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	history, err := repo.FindAllByUser(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, history, 2)
	ids := []string{history[0].ID, history[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	for _, h := range history {
		assert.Equal(t, model.StatusAbandoned, h.Status)
	}

	none, err := repo.FindAllByUser(ctx, "u1", "dating_style")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.FindByID(ctx, nil, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProgressRepository_RecordCompletionIncrements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProgressRepository(db)

	_, err := repo.Find(ctx, nil, "u1", "dating_style")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	done := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordCompletion(ctx, nil, "u1", "dating_style", "a1", done, done.AddDate(0, 0, 60)))
	require.NoError(t, repo.RecordCompletion(ctx, nil, "u1", "dating_style", "a2", done.AddDate(0, 0, 70), done.AddDate(0, 0, 130)))

	p, err := repo.Find(ctx, nil, "u1", "dating_style")
	require.NoError(t, err)
	assert.Equal(t, 2, p.AssessmentCount)
	assert.Equal(t, "a2", p.LastAssessmentID)
	require.NotNil(t, p.CanRetakeAfter)
	assert.True(t, p.CanRetakeAfter.Equal(done.AddDate(0, 0, 130)))
}

func TestResultAndInsightRepositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAssessment(t, db, "u1")

	secondary := "angstig"
	result := &model.Result{
		ID:               uuid.NewString(),
		AssessmentID:     a.ID,
		AssessmentType:   a.AssessmentType,
		BankVersion:      a.BankVersion,
		CategoryScores:   datatypes.NewJSONType(map[string]float64{"veilig": 72.5, "angstig": 60}),
		Primary:          "veilig",
		Secondary:        &secondary,
		ValidityWarnings: datatypes.NewJSONType([]string{}),
		CompletionRate:   100,
		ResponseVariance: 1.12,
		ConfidenceScore:  100,
	}
	results := NewResultRepository(db)
	require.NoError(t, results.Create(ctx, nil, result))
	assert.Error(t, results.Create(ctx, nil, &model.Result{ID: uuid.NewString(), AssessmentID: a.ID, AssessmentType: a.AssessmentType, Primary: "x"}))

	stored, err := results.FindByAssessmentID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.5, stored.CategoryScores.Data()["veilig"])
	assert.Equal(t, "veilig", stored.Primary)
	require.NotNil(t, stored.Secondary)

	insights := NewInsightRepository(db)
	require.NoError(t, insights.Save(ctx, &model.Insight{AssessmentID: a.ID, ResultID: result.ID, Source: model.InsightSourceTemplate, Profile: "one"}))
	require.NoError(t, insights.Save(ctx, &model.Insight{AssessmentID: a.ID, ResultID: result.ID, Source: model.InsightSourceTemplate, Profile: "two"}))

	in, err := insights.FindByAssessmentID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", in.Profile)
}
