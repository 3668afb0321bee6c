package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/heartscan/database"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/lshigami/heartscan/internal/scoring"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const quizYAML = `
type: quiz
version: 2
title: Quiz
retake_after_days: 30
categories:
  - id: calm
    label: Calm
  - id: tense
    label: Tense
intake:
  - key: stress_level
    kind: scale
    min: 1
    max: 5
  - key: note
    kind: text
    max_length: 10
  - key: single
    kind: bool
questions:
  - id: q1
    kind: statement
    order: 1
    category: calm
    text: I stay calm.
  - id: q2
    kind: statement
    order: 2
    category: calm
    text: Small things rattle me.
    reverse_scored: true
  - id: q3
    kind: statement
    order: 3
    category: tense
    text: I worry.
  - id: q4
    kind: statement
    order: 4
    category: tense
    text: I overthink texts.
  - id: q5
    kind: statement
    order: 5
    category: calm
    text: I sleep well.
  - id: sc1
    kind: scenario
    order: 6
    text: A date is late.
    options:
      - id: wait
        text: I wait.
        categories: [calm]
      - id: spiral
        text: I spiral.
        weight: 2
        categories: [tense]
`

// env bundles services over one in-memory database.
type env struct {
	db          *gorm.DB
	banks       *questionbank.Registry
	assessments AssessmentService
	responses   ResponseService
	results     ResultService
	insights    InsightService
	catalog     CatalogService

	assessmentRepo repository.AssessmentRepository
	insightRepo    repository.InsightRepository
}

func newEnv(t *testing.T, consumers ...ResultConsumer) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	quiz, err := questionbank.Parse([]byte(quizYAML), "quiz.yaml")
	require.NoError(t, err)
	banks := questionbank.NewRegistryFromBanks(quiz)

	assessmentRepo := repository.NewAssessmentRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	resultRepo := repository.NewResultRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	insights := NewInsightService(banks, nil, insightRepo, assessmentRepo)
	return &env{
		db:          db,
		banks:       banks,
		assessments: NewAssessmentService(db, banks, assessmentRepo, responseRepo, progressRepo),
		responses:   NewResponseService(db, banks, assessmentRepo, responseRepo),
		results:     NewResultService(db, banks, scoring.DefaultPolicy(), assessmentRepo, responseRepo, resultRepo, progressRepo, consumers, time.Second),
		insights:    insights,
		catalog:     NewCatalogService(banks),

		assessmentRepo: assessmentRepo,
		insightRepo:    insightRepo,
	}
}

// freezeTime pins timeNow and returns a setter to move it.
func freezeTime(t *testing.T, at time.Time) func(time.Time) {
	t.Helper()
	current := at
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = time.Now })
	return func(next time.Time) { current = next }
}

func value(v int) *int { return &v }

func optionID(id string) *string { return &id }

// fullAnswers answers every quiz question with varied values.
func fullAnswers() []dto.AnswerRequest {
	return []dto.AnswerRequest{
		{QuestionID: "q1", Value: value(5), ResponseTimeMs: 3000},
		{QuestionID: "q2", Value: value(2), ResponseTimeMs: 3500},
		{QuestionID: "q3", Value: value(1), ResponseTimeMs: 4000},
		{QuestionID: "q4", Value: value(3), ResponseTimeMs: 2500},
		{QuestionID: "q5", Value: value(4), ResponseTimeMs: 5000},
		{QuestionID: "sc1", SelectedOptionID: optionID("wait"), ResponseTimeMs: 6000},
	}
}
