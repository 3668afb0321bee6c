package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func start(t *testing.T, e *env, userID string) *dto.AssessmentDTO {
	t.Helper()
	a, err := e.assessments.Start(context.Background(), dto.StartAssessmentRequest{UserID: userID, AssessmentType: "quiz"})
	require.NoError(t, err)
	return a
}

func answerAll(t *testing.T, e *env, assessmentID string) {
	t.Helper()
	_, err := e.responses.SubmitBatch(context.Background(), assessmentID, dto.BatchAnswerRequest{Answers: fullAnswers()})
	require.NoError(t, err)
}

func TestComplete_ScoresClassifiesAndRecordsProgress(t *testing.T) {
	freezeTime(t, t0)
	e := newEnv(t)
	ctx := context.Background()

	a := start(t, e, "u1")
	assert.Equal(t, model.StatusInProgress, a.Status)
	assert.Equal(t, 2, a.BankVersion)
	assert.Equal(t, 6, a.TotalQuestions)
	answerAll(t, e, a.ID)

	res, err := e.results.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"calm": 84.6, "tense": 20.0}, res.CategoryScores)
	assert.Equal(t, "calm", res.Primary)
	assert.Nil(t, res.Secondary)
	assert.Equal(t, []string{}, res.ValidityWarnings)
	assert.Equal(t, 100.0, res.CompletionRate)
	assert.Equal(t, 2.0, res.ResponseVariance)
	assert.Equal(t, 100, res.ConfidenceScore)
	// Timing cv 0.30 and statement stddev 1.41 average to 29.
	assert.Equal(t, 29, res.BlindspotIndex)

	stored, err := e.results.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, stored.ID)
	assert.Equal(t, res.CategoryScores, stored.CategoryScores)

	got, err := e.assessments.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(t0))
	assert.Equal(t, 6, got.AnsweredCount)

	p, err := e.assessments.GetProgress(ctx, "u1", "quiz")
	require.NoError(t, err)
	assert.Equal(t, 1, p.AssessmentCount)
	assert.Equal(t, a.ID, p.LastAssessmentID)
	require.NotNil(t, p.CanRetakeAfter)
	assert.True(t, p.CanRetakeAfter.Equal(t0.AddDate(0, 0, 30)))
	assert.False(t, p.CanRetakeNow)
}

func TestStart_RetakeCooldown(t *testing.T) {
	setNow := freezeTime(t, t0)
	e := newEnv(t)
	ctx := context.Background()

	first := start(t, e, "u1")
	answerAll(t, e, first.ID)
	firstResult, err := e.results.Complete(ctx, first.ID)
	require.NoError(t, err)

	setNow(t0.Add(time.Hour))
	_, err = e.assessments.Start(ctx, dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "quiz"})
	var cooldown *RetakeCooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.True(t, cooldown.CanRetakeAfter.Equal(t0.AddDate(0, 0, 30)))

	// Other users are not affected.
	start(t, e, "u2")

	setNow(t0.AddDate(0, 0, 30))
	second := start(t, e, "u1")
	assert.NotEqual(t, first.ID, second.ID)

	_, err = e.responses.SubmitBatch(ctx, second.ID, dto.BatchAnswerRequest{Answers: []dto.AnswerRequest{
		{QuestionID: "q1", Value: value(1), ResponseTimeMs: 3000},
		{QuestionID: "q2", Value: value(5), ResponseTimeMs: 3000},
		{QuestionID: "q3", Value: value(5), ResponseTimeMs: 3000},
		{QuestionID: "q4", Value: value(4), ResponseTimeMs: 3000},
		{QuestionID: "q5", Value: value(2), ResponseTimeMs: 3000},
		{QuestionID: "sc1", SelectedOptionID: optionID("spiral"), ResponseTimeMs: 3000},
	}})
	require.NoError(t, err)
	secondResult, err := e.results.Complete(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "tense", secondResult.Primary)

	again, err := e.results.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, firstResult.CategoryScores, again.CategoryScores)
	assert.Equal(t, "calm", again.Primary)

	p, err := e.assessments.GetProgress(ctx, "u1", "quiz")
	require.NoError(t, err)
	assert.Equal(t, 2, p.AssessmentCount)
	assert.Equal(t, second.ID, p.LastAssessmentID)
}

func TestComplete_IncompleteIsBlocked(t *testing.T) {
	freezeTime(t, t0)
	e := newEnv(t)
	ctx := context.Background()

	a := start(t, e, "u1")
	_, err := e.responses.SubmitBatch(ctx, a.ID, dto.BatchAnswerRequest{Answers: fullAnswers()[:5]})
	require.NoError(t, err)

	_, err = e.results.Complete(ctx, a.ID)
	var incomplete *IncompleteAssessmentError
	require.ErrorAs(t, err, &incomplete)
	assert.InDelta(t, 83.3, incomplete.CompletionRate, 1e-9)
	assert.Equal(t, []string{"sc1"}, incomplete.MissingQuestionIDs)

	got, err := e.assessments.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)

	_, err = e.results.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := e.assessments.GetProgress(ctx, "u1", "quiz")
	require.NoError(t, err)
	assert.Zero(t, p.AssessmentCount)
	assert.True(t, p.CanRetakeNow)
}

func TestComplete_ConcurrentCallsCompleteOnce(t *testing.T) {
	freezeTime(t, t0)
	e := newEnv(t)
	a := start(t, e, "u1")
	answerAll(t, e, a.ID)

	const callers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.results.Complete(context.Background(), a.ID)
			var done *AlreadyCompletedError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.As(err, &done):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, rejected)

	p, err := e.assessments.GetProgress(context.Background(), "u1", "quiz")
	require.NoError(t, err)
	assert.Equal(t, 1, p.AssessmentCount)
}

func TestComplete_TwiceReturnsAlreadyCompleted(t *testing.T) {
	freezeTime(t, t0)
	e := newEnv(t)
	ctx := context.Background()
	a := start(t, e, "u1")
	answerAll(t, e, a.ID)

	_, err := e.results.Complete(ctx, a.ID)
	require.NoError(t, err)
	_, err = e.results.Complete(ctx, a.ID)
	var done *AlreadyCompletedError
	require.ErrorAs(t, err, &done)
	assert.Equal(t, model.StatusCompleted, done.Status)

	_, err = e.responses.Submit(ctx, a.ID, dto.AnswerRequest{QuestionID: "q1", Value: value(2)})
	require.ErrorAs(t, err, &done)

	_, err = e.results.Complete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAbandon(t *testing.T) {
	freezeTime(t, t0)
	e := newEnv(t)
	ctx := context.Background()
	a := start(t, e, "u1")

	abandoned, err := e.assessments.Abandon(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, abandoned.Status)
	require.NotNil(t, abandoned.AbandonedAt)

	_, err = e.assessments.Abandon(ctx, a.ID)
	var done *AlreadyCompletedError
	require.ErrorAs(t, err, &done)
	assert.Equal(t, model.StatusAbandoned, done.Status)

	_, err = e.results.Complete(ctx, a.ID)
	require.ErrorAs(t, err, &done)

	// Abandoning consumes no cooldown.
	p, err := e.assessments.GetProgress(ctx, "u1", "quiz")
	require.NoError(t, err)
	assert.True(t, p.CanRetakeNow)
	start(t, e, "u1")

	_, err = e.assessments.Abandon(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStart_SupersedesUnfinishedSession(t *testing.T) {
	freezeTime(t, t0)
	e := newEnv(t)
	ctx := context.Background()

	first := start(t, e, "u1")
	second := start(t, e, "u1")

	old, err := e.assessments.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, old.Status)

	history, err := e.assessments.History(ctx, "u1", "quiz")
	require.NoError(t, err)
	require.Len(t, history, 2)
	var inProgress []string
	for _, h := range history {
		if h.Status == model.StatusInProgress {
			inProgress = append(inProgress, h.ID)
		}
	}
	assert.Equal(t, []string{second.ID}, inProgress)

	_, err = e.assessments.History(ctx, "u1", "horoscope")
	assert.ErrorIs(t, err, ErrUnknownAssessmentType)
}

func TestStart_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       dto.StartAssessmentRequest
		wantField string
	}{
		{"missing user", dto.StartAssessmentRequest{AssessmentType: "quiz"}, ""},
		{"unknown intake key", dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "quiz", MicroIntake: map[string]interface{}{"zodiac": "leo"}}, "micro_intake.zodiac"},
		{"scale out of range", dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "quiz", MicroIntake: map[string]interface{}{"stress_level": float64(9)}}, "micro_intake.stress_level"},
		{"scale not whole", dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "quiz", MicroIntake: map[string]interface{}{"stress_level": 2.5}}, "micro_intake.stress_level"},
		{"text too long", dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "quiz", MicroIntake: map[string]interface{}{"note": "far too long for this"}}, "micro_intake.note"},
		{"bool as text", dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "quiz", MicroIntake: map[string]interface{}{"single": "yes"}}, "micro_intake.single"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.assessments.Start(ctx, tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}

	_, err := e.assessments.Start(ctx, dto.StartAssessmentRequest{UserID: "u1", AssessmentType: "horoscope"})
	assert.ErrorIs(t, err, ErrUnknownAssessmentType)

	history, err := e.assessments.History(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStart_StoresMicroIntake(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.assessments.Start(ctx, dto.StartAssessmentRequest{
		UserID:         "u1",
		AssessmentType: "quiz",
		MicroIntake:    map[string]interface{}{"stress_level": float64(4), "note": "dating", "single": true},
	})
	require.NoError(t, err)

	got, err := e.assessments.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.MicroIntake["stress_level"])
	assert.Equal(t, "dating", got.MicroIntake["note"])
	assert.Equal(t, true, got.MicroIntake["single"])
}
