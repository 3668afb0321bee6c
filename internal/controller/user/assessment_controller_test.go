package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/heartscan/database"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/lshigami/heartscan/internal/scoring"
	"github.com/lshigami/heartscan/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	banks, err := questionbank.NewRegistry(questionbank.Options{})
	require.NoError(t, err)

	assessmentRepo := repository.NewAssessmentRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	resultRepo := repository.NewResultRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	insights := service.NewInsightService(banks, nil, insightRepo, assessmentRepo)
	ctrl := NewAssessmentController(
		service.NewAssessmentService(db, banks, assessmentRepo, responseRepo, progressRepo),
		service.NewResponseService(db, banks, assessmentRepo, responseRepo),
		service.NewResultService(db, banks, scoring.DefaultPolicy(), assessmentRepo, responseRepo, resultRepo, progressRepo, []service.ResultConsumer{insights}, time.Second),
		insights,
	)
	catalog := NewCatalogController(service.NewCatalogService(banks))

	r := gin.New()
	api := r.Group("/api/v1")
	ctrl.RegisterRoutes(api)
	catalog.RegisterRoutes(api)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAssessmentFlow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/assessment-types/attachment_style/questions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	questions := decode[[]dto.QuestionDTO](t, w)
	require.NotEmpty(t, questions)
	assert.NotContains(t, w.Body.String(), "reverse_scored")

	w = do(t, r, http.MethodPost, "/api/v1/assessments", dto.StartAssessmentRequest{
		UserID:         "user-42",
		AssessmentType: "attachment_style",
		MicroIntake:    map[string]interface{}{"stress_level": 3},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assessment := decode[dto.AssessmentDTO](t, w)
	base := "/api/v1/assessments/" + assessment.ID

	w = do(t, r, http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	incomplete := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, 0.0, incomplete.Details["completion_rate"])

	var answers []dto.AnswerRequest
	for i, q := range questions {
		a := dto.AnswerRequest{QuestionID: q.ID, ResponseTimeMs: 4000}
		if q.Kind == "scenario" {
			id := q.Options[0].ID
			a.SelectedOptionID = &id
		} else {
			v := 1 + i%5
			a.Value = &v
		}
		answers = append(answers, a)
	}
	w = do(t, r, http.MethodPost, base+"/responses/batch", dto.BatchAnswerRequest{Answers: answers})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	bad := 7
	w = do(t, r, http.MethodPost, base+"/responses", dto.AnswerRequest{QuestionID: questions[0].ID, Value: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[dto.ResultDTO](t, w)
	assert.NotEmpty(t, result.Primary)
	assert.Len(t, result.CategoryScores, 4)

	w = do(t, r, http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, base+"/result", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, result.ID, decode[dto.ResultDTO](t, w).ID)

	w = do(t, r, http.MethodPost, "/api/v1/assessments", dto.StartAssessmentRequest{UserID: "user-42", AssessmentType: "attachment_style"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = do(t, r, http.MethodGet, "/api/v1/users/user-42/progress/attachment_style", nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode[dto.ProgressDTO](t, w)
	assert.Equal(t, 1, progress.AssessmentCount)
	assert.False(t, progress.CanRetakeNow)

	assert.Eventually(t, func() bool {
		return do(t, r, http.MethodGet, base+"/insight", nil).Code == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	w = do(t, r, http.MethodGet, "/api/v1/users/user-42/assessments?type=attachment_style", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.AssessmentDTO](t, w), 1)
}

func TestAssessmentErrors(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/assessments/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/assessments", map[string]string{"assessment_type": "dating_style"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/assessments", dto.StartAssessmentRequest{UserID: "u", AssessmentType: "horoscope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/assessments", dto.StartAssessmentRequest{
		UserID: "u", AssessmentType: "attachment_style", MicroIntake: map[string]interface{}{"stress_level": 11},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "micro_intake.stress_level", decode[dto.ErrorResponse](t, w).Details["field"])

	w = do(t, r, http.MethodGet, "/api/v1/assessment-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.AssessmentTypeDTO](t, w), 3)
}
