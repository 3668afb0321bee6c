package service

import (
	"testing"

	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	e := newEnv(t)

	types := e.catalog.ListTypes()
	require.Len(t, types, 1)
	assert.Equal(t, "quiz", types[0].Type)
	assert.Equal(t, 30, types[0].RetakeAfterDays)
	assert.Equal(t, 6, types[0].QuestionCount)
	assert.Len(t, types[0].Intake, 3)

	questions, err := e.catalog.Questions("quiz")
	require.NoError(t, err)
	require.Len(t, questions, 6)
	assert.Equal(t, "q1", questions[0].ID)
	require.Len(t, questions[5].Options, 2)
	assert.Equal(t, "wait", questions[5].Options[0].ID)

	detail, err := e.catalog.BankDetail("quiz")
	require.NoError(t, err)
	assert.True(t, detail.Questions[1].ReverseScored)
	assert.Equal(t, map[string]float64{"calm": 13, "tense": 10}, detail.CategoryMax)

	_, err = e.catalog.Questions("horoscope")
	assert.ErrorIs(t, err, ErrUnknownAssessmentType)
}

func TestCatalog_EmbeddedBanks(t *testing.T) {
	reg, err := questionbank.NewRegistry(questionbank.Options{})
	require.NoError(t, err)
	svc := NewCatalogService(reg)

	types := svc.ListTypes()
	require.Len(t, types, 3)
	for _, typ := range types {
		assert.NotEmpty(t, typ.Categories, typ.Type)
		detail, err := svc.BankDetail(typ.Type)
		require.NoError(t, err)
		for cat, max := range detail.CategoryMax {
			assert.Greater(t, max, 0.0, "%s/%s has no questions", typ.Type, cat)
		}
	}
}
