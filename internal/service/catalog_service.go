package service

import (
	"fmt"
	"time"

	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/scoring"
)

// CatalogService exposes the loaded question banks.
type CatalogService interface {
	ListTypes() []dto.AssessmentTypeDTO
	Questions(assessmentType string) ([]dto.QuestionDTO, error)
	// BankDetail includes scoring metadata and is meant for admins.
	BankDetail(assessmentType string) (*dto.BankDetailDTO, error)
}

type catalogService struct {
	banks *questionbank.Registry
}

func NewCatalogService(banks *questionbank.Registry) CatalogService {
	return &catalogService{banks: banks}
}

func (s *catalogService) bank(assessmentType string) (*questionbank.Bank, error) {
	bank, ok := s.banks.Get(assessmentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssessmentType, assessmentType)
	}
	return bank, nil
}

func (s *catalogService) ListTypes() []dto.AssessmentTypeDTO {
	types := s.banks.Types()
	out := make([]dto.AssessmentTypeDTO, 0, len(types))
	for _, t := range types {
		bank, _ := s.banks.Get(t)
		out = append(out, summarize(bank))
	}
	return out
}

func (s *catalogService) Questions(assessmentType string) ([]dto.QuestionDTO, error) {
	bank, err := s.bank(assessmentType)
	if err != nil {
		return nil, err
	}
	questions := bank.Questions()
	out := make([]dto.QuestionDTO, 0, len(questions))
	for _, q := range questions {
		d := dto.QuestionDTO{ID: q.ID, Kind: string(q.Kind), Text: q.Text, Order: q.Order}
		for _, o := range q.Options {
			d.Options = append(d.Options, dto.OptionDTO{ID: o.ID, Text: o.Text, Order: o.Order})
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *catalogService) BankDetail(assessmentType string) (*dto.BankDetailDTO, error) {
	bank, err := s.bank(assessmentType)
	if err != nil {
		return nil, err
	}
	detail := &dto.BankDetailDTO{
		AssessmentTypeDTO: summarize(bank),
		CategoryMax:       make(map[string]float64),
	}
	for _, q := range bank.Questions() {
		d := dto.AdminQuestionDTO{
			ID:            q.ID,
			Kind:          string(q.Kind),
			Text:          q.Text,
			Category:      q.Category,
			ReverseScored: q.ReverseScored,
			Weight:        q.Weight,
			Order:         q.Order,
		}
		for _, o := range q.Options {
			d.Options = append(d.Options, dto.AdminOptionDTO{ID: o.ID, Text: o.Text, Categories: o.Categories, Weight: o.Weight, Order: o.Order})
		}
		detail.Questions = append(detail.Questions, d)
	}
	for id, cs := range scoring.Score(bank, nil) {
		detail.CategoryMax[id] = scoring.Round(cs.Max, 2)
	}
	return detail, nil
}

func summarize(bank *questionbank.Bank) dto.AssessmentTypeDTO {
	d := dto.AssessmentTypeDTO{
		Type:            bank.Type(),
		Title:           bank.Title(),
		Version:         bank.Version(),
		QuestionCount:   bank.Len(),
		RetakeAfterDays: int(bank.RetakeAfter() / (24 * time.Hour)),
	}
	for _, c := range bank.Categories() {
		d.Categories = append(d.Categories, dto.CategoryDTO{ID: c.ID, Label: c.Label})
	}
	for _, f := range bank.Intake() {
		d.Intake = append(d.Intake, dto.IntakeFieldDTO{Key: f.Key, Kind: f.Kind, Min: f.Min, Max: f.Max, MaxLength: f.MaxLength, Required: f.Required})
	}
	return d
}
