package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/heartscan/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ErrLLMUnavailable is returned when no Gemini API key is configured.
var ErrLLMUnavailable = errors.New("gemini client not initialized")

// Narrative is the generated text of an insight.
type Narrative struct {
	Profile        string
	Interpretation string
}

// GeminiLLMService turns a prompt describing a result into a narrative.
type GeminiLLMService interface {
	WriteNarrative(ctx context.Context, prompt string) (*Narrative, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Insights will use the template writer.")
		return &geminiLLMService{client: nil}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(0.4)
	return &geminiLLMService{client: model}, nil
}

const narrativeFormat = `
Format your response strictly as:
Profile: [one or two sentences naming the dominant pattern]
Interpretation:
[two short paragraphs, warm and non-clinical, no diagnosis]
`

func (s *geminiLLMService) WriteNarrative(ctx context.Context, prompt string) (*Narrative, error) {
	if s.client == nil {
		return nil, ErrLLMUnavailable
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt+narrativeFormat))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during narrative generation")
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response.")
		return nil, fmt.Errorf("gemini returned no content")
	}

	var full strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			full.WriteString(string(txt))
		}
	}
	if full.Len() == 0 {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	narrative, err := parseNarrative(full.String())
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", full.String()).Msg("Failed to parse narrative from Gemini response")
		return nil, err
	}
	return narrative, nil
}

// parseNarrative splits a "Profile: ... Interpretation: ..." response.
func parseNarrative(raw string) (*Narrative, error) {
	const (
		profilePrefix        = "Profile:"
		interpretationPrefix = "Interpretation:"
	)
	profileIdx := strings.Index(raw, profilePrefix)
	if profileIdx == -1 {
		return nil, fmt.Errorf("response does not contain %q prefix", profilePrefix)
	}
	rest := raw[profileIdx+len(profilePrefix):]

	interpIdx := strings.Index(rest, interpretationPrefix)
	if interpIdx == -1 {
		profile, interpretation, _ := strings.Cut(strings.TrimSpace(rest), "\n")
		return &Narrative{Profile: strings.TrimSpace(profile), Interpretation: strings.TrimSpace(interpretation)}, nil
	}
	n := &Narrative{
		Profile:        strings.TrimSpace(rest[:interpIdx]),
		Interpretation: strings.TrimSpace(rest[interpIdx+len(interpretationPrefix):]),
	}
	if n.Profile == "" {
		return nil, fmt.Errorf("response has an empty profile")
	}
	return n, nil
}
