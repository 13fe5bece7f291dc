package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

var ErrExplainerUnavailable = errors.New("explanation service is not configured")

// AnswerExplainer produces a short tutoring note for a reviewed question.
type AnswerExplainer interface {
	Explain(ctx context.Context, q model.SnapshotQuestion, selected *int) (string, error)
}

type geminiExplainerService struct {
	conn   *genai.Client
	client *genai.GenerativeModel
}

func NewGeminiExplainerService(cfg *config.Config) (AnswerExplainer, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Review explanations will be unavailable.")
		return &geminiExplainerService{client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	gm := client.GenerativeModel("gemini-1.5-flash")
	gm.SetTemperature(0.2)
	return &geminiExplainerService{conn: client, client: gm}, nil
}

// Close releases the underlying Gemini connection.
func (s *geminiExplainerService) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func buildExplainPrompt(q model.SnapshotQuestion, selected *int) string {
	var b strings.Builder
	b.WriteString("You are a patient technical instructor reviewing a multiple-choice skill test.\n")
	b.WriteString("Explain in at most 120 words why the correct option is right")
	if selected != nil && *selected != q.CorrectIndex {
		b.WriteString(" and why the candidate's choice is wrong")
	}
	b.WriteString(". Do not repeat the question.\n\n")

	b.WriteString("Question:\n---\n")
	b.WriteString(q.Text)
	b.WriteString("\n---\nOptions:\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%c) %s\n", 'A'+rune(i), opt)
	}
	fmt.Fprintf(&b, "\nCorrect option: %c\n", 'A'+rune(q.CorrectIndex))
	if selected == nil {
		b.WriteString("Candidate's option: none (unanswered)\n")
	} else {
		fmt.Fprintf(&b, "Candidate's option: %c\n", 'A'+rune(*selected))
	}
	return b.String()
}

func (s *geminiExplainerService) Explain(ctx context.Context, q model.SnapshotQuestion, selected *int) (string, error) {
	if s.client == nil {
		return "", ErrExplainerUnavailable
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(buildExplainPrompt(q, selected)))
	if err != nil {
		log.Error().Err(err).Uint("questionID", q.SourceQuestionID).Msg("Gemini API error during explanation")
		return "", fmt.Errorf("gemini explain: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response.")
		return "", fmt.Errorf("gemini returned no content")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return strings.TrimSpace(text.String()), nil
}
