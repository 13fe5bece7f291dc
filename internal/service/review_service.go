package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/rs/zerolog/log"
)

// maxExplanations bounds the LLM calls made for a single review.
const maxExplanations = 10

// ReviewService reveals correct answers once an attempt is terminal.
type ReviewService interface {
	Review(ctx context.Context, userID string, attemptID uuid.UUID, explain bool) (*dto.AttemptReviewDTO, error)
}

type reviewService struct {
	attempts  repository.AttemptRepository
	grader    GradeCalculator
	explainer AnswerExplainer
}

func NewReviewService(attempts repository.AttemptRepository, grader GradeCalculator, explainer AnswerExplainer) ReviewService {
	return &reviewService{attempts: attempts, grader: grader, explainer: explainer}
}

func (s *reviewService) Review(ctx context.Context, userID string, attemptID uuid.UUID, explain bool) (*dto.AttemptReviewDTO, error) {
	attempt, err := loadOwnedAttempt(ctx, s.attempts, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.Status.Terminal() {
		return nil, ErrNotFinalized
	}

	snapshot := attempt.Snapshot()
	answers := attempt.AnswerList()
	grade := s.grader.Grade(snapshot, answers)

	resp := &dto.AttemptReviewDTO{
		AttemptID: attempt.ID.String(),
		TestName:  attempt.TestName,
		Status:    string(attempt.Status),
		Result:    attemptResult(attempt),
		Questions: make([]dto.ReviewQuestionDTO, len(snapshot)),
	}

	explained := 0
	for i, q := range snapshot {
		var selected *int
		if i < len(answers) {
			selected = copyIntPtr(answers[i])
		}
		rq := dto.ReviewQuestionDTO{
			Index:         i,
			Text:          q.Text,
			Options:       q.Options,
			Marks:         q.Marks,
			SelectedIndex: selected,
			CorrectIndex:  q.CorrectIndex,
			EarnedMarks:   grade.Earned[i],
		}

		wrong := selected == nil || *selected != q.CorrectIndex
		if explain && wrong && s.explainer != nil && explained < maxExplanations {
			explained++
			text, err := s.explainer.Explain(ctx, q, selected)
			if err != nil {
				log.Warn().Err(err).Str("attemptID", attemptID.String()).Int("index", i).Msg("Explanation failed")
				rq.ExplanationErr = err.Error()
			} else {
				rq.Explanation = text
			}
		}
		resp.Questions[i] = rq
	}
	return resp, nil
}
