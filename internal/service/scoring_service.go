package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/rs/zerolog/log"
)

// ScoringService is the authoritative grader. Client-reported timing and tab
// switches never influence the result.
type ScoringService interface {
	Submit(ctx context.Context, userID string, req dto.SubmitSkillTestRequest) (*dto.SkillTestResultDTO, error)
}

type scoringService struct {
	attempts  repository.AttemptRepository
	grader    GradeCalculator
	publisher event.Publisher
	grace     time.Duration
	now       func() time.Time
}

func NewScoringService(attempts repository.AttemptRepository, grader GradeCalculator, publisher event.Publisher, cfg *config.Config) ScoringService {
	return &scoringService{
		attempts:  attempts,
		grader:    grader,
		publisher: publisher,
		grace:     cfg.SkillTest.SubmitGrace,
		now:       time.Now,
	}
}

func (s *scoringService) Submit(ctx context.Context, userID string, req dto.SubmitSkillTestRequest) (*dto.SkillTestResultDTO, error) {
	attemptID, err := uuid.Parse(req.AttemptID)
	if err != nil {
		return nil, ErrAttemptNotFound
	}
	attempt, err := loadOwnedAttempt(ctx, s.attempts, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	snapshot := attempt.Snapshot()
	if err := validateAnswers(snapshot, req.MCQAnswers); err != nil {
		log.Warn().Err(err).Str("attemptID", attemptID.String()).Msg("Rejected malformed submission")
		return nil, err
	}

	now := s.now()
	if now.After(attempt.Deadline(s.grace)) {
		if ferr := s.attempts.Forfeit(ctx, attemptID, model.ForfeitExpired, now); ferr != nil {
			if errors.Is(ferr, repository.ErrAlreadyFinalized) {
				return nil, ErrAlreadyFinalized
			}
			return nil, fmt.Errorf("expire attempt %s: %w", attemptID, ferr)
		}
		attempt.Status = model.AttemptForfeited
		log.Info().Str("attemptID", attemptID.String()).Time("deadline", attempt.Deadline(s.grace)).Msg("Late submission, attempt expired")
		publishAttemptEvent(s.publisher, event.AttemptForfeited, attempt, model.ForfeitExpired)
		return nil, ErrAttemptExpired
	}

	reason := model.SubmitReason(req.Reason)
	if !reason.Valid() {
		reason = model.SubmitManual
	}

	answers := make([]*int, len(snapshot))
	for i, a := range req.MCQAnswers {
		answers[i] = copyIntPtr(a)
	}
	grade := s.grader.Grade(snapshot, answers)

	result := model.AttemptResult{
		Score:        grade.Score,
		TotalMarks:   grade.TotalMarks,
		Percentage:   grade.Percentage,
		Passed:       grade.Passed,
		Answers:      answers,
		SubmitReason: reason,
		SubmittedAt:  now,
	}
	if err := s.attempts.Finalize(ctx, attemptID, result); err != nil {
		if errors.Is(err, repository.ErrAlreadyFinalized) {
			log.Info().Str("attemptID", attemptID.String()).Msg("Submission lost finalize race")
			return nil, ErrAlreadyFinalized
		}
		log.Error().Err(err).Str("attemptID", attemptID.String()).Msg("Failed to finalize attempt")
		return nil, fmt.Errorf("finalize attempt %s: %w", attemptID, err)
	}

	attempt.Status = model.AttemptSubmitted
	attempt.Score = &grade.Score
	attempt.Passed = &grade.Passed
	log.Info().
		Str("attemptID", attemptID.String()).
		Str("userID", userID).
		Int("score", grade.Score).
		Int("totalMarks", grade.TotalMarks).
		Float64("percentage", grade.Percentage).
		Str("reason", string(reason)).
		Msg("Attempt submitted")
	publishAttemptEvent(s.publisher, event.AttemptSubmitted, attempt, string(reason))

	return &dto.SkillTestResultDTO{
		Score:        grade.Score,
		TotalMarks:   grade.TotalMarks,
		Percentage:   grade.Percentage,
		Passed:       grade.Passed,
		SubmitReason: string(reason),
	}, nil
}
