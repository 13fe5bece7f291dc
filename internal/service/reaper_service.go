package service

import (
	"context"
	"errors"
	"time"

	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const reaperBatchSize = 200

// ReaperService forfeits attempts that were abandoned without a submission
// once their deadline plus grace has passed.
type ReaperService interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
	Start() error
	Stop() context.Context
}

type reaperService struct {
	attempts  repository.AttemptRepository
	publisher event.Publisher
	grace     time.Duration
	batchSize int
	schedule  string
	cron      *cron.Cron
}

func NewReaperService(attempts repository.AttemptRepository, publisher event.Publisher, cfg *config.Config) ReaperService {
	return &reaperService{
		attempts:  attempts,
		publisher: publisher,
		grace:     cfg.SkillTest.SubmitGrace,
		batchSize: reaperBatchSize,
		schedule:  cfg.SkillTest.ReaperSchedule,
		cron:      cron.New(),
	}
}

// Sweep returns the number of attempts it forfeited.
func (s *reaperService) Sweep(ctx context.Context, now time.Time) (int, error) {
	reaped := 0
	var cursor *repository.StaleCursor
	for {
		// No attempt created after now-grace can be past its deadline yet.
		candidates, err := s.attempts.FindStale(ctx, now.Add(-s.grace), cursor, s.batchSize)
		if err != nil {
			return reaped, err
		}
		for i := range candidates {
			if s.expire(ctx, &candidates[i], now) {
				reaped++
			}
		}
		if len(candidates) < s.batchSize {
			return reaped, nil
		}
		last := candidates[len(candidates)-1]
		cursor = &repository.StaleCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
}

func (s *reaperService) expire(ctx context.Context, a *model.Attempt, now time.Time) bool {
	if !now.After(a.Deadline(s.grace)) {
		return false
	}
	if err := s.attempts.Forfeit(ctx, a.ID, model.ForfeitExpired, now); err != nil {
		if !errors.Is(err, repository.ErrAlreadyFinalized) {
			log.Error().Err(err).Str("attemptID", a.ID.String()).Msg("Failed to expire attempt")
		}
		return false
	}
	a.Status = model.AttemptForfeited
	log.Info().Str("attemptID", a.ID.String()).Str("userID", a.OwnerID).Msg("Abandoned attempt expired")
	publishAttemptEvent(s.publisher, event.AttemptForfeited, a, model.ForfeitExpired)
	return true
}

func (s *reaperService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		n, err := s.Sweep(context.Background(), time.Now())
		if err != nil {
			log.Error().Err(err).Msg("Reaper sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int("expired", n).Msg("Reaper sweep finished")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Msg("Attempt reaper started")
	return nil
}

// Stop halts scheduling; the returned context is done once a running sweep ends.
func (s *reaperService) Stop() context.Context {
	return s.cron.Stop()
}
