package proctor

import (
	"context"
	"errors"
	"time"

	"github.com/lshigami/skilltest/internal/dto"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSubmissionRejected marks a submission the server refused for good
	// (already finalized, expired, malformed). It is never retried.
	ErrSubmissionRejected = errors.New("submission rejected by server")
	ErrAttemptForfeited   = errors.New("attempt forfeited")
	ErrRunnerStopped      = errors.New("runner stopped")
)

// Submitter is the server side of an attempt.
type Submitter interface {
	Submit(ctx context.Context, attemptID string, answers []*int, reason Reason) (*dto.SkillTestResultDTO, error)
	Forfeit(ctx context.Context, attemptID string) error
}

// ProgressSaver is optionally implemented by a Submitter to persist progress
// while the attempt is running.
type ProgressSaver interface {
	SaveProgress(ctx context.Context, attemptID string, p Progress) error
}

type RunnerOptions struct {
	TickInterval time.Duration
	RetryDelay   time.Duration
	MaxRetries   int
	// ProgressEvery is the number of ticks between progress saves; 0 disables
	// the periodic save. Lock and violation changes are saved as they happen.
	ProgressEvery int
	// OnEffect observes every effect, including the ones the runner performs.
	OnEffect func(Effect)
}

func DefaultRunnerOptions() RunnerOptions {
	return RunnerOptions{
		TickInterval:  time.Second,
		RetryDelay:    2 * time.Second,
		MaxRetries:    3,
		ProgressEvery: 15,
	}
}

type submitOutcome struct {
	result *dto.SkillTestResultDTO
	err    error
}

// Runner owns the clock for one attempt. All machine access happens on the
// goroutine executing Run.
type Runner struct {
	attemptID string
	machine   *Machine
	submitter Submitter
	opts      RunnerOptions
	signals   chan Signal
	outcomes  chan submitOutcome
	stopped   chan struct{}
	ticks     int
	failures  int
}

func NewRunner(attemptID string, machine *Machine, submitter Submitter, opts RunnerOptions) *Runner {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return &Runner{
		attemptID: attemptID,
		machine:   machine,
		submitter: submitter,
		opts:      opts,
		signals:   make(chan Signal, 16),
		outcomes:  make(chan submitOutcome, 1),
		stopped:   make(chan struct{}),
	}
}

// Send queues a signal for the machine. It returns ErrRunnerStopped once Run
// has returned.
func (r *Runner) Send(s Signal) error {
	select {
	case <-r.stopped:
		return ErrRunnerStopped
	default:
	}
	select {
	case r.signals <- s:
		return nil
	case <-r.stopped:
		return ErrRunnerStopped
	}
}

// Run drives the attempt until the server accepted a submission, the
// attempt was forfeited, a submission failed for good, or ctx ends.
func (r *Runner) Run(ctx context.Context) (*dto.SkillTestResultDTO, error) {
	defer close(r.stopped)

	var ticker *time.Ticker
	var tickC <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		switch {
		case r.machine.Phase() == PhaseRunning && ticker == nil:
			ticker = time.NewTicker(r.opts.TickInterval)
			tickC = ticker.C
		case r.machine.Phase() != PhaseRunning && ticker != nil:
			ticker.Stop()
			ticker, tickC = nil, nil
		}
		if r.machine.Forfeited() {
			return nil, ErrAttemptForfeited
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case s := <-r.signals:
			r.apply(ctx, s)
		case <-tickC:
			r.ticks++
			r.apply(ctx, Tick{})
			if r.opts.ProgressEvery > 0 && r.ticks%r.opts.ProgressEvery == 0 {
				r.saveProgress(ctx)
			}
		case out := <-r.outcomes:
			if out.err == nil {
				r.apply(ctx, SubmitSucceeded{})
				return out.result, nil
			}
			if errors.Is(out.err, ErrSubmissionRejected) {
				r.apply(ctx, SubmitFailed{Err: out.err})
				return nil, out.err
			}
			r.failures++
			log.Warn().Err(out.err).Str("attemptID", r.attemptID).Int("failures", r.failures).Msg("Submission failed")
			r.apply(ctx, SubmitFailed{Err: out.err})
			if r.failures > r.opts.MaxRetries {
				return nil, out.err
			}
			time.AfterFunc(r.opts.RetryDelay, func() { _ = r.Send(RetrySubmit{}) })
		}
	}
}

func (r *Runner) apply(ctx context.Context, s Signal) {
	locked, violations := len(r.machine.locked), r.machine.TabSwitchCount()
	defer func() {
		if len(r.machine.locked) != locked || r.machine.TabSwitchCount() != violations {
			r.saveProgress(ctx)
		}
	}()
	for _, e := range r.machine.Dispatch(s) {
		if r.opts.OnEffect != nil {
			r.opts.OnEffect(e)
		}
		switch e := e.(type) {
		case Submit:
			go r.submit(ctx, e)
		case Forfeit:
			if err := r.submitter.Forfeit(ctx, r.attemptID); err != nil {
				log.Warn().Err(err).Str("attemptID", r.attemptID).Msg("Forfeit request failed")
			}
		}
	}
}

func (r *Runner) submit(ctx context.Context, e Submit) {
	res, err := r.submitter.Submit(ctx, r.attemptID, e.Answers, e.Reason)
	select {
	case r.outcomes <- submitOutcome{result: res, err: err}:
	case <-r.stopped:
	}
}

func (r *Runner) saveProgress(ctx context.Context) {
	saver, ok := r.submitter.(ProgressSaver)
	if !ok || r.machine.Phase() != PhaseRunning {
		return
	}
	if err := saver.SaveProgress(ctx, r.attemptID, r.machine.Progress()); err != nil {
		log.Warn().Err(err).Str("attemptID", r.attemptID).Msg("Progress save failed")
	}
}
