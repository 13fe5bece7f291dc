package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AllowedQuestionCounts are the only test sizes a user can configure.
var AllowedQuestionCounts = []int{15, 20, 30, 40, 50, 60}

// UnlimitedAttempts is reported as remaining quota for premium users.
const UnlimitedAttempts = -1

type SkillTestService interface {
	CreateAttempt(ctx context.Context, userID string, req dto.CreateSkillTestRequest) (*dto.CreateSkillTestResponse, error)
	AttemptsCount(ctx context.Context, userID string) (*dto.AttemptsCountDTO, error)
	GetAttempt(ctx context.Context, userID string, attemptID uuid.UUID) (*dto.AttemptViewDTO, error)
	StartAttempt(ctx context.Context, userID string, attemptID uuid.UUID) (*dto.AttemptViewDTO, error)
	SaveProgress(ctx context.Context, userID string, req dto.SaveProgressRequest) error
	ForfeitAttempt(ctx context.Context, userID string, attemptID uuid.UUID) error
	History(ctx context.Context, userID string) ([]dto.AttemptSummaryDTO, error)
}

type skillTestService struct {
	attempts  repository.AttemptRepository
	skills    repository.SkillRepository
	premium   PremiumService
	publisher event.Publisher
	cfg       config.SkillTest
	now       func() time.Time
	// newRand returns a fresh source for every sampling call.
	newRand func() *rand.Rand
}

func NewSkillTestService(
	attempts repository.AttemptRepository,
	skills repository.SkillRepository,
	premium PremiumService,
	publisher event.Publisher,
	cfg *config.Config,
) SkillTestService {
	return &skillTestService{
		attempts:  attempts,
		skills:    skills,
		premium:   premium,
		publisher: publisher,
		cfg:       cfg.SkillTest,
		now:       time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

func (s *skillTestService) CreateAttempt(ctx context.Context, userID string, req dto.CreateSkillTestRequest) (*dto.CreateSkillTestResponse, error) {
	skillIDs, err := validateTestConfig(req)
	if err != nil {
		return nil, err
	}

	premium, err := s.premium.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !premium {
		count, err := s.attempts.CountFreeTier(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count attempts for %s: %w", userID, err)
		}
		if count >= int64(s.cfg.FreeAttemptLimit) {
			log.Info().Str("userID", userID).Int64("count", count).Msg("Free attempt limit reached")
			return nil, ErrAttemptLimitReached
		}
	}

	skills, err := s.skills.FindByIDsWithQuestions(ctx, skillIDs)
	if err != nil {
		return nil, fmt.Errorf("load question pools: %w", err)
	}
	if len(skills) != len(skillIDs) {
		return nil, ErrSkillNotFound
	}

	var pool []model.Question
	for _, sk := range skills {
		pool = append(pool, sk.Questions...)
	}
	if len(pool) < req.TotalQuestions {
		return nil, fmt.Errorf("%w: need %d, pool holds %d", ErrInsufficientQuestions, req.TotalQuestions, len(pool))
	}

	r := s.newRand()
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	snapshot := make([]model.SnapshotQuestion, req.TotalQuestions)
	for i := range snapshot {
		snapshot[i] = pool[i].Snapshot()
	}

	attempt := &model.Attempt{
		OwnerID:                 userID,
		TestName:                req.TestName,
		SourceSkillIDs:          datatypes.NewJSONType(skillIDs),
		QuestionSnapshot:        datatypes.NewJSONType(snapshot),
		Answers:                 datatypes.NewJSONType(make([]*int, len(snapshot))),
		TimeLimitMinutes:        req.TimeLimitMinutes,
		PerQuestionTimerEnabled: req.PerQuestionTimerEnabled,
		OneTimeVisit:            req.OneTimeVisit,
		LockedIndices:           datatypes.NewJSONType([]int{}),
		Status:                  model.AttemptCreated,
		PremiumAtCreation:       premium,
	}
	if req.PerQuestionTimerEnabled {
		minutes := *req.PerQuestionTimeMinutes
		attempt.PerQuestionTimeMinutes = &minutes
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Failed to create attempt")
		return nil, fmt.Errorf("database error creating attempt: %w", err)
	}
	log.Info().Str("attemptID", attempt.ID.String()).Str("userID", userID).Int("questions", len(snapshot)).Bool("premium", premium).Msg("Attempt created")
	s.publish(event.AttemptCreated, attempt, "")

	return &dto.CreateSkillTestResponse{AttemptID: attempt.ID.String()}, nil
}

// validateTestConfig checks the request and returns the deduplicated skill ids.
func validateTestConfig(req dto.CreateSkillTestRequest) ([]uint, error) {
	if !allowedQuestionCount(req.TotalQuestions) {
		return nil, ErrInvalidQuestionCount
	}
	if req.TimeLimitMinutes <= 0 {
		return nil, fmt.Errorf("%w: timeLimitMinutes must be positive", ErrInvalidConfig)
	}
	if req.PerQuestionTimerEnabled && (req.PerQuestionTimeMinutes == nil || *req.PerQuestionTimeMinutes <= 0) {
		return nil, fmt.Errorf("%w: perQuestionTimeMinutes must be positive when the question timer is enabled", ErrInvalidConfig)
	}

	seen := make(map[uint]bool, len(req.Skills))
	ids := make([]uint, 0, len(req.Skills))
	for _, id := range req.Skills {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one skill is required", ErrInvalidConfig)
	}
	return ids, nil
}

func allowedQuestionCount(n int) bool {
	for _, c := range AllowedQuestionCounts {
		if c == n {
			return true
		}
	}
	return false
}

func (s *skillTestService) AttemptsCount(ctx context.Context, userID string) (*dto.AttemptsCountDTO, error) {
	premium, err := s.premium.IsPremium(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.attempts.CountFreeTier(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count attempts for %s: %w", userID, err)
	}

	resp := &dto.AttemptsCountDTO{Count: count, Limit: s.cfg.FreeAttemptLimit, Premium: premium}
	if premium {
		resp.Remaining = UnlimitedAttempts
	} else if rem := int64(s.cfg.FreeAttemptLimit) - count; rem > 0 {
		resp.Remaining = int(rem)
	}
	return resp, nil
}

func (s *skillTestService) GetAttempt(ctx context.Context, userID string, attemptID uuid.UUID) (*dto.AttemptViewDTO, error) {
	attempt, err := loadOwnedAttempt(ctx, s.attempts, userID, attemptID)
	if err != nil {
		return nil, err
	}
	return attemptView(attempt)
}

func (s *skillTestService) StartAttempt(ctx context.Context, userID string, attemptID uuid.UUID) (*dto.AttemptViewDTO, error) {
	attempt, err := loadOwnedAttempt(ctx, s.attempts, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	if attempt.Status == model.AttemptCreated {
		started, err := s.attempts.MarkStarted(ctx, attemptID, s.now())
		if err != nil {
			return nil, fmt.Errorf("start attempt %s: %w", attemptID, err)
		}
		// Re-read in both cases: a concurrent start or finalize may have won.
		attempt, err = s.attempts.FindByID(ctx, attemptID)
		if err != nil {
			return nil, fmt.Errorf("reload attempt %s: %w", attemptID, err)
		}
		if attempt.Status.Terminal() {
			return nil, ErrAlreadyFinalized
		}
		if started {
			log.Info().Str("attemptID", attemptID.String()).Str("userID", userID).Msg("Attempt started")
			s.publish(event.AttemptStarted, attempt, "")
		}
	}
	return attemptView(attempt)
}

func (s *skillTestService) SaveProgress(ctx context.Context, userID string, req dto.SaveProgressRequest) error {
	attemptID, err := uuid.Parse(req.AttemptID)
	if err != nil {
		return ErrAttemptNotFound
	}
	attempt, err := loadOwnedAttempt(ctx, s.attempts, userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status.Terminal() {
		return ErrAlreadyFinalized
	}

	snapshot := attempt.Snapshot()
	if err := validateAnswers(snapshot, req.MCQAnswers); err != nil {
		return err
	}
	for _, idx := range req.LockedIndices {
		if idx < 0 || idx >= len(snapshot) {
			return fmt.Errorf("%w: locked index %d out of range", ErrMalformedSubmission, idx)
		}
	}

	storedLocked := attempt.Locked()
	lockedSet := make(map[int]bool, len(storedLocked)+len(req.LockedIndices))
	for _, idx := range storedLocked {
		lockedSet[idx] = true
	}

	stored := attempt.AnswerList()
	answers := make([]*int, len(snapshot))
	for i := range answers {
		if lockedSet[i] && i < len(stored) && stored[i] != nil {
			answers[i] = copyIntPtr(stored[i])
			continue
		}
		if i < len(req.MCQAnswers) {
			answers[i] = copyIntPtr(req.MCQAnswers[i])
		}
	}

	for _, idx := range req.LockedIndices {
		lockedSet[idx] = true
	}
	locked := make([]int, 0, len(lockedSet))
	for idx := range lockedSet {
		locked = append(locked, idx)
	}
	sort.Ints(locked)

	tabSwitches := attempt.TabSwitchCount
	if req.TabSwitchCount > tabSwitches {
		tabSwitches = req.TabSwitchCount
	}

	if err := s.attempts.UpdateProgress(ctx, attemptID, answers, locked, tabSwitches); err != nil {
		if errors.Is(err, repository.ErrAlreadyFinalized) {
			return ErrAlreadyFinalized
		}
		return fmt.Errorf("save progress for %s: %w", attemptID, err)
	}
	log.Debug().Str("attemptID", attemptID.String()).Int("locked", len(locked)).Int("tabSwitches", tabSwitches).Msg("Progress saved")
	return nil
}

func (s *skillTestService) ForfeitAttempt(ctx context.Context, userID string, attemptID uuid.UUID) error {
	attempt, err := loadOwnedAttempt(ctx, s.attempts, userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status.Terminal() {
		return ErrAlreadyFinalized
	}
	if err := s.attempts.Forfeit(ctx, attemptID, model.ForfeitAbandoned, s.now()); err != nil {
		if errors.Is(err, repository.ErrAlreadyFinalized) {
			return ErrAlreadyFinalized
		}
		return fmt.Errorf("forfeit attempt %s: %w", attemptID, err)
	}
	attempt.Status = model.AttemptForfeited
	log.Info().Str("attemptID", attemptID.String()).Str("userID", userID).Msg("Attempt abandoned")
	s.publish(event.AttemptForfeited, attempt, model.ForfeitAbandoned)
	return nil
}

func (s *skillTestService) History(ctx context.Context, userID string) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attempts.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", userID, err)
	}
	out := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		out = append(out, dto.AttemptSummaryDTO{
			AttemptID:     a.ID.String(),
			TestName:      a.TestName,
			Status:        string(a.Status),
			QuestionCount: len(a.Snapshot()),
			Result:        attemptResult(a),
			ForfeitReason: a.ForfeitReason,
			CreatedAt:     a.CreatedAt,
			FinishedAt:    a.FinishedAt,
		})
	}
	return out, nil
}

func (s *skillTestService) publish(eventType string, a *model.Attempt, reason string) {
	publishAttemptEvent(s.publisher, eventType, a, reason)
}

func publishAttemptEvent(p event.Publisher, eventType string, a *model.Attempt, reason string) {
	if p == nil {
		return
	}
	payload := event.AttemptEvent{
		AttemptID: a.ID.String(),
		OwnerID:   a.OwnerID,
		Status:    string(a.Status),
		Reason:    reason,
		Score:     a.Score,
		Passed:    a.Passed,
	}
	if err := p.Publish(eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("attemptID", payload.AttemptID).Msg("Failed to publish attempt event")
	}
}

func loadOwnedAttempt(ctx context.Context, repo repository.AttemptRepository, userID string, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := repo.FindByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt %s: %w", attemptID, err)
	}
	if attempt.OwnerID != userID {
		log.Warn().Str("attemptID", attemptID.String()).Str("userID", userID).Msg("Attempt accessed by non-owner")
		return nil, ErrForbidden
	}
	return attempt, nil
}

// validateAnswers rejects answer arrays longer than the snapshot and option
// indices outside a question's options.
func validateAnswers(snapshot []model.SnapshotQuestion, answers []*int) error {
	if len(answers) > len(snapshot) {
		return fmt.Errorf("%w: %d answers for %d questions", ErrMalformedSubmission, len(answers), len(snapshot))
	}
	for i, a := range answers {
		if a == nil {
			continue
		}
		if *a < 0 || *a >= len(snapshot[i].Options) {
			return fmt.Errorf("%w: option %d out of range for question %d", ErrMalformedSubmission, *a, i)
		}
	}
	return nil
}

func attemptView(a *model.Attempt) (*dto.AttemptViewDTO, error) {
	snapshot := a.Snapshot()
	questions := make([]dto.AttemptQuestionDTO, 0, len(snapshot))
	if err := copier.Copy(&questions, &snapshot); err != nil {
		log.Error().Err(err).Str("attemptID", a.ID.String()).Msg("Failed to copy snapshot to view")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	for i := range questions {
		questions[i].Index = i
	}

	view := &dto.AttemptViewDTO{
		AttemptID:               a.ID.String(),
		TestName:                a.TestName,
		SkillIDs:                a.SourceSkillIDs.Data(),
		Status:                  string(a.Status),
		Questions:               questions,
		MCQAnswers:              a.AnswerList(),
		TimeLimitMinutes:        a.TimeLimitMinutes,
		PerQuestionTimerEnabled: a.PerQuestionTimerEnabled,
		PerQuestionTimeMinutes:  a.PerQuestionTimeMinutes,
		OneTimeVisit:            a.OneTimeVisit,
		LockedIndices:           a.Locked(),
		TabSwitchCount:          a.TabSwitchCount,
		StartedAt:               a.StartedAt,
		Result:                  attemptResult(a),
		CreatedAt:               a.CreatedAt,
	}
	if view.LockedIndices == nil {
		view.LockedIndices = []int{}
	}
	if a.StartedAt != nil {
		deadline := a.Deadline(0)
		view.Deadline = &deadline
	}
	return view, nil
}

func attemptResult(a *model.Attempt) *dto.SkillTestResultDTO {
	if a.Status != model.AttemptSubmitted || a.Score == nil {
		return nil
	}
	res := &dto.SkillTestResultDTO{Score: *a.Score, CertificateID: a.CertificateID}
	if a.TotalMarks != nil {
		res.TotalMarks = *a.TotalMarks
	}
	if a.Percentage != nil {
		res.Percentage = *a.Percentage
	}
	if a.Passed != nil {
		res.Passed = *a.Passed
	}
	if a.SubmitReason != nil {
		res.SubmitReason = string(*a.SubmitReason)
	}
	return res
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
