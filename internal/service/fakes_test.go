package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/lshigami/skilltest/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*model.Attempt
	order    []uuid.UUID
	now      time.Time
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: map[uuid.UUID]*model.Attempt{}, now: time.Now()}
}

func cloneAttempt(a *model.Attempt) *model.Attempt {
	c := *a
	c.QuestionSnapshot = datatypes.NewJSONType(cloneSnapshot(a.Snapshot()))
	answers := make([]*int, len(a.AnswerList()))
	for i, v := range a.AnswerList() {
		answers[i] = copyIntPtr(v)
	}
	c.Answers = datatypes.NewJSONType(answers)
	c.LockedIndices = datatypes.NewJSONType(append([]int(nil), a.Locked()...))
	return &c
}

func cloneSnapshot(in []model.SnapshotQuestion) []model.SnapshotQuestion {
	out := make([]model.SnapshotQuestion, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = r.now
	}
	r.attempts[attempt.ID] = cloneAttempt(attempt)
	r.order = append(r.order, attempt.ID)
	return nil
}

func (r *fakeAttemptRepo) put(a *model.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[a.ID] = cloneAttempt(a)
	r.order = append(r.order, a.ID)
}

func (r *fakeAttemptRepo) get(id uuid.UUID) *model.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAttempt(r.attempts[id])
}

func (r *fakeAttemptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneAttempt(a), nil
}

func (r *fakeAttemptRepo) FindByOwner(ctx context.Context, ownerID string) ([]model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Attempt
	for i := len(r.order) - 1; i >= 0; i-- {
		if a := r.attempts[r.order[i]]; a.OwnerID == ownerID {
			out = append(out, *cloneAttempt(a))
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) CountFreeTier(ctx context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.attempts {
		if a.OwnerID == ownerID && !a.PremiumAtCreation {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttemptRepo) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok || a.Status != model.AttemptCreated {
		return false, nil
	}
	a.Status = model.AttemptInProgress
	a.StartedAt = &at
	return true, nil
}

func (r *fakeAttemptRepo) UpdateProgress(ctx context.Context, id uuid.UUID, answers []*int, locked []int, tabSwitchCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok || a.Status.Terminal() {
		return repository.ErrAlreadyFinalized
	}
	a.Answers = datatypes.NewJSONType(answers)
	a.LockedIndices = datatypes.NewJSONType(locked)
	a.TabSwitchCount = tabSwitchCount
	return nil
}

func (r *fakeAttemptRepo) Finalize(ctx context.Context, id uuid.UUID, result model.AttemptResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok || a.Status.Terminal() {
		return repository.ErrAlreadyFinalized
	}
	reason := result.SubmitReason
	submitted := result.SubmittedAt
	a.Status = model.AttemptSubmitted
	a.Answers = datatypes.NewJSONType(result.Answers)
	a.Score = &result.Score
	a.TotalMarks = &result.TotalMarks
	a.Percentage = &result.Percentage
	a.Passed = &result.Passed
	a.SubmitReason = &reason
	a.SubmittedAt = &submitted
	a.FinishedAt = &submitted
	return nil
}

func (r *fakeAttemptRepo) Forfeit(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok || a.Status.Terminal() {
		return repository.ErrAlreadyFinalized
	}
	a.Status = model.AttemptForfeited
	a.ForfeitReason = &reason
	a.FinishedAt = &at
	return nil
}

func (r *fakeAttemptRepo) FindStale(ctx context.Context, createdBefore time.Time, after *repository.StaleCursor, limit int) ([]model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Attempt
	for _, a := range r.attempts {
		if a.Status.Terminal() || !a.CreatedAt.Before(createdBefore) {
			continue
		}
		if after != nil && !staleLess(after.CreatedAt, after.ID, a.CreatedAt, a.ID) {
			continue
		}
		out = append(out, *cloneAttempt(a))
	}
	sort.Slice(out, func(i, j int) bool { return staleLess(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func staleLess(at time.Time, id uuid.UUID, bt time.Time, bid uuid.UUID) bool {
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return bytes.Compare(id[:], bid[:]) < 0
}

type fakeSkillRepo struct {
	skills map[uint]*model.Skill
	nextQ  uint
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{skills: map[uint]*model.Skill{}}
}

// addSkill registers a skill with n single-mark, four-option questions whose
// correct option is always index 1.
func (r *fakeSkillRepo) addSkill(id uint, n int) *model.Skill {
	sk := &model.Skill{ID: id, Title: "skill"}
	for i := 0; i < n; i++ {
		r.nextQ++
		sk.Questions = append(sk.Questions, model.Question{
			ID:           r.nextQ,
			SkillID:      id,
			Text:         "question",
			Options:      datatypes.NewJSONType([]string{"a", "b", "c", "d"}),
			CorrectIndex: 1,
			Marks:        1,
		})
	}
	r.skills[id] = sk
	return sk
}

func (r *fakeSkillRepo) Create(ctx context.Context, skill *model.Skill) error {
	r.skills[skill.ID] = skill
	return nil
}

func (r *fakeSkillRepo) FindByID(ctx context.Context, id uint) (*model.Skill, error) {
	sk, ok := r.skills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sk, nil
}

func (r *fakeSkillRepo) FindByIDsWithQuestions(ctx context.Context, ids []uint) ([]model.Skill, error) {
	var out []model.Skill
	for _, id := range ids {
		if sk, ok := r.skills[id]; ok {
			c := *sk
			c.Questions = append([]model.Question(nil), sk.Questions...)
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeSkillRepo) FindAllWithQuestionCount(ctx context.Context) ([]repository.SkillWithCount, error) {
	var out []repository.SkillWithCount
	for _, sk := range r.skills {
		out = append(out, repository.SkillWithCount{Skill: *sk, QuestionCount: len(sk.Questions)})
	}
	return out, nil
}

type fakePremium struct {
	premium map[string]bool
}

func (p *fakePremium) IsPremium(ctx context.Context, userID string) (bool, error) {
	return p.premium[userID], nil
}

func (p *fakePremium) Grant(ctx context.Context, userID string, until time.Time, source string) (*model.Subscription, error) {
	if p.premium == nil {
		p.premium = map[string]bool{}
	}
	p.premium[userID] = true
	return &model.Subscription{UserID: userID, ActiveUntil: until, Source: source}, nil
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func intPtr(v int) *int { return &v }

// newSnapshotAttempt builds an in-progress attempt with the given correct
// indices, four options and one mark per question.
func newSnapshotAttempt(owner string, correct ...int) *model.Attempt {
	snapshot := make([]model.SnapshotQuestion, len(correct))
	for i, c := range correct {
		snapshot[i] = model.SnapshotQuestion{
			SourceQuestionID: uint(i + 1),
			Text:             "q",
			Options:          []string{"a", "b", "c", "d"},
			CorrectIndex:     c,
			Marks:            1,
		}
	}
	started := time.Now()
	return &model.Attempt{
		ID:               uuid.New(),
		OwnerID:          owner,
		TestName:         "test",
		QuestionSnapshot: datatypes.NewJSONType(snapshot),
		Answers:          datatypes.NewJSONType(make([]*int, len(snapshot))),
		LockedIndices:    datatypes.NewJSONType([]int{}),
		TimeLimitMinutes: 30,
		Status:           model.AttemptInProgress,
		StartedAt:        &started,
		CreatedAt:        started,
	}
}
