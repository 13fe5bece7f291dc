package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestGradeCalculator(t *testing.T) {
	calc := NewGradeCalculator(DefaultPassPercentage)
	snapshot := []model.SnapshotQuestion{
		{CorrectIndex: 0, Marks: 2},
		{CorrectIndex: 1, Marks: 1},
		{CorrectIndex: 2, Marks: 3},
	}

	g := calc.Grade(snapshot, []*int{intPtr(0), intPtr(0), intPtr(2)})
	assert.Equal(t, 5, g.Score)
	assert.Equal(t, 6, g.TotalMarks)
	assert.Equal(t, 83.33, g.Percentage)
	assert.True(t, g.Passed)
	assert.Equal(t, []int{2, 0, 3}, g.Earned)

	g = calc.Grade(snapshot, nil)
	assert.Zero(t, g.Score)
	assert.Zero(t, g.Percentage)
	assert.False(t, g.Passed)

	g = calc.Grade(nil, nil)
	assert.Zero(t, g.TotalMarks)
	assert.Zero(t, g.Percentage)
}

func TestGradeCalculatorPassBoundary(t *testing.T) {
	calc := NewGradeCalculator(0)
	snapshot := make([]model.SnapshotQuestion, 5)
	answers := []*int{intPtr(0), intPtr(0), intPtr(0), nil, nil}
	for i := range snapshot {
		snapshot[i] = model.SnapshotQuestion{CorrectIndex: 0, Marks: 1}
	}
	g := calc.Grade(snapshot, answers)
	assert.Equal(t, 60.0, g.Percentage)
	assert.True(t, g.Passed, "exactly the pass mark passes")
}

func TestReaperSweepExpiresOnlyPastDeadline(t *testing.T) {
	repo := newFakeAttemptRepo()
	pub := &recordingPublisher{}
	reaper := NewReaperService(repo, pub, config.Default())
	now := time.Now()

	abandoned := newSnapshotAttempt("u1", 0)
	started := now.Add(-40 * time.Minute)
	abandoned.StartedAt = &started
	abandoned.CreatedAt = started

	neverStarted := newSnapshotAttempt("u1", 0)
	neverStarted.Status = model.AttemptCreated
	neverStarted.StartedAt = nil
	neverStarted.CreatedAt = now.Add(-3 * time.Hour)

	running := newSnapshotAttempt("u1", 0)
	lateStart := now.Add(-10 * time.Minute)
	running.CreatedAt = now.Add(-50 * time.Minute)
	running.StartedAt = &lateStart

	done := newSnapshotAttempt("u1", 0)
	done.Status = model.AttemptSubmitted
	done.CreatedAt = now.Add(-5 * time.Hour)

	for _, a := range []*model.Attempt{abandoned, neverStarted, running, done} {
		repo.put(a)
	}

	n, err := reaper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, model.AttemptForfeited, repo.get(abandoned.ID).Status)
	assert.Equal(t, model.ForfeitExpired, *repo.get(abandoned.ID).ForfeitReason)
	assert.Equal(t, model.AttemptForfeited, repo.get(neverStarted.ID).Status)
	assert.Equal(t, model.AttemptInProgress, repo.get(running.ID).Status)
	assert.Equal(t, model.AttemptSubmitted, repo.get(done.ID).Status)
	assert.Equal(t, []string{event.AttemptForfeited, event.AttemptForfeited}, pub.types())

	n, err = reaper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReaperSweepPagesPastLiveAttempts(t *testing.T) {
	repo := newFakeAttemptRepo()
	reaper := NewReaperService(repo, &recordingPublisher{}, config.Default()).(*reaperService)
	reaper.batchSize = 2
	now := time.Now()

	// Older attempts with long limits that are still inside their window.
	for i := 0; i < 5; i++ {
		live := newSnapshotAttempt("u1", 0)
		started := now.Add(-time.Duration(5-i) * time.Hour)
		live.CreatedAt = started
		live.StartedAt = &started
		live.TimeLimitMinutes = 600
		repo.put(live)
	}
	expired := newSnapshotAttempt("u2", 0)
	started := now.Add(-time.Hour)
	expired.CreatedAt = started
	expired.StartedAt = &started
	repo.put(expired)

	n, err := reaper.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.AttemptForfeited, repo.get(expired.ID).Status)
}

func TestReaperStartRejectsBadSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.SkillTest.ReaperSchedule = "not a schedule"
	reaper := NewReaperService(newFakeAttemptRepo(), event.LogPublisher{}, cfg)
	assert.Error(t, reaper.Start())

	ok := NewReaperService(newFakeAttemptRepo(), event.LogPublisher{}, config.Default())
	require.NoError(t, ok.Start())
	<-ok.Stop().Done()
}

type stubExplainer struct {
	calls int
	err   error
}

func (s *stubExplainer) Explain(ctx context.Context, q model.SnapshotQuestion, selected *int) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "because", nil
}

func TestReviewRevealsAnswersOnlyWhenTerminal(t *testing.T) {
	repo := newFakeAttemptRepo()
	explainer := &stubExplainer{}
	svc := NewReviewService(repo, NewGradeCalculator(DefaultPassPercentage), explainer)
	a := newSnapshotAttempt("u1", 1, 2)
	repo.put(a)
	ctx := context.Background()

	_, err := svc.Review(ctx, "u1", a.ID, false)
	assert.ErrorIs(t, err, ErrNotFinalized)

	require.NoError(t, repo.Finalize(ctx, a.ID, model.AttemptResult{
		Score: 1, TotalMarks: 2, Percentage: 50,
		Answers:      []*int{intPtr(1), intPtr(0)},
		SubmitReason: model.SubmitManual,
		SubmittedAt:  time.Now(),
	}))

	review, err := svc.Review(ctx, "u1", a.ID, true)
	require.NoError(t, err)
	require.Len(t, review.Questions, 2)
	assert.Equal(t, 1, review.Questions[0].CorrectIndex)
	assert.Equal(t, 1, review.Questions[0].EarnedMarks)
	assert.Empty(t, review.Questions[0].Explanation)
	assert.Equal(t, 2, review.Questions[1].CorrectIndex)
	assert.Equal(t, "because", review.Questions[1].Explanation)
	assert.Equal(t, 1, explainer.calls, "only wrong answers are explained")
	require.NotNil(t, review.Result)
	assert.Equal(t, 50.0, review.Result.Percentage)

	_, err = svc.Review(ctx, "u2", a.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReviewExplanationFailureIsReportedPerQuestion(t *testing.T) {
	repo := newFakeAttemptRepo()
	svc := NewReviewService(repo, NewGradeCalculator(DefaultPassPercentage), &stubExplainer{err: ErrExplainerUnavailable})
	a := newSnapshotAttempt("u1", 1)
	repo.put(a)
	require.NoError(t, repo.Forfeit(context.Background(), a.ID, model.ForfeitAbandoned, time.Now()))

	review, err := svc.Review(context.Background(), "u1", a.ID, true)
	require.NoError(t, err)
	assert.Nil(t, review.Result)
	assert.Equal(t, ErrExplainerUnavailable.Error(), review.Questions[0].ExplanationErr)
}

func TestGeminiExplainerWithoutKey(t *testing.T) {
	explainer, err := NewGeminiExplainerService(config.Default())
	require.NoError(t, err)
	_, err = explainer.Explain(context.Background(), model.SnapshotQuestion{}, nil)
	assert.ErrorIs(t, err, ErrExplainerUnavailable)

	closer, ok := explainer.(io.Closer)
	require.True(t, ok)
	assert.NoError(t, closer.Close())
}

func TestBuildExplainPrompt(t *testing.T) {
	q := model.SnapshotQuestion{Text: "What does a nil map read return?", Options: []string{"panic", "zero value"}, CorrectIndex: 1}
	prompt := buildExplainPrompt(q, intPtr(0))
	assert.Contains(t, prompt, "B) zero value")
	assert.Contains(t, prompt, "Correct option: B")
	assert.Contains(t, prompt, "Candidate's option: A")
	assert.Contains(t, buildExplainPrompt(q, nil), "unanswered")
}

type fakeSubscriptionRepo struct {
	subs  map[string]*model.Subscription
	reads int
}

func (r *fakeSubscriptionRepo) FindByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	r.reads++
	sub, ok := r.subs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *model.Subscription) error {
	r.subs[sub.UserID] = sub
	return nil
}

func TestPremiumServiceWithoutCache(t *testing.T) {
	subs := &fakeSubscriptionRepo{subs: map[string]*model.Subscription{}}
	svc := NewPremiumService(subs, nil, time.Minute)
	ctx := context.Background()

	premium, err := svc.IsPremium(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, premium)

	_, err = svc.Grant(ctx, "u1", time.Now().Add(time.Hour), "admin")
	require.NoError(t, err)
	premium, err = svc.IsPremium(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, premium)

	subs.subs["u2"] = &model.Subscription{UserID: "u2", ActiveUntil: time.Now().Add(-time.Hour)}
	premium, err = svc.IsPremium(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, premium, "expired grants are not premium")
}

func TestPremiumServiceFallsBackWhenCacheIsDown(t *testing.T) {
	subs := &fakeSubscriptionRepo{subs: map[string]*model.Subscription{
		"u1": {UserID: "u1", ActiveUntil: time.Now().Add(time.Hour)},
	}}
	cache := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer cache.Close()
	svc := NewPremiumService(subs, cache, time.Minute)

	premium, err := svc.IsPremium(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, premium)
	assert.Equal(t, 1, subs.reads)
}

type brokenSubscriptionRepo struct{ fakeSubscriptionRepo }

func (brokenSubscriptionRepo) FindByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	return nil, errors.New("connection reset")
}

func TestPremiumServiceSurfacesDatabaseErrors(t *testing.T) {
	svc := NewPremiumService(&brokenSubscriptionRepo{}, nil, 0)
	_, err := svc.IsPremium(context.Background(), "u1")
	assert.Error(t, err)
}

func TestSkillServiceCreateAndList(t *testing.T) {
	skills := newFakeSkillRepo()
	svc := NewSkillService(skills)
	ctx := context.Background()

	resp, err := svc.CreateSkill(ctx, dto.SkillCreateDTO{
		Title: "  Go Concurrency ",
		Questions: []dto.QuestionCreateDTO{
			{Text: "Unbuffered send blocks until?", Options: []string{"never", "a receiver is ready"}, CorrectIndex: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency", resp.Title)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, model.DefaultQuestionMarks, resp.Questions[0].Marks)

	_, err = svc.CreateSkill(ctx, dto.SkillCreateDTO{
		Title:     "Broken",
		Questions: []dto.QuestionCreateDTO{{Text: "q", Options: []string{"a", "b"}, CorrectIndex: 2}},
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	list, err := svc.ListSkills(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].QuestionCount)
}

type fakeQuestionRepo struct {
	questions map[uint]*model.Question
}

func (r *fakeQuestionRepo) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *q
	return &c, nil
}

func (r *fakeQuestionRepo) FindBySkillID(ctx context.Context, skillID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range r.questions {
		if q.SkillID == skillID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, question *model.Question) error {
	c := *question
	r.questions[question.ID] = &c
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, id uint) error {
	delete(r.questions, id)
	return nil
}

func TestQuestionServiceUpdateAndDelete(t *testing.T) {
	repo := &fakeQuestionRepo{questions: map[uint]*model.Question{
		7: {ID: 7, SkillID: 1, Text: "old", Options: datatypes.NewJSONType([]string{"a", "b"}), CorrectIndex: 0, Marks: 1},
	}}
	svc := NewQuestionService(repo)
	ctx := context.Background()

	resp, err := svc.UpdateQuestion(ctx, 7, dto.QuestionUpdateDTO{Text: "new", Options: []string{"x", "y", "z"}, CorrectIndex: 2, Marks: 3})
	require.NoError(t, err)
	assert.Equal(t, "new", resp.Text)
	assert.Equal(t, []string{"x", "y", "z"}, resp.Options)
	assert.Equal(t, 3, resp.Marks)

	_, err = svc.UpdateQuestion(ctx, 7, dto.QuestionUpdateDTO{Text: "new", Options: []string{"x", "y"}, CorrectIndex: 5})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = svc.UpdateQuestion(ctx, 99, dto.QuestionUpdateDTO{Text: "t", Options: []string{"x", "y"}})
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	require.NoError(t, svc.DeleteQuestion(ctx, 7))
	_, err = svc.GetQuestion(ctx, 7)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.ErrorIs(t, svc.DeleteQuestion(ctx, 7), ErrQuestionNotFound)
}

func TestPremiumCacheEntryEndsWithGrant(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewPremiumService(&fakeSubscriptionRepo{subs: map[string]*model.Subscription{}}, nil, 5*time.Minute).(*premiumService)
	svc.now = func() time.Time { return now }

	premium, ttl := svc.cacheEntry(&model.Subscription{ActiveUntil: now.Add(30 * time.Second)})
	assert.True(t, premium)
	assert.Equal(t, 30*time.Second, ttl)

	premium, ttl = svc.cacheEntry(&model.Subscription{ActiveUntil: now.Add(time.Hour)})
	assert.True(t, premium)
	assert.Equal(t, 5*time.Minute, ttl)

	premium, ttl = svc.cacheEntry(&model.Subscription{ActiveUntil: now.Add(-time.Second)})
	assert.False(t, premium)
	assert.Equal(t, 5*time.Minute, ttl)

	premium, _ = svc.cacheEntry(nil)
	assert.False(t, premium)
}
