package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/skilltest/config"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/event"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScoringFixture() (*scoringService, *fakeAttemptRepo, *recordingPublisher) {
	repo := newFakeAttemptRepo()
	pub := &recordingPublisher{}
	svc := NewScoringService(repo, NewGradeCalculator(DefaultPassPercentage), pub, config.Default()).(*scoringService)
	return svc, repo, pub
}

func TestSubmitHalfCorrectFails(t *testing.T) {
	svc, repo, pub := newScoringFixture()
	a := newSnapshotAttempt("u1", 1, 2)
	repo.put(a)

	res, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{
		AttemptID:  a.ID.String(),
		MCQAnswers: []*int{intPtr(1), intPtr(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.TotalMarks)
	assert.Equal(t, 50.0, res.Percentage)
	assert.False(t, res.Passed)
	assert.Nil(t, res.CertificateID)
	assert.Equal(t, string(model.SubmitManual), res.SubmitReason)

	stored := repo.get(a.ID)
	assert.Equal(t, model.AttemptSubmitted, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 1, *stored.Score)
	assert.Equal(t, []string{event.AttemptSubmitted}, pub.types())
}

func TestSubmitShortAnswersAreUnanswered(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	a := newSnapshotAttempt("u1", 0, 0, 0, 0, 0)
	repo.put(a)

	res, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{
		AttemptID:  a.ID.String(),
		MCQAnswers: []*int{intPtr(0), nil, intPtr(0)},
		Reason:     string(model.SubmitTimeout),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 5, res.TotalMarks)
	assert.Equal(t, 40.0, res.Percentage)
	assert.Equal(t, string(model.SubmitTimeout), res.SubmitReason)
	assert.Len(t, repo.get(a.ID).AnswerList(), 5)
}

func TestSubmitTwiceReturnsAlreadyFinalized(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	a := newSnapshotAttempt("u1", 0, 0)
	repo.put(a)
	req := dto.SubmitSkillTestRequest{AttemptID: a.ID.String(), MCQAnswers: []*int{intPtr(0), intPtr(0)}}

	first, err := svc.Submit(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.True(t, first.Passed)

	req.MCQAnswers = []*int{intPtr(1), intPtr(1)}
	_, err = svc.Submit(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, 2, *repo.get(a.ID).Score, "stored result must not change")
}

func TestSubmitConcurrentSingleWinner(t *testing.T) {
	svc, repo, pub := newScoringFixture()
	a := newSnapshotAttempt("u1", 0, 0)
	repo.put(a)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, losses := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{AttemptID: a.ID.String()})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if assert.ErrorIs(t, err, ErrAlreadyFinalized) {
				losses++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, losses)
	assert.Len(t, pub.types(), 1)
}

func TestSubmitMalformed(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	a := newSnapshotAttempt("u1", 0, 0)
	repo.put(a)

	cases := map[string][]*int{
		"too many answers": {intPtr(0), intPtr(0), intPtr(0)},
		"option too large": {intPtr(4)},
		"negative option":  {nil, intPtr(-1)},
	}
	for name, answers := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{AttemptID: a.ID.String(), MCQAnswers: answers})
			assert.ErrorIs(t, err, ErrMalformedSubmission)
			assert.Equal(t, model.AttemptInProgress, repo.get(a.ID).Status)
		})
	}
}

func TestSubmitAfterDeadlineExpiresAttempt(t *testing.T) {
	svc, repo, pub := newScoringFixture()
	a := newSnapshotAttempt("u1", 0)
	started := time.Now().Add(-time.Hour)
	a.StartedAt = &started
	repo.put(a)

	_, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{AttemptID: a.ID.String(), MCQAnswers: []*int{intPtr(0)}})
	assert.ErrorIs(t, err, ErrAttemptExpired)

	stored := repo.get(a.ID)
	assert.Equal(t, model.AttemptForfeited, stored.Status)
	require.NotNil(t, stored.ForfeitReason)
	assert.Equal(t, model.ForfeitExpired, *stored.ForfeitReason)
	assert.Nil(t, stored.Score)
	assert.Equal(t, []string{event.AttemptForfeited}, pub.types())
}

func TestSubmitWithinGraceIsAccepted(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	a := newSnapshotAttempt("u1", 0)
	started := time.Now().Add(-31 * time.Minute)
	a.StartedAt = &started
	repo.put(a)

	_, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{AttemptID: a.ID.String(), Reason: string(model.SubmitTimeout)})
	assert.NoError(t, err)
}

func TestSubmitChecksOwnerAndID(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	a := newSnapshotAttempt("u1", 0)
	repo.put(a)

	_, err := svc.Submit(context.Background(), "u2", dto.SubmitSkillTestRequest{AttemptID: a.ID.String()})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{AttemptID: "nope"})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestSubmitFromCreatedStatus(t *testing.T) {
	svc, repo, _ := newScoringFixture()
	a := newSnapshotAttempt("u1", 3)
	a.Status = model.AttemptCreated
	a.StartedAt = nil
	repo.put(a)

	res, err := svc.Submit(context.Background(), "u1", dto.SubmitSkillTestRequest{AttemptID: a.ID.String(), MCQAnswers: []*int{intPtr(3)}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Percentage)
	assert.True(t, res.Passed)
}
