package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptCreated    AttemptStatus = "created"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptForfeited  AttemptStatus = "forfeited"
)

// ActiveStatuses are the statuses an attempt can still leave.
var ActiveStatuses = []AttemptStatus{AttemptCreated, AttemptInProgress}

// Terminal reports whether no further transition is allowed.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptSubmitted || s == AttemptForfeited
}

// SubmitReason records why an attempt reached submitted.
type SubmitReason string

const (
	SubmitManual        SubmitReason = "manual"
	SubmitTimeout       SubmitReason = "timeout"
	SubmitViolation     SubmitReason = "violation"
	SubmitQuestionTimer SubmitReason = "question_timer"
)

func (r SubmitReason) Valid() bool {
	switch r {
	case SubmitManual, SubmitTimeout, SubmitViolation, SubmitQuestionTimer:
		return true
	}
	return false
}

const (
	ForfeitAbandoned = "abandoned"
	ForfeitExpired   = "expired"
)

// SnapshotQuestion is the frozen copy of a bank question bound to an attempt.
// CorrectIndex never leaves the server before the attempt is terminal.
type SnapshotQuestion struct {
	SourceQuestionID uint     `json:"source_question_id"`
	SkillID          uint     `json:"skill_id"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	CorrectIndex     int      `json:"correct_index"`
	Marks            int      `json:"marks"`
}

// Attempt is one user taking one configured skill test.
type Attempt struct {
	ID                      uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID                 string                                 `json:"owner_id" gorm:"not null;index;size:64"`
	TestName                string                                 `json:"test_name" gorm:"not null"`
	SourceSkillIDs          datatypes.JSONType[[]uint]             `json:"source_skill_ids" gorm:"not null"`
	QuestionSnapshot        datatypes.JSONType[[]SnapshotQuestion] `json:"question_snapshot" gorm:"not null"`
	Answers                 datatypes.JSONType[[]*int]             `json:"answers" gorm:"not null"`
	TimeLimitMinutes        int                                    `json:"time_limit_minutes" gorm:"not null"`
	PerQuestionTimerEnabled bool                                   `json:"per_question_timer_enabled"`
	PerQuestionTimeMinutes  *int                                   `json:"per_question_time_minutes,omitempty"`
	OneTimeVisit            bool                                   `json:"one_time_visit"`
	LockedIndices           datatypes.JSONType[[]int]              `json:"locked_indices" gorm:"not null"`
	TabSwitchCount          int                                    `json:"tab_switch_count" gorm:"not null;default:0"`
	Status                  AttemptStatus                          `json:"status" gorm:"not null;index;size:16;default:'created'"`
	PremiumAtCreation       bool                                   `json:"premium_at_creation" gorm:"not null;default:false"`

	// Result, populated only on submitted.
	Score         *int          `json:"score,omitempty"`
	TotalMarks    *int          `json:"total_marks,omitempty"`
	Percentage    *float64      `json:"percentage,omitempty"`
	Passed        *bool         `json:"passed,omitempty"`
	CertificateID *string       `json:"certificate_id,omitempty"`
	SubmitReason  *SubmitReason `json:"submit_reason,omitempty" gorm:"size:32"`
	ForfeitReason *string       `json:"forfeit_reason,omitempty" gorm:"size:32"`

	StartedAt   *time.Time     `json:"started_at,omitempty"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AttemptCreated
	}
	return nil
}

func (a *Attempt) Snapshot() []SnapshotQuestion {
	return a.QuestionSnapshot.Data()
}

func (a *Attempt) AnswerList() []*int {
	return a.Answers.Data()
}

func (a *Attempt) Locked() []int {
	return a.LockedIndices.Data()
}

// Deadline is the wall-clock instant after which the attempt can no longer
// be submitted. Attempts that were never started are measured from creation.
func (a *Attempt) Deadline(grace time.Duration) time.Time {
	from := a.CreatedAt
	if a.StartedAt != nil {
		from = *a.StartedAt
	}
	return from.Add(time.Duration(a.TimeLimitMinutes)*time.Minute + grace)
}

// AttemptResult is what the scorer writes when an attempt is submitted.
type AttemptResult struct {
	Score        int
	TotalMarks   int
	Percentage   float64
	Passed       bool
	Answers      []*int
	SubmitReason SubmitReason
	SubmittedAt  time.Time
}
