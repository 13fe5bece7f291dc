package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type CreateSkillTestResponse struct {
	AttemptID string `json:"attemptId"`
}

// AttemptQuestionDTO is a snapshot question as the client sees it: the
// correct option index is deliberately absent.
type AttemptQuestionDTO struct {
	Index   int      `json:"index"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Marks   int      `json:"marks"`
}

type SkillTestResultDTO struct {
	Score         int     `json:"score"`
	TotalMarks    int     `json:"totalMarks"`
	Percentage    float64 `json:"percentage"`
	Passed        bool    `json:"passed"`
	CertificateID *string `json:"certificateId"`
	SubmitReason  string  `json:"submitReason,omitempty"`
}

// AttemptViewDTO is the client runtime's view of an attempt.
type AttemptViewDTO struct {
	AttemptID               string               `json:"attemptId"`
	TestName                string               `json:"testName"`
	SkillIDs                []uint               `json:"skills"`
	Status                  string               `json:"status"`
	Questions               []AttemptQuestionDTO `json:"questions"`
	MCQAnswers              []*int               `json:"mcqAnswers"`
	TimeLimitMinutes        int                  `json:"timeLimitMinutes"`
	PerQuestionTimerEnabled bool                 `json:"perQuestionTimerEnabled"`
	PerQuestionTimeMinutes  *int                 `json:"perQuestionTimeMinutes,omitempty"`
	OneTimeVisit            bool                 `json:"oneTimeVisit"`
	LockedIndices           []int                `json:"lockedIndices"`
	TabSwitchCount          int                  `json:"tabSwitchCount"`
	StartedAt               *time.Time           `json:"startedAt,omitempty"`
	Deadline                *time.Time           `json:"deadline,omitempty"`
	Result                  *SkillTestResultDTO  `json:"result,omitempty"`
	CreatedAt               time.Time            `json:"createdAt"`
}

type AttemptsCountDTO struct {
	Count     int64 `json:"count"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Premium   bool  `json:"premium"`
}

type AttemptSummaryDTO struct {
	AttemptID     string              `json:"attemptId"`
	TestName      string              `json:"testName"`
	Status        string              `json:"status"`
	QuestionCount int                 `json:"questionCount"`
	Result        *SkillTestResultDTO `json:"result,omitempty"`
	ForfeitReason *string             `json:"forfeitReason,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	FinishedAt    *time.Time          `json:"finishedAt,omitempty"`
}

type ReviewQuestionDTO struct {
	Index          int      `json:"index"`
	Text           string   `json:"question"`
	Options        []string `json:"options"`
	Marks          int      `json:"marks"`
	SelectedIndex  *int     `json:"selectedIndex"`
	CorrectIndex   int      `json:"correctIndex"`
	EarnedMarks    int      `json:"earnedMarks"`
	Explanation    string   `json:"explanation,omitempty"`
	ExplanationErr string   `json:"explanationError,omitempty"`
}

type AttemptReviewDTO struct {
	AttemptID string              `json:"attemptId"`
	TestName  string              `json:"testName"`
	Status    string              `json:"status"`
	Result    *SkillTestResultDTO `json:"result,omitempty"`
	Questions []ReviewQuestionDTO `json:"questions"`
}
