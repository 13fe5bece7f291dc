package dto

// CreateSkillTestRequest configures a new attempt.
type CreateSkillTestRequest struct {
	TestName                string `json:"testName" binding:"required,max=200"`
	Skills                  []uint `json:"skills" binding:"required,min=1,dive,gt=0"`
	TotalQuestions          int    `json:"totalQuestions" binding:"required"`
	TimeLimitMinutes        int    `json:"timeLimitMinutes" binding:"required,gt=0,lte=600"`
	PerQuestionTimerEnabled bool   `json:"perQuestionTimerEnabled"`
	PerQuestionTimeMinutes  *int   `json:"perQuestionTimeMinutes"`
	OneTimeVisit            bool   `json:"oneTimeVisit"`
}

// AttemptRefRequest addresses an attempt owned by the caller.
type AttemptRefRequest struct {
	AttemptID string `json:"attemptId" binding:"required,uuid"`
}

// SubmitSkillTestRequest carries the final answers. A null entry is an
// unanswered question; the array may be shorter than the snapshot.
type SubmitSkillTestRequest struct {
	AttemptID  string `json:"attemptId" binding:"required,uuid"`
	MCQAnswers []*int `json:"mcqAnswers"`
	// Reason is informational: manual, timeout, violation or question_timer.
	Reason string `json:"reason" binding:"omitempty,oneof=manual timeout violation question_timer"`
}

// SaveProgressRequest persists the client's in-memory state while running.
type SaveProgressRequest struct {
	AttemptID      string `json:"attemptId" binding:"required,uuid"`
	MCQAnswers     []*int `json:"mcqAnswers"`
	LockedIndices  []int  `json:"lockedIndices" binding:"dive,gte=0"`
	TabSwitchCount int    `json:"tabSwitchCount" binding:"gte=0"`
}
