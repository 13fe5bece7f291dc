package dto

import "time"

// QuestionResponseDTO is the admin view of a bank question.
type QuestionResponseDTO struct {
	ID           uint     `json:"id"`
	SkillID      uint     `json:"skill_id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Marks        int      `json:"marks"`
}

// SkillResponseDTO is the admin view of a skill and its pool.
type SkillResponseDTO struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Questions   []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// SkillSummaryDTO is used by the test configuration screen.
type SkillSummaryDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}
