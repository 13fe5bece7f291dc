package dto

import "time"

// QuestionCreateDTO is used within SkillCreateDTO for question bank seeding.
type QuestionCreateDTO struct {
	Text         string   `json:"text" binding:"required"`
	Options      []string `json:"options" binding:"required,min=2,max=8,dive,required"`
	CorrectIndex int      `json:"correct_index" binding:"gte=0"`
	Marks        int      `json:"marks" binding:"omitempty,gt=0"`
}

// SkillCreateDTO is for admin to create a skill with its question pool.
type SkillCreateDTO struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description,omitempty"`
	Questions   []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

type QuestionUpdateDTO struct {
	Text         string   `json:"text" binding:"required"`
	Options      []string `json:"options" binding:"required,min=2,max=8,dive,required"`
	CorrectIndex int      `json:"correct_index" binding:"gte=0"`
	Marks        int      `json:"marks" binding:"omitempty,gt=0"`
}

// GrantPremiumDTO records a premium grant coming from the payment provider.
type GrantPremiumDTO struct {
	UserID      string    `json:"user_id" binding:"required"`
	ActiveUntil time.Time `json:"active_until" binding:"required"`
	Source      string    `json:"source" binding:"omitempty,oneof=webhook admin"`
}
