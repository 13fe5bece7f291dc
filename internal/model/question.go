package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultQuestionMarks = 1

type Question struct {
	ID           uint                         `gorm:"primarykey" json:"id"`
	SkillID      uint                         `json:"skill_id" gorm:"not null;index"`
	Text         string                       `json:"text" gorm:"type:text;not null"`
	Options      datatypes.JSONType[[]string] `json:"options" gorm:"not null"`
	CorrectIndex int                          `json:"correct_index" gorm:"not null"`
	Marks        int                          `json:"marks" gorm:"not null;default:1"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
	DeletedAt    gorm.DeletedAt               `gorm:"index" json:"-"`
}

// OptionList returns a copy of the question's options.
func (q *Question) OptionList() []string {
	opts := q.Options.Data()
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// Snapshot deep-copies the question into the frozen form stored on an attempt.
func (q *Question) Snapshot() SnapshotQuestion {
	marks := q.Marks
	if marks <= 0 {
		marks = DefaultQuestionMarks
	}
	return SnapshotQuestion{
		SourceQuestionID: q.ID,
		SkillID:          q.SkillID,
		Text:             q.Text,
		Options:          q.OptionList(),
		CorrectIndex:     q.CorrectIndex,
		Marks:            marks,
	}
}
