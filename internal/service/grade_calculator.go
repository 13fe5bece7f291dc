package service

import (
	"math"

	"github.com/lshigami/skilltest/internal/model"
)

// DefaultPassPercentage is the pass mark applied when none is configured.
const DefaultPassPercentage float64 = 60.0

type Grade struct {
	Score      int
	TotalMarks int
	Percentage float64
	Passed     bool
	// Earned holds the marks earned per snapshot index.
	Earned []int
}

type GradeCalculator interface {
	Grade(snapshot []model.SnapshotQuestion, answers []*int) Grade
}

type gradeCalculatorImpl struct {
	passPercentage float64
}

func NewGradeCalculator(passPercentage float64) GradeCalculator {
	if passPercentage <= 0 || passPercentage > 100 {
		passPercentage = DefaultPassPercentage
	}
	return &gradeCalculatorImpl{passPercentage: passPercentage}
}

// Grade scores answers against the snapshot's retained correct indices.
// An answer earns the question's marks only on an exact match; missing and
// nil answers earn nothing. Answers beyond the snapshot are ignored, callers
// validate them first.
func (g *gradeCalculatorImpl) Grade(snapshot []model.SnapshotQuestion, answers []*int) Grade {
	grade := Grade{Earned: make([]int, len(snapshot))}
	for i, q := range snapshot {
		grade.TotalMarks += q.Marks
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == q.CorrectIndex {
			grade.Score += q.Marks
			grade.Earned[i] = q.Marks
		}
	}

	if grade.TotalMarks == 0 {
		return grade
	}
	pct := 100 * float64(grade.Score) / float64(grade.TotalMarks)
	grade.Percentage = math.Round(pct*100) / 100
	grade.Passed = pct >= g.passPercentage
	return grade
}
