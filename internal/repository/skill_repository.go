package repository

import (
	"context"

	"github.com/lshigami/skilltest/internal/model"
	"gorm.io/gorm"
)

type SkillWithCount struct {
	model.Skill
	QuestionCount int
}

type SkillRepository interface {
	Create(ctx context.Context, skill *model.Skill) error
	FindByID(ctx context.Context, id uint) (*model.Skill, error)
	FindByIDsWithQuestions(ctx context.Context, ids []uint) ([]model.Skill, error)
	FindAllWithQuestionCount(ctx context.Context) ([]SkillWithCount, error)
}

type skillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) Create(ctx context.Context, skill *model.Skill) error {
	// Questions on skill.Questions are inserted by the association.
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *skillRepository) FindByID(ctx context.Context, id uint) (*model.Skill, error) {
	var skill model.Skill
	err := r.db.WithContext(ctx).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id ASC")
	}).First(&skill, id).Error
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// FindByIDsWithQuestions returns the requested skills that exist, each with its
// live question pool. Missing ids are simply absent from the result.
func (r *skillRepository) FindByIDsWithQuestions(ctx context.Context, ids []uint) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.db.WithContext(ctx).Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id ASC")
	}).Where("id IN ?", ids).Order("id ASC").Find(&skills).Error
	return skills, err
}

func (r *skillRepository) FindAllWithQuestionCount(ctx context.Context) ([]SkillWithCount, error) {
	var results []SkillWithCount
	err := r.db.WithContext(ctx).Model(&model.Skill{}).
		Select("skills.*, (SELECT COUNT(*) FROM questions WHERE questions.skill_id = skills.id AND questions.deleted_at IS NULL) as question_count").
		Where("skills.deleted_at IS NULL").
		Order("skills.title ASC").
		Scan(&results).Error
	return results, err
}
