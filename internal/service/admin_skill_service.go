package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/model"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SkillService manages the question bank that attempts sample from.
type SkillService interface {
	CreateSkill(ctx context.Context, req dto.SkillCreateDTO) (*dto.SkillResponseDTO, error)
	ListSkills(ctx context.Context) ([]dto.SkillSummaryDTO, error)
}

type skillService struct {
	skillRepo repository.SkillRepository
}

func NewSkillService(skillRepo repository.SkillRepository) SkillService {
	return &skillService{skillRepo: skillRepo}
}

func (s *skillService) CreateSkill(ctx context.Context, req dto.SkillCreateDTO) (*dto.SkillResponseDTO, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: skill title is required", ErrInvalidConfig)
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, qDto := range req.Questions {
		q, err := questionFromInput(qDto.Text, qDto.Options, qDto.CorrectIndex, qDto.Marks)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}

	skill := model.Skill{
		Title:       title,
		Description: req.Description,
		Questions:   questions,
	}
	if err := s.skillRepo.Create(ctx, &skill); err != nil {
		log.Error().Err(err).Str("title", title).Msg("Failed to create skill in database")
		return nil, fmt.Errorf("database error creating skill: %w", err)
	}
	log.Info().Uint("skillID", skill.ID).Int("questions", len(questions)).Msg("Skill created")

	created, err := s.skillRepo.FindByID(ctx, skill.ID)
	if err != nil {
		log.Error().Err(err).Uint("skillID", skill.ID).Msg("Failed to retrieve newly created skill for response")
		return skillResponse(&skill), nil
	}
	return skillResponse(created), nil
}

func (s *skillService) ListSkills(ctx context.Context) ([]dto.SkillSummaryDTO, error) {
	skillsWithCount, err := s.skillRepo.FindAllWithQuestionCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get skills with question count from repository")
		return nil, fmt.Errorf("error fetching skills: %w", err)
	}

	dtos := make([]dto.SkillSummaryDTO, 0, len(skillsWithCount))
	for _, swc := range skillsWithCount {
		dtos = append(dtos, dto.SkillSummaryDTO{
			ID:            swc.Skill.ID,
			Title:         swc.Skill.Title,
			Description:   swc.Skill.Description,
			QuestionCount: swc.QuestionCount,
			CreatedAt:     swc.Skill.CreatedAt,
		})
	}
	return dtos, nil
}

// questionFromInput validates admin input and builds the bank model.
func questionFromInput(text string, options []string, correctIndex, marks int) (model.Question, error) {
	if strings.TrimSpace(text) == "" {
		return model.Question{}, fmt.Errorf("%w: question text is required", ErrInvalidConfig)
	}
	if len(options) < 2 {
		return model.Question{}, fmt.Errorf("%w: at least two options are required", ErrInvalidConfig)
	}
	if correctIndex < 0 || correctIndex >= len(options) {
		return model.Question{}, fmt.Errorf("%w: correct_index %d out of range for %d options", ErrInvalidConfig, correctIndex, len(options))
	}
	if marks <= 0 {
		marks = model.DefaultQuestionMarks
	}
	opts := make([]string, len(options))
	copy(opts, options)
	return model.Question{
		Text:         text,
		Options:      datatypes.NewJSONType(opts),
		CorrectIndex: correctIndex,
		Marks:        marks,
	}, nil
}

func questionResponse(q *model.Question) dto.QuestionResponseDTO {
	return dto.QuestionResponseDTO{
		ID:           q.ID,
		SkillID:      q.SkillID,
		Text:         q.Text,
		Options:      q.OptionList(),
		CorrectIndex: q.CorrectIndex,
		Marks:        q.Marks,
	}
}

func skillResponse(skill *model.Skill) *dto.SkillResponseDTO {
	resp := &dto.SkillResponseDTO{
		ID:          skill.ID,
		Title:       skill.Title,
		Description: skill.Description,
		CreatedAt:   skill.CreatedAt,
	}
	for i := range skill.Questions {
		resp.Questions = append(resp.Questions, questionResponse(&skill.Questions[i]))
	}
	return resp
}

func mapNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
