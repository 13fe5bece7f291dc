package service

import (
	"context"
	"fmt"

	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/repository"
	"github.com/rs/zerolog/log"
)

// QuestionService edits bank questions. Existing attempts are unaffected:
// they score against their own snapshot.
type QuestionService interface {
	GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponseDTO, error)
	UpdateQuestion(ctx context.Context, id uint, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

type questionService struct {
	repo repository.QuestionRepository
}

func NewQuestionService(repo repository.QuestionRepository) QuestionService {
	return &questionService{repo: repo}
}

func (s *questionService) GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}
	resp := questionResponse(question)
	return &resp, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id uint, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrQuestionNotFound)
	}

	updated, err := questionFromInput(req.Text, req.Options, req.CorrectIndex, req.Marks)
	if err != nil {
		return nil, err
	}
	question.Text = updated.Text
	question.Options = updated.Options
	question.CorrectIndex = updated.CorrectIndex
	question.Marks = updated.Marks

	if err := s.repo.Update(ctx, question); err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to update question")
		return nil, fmt.Errorf("database error updating question: %w", err)
	}
	resp := questionResponse(question)
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapNotFound(err, ErrQuestionNotFound)
	}
	return s.repo.Delete(ctx, id)
}
