package service

import "errors"

var (
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrSkillNotFound         = errors.New("skill not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrForbidden             = errors.New("attempt belongs to another user")
	ErrInvalidConfig         = errors.New("invalid test configuration")
	ErrInvalidQuestionCount  = errors.New("totalQuestions must be one of 15, 20, 30, 40, 50, 60")
	ErrInsufficientQuestions = errors.New("selected skills do not hold enough questions")
	ErrAttemptLimitReached   = errors.New("free attempt limit reached")
	ErrAlreadyFinalized      = errors.New("attempt already finalized")
	ErrMalformedSubmission   = errors.New("malformed submission")
	ErrAttemptExpired        = errors.New("attempt time has expired")
	ErrNotFinalized          = errors.New("attempt is not finalized yet")
)
