// Package controller holds what the user and admin controllers share:
// service error mapping and request helpers.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/service"
	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters only for errors that wrap more than one sentinel.
var errorMappings = []errorMapping{
	{service.ErrAttemptNotFound, http.StatusNotFound, "ATTEMPT_NOT_FOUND"},
	{service.ErrSkillNotFound, http.StatusNotFound, "SKILL_NOT_FOUND"},
	{service.ErrQuestionNotFound, http.StatusNotFound, "QUESTION_NOT_FOUND"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrAttemptLimitReached, http.StatusForbidden, "ATTEMPT_LIMIT_REACHED"},
	{service.ErrInvalidQuestionCount, http.StatusBadRequest, "INVALID_QUESTION_COUNT"},
	{service.ErrInvalidConfig, http.StatusBadRequest, "INVALID_CONFIG"},
	{service.ErrInsufficientQuestions, http.StatusBadRequest, "INSUFFICIENT_QUESTIONS"},
	{service.ErrMalformedSubmission, http.StatusBadRequest, "MALFORMED_SUBMISSION"},
	{service.ErrAlreadyFinalized, http.StatusConflict, "ALREADY_FINALIZED"},
	{service.ErrAttemptExpired, http.StatusConflict, "ATTEMPT_EXPIRED"},
	{service.ErrNotFinalized, http.StatusConflict, "NOT_FINALIZED"},
}

// StatusFor maps a service error to its HTTP status and error code.
// Unknown errors are internal.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// RespondError writes the ErrorResponse for err. Internal errors are logged
// and their detail is not exposed.
func RespondError(c *gin.Context, err error, op string) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("op", op).Msg("Service error")
		c.JSON(status, dto.ErrorResponse{Message: "Internal server error", Code: code})
		return
	}
	log.Warn().Err(err).Str("op", op).Int("status", status).Msg("Request rejected")
	c.JSON(status, dto.ErrorResponse{Message: err.Error(), Code: code})
}

// RespondBindError answers a request whose body or query failed validation.
func RespondBindError(c *gin.Context, err error, op string) {
	log.Warn().Err(err).Str("op", op).Msg("Failed to bind request")
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Message: "Invalid request body",
		Code:    "INVALID_REQUEST",
		Details: []string{err.Error()},
	})
}

// ParseAttemptID parses raw and answers 400 when it is not a uuid.
func ParseAttemptID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format", Code: "INVALID_ATTEMPT_ID"})
		return uuid.Nil, false
	}
	return id, true
}
