package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/skilltest/internal/controller"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/middleware"
	"github.com/lshigami/skilltest/internal/service"
	"github.com/rs/zerolog/log"
)

type SkillTestController struct {
	skillTestService service.SkillTestService
	scoringService   service.ScoringService
	reviewService    service.ReviewService
	skillService     service.SkillService
}

func NewSkillTestController(
	sts service.SkillTestService,
	scoring service.ScoringService,
	review service.ReviewService,
	skills service.SkillService,
) *SkillTestController {
	return &SkillTestController{
		skillTestService: sts,
		scoringService:   scoring,
		reviewService:    review,
		skillService:     skills,
	}
}

// RegisterRoutes mounts the attempt endpoints on an authenticated group.
func (c *SkillTestController) RegisterRoutes(group *gin.RouterGroup) {
	st := group.Group("/skill-test")
	st.POST("/create", c.CreateAttempt)
	st.GET("", c.GetAttempt)
	st.POST("/start", c.StartAttempt)
	st.POST("/progress", c.SaveProgress)
	st.POST("/submit", c.Submit)
	st.POST("/forfeit", c.Forfeit)
	st.GET("/attempts-count", c.AttemptsCount)
	st.GET("/history", c.History)
	st.GET("/review", c.Review)
}

// ListSkills godoc
// @Summary List skills for the test builder
// @Description Skills with the size of their question pool. Public.
// @Tags Skills
// @Produce json
// @Success 200 {array} dto.SkillSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /skills [get]
func (c *SkillTestController) ListSkills(ctx *gin.Context) {
	skills, err := c.skillService.ListSkills(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, err, "ListSkills")
		return
	}
	ctx.JSON(http.StatusOK, skills)
}

// CreateAttempt godoc
// @Summary Create a skill-test attempt
// @Description Samples totalQuestions questions from the selected skills and freezes them into a new attempt. Free users are limited to a fixed number of attempts.
// @Tags Skill Test
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSkillTestRequest true "Test configuration"
// @Success 201 {object} dto.CreateSkillTestResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid configuration or not enough questions"
// @Failure 403 {object} dto.ErrorResponse "Free attempt limit reached"
// @Failure 404 {object} dto.ErrorResponse "Unknown skill"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /skill-test/create [post]
func (c *SkillTestController) CreateAttempt(ctx *gin.Context) {
	var req dto.CreateSkillTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "CreateAttempt")
		return
	}

	userID := middleware.UserID(ctx)
	log.Info().Str("userID", userID).Int("totalQuestions", req.TotalQuestions).Interface("skills", req.Skills).Msg("Create skill test requested")

	resp, err := c.skillTestService.CreateAttempt(ctx.Request.Context(), userID, req)
	if err != nil {
		controller.RespondError(ctx, err, "CreateAttempt")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAttempt godoc
// @Summary Get an attempt
// @Description The frozen question snapshot and saved progress. Correct answers are never included.
// @Tags Skill Test
// @Security BearerAuth
// @Produce json
// @Param attemptId query string true "Attempt ID"
// @Success 200 {object} dto.AttemptViewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /skill-test [get]
func (c *SkillTestController) GetAttempt(ctx *gin.Context) {
	id, ok := controller.ParseAttemptID(ctx, ctx.Query("attemptId"))
	if !ok {
		return
	}
	view, err := c.skillTestService.GetAttempt(ctx.Request.Context(), middleware.UserID(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetAttempt")
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// StartAttempt godoc
// @Summary Start an attempt
// @Description Starts the attempt clock. Calling it again returns the running attempt unchanged.
// @Tags Skill Test
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AttemptRefRequest true "Attempt reference"
// @Success 200 {object} dto.AttemptViewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /skill-test/start [post]
func (c *SkillTestController) StartAttempt(ctx *gin.Context) {
	var req dto.AttemptRefRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "StartAttempt")
		return
	}
	id, ok := controller.ParseAttemptID(ctx, req.AttemptID)
	if !ok {
		return
	}
	view, err := c.skillTestService.StartAttempt(ctx.Request.Context(), middleware.UserID(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err, "StartAttempt")
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// SaveProgress godoc
// @Summary Save in-progress answers
// @Description Stores answers, locked questions and the tab-switch count so an attempt can be resumed. Locks and the tab-switch count never decrease.
// @Tags Skill Test
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SaveProgressRequest true "Progress snapshot"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Malformed progress"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /skill-test/progress [post]
func (c *SkillTestController) SaveProgress(ctx *gin.Context) {
	var req dto.SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "SaveProgress")
		return
	}
	if err := c.skillTestService.SaveProgress(ctx.Request.Context(), middleware.UserID(ctx), req); err != nil {
		controller.RespondError(ctx, err, "SaveProgress")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Submit godoc
// @Summary Submit an attempt for scoring
// @Description Scores the answers against the frozen snapshot and finalizes the attempt. Only the first submission is accepted.
// @Tags Skill Test
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SubmitSkillTestRequest true "Answers and submit reason"
// @Success 200 {object} dto.SkillTestResultDTO
// @Failure 400 {object} dto.ErrorResponse "Malformed submission"
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized or expired"
// @Router /skill-test/submit [post]
func (c *SkillTestController) Submit(ctx *gin.Context) {
	var req dto.SubmitSkillTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "Submit")
		return
	}
	result, err := c.scoringService.Submit(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err, "Submit")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Forfeit godoc
// @Summary Forfeit an attempt
// @Description Abandons the attempt without scoring. It still counts toward the free attempt limit.
// @Tags Skill Test
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.AttemptRefRequest true "Attempt reference"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /skill-test/forfeit [post]
func (c *SkillTestController) Forfeit(ctx *gin.Context) {
	var req dto.AttemptRefRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "Forfeit")
		return
	}
	id, ok := controller.ParseAttemptID(ctx, req.AttemptID)
	if !ok {
		return
	}
	if err := c.skillTestService.ForfeitAttempt(ctx.Request.Context(), middleware.UserID(ctx), id); err != nil {
		controller.RespondError(ctx, err, "Forfeit")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AttemptsCount godoc
// @Summary Attempts used against the free limit
// @Tags Skill Test
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.AttemptsCountDTO
// @Router /skill-test/attempts-count [get]
func (c *SkillTestController) AttemptsCount(ctx *gin.Context) {
	count, err := c.skillTestService.AttemptsCount(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "AttemptsCount")
		return
	}
	ctx.JSON(http.StatusOK, count)
}

// History godoc
// @Summary List the caller's attempts
// @Tags Skill Test
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.AttemptSummaryDTO
// @Router /skill-test/history [get]
func (c *SkillTestController) History(ctx *gin.Context) {
	history, err := c.skillTestService.History(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "History")
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// Review godoc
// @Summary Review a finished attempt
// @Description Reveals correct answers of a submitted or forfeited attempt. With explain=true, wrong and unanswered questions get an AI explanation.
// @Tags Skill Test
// @Security BearerAuth
// @Produce json
// @Param attemptId query string true "Attempt ID"
// @Param explain query bool false "Add AI explanations"
// @Success 200 {object} dto.AttemptReviewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not finalized yet"
// @Router /skill-test/review [get]
func (c *SkillTestController) Review(ctx *gin.Context) {
	id, ok := controller.ParseAttemptID(ctx, ctx.Query("attemptId"))
	if !ok {
		return
	}
	explain, _ := strconv.ParseBool(ctx.DefaultQuery("explain", "false"))

	review, err := c.reviewService.Review(ctx.Request.Context(), middleware.UserID(ctx), id, explain)
	if err != nil {
		controller.RespondError(ctx, err, "Review")
		return
	}
	ctx.JSON(http.StatusOK, review)
}
