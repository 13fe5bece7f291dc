package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/skilltest/internal/controller"
	"github.com/lshigami/skilltest/internal/dto"
	"github.com/lshigami/skilltest/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminSkillController struct {
	skillService    service.SkillService
	questionService service.QuestionService
	premiumService  service.PremiumService
}

func NewAdminSkillController(skills service.SkillService, questions service.QuestionService, premium service.PremiumService) *AdminSkillController {
	return &AdminSkillController{skillService: skills, questionService: questions, premiumService: premium}
}

// RegisterRoutes mounts the admin endpoints on a group already guarded by the
// admin role.
func (c *AdminSkillController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/skills", c.CreateSkill)
	group.GET("/questions/:id", c.GetQuestion)
	group.PUT("/questions/:id", c.UpdateQuestion)
	group.DELETE("/questions/:id", c.DeleteQuestion)
	group.POST("/subscriptions", c.GrantPremium)
}

// CreateSkill godoc
// @Summary (Admin) Create a skill with its question pool
// @Tags Admin - Question Bank
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param skill_data body dto.SkillCreateDTO true "Skill and questions"
// @Success 201 {object} dto.SkillResponseDTO "Skill created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/skills [post]
func (c *AdminSkillController) CreateSkill(ctx *gin.Context) {
	var req dto.SkillCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "Admin CreateSkill")
		return
	}

	resp, err := c.skillService.CreateSkill(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err, "Admin CreateSkill")
		return
	}
	log.Info().Uint("skillID", resp.ID).Int("questionCount", len(resp.Questions)).Msg("Admin created skill")
	ctx.JSON(http.StatusCreated, resp)
}

// GetQuestion godoc
// @Summary (Admin) Get a question with its correct answer
// @Tags Admin - Question Bank
// @Security BearerAuth
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid question ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [get]
func (c *AdminSkillController) GetQuestion(ctx *gin.Context) {
	id, ok := parseQuestionID(ctx)
	if !ok {
		return
	}
	resp, err := c.questionService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "Admin GetQuestion")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question
// @Description Existing attempts keep their frozen copy of the question.
// @Tags Admin - Question Bank
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param question_data body dto.QuestionUpdateDTO true "New question content"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [put]
func (c *AdminSkillController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseQuestionID(ctx)
	if !ok {
		return
	}
	var req dto.QuestionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "Admin UpdateQuestion")
		return
	}
	resp, err := c.questionService.UpdateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "Admin UpdateQuestion")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Tags Admin - Question Bank
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid question ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id} [delete]
func (c *AdminSkillController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseQuestionID(ctx)
	if !ok {
		return
	}
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err, "Admin DeleteQuestion")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GrantPremium godoc
// @Summary (Admin) Grant premium until a date
// @Description Called by the payment webhook relay or by an admin. Premium users have no attempt limit.
// @Tags Admin - Subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param grant body dto.GrantPremiumDTO true "Grant"
// @Success 200 {object} model.Subscription
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/subscriptions [post]
func (c *AdminSkillController) GrantPremium(ctx *gin.Context) {
	var req dto.GrantPremiumDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err, "Admin GrantPremium")
		return
	}
	source := req.Source
	if source == "" {
		source = "admin"
	}
	sub, err := c.premiumService.Grant(ctx.Request.Context(), req.UserID, req.ActiveUntil, source)
	if err != nil {
		controller.RespondError(ctx, err, "Admin GrantPremium")
		return
	}
	ctx.JSON(http.StatusOK, sub)
}

func parseQuestionID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question ID format", Code: "INVALID_QUESTION_ID"})
		return 0, false
	}
	return uint(id), true
}
