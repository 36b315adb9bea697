package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
	"github.com/noah-isme/preschool-adp-api/pkg/response"
)

type assignmentService interface {
	AssignTemplate(ctx context.Context, curriculumID string, req dto.AssignTemplateRequest, actor models.AuditActor) (*dto.AssignTemplateResponse, error)
	ListAssignments(ctx context.Context, classID string) ([]models.CurriculumAssignmentDetail, error)
	DeactivateAssignment(ctx context.Context, id string, actor models.AuditActor) error
}

// AssignmentHandler links templates to classes.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Assign godoc
// @Summary Assign a template to classes
// @Description Classes are inserted one by one. When some of them fail the response is 207 with per-class results.
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.AssignTemplateRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Router /curriculum/templates/{id}/assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid assignment payload"))
		return
	}
	result, err := h.service.AssignTemplate(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		if result != nil && appErrors.Is(err, appErrors.ErrPartialFailure) {
			response.MultiStatus(c, result, err)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListForClass godoc
// @Summary List curriculum assignments of a class
// @Tags Curriculum
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum/assignments [get]
func (h *AssignmentHandler) ListForClass(c *gin.Context) {
	assignments, err := h.service.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Deactivate godoc
// @Summary End a curriculum assignment
// @Tags Curriculum
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /curriculum/assignments/{id} [delete]
func (h *AssignmentHandler) Deactivate(c *gin.Context) {
	if err := h.service.DeactivateAssignment(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
