package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/response"
)

type curriculumService interface {
	ListTemplates(ctx context.Context, filter models.CurriculumTemplateFilter) ([]models.CurriculumTemplate, error)
	GetTemplate(ctx context.Context, id string) (*dto.TemplateDetail, error)
	CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest, actor models.AuditActor) (*models.CurriculumTemplate, error)
	UpdateTemplate(ctx context.Context, id string, req dto.UpdateTemplateRequest) (*models.CurriculumTemplate, error)
	DeactivateTemplate(ctx context.Context, id string) error
	ListItems(ctx context.Context, templateID string) ([]models.CurriculumItem, error)
	GetItem(ctx context.Context, id string) (*models.CurriculumItem, error)
	CreateItem(ctx context.Context, templateID string, req dto.CurriculumItemRequest) (*models.CurriculumItem, error)
	UpdateItem(ctx context.Context, id string, req dto.CurriculumItemRequest) (*models.CurriculumItem, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, req dto.TimeSlotRequest) (*models.TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*models.TimeSlot, error)
	DeactivateTimeSlot(ctx context.Context, id string) error
}

// CurriculumHandler manages templates, their items and the time slots of a school day.
type CurriculumHandler struct {
	service curriculumService
}

// NewCurriculumHandler constructs the handler.
func NewCurriculumHandler(service curriculumService) *CurriculumHandler {
	return &CurriculumHandler{service: service}
}

// ListTemplates godoc
// @Summary List curriculum templates
// @Tags Curriculum
// @Produce json
// @Param age_group query string false "Age group"
// @Param subject_area query string false "Subject area"
// @Param include_inactive query bool false "Include deactivated templates"
// @Success 200 {object} response.Envelope
// @Router /curriculum/templates [get]
func (h *CurriculumHandler) ListTemplates(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	filter := models.CurriculumTemplateFilter{
		AgeGroup:        c.Query("age_group"),
		SubjectArea:     c.Query("subject_area"),
		IncludeInactive: includeInactive,
	}
	templates, err := h.service.ListTemplates(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// GetTemplate godoc
// @Summary Get curriculum template with its items
// @Tags Curriculum
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /curriculum/templates/{id} [get]
func (h *CurriculumHandler) GetTemplate(c *gin.Context) {
	detail, err := h.service.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// CreateTemplate godoc
// @Summary Create curriculum template
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.CreateTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /curriculum/templates [post]
func (h *CurriculumHandler) CreateTemplate(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid template payload"))
		return
	}
	tpl, err := h.service.CreateTemplate(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// UpdateTemplate godoc
// @Summary Update curriculum template
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.UpdateTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Router /curriculum/templates/{id} [put]
func (h *CurriculumHandler) UpdateTemplate(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid template payload"))
		return
	}
	tpl, err := h.service.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// DeactivateTemplate godoc
// @Summary Deactivate curriculum template
// @Tags Curriculum
// @Param id path string true "Template ID"
// @Success 204
// @Router /curriculum/templates/{id} [delete]
func (h *CurriculumHandler) DeactivateTemplate(c *gin.Context) {
	if err := h.service.DeactivateTemplate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListItems godoc
// @Summary List items of a template
// @Tags Curriculum
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /curriculum/templates/{id}/items [get]
func (h *CurriculumHandler) ListItems(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetItem godoc
// @Summary Get curriculum item
// @Tags Curriculum
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /curriculum/items/{id} [get]
func (h *CurriculumHandler) GetItem(c *gin.Context) {
	item, err := h.service.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// CreateItem godoc
// @Summary Add an item to a template
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.CurriculumItemRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Router /curriculum/templates/{id}/items [post]
func (h *CurriculumHandler) CreateItem(c *gin.Context) {
	var req dto.CurriculumItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid item payload"))
		return
	}
	item, err := h.service.CreateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateItem godoc
// @Summary Update curriculum item
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body dto.CurriculumItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Router /curriculum/items/{id} [put]
func (h *CurriculumHandler) UpdateItem(c *gin.Context) {
	var req dto.CurriculumItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid item payload"))
		return
	}
	item, err := h.service.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ListTimeSlots godoc
// @Summary List active time slots
// @Tags Curriculum
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /curriculum/time-slots [get]
func (h *CurriculumHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// CreateTimeSlot godoc
// @Summary Create time slot
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.TimeSlotRequest true "Time slot payload"
// @Success 201 {object} response.Envelope
// @Router /curriculum/time-slots [post]
func (h *CurriculumHandler) CreateTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid time slot payload"))
		return
	}
	slot, err := h.service.CreateTimeSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateTimeSlot godoc
// @Summary Update time slot
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Time slot ID"
// @Param payload body dto.TimeSlotRequest true "Time slot payload"
// @Success 200 {object} response.Envelope
// @Router /curriculum/time-slots/{id} [put]
func (h *CurriculumHandler) UpdateTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid time slot payload"))
		return
	}
	slot, err := h.service.UpdateTimeSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// DeactivateTimeSlot godoc
// @Summary Deactivate time slot
// @Tags Curriculum
// @Param id path string true "Time slot ID"
// @Success 204
// @Router /curriculum/time-slots/{id} [delete]
func (h *CurriculumHandler) DeactivateTimeSlot(c *gin.Context) {
	if err := h.service.DeactivateTimeSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
