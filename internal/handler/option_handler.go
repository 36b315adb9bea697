package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/response"
)

type optionService interface {
	ListOptions(ctx context.Context, category string) ([]models.ConfigField, error)
	ListCategories(ctx context.Context) ([]models.OptionCategory, error)
	GetOption(ctx context.Context, id string) (*models.ConfigField, error)
	CreateOption(ctx context.Context, req dto.CreateOptionRequest, actor models.AuditActor) (string, error)
	UpdateOption(ctx context.Context, id string, req dto.UpdateOptionRequest, actor models.AuditActor) (*models.ConfigField, error)
	DeactivateOption(ctx context.Context, id string, actor models.AuditActor) error
}

// OptionHandler exposes the option catalog.
type OptionHandler struct {
	service optionService
}

// NewOptionHandler builds a new handler.
func NewOptionHandler(service optionService) *OptionHandler {
	return &OptionHandler{service: service}
}

// List godoc
// @Summary List active options of a category
// @Tags Options
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} response.Envelope
// @Router /options/{category} [get]
func (h *OptionHandler) List(c *gin.Context) {
	category := c.Param("category")
	options, err := h.service.ListOptions(c.Request.Context(), category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, map[string]interface{}{"category": category, "count": len(options)})
}

// Categories godoc
// @Summary List option categories
// @Tags Options
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /options [get]
func (h *OptionHandler) Categories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Get godoc
// @Summary Get option
// @Tags Options
// @Produce json
// @Param id path string true "Option ID"
// @Success 200 {object} response.Envelope
// @Router /options/item/{id} [get]
func (h *OptionHandler) Get(c *gin.Context) {
	option, err := h.service.GetOption(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, option, nil)
}

// Create godoc
// @Summary Create option
// @Tags Options
// @Accept json
// @Produce json
// @Param payload body dto.CreateOptionRequest true "Option payload"
// @Success 201 {object} response.Envelope
// @Router /options [post]
func (h *OptionHandler) Create(c *gin.Context) {
	var req dto.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid option payload"))
		return
	}
	id, err := h.service.CreateOption(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.OptionIDResponse{ID: id})
}

// Update godoc
// @Summary Update option
// @Tags Options
// @Accept json
// @Produce json
// @Param id path string true "Option ID"
// @Param payload body dto.UpdateOptionRequest true "Option payload"
// @Success 200 {object} response.Envelope
// @Router /options/item/{id} [put]
func (h *OptionHandler) Update(c *gin.Context) {
	var req dto.UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid option payload"))
		return
	}
	option, err := h.service.UpdateOption(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, option, nil)
}

// Deactivate godoc
// @Summary Deactivate option
// @Tags Options
// @Param id path string true "Option ID"
// @Success 204
// @Router /options/item/{id} [delete]
func (h *OptionHandler) Deactivate(c *gin.Context) {
	if err := h.service.DeactivateOption(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
