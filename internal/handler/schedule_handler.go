package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/response"
)

type schedulerService interface {
	DeriveDueItems(ctx context.Context, classID string, date time.Time) (*dto.DueItemsResponse, error)
	DeriveWeekAgenda(ctx context.Context, classID string, date time.Time) (*dto.WeekAgendaResponse, error)
}

type executionService interface {
	RecordExecution(ctx context.Context, req dto.RecordExecutionRequest, actor models.AuditActor) (string, error)
	QuickSetStatus(ctx context.Context, req dto.QuickStatusRequest, actor models.AuditActor) (string, error)
	ListExecutions(ctx context.Context, classID string, date time.Time) ([]models.CurriculumExecutionDetail, error)
}

// ScheduleHandler serves the daily curriculum of a class and records what happened.
type ScheduleHandler struct {
	scheduler  schedulerService
	executions executionService
	now        func() time.Time
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(scheduler schedulerService, executions executionService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler, executions: executions, now: time.Now}
}

// Due godoc
// @Summary Items due for a class on a date
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum/due [get]
func (h *ScheduleHandler) Due(c *gin.Context) {
	date, err := dateQuery(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	due, err := h.scheduler.DeriveDueItems(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, due, nil)
}

// Week godoc
// @Summary Week agenda of a class
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Param date query string false "Any date of the week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum/week [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	date, err := dateQuery(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	agenda, err := h.scheduler.DeriveWeekAgenda(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, agenda, nil)
}

// Executions godoc
// @Summary Executions recorded for a class on a date
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/curriculum/executions [get]
func (h *ScheduleHandler) Executions(c *gin.Context) {
	date, err := dateQuery(c, h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	executions, err := h.executions.ListExecutions(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, executions, nil)
}

// Record godoc
// @Summary Record the execution of a curriculum item
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.RecordExecutionRequest true "Execution payload"
// @Success 200 {object} response.Envelope
// @Router /curriculum/executions [post]
func (h *ScheduleHandler) Record(c *gin.Context) {
	var req dto.RecordExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid execution payload"))
		return
	}
	id, err := h.executions.RecordExecution(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ExecutionIDResponse{ID: id}, nil)
}

// QuickStatus godoc
// @Summary Set only the completion status of an execution
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.QuickStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /curriculum/executions/status [post]
func (h *ScheduleHandler) QuickStatus(c *gin.Context) {
	var req dto.QuickStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid status payload"))
		return
	}
	id, err := h.executions.QuickSetStatus(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ExecutionIDResponse{ID: id}, nil)
}
