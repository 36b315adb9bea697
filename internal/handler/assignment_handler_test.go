package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type assignmentServiceMock struct {
	resp *dto.AssignTemplateResponse
	err  error
}

func (m *assignmentServiceMock) AssignTemplate(ctx context.Context, curriculumID string, req dto.AssignTemplateRequest, actor models.AuditActor) (*dto.AssignTemplateResponse, error) {
	return m.resp, m.err
}

func (m *assignmentServiceMock) ListAssignments(ctx context.Context, classID string) ([]models.CurriculumAssignmentDetail, error) {
	return []models.CurriculumAssignmentDetail{}, nil
}

func (m *assignmentServiceMock) DeactivateAssignment(ctx context.Context, id string, actor models.AuditActor) error {
	return m.err
}

func assignBody() []byte {
	body, _ := json.Marshal(dto.AssignTemplateRequest{ClassIDs: []string{"a", "b", "c"}, StartDate: "2025-01-06"})
	return body
}

func TestAssignmentHandlerPartialFailure(t *testing.T) {
	svc := &assignmentServiceMock{
		resp: &dto.AssignTemplateResponse{
			CurriculumID: "tpl-1",
			Succeeded:    2,
			Failed:       1,
			Results: []dto.AssignmentResult{
				{ClassID: "a", AssignmentID: "as-1"},
				{ClassID: "b", Error: "violates foreign key constraint"},
				{ClassID: "c", AssignmentID: "as-2"},
			},
		},
		err: appErrors.Clone(appErrors.ErrPartialFailure, "1 of 3 classes could not be assigned"),
	}
	c, w := jsonContext(http.MethodPost, "/curriculum/templates/tpl-1/assignments", assignBody())
	c.Params = gin.Params{{Key: "id", Value: "tpl-1"}}

	NewAssignmentHandler(svc).Assign(c)

	require.Equal(t, http.StatusMultiStatus, w.Code)
	var resp struct {
		Data  dto.AssignTemplateResponse `json:"data"`
		Error appErrors.Error            `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Succeeded)
	assert.Equal(t, "b", resp.Data.Results[1].ClassID)
	assert.Equal(t, "PARTIAL_FAILURE", resp.Error.Code)
}

func TestAssignmentHandlerSuccessAndFailure(t *testing.T) {
	svc := &assignmentServiceMock{resp: &dto.AssignTemplateResponse{CurriculumID: "tpl-1", Succeeded: 3}}
	c, w := jsonContext(http.MethodPost, "/curriculum/templates/tpl-1/assignments", assignBody())
	NewAssignmentHandler(svc).Assign(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	svc = &assignmentServiceMock{err: appErrors.Clone(appErrors.ErrOperation, "failed to assign template")}
	c, w = jsonContext(http.MethodPost, "/curriculum/templates/tpl-1/assignments", assignBody())
	NewAssignmentHandler(svc).Assign(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
