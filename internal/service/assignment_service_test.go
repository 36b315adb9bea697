package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type assignmentRepoStub struct {
	rows    []models.CurriculumAssignment
	failFor map[string]error
	seq     int
}

func (s *assignmentRepoStub) Create(ctx context.Context, assignment *models.CurriculumAssignment) error {
	if err := s.failFor[assignment.ClassID]; err != nil {
		return err
	}
	s.seq++
	assignment.ID = fmt.Sprintf("asg-%d", s.seq)
	assignment.IsActive = true
	s.rows = append(s.rows, *assignment)
	return nil
}

func (s *assignmentRepoStub) ListActiveByClass(ctx context.Context, classID string) ([]models.CurriculumAssignmentDetail, error) {
	out := []models.CurriculumAssignmentDetail{}
	for _, row := range s.rows {
		if row.ClassID == classID && row.IsActive {
			out = append(out, models.CurriculumAssignmentDetail{CurriculumAssignment: row})
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) Deactivate(ctx context.Context, id string) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("deactivate curriculum assignment: %w", sql.ErrNoRows)
}

func newAssignmentServiceForTest() (*AssignmentService, *assignmentRepoStub, *templateRepoStub, *auditStub) {
	repo := &assignmentRepoStub{failFor: map[string]error{}}
	templates := newTemplateRepoStub()
	templates.add(models.CurriculumTemplate{ID: "tpl", Name: "Colors", IsActive: true})
	audit := &auditStub{}
	return NewAssignmentService(repo, templates, audit, nil, nil), repo, templates, audit
}

func TestAssignTemplateAllSucceed(t *testing.T) {
	svc, repo, _, audit := newAssignmentServiceForTest()

	resp, err := svc.AssignTemplate(context.Background(), "tpl", dto.AssignTemplateRequest{
		ClassIDs:  []string{"c1", "c2", "c1"},
		StartDate: "2025-01-06",
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, repo.rows, 2)
	assert.Equal(t, "admin-1", repo.rows[0].AssignedBy)
	assert.Equal(t, "2025-01-06", formatDate(repo.rows[0].StartDate))
	assert.Nil(t, repo.rows[0].EndDate)
	assert.Len(t, audit.logs, 2)
	assert.Equal(t, models.AuditActionTemplateAssign, audit.logs[0].Action)
}

func TestAssignTemplatePartialFailureKeepsCommittedRows(t *testing.T) {
	svc, repo, _, audit := newAssignmentServiceForTest()
	repo.failFor["c2"] = errors.New(`insert or update on table "curriculum_assignments" violates foreign key constraint`)

	resp, err := svc.AssignTemplate(context.Background(), "tpl", dto.AssignTemplateRequest{
		ClassIDs:  []string{"c1", "c2", "c3"},
		StartDate: "2025-01-06",
	}, admin)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPartialFailure))
	require.NotNil(t, resp)

	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 3)
	assert.NotEmpty(t, resp.Results[0].AssignmentID)
	assert.Contains(t, resp.Results[1].Error, "foreign key")
	assert.Empty(t, resp.Results[1].AssignmentID)
	assert.NotEmpty(t, resp.Results[2].AssignmentID)

	require.Len(t, repo.rows, 2)
	assert.Equal(t, "c1", repo.rows[0].ClassID)
	assert.Equal(t, "c3", repo.rows[1].ClassID)
	assert.Len(t, audit.logs, 2)
}

func TestAssignTemplateAllFail(t *testing.T) {
	svc, repo, _, _ := newAssignmentServiceForTest()
	repo.failFor["c1"] = errors.New("connection reset")

	resp, err := svc.AssignTemplate(context.Background(), "tpl", dto.AssignTemplateRequest{ClassIDs: []string{"c1"}, StartDate: "2025-01-06"}, admin)
	assert.Nil(t, resp)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOperation.Code, appErr.Code)
	assert.Equal(t, "connection reset", appErr.Detail)
}

func TestAssignTemplateValidation(t *testing.T) {
	svc, _, templates, _ := newAssignmentServiceForTest()
	templates.add(models.CurriculumTemplate{ID: "old", Name: "Retired", IsActive: false})
	ctx := context.Background()

	end := "2025-01-01"
	_, err := svc.AssignTemplate(ctx, "tpl", dto.AssignTemplateRequest{ClassIDs: []string{"c1"}, StartDate: "2025-01-06", EndDate: &end}, admin)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.AssignTemplate(ctx, "tpl", dto.AssignTemplateRequest{ClassIDs: []string{" "}, StartDate: "2025-01-06"}, admin)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.AssignTemplate(ctx, "tpl", dto.AssignTemplateRequest{ClassIDs: []string{"c1"}, StartDate: "06/01/2025"}, admin)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.AssignTemplate(ctx, "old", dto.AssignTemplateRequest{ClassIDs: []string{"c1"}, StartDate: "2025-01-06"}, admin)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.AssignTemplate(ctx, "missing", dto.AssignTemplateRequest{ClassIDs: []string{"c1"}, StartDate: "2025-01-06"}, admin)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDeactivateAssignment(t *testing.T) {
	svc, _, _, audit := newAssignmentServiceForTest()
	ctx := context.Background()

	resp, err := svc.AssignTemplate(ctx, "tpl", dto.AssignTemplateRequest{ClassIDs: []string{"c1"}, StartDate: "2025-01-06"}, admin)
	require.NoError(t, err)

	listed, err := svc.ListAssignments(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.DeactivateAssignment(ctx, resp.Results[0].AssignmentID, admin))
	listed, err = svc.ListAssignments(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, models.AuditActionAssignmentDeactivate, audit.logs[len(audit.logs)-1].Action)

	err = svc.DeactivateAssignment(ctx, "missing", admin)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
