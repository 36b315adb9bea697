package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

var exportJobCols = []string{"id", "type", "params", "status", "progress", "result_url", "file_path", "error_message", "created_by", "created_at", "finished_at"}

func TestExportJobRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO export_jobs")).
		WithArgs(sqlmock.AnyArg(), "execution_log", sqlmock.AnyArg(), "QUEUED", 0, nil, nil, nil, "teacher-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ExportJob{
		Type:      models.ExportTypeExecutionLog,
		Params:    models.ExportParams{Format: "csv", ClassID: "class-1", From: "2025-01-01", To: "2025-01-31"},
		CreatedBy: "teacher-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))

	rows := sqlmock.NewRows(exportJobCols).
		AddRow(job.ID, "execution_log", `{"format":"csv","class_id":"class-1","from":"2025-01-01","to":"2025-01-31"}`, "QUEUED", 0, nil, nil, nil, "teacher-1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE id = $1")).WithArgs(job.ID).WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "class-1", fetched.Params.ClassID)
	assert.Equal(t, models.ExportStatusQueued, fetched.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	now := time.Now()
	status := models.ExportStatusFinished
	progress := 100
	path := "execution_log/job-1.csv"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, progress = $2, file_path = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, path, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateExportJobParams{Status: &status, Progress: &progress, FilePath: &path, FinishedAt: &now})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateExportJobParams{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	cutoff := time.Now()
	rows := sqlmock.NewRows(exportJobCols).
		AddRow("job-1", "curriculum_plan", `{"format":"pdf","curriculum_id":"tpl-1"}`, "FINISHED", 100, nil, "curriculum_plan/job-1.pdf", nil, "admin-1", cutoff, cutoff)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'FINISHED' AND file_path IS NOT NULL AND finished_at < $1")).
		WithArgs(cutoff, 50).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET file_path = NULL")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].FilePath)
	require.NoError(t, repo.ClearFile(context.Background(), "job-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "admin-1", models.AuditActionOptionCreate, "config_field", "f-1", sqlmock.AnyArg(), sqlmock.AnyArg(), "10.0.0.1", "curl", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateAuditLog(context.Background(), &models.AuditLog{
		UserID:     strPtr("admin-1"),
		Action:     models.AuditActionOptionCreate,
		Resource:   "config_field",
		ResourceID: strPtr("f-1"),
		NewValues:  []byte(`{"label":"Happy"}`),
		IPAddress:  "10.0.0.1",
		UserAgent:  "curl",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
