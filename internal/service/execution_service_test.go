package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type executionRepoStub struct {
	rows    map[string]*models.CurriculumExecution
	seq     int
	creates int
	updates int
	// raceWith is inserted by a "concurrent" request right before our Create.
	raceWith *models.CurriculumExecution
}

func newExecutionRepoStub() *executionRepoStub {
	return &executionRepoStub{rows: map[string]*models.CurriculumExecution{}}
}

func executionRowKey(itemID, classID string, date time.Time) string {
	return itemID + "|" + classID + "|" + date.Format("2006-01-02")
}

func (s *executionRepoStub) FindByKey(ctx context.Context, itemID, classID string, date time.Time) (*models.CurriculumExecution, error) {
	row, ok := s.rows[executionRowKey(itemID, classID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (s *executionRepoStub) Create(ctx context.Context, execution *models.CurriculumExecution) error {
	key := executionRowKey(execution.CurriculumItemID, execution.ClassID, execution.ExecutionDate)
	if s.raceWith != nil {
		s.rows[key] = s.raceWith
		s.raceWith = nil
	}
	if _, exists := s.rows[key]; exists {
		return fmt.Errorf("create curriculum execution: %w", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	}
	s.seq++
	s.creates++
	execution.ID = fmt.Sprintf("exec-%d", s.seq)
	clone := *execution
	s.rows[key] = &clone
	return nil
}

func (s *executionRepoStub) Update(ctx context.Context, execution *models.CurriculumExecution) error {
	key := executionRowKey(execution.CurriculumItemID, execution.ClassID, execution.ExecutionDate)
	if _, ok := s.rows[key]; !ok {
		return sql.ErrNoRows
	}
	s.updates++
	clone := *execution
	s.rows[key] = &clone
	return nil
}

func (s *executionRepoStub) List(ctx context.Context, filter models.ExecutionFilter) ([]models.CurriculumExecutionDetail, error) {
	out := []models.CurriculumExecutionDetail{}
	for _, row := range s.rows {
		if row.ClassID == filter.ClassID && !row.ExecutionDate.Before(filter.From) && !row.ExecutionDate.After(filter.To) {
			out = append(out, models.CurriculumExecutionDetail{CurriculumExecution: *row})
		}
	}
	return out, nil
}

type clock struct{ now time.Time }

func (c *clock) tick(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

var teacher = models.AuditActor{UserID: "teacher-1"}

func newExecutionServiceForTest() (*ExecutionService, *executionRepoStub, *clock) {
	items := newItemRepoStub()
	items.items["item-1"] = &models.CurriculumItem{ID: "item-1", CurriculumID: "tpl", Title: "Paint"}
	repo := newExecutionRepoStub()
	svc := NewExecutionService(repo, items, NewMetricsService(), nil, nil)
	c := &clock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time { return c.now }
	return svc, repo, c
}

func TestRecordExecutionInProgressThenCompleted(t *testing.T) {
	svc, repo, c := newExecutionServiceForTest()
	ctx := context.Background()

	first, err := svc.RecordExecution(ctx, dto.RecordExecutionRequest{
		CurriculumItemID: "item-1",
		ClassID:          "class-1",
		ExecutionDate:    "2025-01-01",
		CompletionStatus: models.StatusInProgress,
	}, teacher)
	require.NoError(t, err)
	started := c.now

	c.tick(25 * time.Minute)
	second, err := svc.RecordExecution(ctx, dto.RecordExecutionRequest{
		CurriculumItemID:  "item-1",
		ClassID:           "class-1",
		ExecutionDate:     "2025-01-01",
		CompletionStatus:  models.StatusCompleted,
		StudentEngagement: models.EngagementHigh,
	}, teacher)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, repo.rows, 1)
	row := repo.rows[executionRowKey("item-1", "class-1", day("2025-01-01"))]
	assert.Equal(t, models.StatusCompleted, row.CompletionStatus)
	assert.Equal(t, models.EngagementHigh, row.StudentEngagement)
	require.NotNil(t, row.ActualStartTime)
	assert.True(t, row.ActualStartTime.Equal(started))
	require.NotNil(t, row.ActualEndTime)
	assert.True(t, row.ActualEndTime.Equal(c.now))
	assert.Equal(t, "teacher-1", row.TeacherID)
}

func TestRecordExecutionAcceptsBackwardTransition(t *testing.T) {
	svc, repo, c := newExecutionServiceForTest()
	ctx := context.Background()
	req := dto.QuickStatusRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusCompleted}

	_, err := svc.QuickSetStatus(ctx, req, teacher)
	require.NoError(t, err)
	ended := c.now

	c.tick(time.Hour)
	req.CompletionStatus = models.StatusPlanned
	_, err = svc.QuickSetStatus(ctx, req, teacher)
	require.NoError(t, err)

	row := repo.rows[executionRowKey("item-1", "class-1", day("2025-01-01"))]
	assert.Equal(t, models.StatusPlanned, row.CompletionStatus)
	assert.True(t, row.ActualEndTime.Equal(ended))
	assert.True(t, row.ActualStartTime.Equal(ended))
}

func TestQuickSetStatusDefaultsAndPreserves(t *testing.T) {
	svc, repo, _ := newExecutionServiceForTest()
	ctx := context.Background()

	_, err := svc.QuickSetStatus(ctx, dto.QuickStatusRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusPlanned}, teacher)
	require.NoError(t, err)
	key := executionRowKey("item-1", "class-1", day("2025-01-01"))
	assert.Equal(t, models.EngagementMedium, repo.rows[key].StudentEngagement)
	assert.Nil(t, repo.rows[key].ActualStartTime)

	notes := "loved the colours"
	_, err = svc.RecordExecution(ctx, dto.RecordExecutionRequest{
		CurriculumItemID:  "item-1",
		ClassID:           "class-1",
		ExecutionDate:     "2025-01-01",
		CompletionStatus:  models.StatusInProgress,
		StudentEngagement: models.EngagementLow,
		Notes:             &notes,
		MaterialsUsed:     []string{"paper"},
	}, teacher)
	require.NoError(t, err)

	_, err = svc.QuickSetStatus(ctx, dto.QuickStatusRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusSkipped}, teacher)
	require.NoError(t, err)
	row := repo.rows[key]
	assert.Equal(t, models.StatusSkipped, row.CompletionStatus)
	assert.Equal(t, models.EngagementLow, row.StudentEngagement)
	assert.Equal(t, "loved the colours", row.Notes)
	assert.Equal(t, []string{"paper"}, []string(row.MaterialsUsed))
}

func TestRecordExecutionConcurrentInsert(t *testing.T) {
	svc, repo, _ := newExecutionServiceForTest()
	repo.raceWith = &models.CurriculumExecution{
		ID:                "exec-winner",
		CurriculumItemID:  "item-1",
		ClassID:           "class-1",
		ExecutionDate:     day("2025-01-01"),
		CompletionStatus:  models.StatusInProgress,
		StudentEngagement: models.EngagementHigh,
	}

	id, err := svc.QuickSetStatus(context.Background(), dto.QuickStatusRequest{
		CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusCompleted,
	}, teacher)
	require.NoError(t, err)
	assert.Equal(t, "exec-winner", id)
	assert.Equal(t, 0, repo.creates)
	assert.Equal(t, 1, repo.updates)

	row := repo.rows[executionRowKey("item-1", "class-1", day("2025-01-01"))]
	assert.Equal(t, models.StatusCompleted, row.CompletionStatus)
	assert.Equal(t, models.EngagementHigh, row.StudentEngagement)
}

func TestRecordExecutionValidation(t *testing.T) {
	svc, _, _ := newExecutionServiceForTest()
	ctx := context.Background()

	_, err := svc.RecordExecution(ctx, dto.RecordExecutionRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: "done"}, teacher)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.RecordExecution(ctx, dto.RecordExecutionRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusCompleted, Photos: []string{"not a url"}}, teacher)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.RecordExecution(ctx, dto.RecordExecutionRequest{CurriculumItemID: "missing", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusCompleted}, teacher)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestListExecutions(t *testing.T) {
	svc, _, _ := newExecutionServiceForTest()
	ctx := context.Background()
	for _, date := range []string{"2025-01-01", "2025-01-02"} {
		_, err := svc.QuickSetStatus(ctx, dto.QuickStatusRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: date, CompletionStatus: models.StatusCompleted}, teacher)
		require.NoError(t, err)
	}

	today, err := svc.ListExecutions(ctx, "class-1", day("2025-01-02"))
	require.NoError(t, err)
	assert.Len(t, today, 1)

	all, err := svc.ListExecutionRange(ctx, "class-1", day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListExecutionRange(ctx, "class-1", day("2025-01-31"), day("2025-01-01"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRecordExecutionStoreFailure(t *testing.T) {
	items := newItemRepoStub()
	items.items["item-1"] = &models.CurriculumItem{ID: "item-1"}
	svc := NewExecutionService(failingExecutionRepo{}, items, nil, nil, nil)

	_, err := svc.QuickSetStatus(context.Background(), dto.QuickStatusRequest{CurriculumItemID: "item-1", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusCompleted}, teacher)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOperation.Code, appErr.Code)
	assert.Equal(t, "permission denied for table curriculum_executions", appErr.Detail)
}

type failingExecutionRepo struct{}

func (failingExecutionRepo) FindByKey(ctx context.Context, itemID, classID string, date time.Time) (*models.CurriculumExecution, error) {
	return nil, errors.New("permission denied for table curriculum_executions")
}

func (failingExecutionRepo) Create(ctx context.Context, execution *models.CurriculumExecution) error {
	return nil
}

func (failingExecutionRepo) Update(ctx context.Context, execution *models.CurriculumExecution) error {
	return nil
}

func (failingExecutionRepo) List(ctx context.Context, filter models.ExecutionFilter) ([]models.CurriculumExecutionDetail, error) {
	return nil, nil
}

type uuidItemFinder struct{}

func (uuidItemFinder) FindByID(ctx context.Context, id string) (*models.CurriculumItem, error) {
	return nil, fmt.Errorf("find curriculum item: %w", &pq.Error{Code: "22P02", Message: fmt.Sprintf("invalid input syntax for type uuid: %q", id)})
}

func TestRecordExecutionMalformedItemIDIsNotFound(t *testing.T) {
	repo := newExecutionRepoStub()
	svc := NewExecutionService(repo, uuidItemFinder{}, nil, nil, nil)

	_, err := svc.RecordExecution(context.Background(), dto.RecordExecutionRequest{CurriculumItemID: "abc", ClassID: "class-1", ExecutionDate: "2025-01-01", CompletionStatus: models.StatusCompleted}, teacher)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
	assert.Zero(t, repo.creates)
}
