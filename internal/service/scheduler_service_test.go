package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/config"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type scheduledItemsStub struct {
	rows []models.ScheduledItem
	err  error
}

func (s *scheduledItemsStub) ListForClass(ctx context.Context, classID string, date time.Time) ([]models.ScheduledItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.ScheduledItem{}
	for _, row := range s.rows {
		if !row.AssignmentStartDate.After(date) {
			out = append(out, row)
		}
	}
	return out, nil
}

func day(raw string) time.Time {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return d
}

func scheduled(id string, week, weekday int, slotOrder *int, start string) models.ScheduledItem {
	return models.ScheduledItem{
		CurriculumItem:      models.CurriculumItem{ID: id, Title: id, WeekNumber: week, DayNumber: weekday},
		AssignmentID:        "asg-1",
		AssignmentStartDate: day(start),
		TimeSlotSortOrder:   slotOrder,
	}
}

func TestDeriveDueItemsCalendarExample(t *testing.T) {
	repo := &scheduledItemsStub{rows: []models.ScheduledItem{scheduled("paint", 1, 3, nil, "2024-12-30")}}
	svc := NewSchedulerService(repo, config.WeekModeCalendar, nil, nil)

	due, err := svc.DeriveDueItems(context.Background(), "class-1", day("2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 3, due.DayNumber)
	assert.Equal(t, 1, due.WeekNumber)
	require.Len(t, due.Items, 1)
	assert.Equal(t, "paint", due.Items[0].ID)

	next, err := svc.DeriveDueItems(context.Background(), "class-1", day("2025-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 4, next.DayNumber)
	assert.Empty(t, next.Items)
}

func TestDeriveDueItemsKeepsEarlierWeeks(t *testing.T) {
	repo := &scheduledItemsStub{rows: []models.ScheduledItem{
		scheduled("week1", 1, 3, nil, "2024-12-30"),
		scheduled("week3", 3, 3, nil, "2024-12-30"),
		scheduled("week2", 2, 3, nil, "2024-12-30"),
	}}
	svc := NewSchedulerService(repo, config.WeekModeCalendar, nil, nil)

	// 2025-01-08 is the second Wednesday of the month
	due, err := svc.DeriveDueItems(context.Background(), "class-1", day("2025-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 2, due.WeekNumber)
	ids := []string{}
	for _, item := range due.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"week1", "week2"}, ids)
}

func TestDeriveDueItemsOrdering(t *testing.T) {
	repo := &scheduledItemsStub{rows: []models.ScheduledItem{
		scheduled("free-a", 1, 3, nil, "2024-12-30"),
		scheduled("snack", 1, 3, intPtr(2), "2024-12-30"),
		scheduled("free-b", 1, 3, nil, "2024-12-30"),
		scheduled("circle", 1, 3, intPtr(1), "2024-12-30"),
		scheduled("circle", 1, 3, intPtr(1), "2024-12-30"),
	}}
	svc := NewSchedulerService(repo, "", nil, nil)

	due, err := svc.DeriveDueItems(context.Background(), "class-1", day("2025-01-01"))
	require.NoError(t, err)
	ids := []string{}
	for _, item := range due.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"circle", "snack", "free-a", "free-b"}, ids)
}

func TestDeriveDueItemsAssignmentWeeks(t *testing.T) {
	ended := day("2025-01-10")
	finished := scheduled("finished", 1, 3, nil, "2025-01-01")
	finished.AssignmentEndDate = &ended
	repo := &scheduledItemsStub{rows: []models.ScheduledItem{
		scheduled("late-start", 2, 3, nil, "2025-01-08"),
		scheduled("early-start", 3, 3, nil, "2025-01-01"),
		finished,
	}}
	svc := NewSchedulerService(repo, config.WeekModeAssignment, nil, nil)
	assert.Equal(t, config.WeekModeAssignment, svc.WeekMode())

	// 2025-01-15: week 2 of the assignment starting 01-08, week 3 of the one starting 01-01
	due, err := svc.DeriveDueItems(context.Background(), "class-1", day("2025-01-15"))
	require.NoError(t, err)
	assert.Equal(t, 0, due.WeekNumber)
	assert.Equal(t, config.WeekModeAssignment, due.WeekMode)
	ids := []string{}
	for _, item := range due.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"late-start", "early-start"}, ids)
}

func TestDeriveWeekAgenda(t *testing.T) {
	repo := &scheduledItemsStub{rows: []models.ScheduledItem{
		scheduled("mon", 2, 1, nil, "2024-12-30"),
		scheduled("fri", 2, 5, nil, "2024-12-30"),
		scheduled("other-week", 1, 1, nil, "2024-12-30"),
	}}
	svc := NewSchedulerService(repo, config.WeekModeCalendar, nil, nil)

	agenda, err := svc.DeriveWeekAgenda(context.Background(), "class-1", day("2025-01-09"))
	require.NoError(t, err)
	assert.Equal(t, 2, agenda.WeekNumber)
	require.Len(t, agenda.Days, 7)
	require.Len(t, agenda.Days[1].Items, 1)
	assert.Equal(t, "mon", agenda.Days[1].Items[0].ID)
	require.Len(t, agenda.Days[5].Items, 1)
	assert.Empty(t, agenda.Days[0].Items)
}

func TestDeriveDueItemsErrors(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewSchedulerService(&scheduledItemsStub{err: errors.New("timeout")}, config.WeekModeCalendar, metrics, nil)

	_, err := svc.DeriveDueItems(context.Background(), " ", day("2025-01-01"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.DeriveDueItems(context.Background(), "class-1", day("2025-01-01"))
	assert.Equal(t, appErrors.ErrOperation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, uint64(1), metrics.Snapshot().DBQueryCount)
}

func TestCalendarWeek(t *testing.T) {
	assert.Equal(t, 1, calendarWeek(day("2025-03-07")))
	assert.Equal(t, 2, calendarWeek(day("2025-03-08")))
	assert.Equal(t, 5, calendarWeek(day("2025-03-31")))
}

func TestDeriveDueItemsTemplateAssignedTwice(t *testing.T) {
	ended := day("2025-01-31")
	previous := scheduled("sing", 1, 0, nil, "2025-01-01")
	previous.AssignmentID = "asg-january"
	previous.AssignmentEndDate = &ended
	current := scheduled("sing", 1, 0, nil, "2025-02-02")
	current.AssignmentID = "asg-february"
	repo := &scheduledItemsStub{rows: []models.ScheduledItem{previous, current}}

	// 2025-02-02 is a Sunday and the first day of the February assignment
	svc := NewSchedulerService(repo, config.WeekModeAssignment, nil, nil)
	due, err := svc.DeriveDueItems(context.Background(), "class-1", day("2025-02-02"))
	require.NoError(t, err)
	require.Len(t, due.Items, 1)
	assert.Equal(t, "asg-february", due.Items[0].AssignmentID)

	agenda, err := svc.DeriveWeekAgenda(context.Background(), "class-1", day("2025-02-02"))
	require.NoError(t, err)
	require.Len(t, agenda.Days[0].Items, 1)
	assert.Equal(t, "asg-february", agenda.Days[0].Items[0].AssignmentID)

	calendar := NewSchedulerService(repo, config.WeekModeCalendar, nil, nil)
	due, err = calendar.DeriveDueItems(context.Background(), "class-1", day("2025-02-02"))
	require.NoError(t, err)
	require.Len(t, due.Items, 1)
	assert.Equal(t, "asg-january", due.Items[0].AssignmentID)
}
