package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/config"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type scheduledItemRepository interface {
	ListForClass(ctx context.Context, classID string, date time.Time) ([]models.ScheduledItem, error)
}

// SchedulerService derives what a class has planned for a day or week from
// its active curriculum assignments.
type SchedulerService struct {
	items    scheduledItemRepository
	weekMode string
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewSchedulerService constructs a SchedulerService. Unknown week modes fall
// back to calendar numbering.
func NewSchedulerService(items scheduledItemRepository, weekMode string, metrics *MetricsService, logger *zap.Logger) *SchedulerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weekMode != config.WeekModeAssignment {
		weekMode = config.WeekModeCalendar
	}
	return &SchedulerService{items: items, weekMode: weekMode, metrics: metrics, logger: logger}
}

// WeekMode reports the active week numbering.
func (s *SchedulerService) WeekMode() string {
	return s.weekMode
}

// DeriveDueItems returns the items due for a class on date: those planned for
// the weekday whose week number has been reached. Items with a time slot come
// first by slot order; the rest follow in creation order.
func (s *SchedulerService) DeriveDueItems(ctx context.Context, classID string, date time.Time) (*dto.DueItemsResponse, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	date = dateOnly(date)
	candidates, err := s.load(ctx, classID, date)
	if err != nil {
		return nil, err
	}

	day := int(date.Weekday())
	due := make([]models.ScheduledItem, 0)
	seen := make(map[string]struct{}, len(candidates))
	for _, item := range candidates {
		week, ok := s.weekFor(item, date)
		if !ok || item.DayNumber != day || item.WeekNumber > week {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		due = append(due, item)
	}
	sortBySlot(due)

	resp := &dto.DueItemsResponse{
		ClassID:   classID,
		Date:      formatDate(date),
		DayNumber: day,
		WeekMode:  s.weekMode,
		Items:     due,
	}
	if s.weekMode == config.WeekModeCalendar {
		resp.WeekNumber = calendarWeek(date)
	}
	return resp, nil
}

// DeriveWeekAgenda groups the items planned for the week containing date by
// weekday, Sunday first.
func (s *SchedulerService) DeriveWeekAgenda(ctx context.Context, classID string, date time.Time) (*dto.WeekAgendaResponse, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	date = dateOnly(date)
	candidates, err := s.load(ctx, classID, date)
	if err != nil {
		return nil, err
	}

	days := make([]dto.AgendaDay, 7)
	for i := range days {
		days[i] = dto.AgendaDay{DayNumber: i, Items: make([]models.ScheduledItem, 0)}
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, item := range candidates {
		week, ok := s.weekFor(item, date)
		if !ok || item.WeekNumber != week || item.DayNumber < 0 || item.DayNumber > 6 {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		days[item.DayNumber].Items = append(days[item.DayNumber].Items, item)
	}
	for i := range days {
		sortBySlot(days[i].Items)
	}

	resp := &dto.WeekAgendaResponse{
		ClassID:  classID,
		Date:     formatDate(date),
		WeekMode: s.weekMode,
		Days:     days,
	}
	if s.weekMode == config.WeekModeCalendar {
		resp.WeekNumber = calendarWeek(date)
	}
	return resp, nil
}

// load fetches one row per (item, assignment). A template assigned twice to
// the same class yields its items twice; callers keep the first row that
// qualifies for the date, which is the earliest-starting assignment.
func (s *SchedulerService) load(ctx context.Context, classID string, date time.Time) ([]models.ScheduledItem, error) {
	start := time.Now()
	rows, err := s.items.ListForClass(ctx, classID, date)
	s.metrics.ObserveDBQuery("curriculum_items_for_class", time.Since(start))
	if err != nil {
		return nil, appErrors.Operation(err, "failed to load curriculum items")
	}
	return rows, nil
}

// weekFor returns the week number that applies to item on date. In
// assignment mode an assignment that already ended yields false.
func (s *SchedulerService) weekFor(item models.ScheduledItem, date time.Time) (int, bool) {
	if s.weekMode != config.WeekModeAssignment {
		return calendarWeek(date), true
	}
	if item.AssignmentEndDate != nil && dateOnly(*item.AssignmentEndDate).Before(date) {
		return 0, false
	}
	return assignmentWeek(dateOnly(item.AssignmentStartDate), date), true
}

// calendarWeek numbers the weeks of a month from the 1st: days 1-7 are week 1.
func calendarWeek(date time.Time) int {
	return (date.Day()-1)/7 + 1
}

func assignmentWeek(start, date time.Time) int {
	days := int(date.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortBySlot(items []models.ScheduledItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].TimeSlotSortOrder, items[j].TimeSlotSortOrder
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}
