package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/export"
	"github.com/noah-isme/preschool-adp-api/pkg/jobs"
	"github.com/noah-isme/preschool-adp-api/pkg/storage"
)

type executionLog interface {
	List(ctx context.Context, filter models.ExecutionFilter) ([]models.CurriculumExecutionDetail, error)
}

type curriculumPlanSource interface {
	FindByID(ctx context.Context, id string) (*models.CurriculumTemplate, error)
}

type curriculumItemLister interface {
	ListByTemplate(ctx context.Context, curriculumID string) ([]models.CurriculumItem, error)
}

type fileStore interface {
	Put(rel string, data []byte) (string, error)
	Open(rel string) (*os.File, error)
	Delete(rel string) error
	Sweep(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export output.
type ExportConfig struct {
	APIPrefix string
}

// ExportResult describes a rendered and stored export.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService renders execution logs and curriculum plans to files.
type ExportService struct {
	executions executionLog
	templates  curriculumPlanSource
	items      curriculumItemLister
	storage    fileStore
	signer     *storage.Signer
	logger     *zap.Logger
	cfg        ExportConfig
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(executions executionLog, templates curriculumPlanSource, items curriculumItemLister, store fileStore, signer *storage.Signer, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIPrefix) == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		executions: executions,
		templates:  templates,
		items:      items,
		storage:    store,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the job's document, stores it and signs a download link.
// Errors that a retry cannot fix are marked permanent.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, jobs.Permanent(fmt.Errorf("export job missing"))
	}
	renderer, err := export.RendererFor(job.Params.Format)
	if err != nil {
		return nil, jobs.Permanent(err)
	}
	dataset, scope, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, jobs.Permanent(err)
	}

	name := fmt.Sprintf("%s/%s_%s_%s.%s", job.Type, sanitizeFilename(scope), s.now().Format("20060102_150405"), job.ID, renderer.Extension())
	rel, err := s.storage.Put(name, payload)
	if err != nil {
		return nil, err
	}
	token, grant, err := s.signer.Sign(job.ID, rel)
	if err != nil {
		return nil, jobs.Permanent(err)
	}
	return &ExportResult{
		RelativePath: rel,
		Token:        token,
		URL:          s.DownloadURL(token),
		ExpiresAt:    grant.ExpiresAt,
	}, nil
}

// DownloadURL builds the public link for a token.
func (s *ExportService) DownloadURL(token string) string {
	return fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
}

// Verify checks a download token.
func (s *ExportService) Verify(token string) (storage.Grant, error) {
	return s.signer.Verify(token)
}

// Open returns a handle to a stored export.
func (s *ExportService) Open(rel string) (*os.File, error) {
	return s.storage.Open(rel)
}

// Delete removes a stored export.
func (s *ExportService) Delete(rel string) error {
	return s.storage.Delete(rel)
}

// Sweep removes stored files older than ttl.
func (s *ExportService) Sweep(ttl time.Duration) ([]string, error) {
	return s.storage.Sweep(ttl)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypeExecutionLog:
		return s.executionLogDataset(ctx, job.Params)
	case models.ExportTypeCurriculumPlan:
		return s.curriculumPlanDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", jobs.Permanent(fmt.Errorf("unsupported export type %s", job.Type))
	}
}

var executionLogHeaders = []string{"Date", "Item", "Activity", "Status", "Engagement", "Teacher", "Started", "Finished", "Notes", "Next Steps"}

func (s *ExportService) executionLogDataset(ctx context.Context, params models.ExportParams) (export.Dataset, string, error) {
	from, err := ParseDate(params.From)
	if err != nil {
		return export.Dataset{}, "", jobs.Permanent(err)
	}
	to, err := ParseDate(params.To)
	if err != nil {
		return export.Dataset{}, "", jobs.Permanent(err)
	}
	rows, err := s.executions.List(ctx, models.ExecutionFilter{ClassID: params.ClassID, From: from, To: to})
	if err != nil {
		return export.Dataset{}, "", err
	}

	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, map[string]string{
			"Date":       formatDate(row.ExecutionDate),
			"Item":       row.ItemTitle,
			"Activity":   row.ActivityType,
			"Status":     string(row.CompletionStatus),
			"Engagement": string(row.StudentEngagement),
			"Teacher":    row.TeacherID,
			"Started":    formatClock(row.ActualStartTime),
			"Finished":   formatClock(row.ActualEndTime),
			"Notes":      row.Notes,
			"Next Steps": row.NextSteps,
		})
	}
	return export.Dataset{
		Title:    "Curriculum Execution Log",
		Subtitle: fmt.Sprintf("Class %s, %s to %s", params.ClassID, params.From, params.To),
		Headers:  executionLogHeaders,
		Rows:     data,
	}, params.ClassID, nil
}

var curriculumPlanHeaders = []string{"Week", "Day", "Title", "Activity", "Duration (min)", "Materials", "Learning Goals", "Skills"}

func (s *ExportService) curriculumPlanDataset(ctx context.Context, params models.ExportParams) (export.Dataset, string, error) {
	tpl, err := s.templates.FindByID(ctx, params.CurriculumID)
	if err != nil {
		if isNotFound(err) {
			return export.Dataset{}, "", jobs.Permanent(fmt.Errorf("curriculum template %s not found", params.CurriculumID))
		}
		return export.Dataset{}, "", err
	}
	items, err := s.items.ListByTemplate(ctx, tpl.ID)
	if err != nil {
		return export.Dataset{}, "", err
	}

	data := make([]map[string]string, 0, len(items))
	for _, item := range items {
		data = append(data, map[string]string{
			"Week":           strconv.Itoa(item.WeekNumber),
			"Day":            time.Weekday(item.DayNumber).String(),
			"Title":          item.Title,
			"Activity":       item.ActivityType,
			"Duration (min)": strconv.Itoa(item.EstimatedDuration),
			"Materials":      strings.Join(item.MaterialsNeeded, ", "),
			"Learning Goals": strings.Join(item.LearningGoals, ", "),
			"Skills":         strings.Join(item.SkillsDeveloped, ", "),
		})
	}
	subtitle := fmt.Sprintf("%d weeks", tpl.TotalWeeks)
	if tpl.AgeGroup != "" {
		subtitle = fmt.Sprintf("%s, ages %s", subtitle, tpl.AgeGroup)
	}
	return export.Dataset{
		Title:    tpl.Name,
		Subtitle: subtitle,
		Headers:  curriculumPlanHeaders,
		Rows:     data,
	}, tpl.Name, nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("15:04")
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(strings.ToLower(raw))
	if len(result) > 60 {
		return result[:60]
	}
	return result
}
