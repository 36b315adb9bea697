package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/cache"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

type configFieldRepository interface {
	ListActiveByCategory(ctx context.Context, category string) ([]models.ConfigField, error)
	CountActiveByCategory(ctx context.Context, category string) (int, error)
	ListCategories(ctx context.Context) ([]models.OptionCategory, error)
	FindByID(ctx context.Context, id string) (*models.ConfigField, error)
	Create(ctx context.Context, field *models.ConfigField) error
	Update(ctx context.Context, field *models.ConfigField) error
	Deactivate(ctx context.Context, id string) error
}

type optionCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// OptionServiceConfig tunes caching and category checks.
type OptionServiceConfig struct {
	CacheTTL time.Duration
	// KnownCategories, when non-empty, restricts createOption to these categories.
	KnownCategories []string
}

// OptionService manages the option catalog behind every dropdown.
type OptionService struct {
	repo      configFieldRepository
	cache     optionCache
	audit     auditTrail
	validator *validator.Validate
	logger    *zap.Logger
	cfg       OptionServiceConfig
	known     map[string]struct{}

	// generations counts invalidations per category; a list read only
	// refills the cache when no write landed while it was in flight.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewOptionService constructs an OptionService. cache and audit may be nil.
func NewOptionService(repo configFieldRepository, cache optionCache, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg OptionServiceConfig) *OptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	known := make(map[string]struct{}, len(cfg.KnownCategories))
	for _, category := range cfg.KnownCategories {
		known[strings.TrimSpace(category)] = struct{}{}
	}
	return &OptionService{
		repo:        repo,
		cache:       cache,
		audit:       auditTrail{repo: audit, logger: logger},
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		known:       known,
		generations: make(map[string]uint64),
	}
}

// ListOptions returns the active options of a category by ascending sort order.
func (s *OptionService) ListOptions(ctx context.Context, category string) ([]models.ConfigField, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "category is required")
	}

	key := optionsCacheKey(category)
	if s.cache != nil {
		var cached []models.ConfigField
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	gen := s.generation(category)
	fields, err := s.repo.ListActiveByCategory(ctx, category)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list options")
	}
	if s.cache != nil && s.generation(category) == gen {
		if err := s.cache.Set(ctx, key, fields, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("option cache not filled", zap.String("category", category), zap.Error(err))
		}
	}
	return fields, nil
}

// ListCategories returns the categories that currently have active options.
func (s *OptionService) ListCategories(ctx context.Context) ([]models.OptionCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, appErrors.Operation(err, "failed to list option categories")
	}
	return categories, nil
}

// GetOption returns an option, including deactivated ones.
func (s *OptionService) GetOption(ctx context.Context, id string) (*models.ConfigField, error) {
	field, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "option not found", "failed to load option")
	}
	return field, nil
}

// CreateOption appends an option to its category and returns the new id.
func (s *OptionService) CreateOption(ctx context.Context, req dto.CreateOptionRequest, actor models.AuditActor) (string, error) {
	req.Category = strings.TrimSpace(req.Category)
	req.Label = strings.TrimSpace(req.Label)
	req.Value = strings.TrimSpace(req.Value)
	req.Description = trimPtr(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err, "category, label and value are required")
	}
	if len(s.known) > 0 {
		if _, ok := s.known[req.Category]; !ok {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown option category %q", req.Category))
		}
	}

	count, err := s.repo.CountActiveByCategory(ctx, req.Category)
	if err != nil {
		return "", appErrors.Operation(err, "failed to count options")
	}
	field := &models.ConfigField{
		Category:    req.Category,
		Label:       req.Label,
		Value:       req.Value,
		Description: req.Description,
		SortOrder:   count + 1,
	}
	if err := s.repo.Create(ctx, field); err != nil {
		return "", appErrors.Operation(err, "failed to create option")
	}

	s.invalidate(ctx, field.Category)
	s.audit.record(ctx, actor, models.AuditActionOptionCreate, "config_field", field.ID, nil, field)
	return field.ID, nil
}

// UpdateOption replaces label, value and description. Category and sort
// order never change.
func (s *OptionService) UpdateOption(ctx context.Context, id string, req dto.UpdateOptionRequest, actor models.AuditActor) (*models.ConfigField, error) {
	req.Label = strings.TrimSpace(req.Label)
	req.Value = strings.TrimSpace(req.Value)
	req.Description = trimPtr(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "label and value are required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "option not found", "failed to load option")
	}
	if !existing.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "option not found")
	}

	before := *existing
	existing.Label = req.Label
	existing.Value = req.Value
	existing.Description = req.Description
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, storeError(err, "option not found", "failed to update option")
	}

	s.invalidate(ctx, existing.Category)
	s.audit.record(ctx, actor, models.AuditActionOptionUpdate, "config_field", id, before, existing)
	return existing, nil
}

// DeactivateOption hides an option from listings. Repeating it succeeds.
func (s *OptionService) DeactivateOption(ctx context.Context, id string, actor models.AuditActor) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "option not found", "failed to load option")
	}
	if !existing.IsActive {
		return nil
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return storeError(err, "option not found", "failed to deactivate option")
	}

	s.invalidate(ctx, existing.Category)
	s.audit.record(ctx, actor, models.AuditActionOptionDeactivate, "config_field", id, map[string]bool{"is_active": true}, map[string]bool{"is_active": false})
	return nil
}

func (s *OptionService) invalidate(ctx context.Context, category string) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	s.generations[category]++
	s.genMu.Unlock()
	if err := s.cache.Invalidate(ctx, optionsCacheKey(category)); err != nil {
		s.logger.Warn("option cache not invalidated", zap.String("category", category), zap.Error(err))
	}
}

func (s *OptionService) generation(category string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[category]
}

func optionsCacheKey(category string) string {
	return cache.Key("options", category)
}
