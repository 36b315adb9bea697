package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, WeekModeCalendar, cfg.Curriculum.WeekMode)
	assert.True(t, cfg.Catalog.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.Nil(t, cfg.Catalog.KnownCategories)
	assert.Equal(t, 3, cfg.Exports.WorkerRetries)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CURRICULUM_WEEK_MODE", " Assignment ")
	v.Set("CATALOG_KNOWN_CATEGORIES", "mood, activity_type,,skill_tag ")
	v.Set("CATALOG_CACHE_TTL", "not-a-duration")
	v.Set("HTTP_REQUEST_TIMEOUT", "3s")

	cfg := fromViper(v)
	assert.Equal(t, WeekModeAssignment, cfg.Curriculum.WeekMode)
	assert.Equal(t, []string{"mood", "activity_type", "skill_tag"}, cfg.Catalog.KnownCategories)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestUnknownWeekModeFallsBackToCalendar(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CURRICULUM_WEEK_MODE", "lunar")

	assert.Equal(t, WeekModeCalendar, fromViper(v).Curriculum.WeekMode)
}
