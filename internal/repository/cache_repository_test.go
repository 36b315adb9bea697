package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "preschool:options:mood", &dest)
	assert.True(t, appErrors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "preschool:options:mood", []string{"a"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "preschool:options:mood"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
