package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationKeepsStoreMessage(t *testing.T) {
	storeErr := errors.New(`pq: insert or update on table "curriculum_assignments" violates foreign key constraint`)
	err := Operation(fmt.Errorf("create curriculum assignment: %w", storeErr), "failed to assign curriculum")

	require.NotNil(t, err)
	assert.Equal(t, ErrOperation.Code, err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Contains(t, err.Detail, "violates foreign key constraint")
	assert.True(t, errors.Is(err, storeErr))
}

func TestOperationTimeout(t *testing.T) {
	err := Operation(fmt.Errorf("list config fields: %w", context.DeadlineExceeded), "failed to list options")
	assert.Equal(t, "failed to list options: request timed out", err.Message)
}

func TestFromErrorDefaults(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, ErrInternal.Code, FromError(errors.New("boom")).Code)
	assert.Equal(t, ErrOperation.Code, FromError(context.DeadlineExceeded).Code)

	typed := Clone(ErrNotFound, "option not found")
	assert.Same(t, typed, FromError(typed))
}

func TestIsComparesCodes(t *testing.T) {
	err := fmt.Errorf("outer: %w", Clone(ErrValidation, "label is required"))
	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(errors.New("plain"), ErrValidation))
}
