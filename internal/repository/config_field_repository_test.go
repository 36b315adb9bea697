package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/preschool-adp-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var configFieldCols = []string{"id", "category", "label", "value", "description", "sort_order", "is_active", "created_at", "updated_at"}

func TestConfigFieldRepositoryListActiveByCategory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConfigFieldRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(configFieldCols).
		AddRow("f-1", "mood", "Happy", "happy", nil, 1, true, now, now).
		AddRow("f-2", "mood", "Sleepy", "sleepy", "after nap", 2, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM config_fields WHERE category = $1 AND is_active = TRUE ORDER BY sort_order ASC")).
		WithArgs("mood").
		WillReturnRows(rows)

	fields, err := repo.ListActiveByCategory(context.Background(), "mood")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "happy", fields[0].Value)
	assert.Nil(t, fields[0].Description)
	require.NotNil(t, fields[1].Description)
	assert.Equal(t, "after nap", *fields[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigFieldRepositoryListEmptyCategory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConfigFieldRepository(db)

	mock.ExpectQuery("FROM config_fields").WithArgs("unknown").WillReturnRows(sqlmock.NewRows(configFieldCols))

	fields, err := repo.ListActiveByCategory(context.Background(), "unknown")
	require.NoError(t, err)
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigFieldRepositoryCountAndCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConfigFieldRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM config_fields")).
		WithArgs("mood").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO config_fields").
		WithArgs(sqlmock.AnyArg(), "mood", "Calm", "calm", nil, 3, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	count, err := repo.CountActiveByCategory(context.Background(), "mood")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	field := &models.ConfigField{Category: "mood", Label: "Calm", Value: "calm", SortOrder: count + 1}
	require.NoError(t, repo.Create(context.Background(), field))
	assert.NotEmpty(t, field.ID)
	assert.True(t, field.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigFieldRepositoryUpdateInactive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConfigFieldRepository(db)

	mock.ExpectExec("UPDATE config_fields SET label").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.ConfigField{ID: "f-1", Label: "x", Value: "x"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigFieldRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConfigFieldRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE config_fields SET is_active = FALSE")).
		WithArgs("f-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE config_fields SET is_active = FALSE")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Deactivate(context.Background(), "f-1"))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigFieldRepositoryListCategories(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConfigFieldRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, COUNT(*) AS count FROM config_fields")).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).AddRow("activity_type", 4).AddRow("mood", 3))

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "mood", categories[1].Category)
	assert.Equal(t, 3, categories[1].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
