package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/preschool-adp-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "pw", Name: "preschool", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=preschool sslmode=disable", dsn)
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("create curriculum execution: %w", &pq.Error{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}

func TestIsInvalidText(t *testing.T) {
	wrapped := fmt.Errorf("find config field: %w", &pq.Error{Code: "22P02"})
	assert.True(t, IsInvalidText(wrapped))
	assert.False(t, IsInvalidText(&pq.Error{Code: "23505"}))
	assert.False(t, IsInvalidText(errors.New("connection refused")))
}
