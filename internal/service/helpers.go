package service

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/database"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

func userIDPtr(actor models.AuditActor) *string {
	if actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	result := value
	return &result
}

func trimPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	return strPtr(strings.TrimSpace(*ptr))
}

// isNotFound treats a malformed id like a missing row: it cannot resolve.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidText(err)
}

// storeError maps a repository failure onto the public error contract. A
// missing row or malformed id becomes NotFound with the given message;
// everything else is an operation failure carrying the store's own text.
func storeError(err error, notFound, action string) error {
	if isNotFound(err) && notFound != "" {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Operation(err, action)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// ParseDate reads a calendar date in the wire format as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation(dto.DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, validationError(err, "date must use YYYY-MM-DD")
	}
	return date, nil
}

func formatDate(t time.Time) string {
	return t.Format(dto.DateLayout)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
