package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/dto"
	"github.com/noah-isme/preschool-adp-api/internal/middleware"
	"github.com/noah-isme/preschool-adp-api/internal/models"
	appErrors "github.com/noah-isme/preschool-adp-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext describes the caller for audit records.
func actorFromContext(c *gin.Context) models.AuditActor {
	actor := models.AuditActor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if claims := claimsFromContext(c); claims != nil {
		actor.UserID = claims.UserID
	}
	return actor
}

// dateQuery reads ?date=YYYY-MM-DD, defaulting to today in UTC.
func dateQuery(c *gin.Context, now func() time.Time) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		t := now().UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.ParseInLocation(dto.DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
