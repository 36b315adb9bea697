package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/preschool-adp-api/internal/models"
	"github.com/noah-isme/preschool-adp-api/pkg/middleware/requestid"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditTrail writes best-effort audit rows. Failures are logged and never
// fail the calling operation.
type auditTrail struct {
	repo   auditLogger
	logger *zap.Logger
}

func (a auditTrail) record(ctx context.Context, actor models.AuditActor, action, resource, resourceID string, oldValue, newValue interface{}) {
	if a.repo == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   resource,
		ResourceID: strPtr(resourceID),
		OldValues:  marshalAudit(oldValue),
		NewValues:  marshalAudit(newValue),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if entry.IPAddress == "" {
		entry.IPAddress = "system"
	}
	if err := a.repo.CreateAuditLog(ctx, entry); err != nil && a.logger != nil {
		a.logger.Warn("failed to record audit log",
			zap.String("action", action),
			zap.String("resource_id", resourceID),
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Error(err))
	}
}

func marshalAudit(value interface{}) []byte {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return data
}
