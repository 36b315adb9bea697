package dto

import "github.com/noah-isme/preschool-adp-api/internal/models"

// ExportRequest captures POST /exports.
type ExportRequest struct {
	Type         models.ExportType `json:"type" validate:"required,oneof=execution_log curriculum_plan"`
	Format       string            `json:"format" validate:"required,oneof=csv pdf"`
	ClassID      string            `json:"class_id" validate:"required_if=Type execution_log"`
	CurriculumID string            `json:"curriculum_id" validate:"required_if=Type curriculum_plan"`
	From         string            `json:"from" validate:"required_if=Type execution_log"`
	To           string            `json:"to" validate:"required_if=Type execution_log"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Type      models.ExportType   `json:"type"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
