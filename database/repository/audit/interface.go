package auditRepo

import (
	"context"

	"lexassist/models"
)

// AuditRepository is an append-only store of audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *models.AuditEntry) error
	// List returns matching entries, newest first.
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int64, error)
}
