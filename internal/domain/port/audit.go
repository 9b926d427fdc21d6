package port

import (
	"context"

	"facegate/internal/domain/entity"
)

// AuditSink records verification decisions for operators.
type AuditSink interface {
	Record(ctx context.Context, rec entity.AuditRecord) error
}
