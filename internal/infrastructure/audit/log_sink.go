// Package audit provides the audit sink consumed by callers of the RBAC
// resolver.
package audit

import (
	"context"
	"time"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/logger"
)

// LogSink writes authorization decision records to the structured log.
// Swapping in a queue- or table-backed sink only requires implementing
// service.AuditSink; the RBAC resolver itself never sees the sink.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a logger-backed audit sink.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log.WithComponent("audit")}
}

// Record writes one decision record. Missing timestamps are filled in here
// so callers can build records without consulting a clock.
func (s *LogSink) Record(ctx context.Context, record models.AccessAuditRecord) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	s.log.Info(ctx, "access decision",
		logger.String("user_id", record.UserID),
		logger.String("role", string(record.Role)),
		logger.String("permission", string(record.Permission)),
		logger.String("resource_id", record.ResourceID),
		logger.String("action", record.Action),
		logger.Bool("allowed", record.Allowed),
		logger.String("reason", record.Reason),
		logger.Time("timestamp", record.Timestamp),
	)
}
