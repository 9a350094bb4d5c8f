package models

import (
	"time"

	"github.com/storekit/admission/pkg/constants"
)

// AccessAuditRecord captures one authorization decision for the audit sink.
// RBAC evaluation itself performs no I/O; callers build this record from the
// structured decision detail and hand it to an AuditSink.
type AccessAuditRecord struct {
	UserID     string         `json:"userId"`
	Role       constants.Role `json:"role"`
	Permission Permission     `json:"permission,omitempty"`
	ResourceID string         `json:"resourceId,omitempty"`
	Action     string         `json:"action,omitempty"`
	Allowed    bool           `json:"allowed"`
	Reason     string         `json:"reason,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
