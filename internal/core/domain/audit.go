package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCreateMarket  AuditAction = "CREATE_MARKET"
	AuditActionResolveMarket AuditAction = "RESOLVE_MARKET"
	AuditActionSignIn        AuditAction = "SIGN_IN"
	AuditActionAccessDenied  AuditAction = "ACCESS_DENIED"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Actor        *string     `json:"actor,omitempty"` // wallet address when known
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
