package ports

import (
	"context"
	"time"

	"prediction-market-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// MarketRepository defines persistence operations for markets.
// GetByID returns (nil, nil) when the market does not exist.
type MarketRepository interface {
	Create(ctx context.Context, market *domain.Market) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Market, error)
	List(ctx context.Context, params MarketListParams) ([]domain.Market, int64, error)
	// CompareAndSetResolved moves the market from expected to RESOLVED in one
	// atomic step. It returns false, with no error, when the market is missing
	// or its status is not expected.
	CompareAndSetResolved(ctx context.Context, id uuid.UUID, expected domain.MarketStatus, outcome bool, resolvedBy string, at time.Time) (bool, error)
}

// MarketListParams holds filter + pagination for listing markets.
type MarketListParams struct {
	Status   *domain.MarketStatus
	Page     int
	PageSize int
}

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
