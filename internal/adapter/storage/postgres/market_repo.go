package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const marketColumns = `id, question, description, creator, outcome_token_a, outcome_token_b,
	status, expiry, resolved_outcome, resolved_by, resolved_at, created_at, updated_at`

// MarketRepo implements ports.MarketRepository.
type MarketRepo struct {
	pool Pool
}

// NewMarketRepo creates a new MarketRepo.
func NewMarketRepo(pool Pool) *MarketRepo {
	return &MarketRepo{pool: pool}
}

// Create inserts a new market.
func (r *MarketRepo) Create(ctx context.Context, m *domain.Market) error {
	query := `INSERT INTO markets (` + marketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Question, m.Description, m.Creator, m.OutcomeTokenA, m.OutcomeTokenB,
		string(m.Status), m.Expiry, m.ResolvedOutcome, m.ResolvedBy, m.ResolvedAt,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert market: %w", err)
	}
	return nil
}

// GetByID fetches a market by its UUID.
func (r *MarketRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE id = $1`

	m, err := scanMarket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get market by id: %w", err)
	}
	return m, nil
}

// List fetches markets with an optional status filter, newest first.
func (r *MarketRepo) List(ctx context.Context, params ports.MarketListParams) ([]domain.Market, int64, error) {
	where := ""
	var args []any
	if params.Status != nil {
		where = "WHERE status = $1"
		args = append(args, string(*params.Status))
	}

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM markets "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count markets: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM markets %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		marketColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	markets := make([]domain.Market, 0, params.PageSize)
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan market: %w", err)
		}
		markets = append(markets, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate markets: %w", err)
	}
	return markets, total, nil
}

// CompareAndSetResolved resolves the market in a single conditional UPDATE,
// so concurrent callers cannot both observe ACTIVE.
func (r *MarketRepo) CompareAndSetResolved(ctx context.Context, id uuid.UUID, expected domain.MarketStatus, outcome bool, resolvedBy string, at time.Time) (bool, error) {
	query := `UPDATE markets
		SET status = 'RESOLVED', resolved_outcome = $3, resolved_by = $4, resolved_at = $5, updated_at = $5
		WHERE id = $1 AND status = $2`

	tag, err := r.pool.Exec(ctx, query, id, string(expected), outcome, resolvedBy, at.UTC())
	if err != nil {
		return false, fmt.Errorf("resolve market: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanMarket(row pgx.Row) (*domain.Market, error) {
	m := &domain.Market{}
	var status string
	err := row.Scan(
		&m.ID, &m.Question, &m.Description, &m.Creator, &m.OutcomeTokenA, &m.OutcomeTokenB,
		&status, &m.Expiry, &m.ResolvedOutcome, &m.ResolvedBy, &m.ResolvedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MarketStatus(status)
	return m, nil
}
