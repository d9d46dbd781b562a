package service

import (
	"context"
	"errors"
	"strings"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/metrics"
	"prediction-market-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ClaimServiceImpl implements ports.ClaimService.
type ClaimServiceImpl struct {
	repo   ports.MarketRepository
	oracle ports.BalanceOracle
	log    zerolog.Logger
}

// NewClaimService creates a new ClaimServiceImpl.
func NewClaimService(repo ports.MarketRepository, oracle ports.BalanceOracle, log zerolog.Logger) *ClaimServiceImpl {
	return &ClaimServiceImpl{repo: repo, oracle: oracle, log: log}
}

// EvaluateClaim reports whether claimant holds anything claimable on a
// resolved market. ACTIVE markets are rejected with InvalidState.
func (s *ClaimServiceImpl) EvaluateClaim(ctx context.Context, marketID uuid.UUID, claimant string) (*domain.ClaimEligibility, error) {
	claimant = strings.TrimSpace(claimant)
	if claimant == "" {
		return nil, apperror.Validation("claimant wallet address is required")
	}

	market, err := s.repo.GetByID(ctx, marketID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if market == nil {
		return nil, apperror.ErrMarketNotFound()
	}
	if !market.IsResolved() {
		metrics.ClaimEvaluations.WithLabelValues("invalid_state").Inc()
		return nil, apperror.ErrInvalidState().WithCause(domain.ErrMarketNotResolved)
	}

	result, err := s.evaluate(ctx, market, claimant)
	if err != nil {
		metrics.ClaimEvaluations.WithLabelValues("oracle_unavailable").Inc()
		return nil, apperror.ErrOracleUnavailable(err)
	}

	label := "not_eligible"
	if result.Eligible {
		label = "eligible"
	}
	metrics.ClaimEvaluations.WithLabelValues(label).Inc()
	return result, nil
}

// evaluate reads both outcome token balances concurrently and selects the
// side to claim. A side whose lookup failed counts as empty; only a failure
// on both sides is an error.
func (s *ClaimServiceImpl) evaluate(ctx context.Context, m *domain.Market, claimant string) (*domain.ClaimEligibility, error) {
	winning, ok := m.WinningSide()
	if !ok {
		return nil, domain.ErrMarketNotResolved
	}
	order := [2]domain.Side{winning, opposite(winning)}

	var (
		balances [2]domain.TokenBalance
		errs     [2]error
		g        errgroup.Group
	)
	for i, side := range order {
		g.Go(func() error {
			balances[i], errs[i] = s.oracle.TokenBalance(ctx, claimant, m.TokenFor(side))
			return nil
		})
	}
	_ = g.Wait()

	if errs[0] != nil && errs[1] != nil {
		return nil, errors.Join(errs[0], errs[1])
	}

	result := &domain.ClaimEligibility{
		MarketID:        m.ID,
		Claimant:        claimant,
		ClaimantBalance: decimal.Zero,
	}
	for i, side := range order {
		if errs[i] != nil {
			s.log.Warn().Err(errs[i]).
				Str("market_id", m.ID.String()).
				Str("claimant", claimant).
				Str("side", string(side)).
				Msg("outcome token lookup failed, treating side as empty")
			continue
		}
		if result.Eligible || !balances[i].IsPositive() {
			continue
		}
		mint := m.TokenFor(side)
		result.Eligible = true
		result.WinningTokenMint = &mint
		result.ClaimantBalance = balances[i].Amount()
		result.Side = side
		result.Winning = side == winning
	}
	return result, nil
}

func opposite(side domain.Side) domain.Side {
	if side == domain.SideYes {
		return domain.SideNo
	}
	return domain.SideYes
}
