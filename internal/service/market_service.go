package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/metrics"
	"prediction-market-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// MarketOptions carries the lifecycle policy knobs.
type MarketOptions struct {
	AdminWallets         []string
	AllowEarlyResolution bool
}

// MarketServiceImpl implements ports.MarketService.
type MarketServiceImpl struct {
	repo       ports.MarketRepository
	gate       ports.AccessGate
	policy     domain.TokenGatePolicy
	publisher  ports.EventPublisher
	audit      ports.AuditService
	admins     adminSet
	allowEarly bool
	now        func() time.Time
	log        zerolog.Logger
}

// NewMarketService creates a new MarketServiceImpl.
// publisher and audit may be nil.
func NewMarketService(
	repo ports.MarketRepository,
	gate ports.AccessGate,
	policy domain.TokenGatePolicy,
	publisher ports.EventPublisher,
	audit ports.AuditService,
	opts MarketOptions,
	log zerolog.Logger,
) *MarketServiceImpl {
	if len(opts.AdminWallets) == 0 {
		log.Warn().Msg("no admin wallets configured, markets cannot be resolved")
	}
	return &MarketServiceImpl{
		repo:       repo,
		gate:       gate,
		policy:     policy,
		publisher:  publisher,
		audit:      audit,
		admins:     newAdminSet(opts.AdminWallets),
		allowEarly: opts.AllowEarlyResolution,
		now:        time.Now,
		log:        log,
	}
}

// CreateMarket stores a new ACTIVE market once the creator passes the token gate.
func (s *MarketServiceImpl) CreateMarket(ctx context.Context, req ports.CreateMarketRequest) (*domain.Market, error) {
	creator := strings.TrimSpace(req.Creator)
	if creator == "" {
		return nil, apperror.Validation("creator wallet address is required")
	}

	market, err := domain.NewMarket(req.Question, req.Description, creator,
		req.OutcomeTokenA, req.OutcomeTokenB, req.Expiry, s.now())
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	decision := s.gate.Check(ctx, creator, s.policy)
	if !decision.HasAccess {
		return nil, apperror.ErrAccessDenied(decision.Balance.String(), decision.Required.String())
	}

	if err := s.repo.Create(ctx, market); err != nil {
		return nil, apperror.InternalError(err)
	}
	metrics.MarketsCreated.Inc()

	s.log.Info().
		Str("market_id", market.ID.String()).
		Str("creator", creator).
		Time("expiry", market.Expiry).
		Msg("market created")

	s.publish(ctx, domain.NewMarketEvent(domain.MarketEventCreated, market, creator, s.now()))
	s.auditLog(ctx, domain.AuditActionCreateMarket, creator, market, req.ClientIP)

	return market, nil
}

// GetMarket returns a single market.
func (s *MarketServiceImpl) GetMarket(ctx context.Context, id uuid.UUID) (*domain.Market, error) {
	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if market == nil {
		return nil, apperror.ErrMarketNotFound()
	}
	return market, nil
}

// ListMarkets returns a page of markets, newest first.
func (s *MarketServiceImpl) ListMarkets(ctx context.Context, params ports.MarketListParams) ([]domain.Market, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, 0, apperror.Validation("unknown market status")
	}

	markets, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return markets, total, nil
}

// ResolveMarket performs the single ACTIVE -> RESOLVED transition.
// Of several concurrent calls for the same market exactly one succeeds;
// the others get AlreadyResolved.
func (s *MarketServiceImpl) ResolveMarket(ctx context.Context, req ports.ResolveMarketRequest) (*domain.Market, error) {
	admin := strings.TrimSpace(req.AdminWallet)
	if admin == "" {
		return nil, apperror.Validation("admin wallet address is required")
	}
	if !s.admins.contains(admin) {
		metrics.Resolutions.WithLabelValues("forbidden").Inc()
		return nil, apperror.ErrAdminRequired().WithCause(domain.ErrNotAdmin)
	}

	now := s.now()
	if !s.allowEarly {
		current, err := s.GetMarket(ctx, req.MarketID)
		if err != nil {
			return nil, err
		}
		if !current.IsResolved() && !current.IsExpired(now) {
			metrics.Resolutions.WithLabelValues("early").Inc()
			return nil, apperror.ErrResolutionBeforeExpiry()
		}
	}

	swapped, err := s.repo.CompareAndSetResolved(ctx, req.MarketID, domain.MarketStatusActive, req.Outcome, admin, now)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	market, err := s.repo.GetByID(ctx, req.MarketID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if market == nil {
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		return nil, apperror.ErrMarketNotFound()
	}
	if !swapped {
		metrics.Resolutions.WithLabelValues("conflict").Inc()
		s.log.Info().
			Str("market_id", req.MarketID.String()).
			Str("admin", admin).
			Bool("requested_outcome", req.Outcome).
			Msg("resolve rejected, market already resolved")
		return nil, apperror.ErrAlreadyResolved().WithCause(domain.ErrAlreadyResolved)
	}
	metrics.Resolutions.WithLabelValues("resolved").Inc()

	s.log.Info().
		Str("market_id", market.ID.String()).
		Str("admin", admin).
		Bool("outcome", req.Outcome).
		Msg("market resolved")

	s.publish(ctx, domain.NewMarketEvent(domain.MarketEventResolved, market, admin, now))
	s.auditLog(ctx, domain.AuditActionResolveMarket, admin, market, req.ClientIP)

	return market, nil
}

// GateStatus reports the configured gate's decision for wallet.
func (s *MarketServiceImpl) GateStatus(ctx context.Context, wallet string) domain.GateDecision {
	return s.gate.Check(ctx, wallet, s.policy)
}

func (s *MarketServiceImpl) publish(ctx context.Context, event domain.MarketEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(context.WithoutCancel(ctx), event)
}

func (s *MarketServiceImpl) auditLog(ctx context.Context, action domain.AuditAction, actor string, m *domain.Market, ip string) {
	if s.audit == nil {
		return
	}
	details, err := json.Marshal(map[string]any{
		"status":           m.Status,
		"resolved_outcome": m.ResolvedOutcome,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal audit details")
	}
	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		Actor:        &actor,
		Action:       action,
		ResourceType: "market",
		ResourceID:   m.ID.String(),
		Details:      string(details),
		IPAddress:    ip,
		CreatedAt:    s.now().UTC(),
	})
}
