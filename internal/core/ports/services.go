package ports

import (
	"context"
	"time"

	"prediction-market-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(wallet string, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Wallet string
	Role   domain.Role
}

// ChallengeStore keeps one-time sign-in challenges.
type ChallengeStore interface {
	// Save stores c until ttl elapses. It fails if the nonce is already taken.
	Save(ctx context.Context, c *domain.Challenge, ttl time.Duration) error
	// Consume atomically fetches and deletes a challenge.
	// Returns (nil, nil) when the nonce is unknown or expired.
	Consume(ctx context.Context, nonce string) (*domain.Challenge, error)
}

// EventPublisher delivers market lifecycle events. Publishing is
// best-effort: implementations log failures instead of returning them.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.MarketEvent)
}

// --- Service Ports (Business Logic) ---

// AccessGate decides whether a wallet satisfies a token gate policy.
// It never fails: every error path resolves to a denying GateDecision.
type AccessGate interface {
	Check(ctx context.Context, wallet string, policy domain.TokenGatePolicy) domain.GateDecision
}

// MarketService drives market creation and the ACTIVE -> RESOLVED transition.
type MarketService interface {
	CreateMarket(ctx context.Context, req CreateMarketRequest) (*domain.Market, error)
	GetMarket(ctx context.Context, id uuid.UUID) (*domain.Market, error)
	ListMarkets(ctx context.Context, params MarketListParams) ([]domain.Market, int64, error)
	ResolveMarket(ctx context.Context, req ResolveMarketRequest) (*domain.Market, error)
	GateStatus(ctx context.Context, wallet string) domain.GateDecision
}

// CreateMarketRequest holds validated input for market creation.
type CreateMarketRequest struct {
	Question      string
	Description   string
	Creator       string
	OutcomeTokenA string
	OutcomeTokenB string
	Expiry        time.Time
	ClientIP      string
}

// ResolveMarketRequest holds validated input for resolving a market.
type ResolveMarketRequest struct {
	MarketID    uuid.UUID
	Outcome     bool
	AdminWallet string
	ClientIP    string
}

// ClaimService evaluates payout eligibility on resolved markets.
type ClaimService interface {
	EvaluateClaim(ctx context.Context, marketID uuid.UUID, claimant string) (*domain.ClaimEligibility, error)
}

// AuthService implements wallet sign-in.
type AuthService interface {
	IssueChallenge(ctx context.Context, wallet string) (*domain.Challenge, error)
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)
}

// SignInRequest holds a signed challenge.
type SignInRequest struct {
	Wallet    string
	Nonce     string
	Signature string // base58
	ClientIP  string
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Wallet    string
	Role      domain.Role
}

// AuditService records audit trail entries without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
