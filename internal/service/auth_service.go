package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService with wallet sign-in:
// the server hands out a one-time message and the wallet signs it.
type AuthServiceImpl struct {
	challenges ports.ChallengeStore
	verifier   ports.WalletVerifier
	tokenSvc   ports.TokenService
	audit      ports.AuditService
	admins     adminSet
	ttl        time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl. audit may be nil.
func NewAuthService(
	challenges ports.ChallengeStore,
	verifier ports.WalletVerifier,
	tokenSvc ports.TokenService,
	audit ports.AuditService,
	adminWallets []string,
	challengeTTL time.Duration,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		challenges: challenges,
		verifier:   verifier,
		tokenSvc:   tokenSvc,
		audit:      audit,
		admins:     newAdminSet(adminWallets),
		ttl:        challengeTTL,
		now:        time.Now,
		log:        log,
	}
}

// IssueChallenge creates and stores a sign-in challenge for wallet.
func (s *AuthServiceImpl) IssueChallenge(ctx context.Context, wallet string) (*domain.Challenge, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, apperror.Validation("wallet address is required")
	}

	nonce, err := generateRandomHex(16)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate nonce: %w", err))
	}

	now := s.now()
	challenge := &domain.Challenge{
		Wallet:    wallet,
		Nonce:     nonce,
		Message:   domain.SignInMessage(wallet, nonce, now),
		ExpiresAt: now.Add(s.ttl).UTC(),
	}
	if err := s.challenges.Save(ctx, challenge, s.ttl); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("store challenge: %w", err))
	}
	return challenge, nil
}

// SignIn verifies a signed challenge and issues a session token.
// A challenge is consumed by the first attempt, successful or not.
func (s *AuthServiceImpl) SignIn(ctx context.Context, req ports.SignInRequest) (*ports.Session, error) {
	if req.Wallet == "" || req.Nonce == "" || req.Signature == "" {
		return nil, apperror.Validation("wallet, nonce and signature are required")
	}

	challenge, err := s.challenges.Consume(ctx, req.Nonce)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("consume challenge: %w", err))
	}
	if challenge == nil || s.now().After(challenge.ExpiresAt) {
		return nil, apperror.ErrChallengeExpired()
	}
	if challenge.Wallet != req.Wallet {
		return nil, apperror.ErrInvalidSignature()
	}

	if err := s.verifier.VerifySignature(req.Wallet, []byte(challenge.Message), req.Signature); err != nil {
		s.log.Info().Err(err).Str("wallet", req.Wallet).Msg("sign-in signature rejected")
		return nil, apperror.ErrInvalidSignature().WithCause(err)
	}

	role := domain.RoleUser
	if s.admins.contains(req.Wallet) {
		role = domain.RoleAdmin
	}

	token, expiresAt, err := s.tokenSvc.Generate(req.Wallet, role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	if s.audit != nil {
		wallet := req.Wallet
		s.audit.Log(ctx, &domain.AuditLog{
			ID:           uuid.New(),
			Actor:        &wallet,
			Action:       domain.AuditActionSignIn,
			ResourceType: "session",
			Details:      fmt.Sprintf(`{"role":%q}`, role),
			IPAddress:    req.ClientIP,
			CreatedAt:    s.now().UTC(),
		})
	}

	return &ports.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Wallet:    req.Wallet,
		Role:      role,
	}, nil
}

// generateRandomHex generates a random hex string of n bytes.
func generateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
