package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authMocks struct {
	store    *mocks.MockChallengeStore
	verifier *mocks.MockWalletVerifier
	tokens   *mocks.MockTokenService
}

func newAuthServiceWithMocks(ctrl *gomock.Controller) (*AuthServiceImpl, authMocks) {
	m := authMocks{
		store:    mocks.NewMockChallengeStore(ctrl),
		verifier: mocks.NewMockWalletVerifier(ctrl),
		tokens:   mocks.NewMockTokenService(ctrl),
	}
	svc := NewAuthService(m.store, m.verifier, m.tokens, nil, []string{adminWallet}, 5*time.Minute, newTestLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func storedChallenge(wallet string) *domain.Challenge {
	return &domain.Challenge{
		Wallet:    wallet,
		Nonce:     "abc",
		Message:   domain.SignInMessage(wallet, "abc", fixedNow),
		ExpiresAt: fixedNow.Add(5 * time.Minute),
	}
}

func TestAuthService_IssueChallenge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newAuthServiceWithMocks(ctrl)

	m.store.EXPECT().Save(gomock.Any(), gomock.Any(), 5*time.Minute).Return(nil)

	c, err := svc.IssueChallenge(context.Background(), adminWallet)
	require.NoError(t, err)
	assert.Len(t, c.Nonce, 32)
	assert.Contains(t, c.Message, adminWallet)
	assert.Contains(t, c.Message, c.Nonce)
	assert.Equal(t, fixedNow.Add(5*time.Minute), c.ExpiresAt)
}

func TestAuthService_IssueChallenge_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newAuthServiceWithMocks(ctrl)

	_, err := svc.IssueChallenge(context.Background(), "")
	assertAppError(t, err, "VAL_001")

	m.store.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	_, err = svc.IssueChallenge(context.Background(), adminWallet)
	assertAppError(t, err, "SYS_001")
}

func TestAuthService_SignIn_Roles(t *testing.T) {
	tests := []struct {
		wallet string
		role   domain.Role
	}{
		{adminWallet, domain.RoleAdmin},
		{userWallet, domain.RoleUser},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, m := newAuthServiceWithMocks(ctrl)

			c := storedChallenge(tt.wallet)
			m.store.EXPECT().Consume(gomock.Any(), "abc").Return(c, nil)
			m.verifier.EXPECT().VerifySignature(tt.wallet, []byte(c.Message), "sig").Return(nil)
			m.tokens.EXPECT().Generate(tt.wallet, tt.role).Return("jwt", fixedNow.Add(time.Hour), nil)

			session, err := svc.SignIn(context.Background(), ports.SignInRequest{Wallet: tt.wallet, Nonce: "abc", Signature: "sig"})
			require.NoError(t, err)
			assert.Equal(t, "jwt", session.Token)
			assert.Equal(t, tt.role, session.Role)
		})
	}
}

func TestAuthService_SignIn_Rejections(t *testing.T) {
	expired := storedChallenge(adminWallet)
	expired.ExpiresAt = fixedNow.Add(-time.Second)

	tests := []struct {
		name  string
		setup func(m authMocks)
		req   ports.SignInRequest
		code  string
	}{
		{
			name: "missing fields",
			req:  ports.SignInRequest{Wallet: adminWallet},
			code: "VAL_001",
		},
		{
			name: "unknown nonce",
			setup: func(m authMocks) {
				m.store.EXPECT().Consume(gomock.Any(), "abc").Return(nil, nil)
			},
			req:  ports.SignInRequest{Wallet: adminWallet, Nonce: "abc", Signature: "sig"},
			code: "AUTH_002",
		},
		{
			name: "expired challenge",
			setup: func(m authMocks) {
				m.store.EXPECT().Consume(gomock.Any(), "abc").Return(expired, nil)
			},
			req:  ports.SignInRequest{Wallet: adminWallet, Nonce: "abc", Signature: "sig"},
			code: "AUTH_002",
		},
		{
			name: "challenge issued to another wallet",
			setup: func(m authMocks) {
				m.store.EXPECT().Consume(gomock.Any(), "abc").Return(storedChallenge(userWallet), nil)
			},
			req:  ports.SignInRequest{Wallet: adminWallet, Nonce: "abc", Signature: "sig"},
			code: "AUTH_001",
		},
		{
			name: "bad signature",
			setup: func(m authMocks) {
				m.store.EXPECT().Consume(gomock.Any(), "abc").Return(storedChallenge(adminWallet), nil)
				m.verifier.EXPECT().VerifySignature(adminWallet, gomock.Any(), "sig").Return(errors.New("signature mismatch"))
			},
			req:  ports.SignInRequest{Wallet: adminWallet, Nonce: "abc", Signature: "sig"},
			code: "AUTH_001",
		},
		{
			name: "store failure",
			setup: func(m authMocks) {
				m.store.EXPECT().Consume(gomock.Any(), "abc").Return(nil, errors.New("redis down"))
			},
			req:  ports.SignInRequest{Wallet: adminWallet, Nonce: "abc", Signature: "sig"},
			code: "SYS_001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, m := newAuthServiceWithMocks(ctrl)
			if tt.setup != nil {
				tt.setup(m)
			}

			_, err := svc.SignIn(context.Background(), tt.req)
			assertAppError(t, err, tt.code)
		})
	}
}
