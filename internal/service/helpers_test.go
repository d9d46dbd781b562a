package service

import (
	"io"
	"testing"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminWallet = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	userWallet  = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
	gateMint    = "So11111111111111111111111111111111111111112"
	yesMint     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	noMint      = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

// testPolicy is the gate used throughout: 1000 whole tokens of a 6-decimal mint.
func testPolicy() domain.TokenGatePolicy {
	return domain.TokenGatePolicy{
		Enabled:        true,
		TokenMint:      gateMint,
		MinimumBalance: decimal.NewFromInt(1000),
		Decimals:       6,
	}
}

// held builds a found balance of whole tokens at 6 decimals.
func held(wallet, mint string, whole uint64) domain.TokenBalance {
	return domain.TokenBalance{Wallet: wallet, Mint: mint, Raw: whole * 1_000_000, Decimals: 6, Found: true}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
