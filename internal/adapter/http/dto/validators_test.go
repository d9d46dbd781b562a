package dto

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

const (
	wallet  = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	yesMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	noMint  = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateMarketRequest{
		Question: "  Will SOL close above $200?  ",
		Creator:  " " + wallet + "\n",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Will SOL close above $200?", req.Question)
	assert.Equal(t, wallet, req.Creator)
}

func TestSanitizeStruct_KeepsMarkupAndNewlines(t *testing.T) {
	req := CreateMarketRequest{
		Question:    "BTC > 100k & ETH < 5k?",
		Description: "line one\n\tline two\x00\x07",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "BTC > 100k & ETH < 5k?", req.Question)
	assert.Equal(t, "line one\n\tline two", req.Description)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	s := "  padded  "
	req := struct{ Note *string }{Note: &s}
	SanitizeStruct(&req)

	assert.Equal(t, "padded", *req.Note)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := struct{ Note *string }{}
	SanitizeStruct(&req)
	assert.Nil(t, req.Note)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	req := ChallengeRequest{Wallet: "  x  "}
	SanitizeStruct(req)
	assert.Equal(t, "  x  ", req.Wallet)
}

// --- Binding validation tests ---

func validCreate() CreateMarketRequest {
	return CreateMarketRequest{
		Question:      "Will it rain tomorrow?",
		Creator:       wallet,
		OutcomeTokenA: yesMint,
		OutcomeTokenB: noMint,
		Expiry:        time.Now().Add(24 * time.Hour),
	}
}

func TestCreateMarketRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateMarketRequest)
		wantErr bool
	}{
		{"valid", func(*CreateMarketRequest) {}, false},
		{"missing creator", func(r *CreateMarketRequest) { r.Creator = "" }, true},
		{"creator not base58", func(r *CreateMarketRequest) { r.Creator = "0xabc" }, true},
		{"creator wrong length", func(r *CreateMarketRequest) { r.Creator = "3yZe7d" }, true},
		{"missing question", func(r *CreateMarketRequest) { r.Question = "" }, true},
		{"same outcome tokens", func(r *CreateMarketRequest) { r.OutcomeTokenB = yesMint }, true},
		{"missing expiry", func(r *CreateMarketRequest) { r.Expiry = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			err := binding.Validator.ValidateStruct(&req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveMarketRequest_Validation(t *testing.T) {
	yes := true

	assert.NoError(t, binding.Validator.ValidateStruct(&ResolveMarketRequest{Outcome: &yes}))
	assert.NoError(t, binding.Validator.ValidateStruct(&ResolveMarketRequest{Outcome: &yes, AdminWallet: wallet}))
	assert.Error(t, binding.Validator.ValidateStruct(&ResolveMarketRequest{}), "outcome is required")
	assert.Error(t, binding.Validator.ValidateStruct(&ResolveMarketRequest{Outcome: &yes, AdminWallet: "nope"}))
}

func TestIsSolanaAddress(t *testing.T) {
	assert.True(t, IsSolanaAddress(wallet))
	assert.True(t, IsSolanaAddress("So11111111111111111111111111111111111111112"))
	assert.False(t, IsSolanaAddress(""))
	assert.False(t, IsSolanaAddress("0OIl"))
}
