package dto

import (
	"time"

	"prediction-market-gateway/internal/core/domain"
)

// CreateMarketRequest is the request body for market creation.
// Creator is the wallet whose token holding is checked by the gate.
type CreateMarketRequest struct {
	Question      string    `json:"question" binding:"required,max=280"`
	Description   string    `json:"description" binding:"max=2000"`
	Creator       string    `json:"creator" binding:"required,solana_address"`
	OutcomeTokenA string    `json:"outcome_token_a" binding:"required,solana_address"`
	OutcomeTokenB string    `json:"outcome_token_b" binding:"required,solana_address,nefield=OutcomeTokenA"`
	Expiry        time.Time `json:"expiry" binding:"required"`
}

// ResolveMarketRequest is the request body for resolving a market.
// AdminWallet is optional; when present it must match the signed-in wallet.
type ResolveMarketRequest struct {
	Outcome     *bool  `json:"outcome" binding:"required"`
	AdminWallet string `json:"admin_wallet" binding:"omitempty,solana_address"`
}

// ListMarketsQuery holds the query parameters of GET /markets.
type ListMarketsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE RESOLVED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ChallengeRequest is the request body for a sign-in challenge.
type ChallengeRequest struct {
	Wallet string `json:"wallet" binding:"required,solana_address"`
}

// VerifyRequest carries a signed challenge.
type VerifyRequest struct {
	Wallet    string `json:"wallet" binding:"required,solana_address"`
	Nonce     string `json:"nonce" binding:"required,max=64"`
	Signature string `json:"signature" binding:"required,max=128"`
}

// MarketResponse is a market as returned by the API.
type MarketResponse struct {
	ID              string  `json:"id"`
	Question        string  `json:"question"`
	Description     string  `json:"description,omitempty"`
	Creator         string  `json:"creator"`
	OutcomeTokenA   string  `json:"outcome_token_a"`
	OutcomeTokenB   string  `json:"outcome_token_b"`
	Status          string  `json:"status"`
	Expiry          string  `json:"expiry"`
	Expired         bool    `json:"expired"`
	ResolvedOutcome *bool   `json:"resolved_outcome,omitempty"`
	ResolvedBy      *string `json:"resolved_by,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// MarketListResponse wraps a paginated market list.
type MarketListResponse struct {
	Items      []MarketResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// GateStatusResponse is the gate decision for one wallet.
type GateStatusResponse struct {
	Wallet string `json:"wallet"`
	domain.GateDecision
}

// ChallengeResponse is the message a wallet must sign.
type ChallengeResponse struct {
	Wallet    string `json:"wallet"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}

// SessionResponse is returned after a successful sign-in.
type SessionResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
	Wallet string `json:"wallet"`
	Role   string `json:"role"`
}

// NewMarketResponse converts m to its API form.
func NewMarketResponse(m *domain.Market, now time.Time) MarketResponse {
	resp := MarketResponse{
		ID:              m.ID.String(),
		Question:        m.Question,
		Description:     m.Description,
		Creator:         m.Creator,
		OutcomeTokenA:   m.OutcomeTokenA,
		OutcomeTokenB:   m.OutcomeTokenB,
		Status:          string(m.Status),
		Expiry:          m.Expiry.UTC().Format(time.RFC3339),
		Expired:         m.IsExpired(now),
		ResolvedOutcome: m.ResolvedOutcome,
		ResolvedBy:      m.ResolvedBy,
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.ResolvedAt != nil {
		s := m.ResolvedAt.UTC().Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	return resp
}
