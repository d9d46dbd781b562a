package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClaimEligibility is computed per claim request and never stored.
// WinningTokenMint is the selected side's mint, nil when nothing is claimable.
// Winning is true when the selected side matches the resolved outcome.
type ClaimEligibility struct {
	MarketID         uuid.UUID       `json:"market_id"`
	Claimant         string          `json:"claimant"`
	Eligible         bool            `json:"eligible"`
	WinningTokenMint *string         `json:"winning_token_mint"`
	ClaimantBalance  decimal.Decimal `json:"claimant_balance"`
	Side             Side            `json:"side,omitempty"`
	Winning          bool            `json:"winning"`
}
