package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "ACTIVE"
	MarketStatusResolved MarketStatus = "RESOLVED"
)

// Valid reports whether s is a known status.
func (s MarketStatus) Valid() bool {
	return s == MarketStatusActive || s == MarketStatusResolved
}

// Side names one of the two outcome tokens of a binary market.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// SideForOutcome maps a resolved outcome to the side that won it.
func SideForOutcome(outcome bool) Side {
	if outcome {
		return SideYes
	}
	return SideNo
}

const maxQuestionLength = 280

// Market is a binary YES/NO prediction market.
// ResolvedOutcome is set if and only if Status is RESOLVED; RESOLVED is terminal.
type Market struct {
	ID              uuid.UUID    `json:"id"`
	Question        string       `json:"question"`
	Description     string       `json:"description,omitempty"`
	Creator         string       `json:"creator"`
	OutcomeTokenA   string       `json:"outcome_token_a"` // YES mint
	OutcomeTokenB   string       `json:"outcome_token_b"` // NO mint
	Status          MarketStatus `json:"status"`
	Expiry          time.Time    `json:"expiry"`
	ResolvedOutcome *bool        `json:"resolved_outcome,omitempty"`
	ResolvedBy      *string      `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewMarket builds an ACTIVE market and checks its invariants.
func NewMarket(question, description, creator, tokenA, tokenB string, expiry, now time.Time) (*Market, error) {
	m := &Market{
		ID:            uuid.New(),
		Question:      strings.TrimSpace(question),
		Description:   strings.TrimSpace(description),
		Creator:       strings.TrimSpace(creator),
		OutcomeTokenA: strings.TrimSpace(tokenA),
		OutcomeTokenB: strings.TrimSpace(tokenB),
		Status:        MarketStatusActive,
		Expiry:        expiry.UTC(),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if !m.Expiry.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidMarket)
	}
	return m, nil
}

// Validate checks the structural invariants of a market.
func (m *Market) Validate() error {
	switch {
	case m.Question == "":
		return fmt.Errorf("%w: question is required", ErrInvalidMarket)
	case len(m.Question) > maxQuestionLength:
		return fmt.Errorf("%w: question exceeds %d characters", ErrInvalidMarket, maxQuestionLength)
	case m.Creator == "":
		return fmt.Errorf("%w: creator is required", ErrInvalidMarket)
	case m.OutcomeTokenA == "" || m.OutcomeTokenB == "":
		return fmt.Errorf("%w: both outcome tokens are required", ErrInvalidMarket)
	case m.OutcomeTokenA == m.OutcomeTokenB:
		return fmt.Errorf("%w: outcome tokens must be distinct", ErrInvalidMarket)
	case !m.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMarket, m.Status)
	case (m.Status == MarketStatusResolved) != (m.ResolvedOutcome != nil):
		return fmt.Errorf("%w: resolved outcome must be set exactly when resolved", ErrInvalidMarket)
	}
	return nil
}

// IsResolved returns true once the market reached its terminal state.
func (m *Market) IsResolved() bool {
	return m.Status == MarketStatusResolved
}

// IsExpired reports whether the betting window closed before now.
func (m *Market) IsExpired(now time.Time) bool {
	return m.Expiry.Before(now)
}

// TokenFor returns the outcome token mint for a side.
func (m *Market) TokenFor(side Side) string {
	if side == SideYes {
		return m.OutcomeTokenA
	}
	return m.OutcomeTokenB
}

// WinningSide returns the side matching the resolved outcome.
// ok is false while the market is still ACTIVE.
func (m *Market) WinningSide() (side Side, ok bool) {
	if !m.IsResolved() || m.ResolvedOutcome == nil {
		return "", false
	}
	return SideForOutcome(*m.ResolvedOutcome), true
}
