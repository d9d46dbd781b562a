package domain

import "github.com/shopspring/decimal"

// TokenGatePolicy is the minimum-holding rule for market creation.
// MinimumBalance is in whole-token units; Decimals is the mint's precision.
// Loaded once at start-up and never mutated.
type TokenGatePolicy struct {
	Enabled        bool
	TokenMint      string
	MinimumBalance decimal.Decimal
	Decimals       uint8
}

// GateReason explains a GateDecision for logs and metrics.
type GateReason string

const (
	GateReasonDisabled     GateReason = "gate_disabled"
	GateReasonSufficient   GateReason = "sufficient_balance"
	GateReasonInsufficient GateReason = "insufficient_balance"
	GateReasonAbsent       GateReason = "account_absent"
	GateReasonUnavailable  GateReason = "oracle_unavailable"
	GateReasonMalformed    GateReason = "oracle_malformed"
)

// GateDecision is the outcome of one access check. It is never persisted.
type GateDecision struct {
	HasAccess bool            `json:"has_access"`
	Balance   decimal.Decimal `json:"balance"`
	Required  decimal.Decimal `json:"required"`
	Reason    GateReason      `json:"reason"`
}

// OpenGate is the decision returned while the gate is disabled.
func OpenGate() GateDecision {
	return GateDecision{
		HasAccess: true,
		Balance:   decimal.Zero,
		Required:  decimal.Zero,
		Reason:    GateReasonDisabled,
	}
}

// DenyGate is the fail-closed decision for the given reason.
func DenyGate(policy TokenGatePolicy, reason GateReason) GateDecision {
	return GateDecision{
		HasAccess: false,
		Balance:   decimal.Zero,
		Required:  policy.MinimumBalance,
		Reason:    reason,
	}
}
