package service

import (
	"context"
	"fmt"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/metrics"

	"github.com/rs/zerolog"
)

// AccessGateImpl implements ports.AccessGate on top of a BalanceOracle.
// Every failure path fails closed.
type AccessGateImpl struct {
	oracle ports.BalanceOracle
	log    zerolog.Logger
}

// NewAccessGate creates a new AccessGateImpl.
func NewAccessGate(oracle ports.BalanceOracle, log zerolog.Logger) *AccessGateImpl {
	return &AccessGateImpl{oracle: oracle, log: log}
}

// Check evaluates wallet against policy. It never returns an error; oracle
// failures and absent token accounts produce a denial with a zero balance.
func (g *AccessGateImpl) Check(ctx context.Context, wallet string, policy domain.TokenGatePolicy) (decision domain.GateDecision) {
	if !policy.Enabled {
		decision = domain.OpenGate()
		g.record(wallet, decision, nil)
		return decision
	}

	defer func() {
		if r := recover(); r != nil {
			decision = domain.DenyGate(policy, domain.GateReasonUnavailable)
			g.record(wallet, decision, fmt.Errorf("oracle panic: %v", r))
		}
	}()

	balance, err := g.oracle.TokenBalance(ctx, wallet, policy.TokenMint)
	if err != nil {
		reason := domain.GateReasonUnavailable
		if kind, ok := domain.OracleFailureOf(err); ok && kind == domain.OracleFailureMalformed {
			reason = domain.GateReasonMalformed
		}
		decision = domain.DenyGate(policy, reason)
		g.record(wallet, decision, err)
		return decision
	}

	if !balance.Found {
		decision = domain.DenyGate(policy, domain.GateReasonAbsent)
		g.record(wallet, decision, nil)
		return decision
	}

	if balance.Decimals != policy.Decimals {
		g.log.Warn().
			Str("mint", policy.TokenMint).
			Uint8("onchain_decimals", balance.Decimals).
			Uint8("policy_decimals", policy.Decimals).
			Msg("token gate decimals differ from the mint, normalizing with the configured value")
	}

	amount := balance.AmountAt(policy.Decimals)
	decision = domain.GateDecision{
		HasAccess: amount.GreaterThanOrEqual(policy.MinimumBalance),
		Balance:   amount,
		Required:  policy.MinimumBalance,
		Reason:    domain.GateReasonInsufficient,
	}
	if decision.HasAccess {
		decision.Reason = domain.GateReasonSufficient
	}
	g.record(wallet, decision, nil)
	return decision
}

// record emits the per-check audit line and decision counter.
func (g *AccessGateImpl) record(wallet string, d domain.GateDecision, cause error) {
	label := "deny"
	if d.HasAccess {
		label = "allow"
	}
	metrics.GateDecisions.WithLabelValues(label, string(d.Reason)).Inc()

	evt := g.log.Info()
	if cause != nil {
		evt = g.log.Warn().Err(cause)
	}
	evt.Str("wallet", wallet).
		Str("balance", d.Balance.String()).
		Str("required", d.Required.String()).
		Bool("has_access", d.HasAccess).
		Str("reason", string(d.Reason)).
		Msg("token gate check")
}
