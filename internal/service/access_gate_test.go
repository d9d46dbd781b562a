package service

import (
	"context"
	"errors"
	"testing"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAccessGate_Disabled_NeverCallsOracle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oracle := mocks.NewMockBalanceOracle(ctrl)
	gate := NewAccessGate(oracle, newTestLogger())

	policy := testPolicy()
	policy.Enabled = false

	for _, wallet := range []string{userWallet, adminWallet, "", "not-a-wallet"} {
		d := gate.Check(context.Background(), wallet, policy)
		assert.True(t, d.HasAccess, "wallet %q", wallet)
		assert.True(t, d.Balance.IsZero())
		assert.True(t, d.Required.IsZero())
		assert.Equal(t, domain.GateReasonDisabled, d.Reason)
	}
}

func TestAccessGate_Check(t *testing.T) {
	unavailable := &domain.OracleError{Kind: domain.OracleFailureUnavailable, Err: errors.New("connection refused")}
	malformed := &domain.OracleError{Kind: domain.OracleFailureMalformed, Err: errors.New("invalid base58")}
	deadline := &domain.OracleError{Kind: domain.OracleFailureUnavailable, Err: context.DeadlineExceeded}

	tests := []struct {
		name       string
		balance    domain.TokenBalance
		err        error
		wantAccess bool
		wantBal    string
		wantReason domain.GateReason
	}{
		{"scenario A below minimum", held(userWallet, gateMint, 500), nil, false, "500", domain.GateReasonInsufficient},
		{"scenario B above minimum", held(userWallet, gateMint, 1500), nil, true, "1500", domain.GateReasonSufficient},
		{"exactly at minimum", held(userWallet, gateMint, 1000), nil, true, "1000", domain.GateReasonSufficient},
		{"one unit short", domain.TokenBalance{Raw: 999_999_999, Decimals: 6, Found: true}, nil, false, "999.999999", domain.GateReasonInsufficient},
		{"scenario C no token account", domain.TokenBalance{Found: false}, nil, false, "0", domain.GateReasonAbsent},
		{"node unreachable", domain.TokenBalance{}, unavailable, false, "0", domain.GateReasonUnavailable},
		{"deadline exceeded", domain.TokenBalance{}, deadline, false, "0", domain.GateReasonUnavailable},
		{"malformed reply", domain.TokenBalance{}, malformed, false, "0", domain.GateReasonMalformed},
		{"untyped error", domain.TokenBalance{}, errors.New("boom"), false, "0", domain.GateReasonUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			oracle := mocks.NewMockBalanceOracle(ctrl)
			oracle.EXPECT().TokenBalance(gomock.Any(), userWallet, gateMint).Return(tt.balance, tt.err)

			d := NewAccessGate(oracle, newTestLogger()).Check(context.Background(), userWallet, testPolicy())

			assert.Equal(t, tt.wantAccess, d.HasAccess)
			assertDecimal(t, tt.wantBal, d.Balance)
			assertDecimal(t, "1000", d.Required)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestAccessGate_FailClosedIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oracle := mocks.NewMockBalanceOracle(ctrl)
	oracle.EXPECT().TokenBalance(gomock.Any(), userWallet, gateMint).
		Return(domain.TokenBalance{}, &domain.OracleError{Kind: domain.OracleFailureUnavailable, Err: errors.New("503")}).
		Times(3)

	gate := NewAccessGate(oracle, newTestLogger())
	first := gate.Check(context.Background(), userWallet, testPolicy())
	for i := 0; i < 2; i++ {
		assert.Equal(t, first, gate.Check(context.Background(), userWallet, testPolicy()))
	}
	assert.False(t, first.HasAccess)
}

func TestAccessGate_AbsentAccountDeniesEvenWithZeroMinimum(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oracle := mocks.NewMockBalanceOracle(ctrl)
	oracle.EXPECT().TokenBalance(gomock.Any(), userWallet, gateMint).Return(domain.TokenBalance{}, nil)

	policy := testPolicy()
	policy.MinimumBalance = decimal.Zero

	d := NewAccessGate(oracle, newTestLogger()).Check(context.Background(), userWallet, policy)
	assert.False(t, d.HasAccess)
	assert.Equal(t, domain.GateReasonAbsent, d.Reason)
}

func TestAccessGate_NormalizesWithPolicyDecimals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// 1_000_000_000 raw is 1 token at 9 decimals but 1000 at the configured 6.
	oracle := mocks.NewMockBalanceOracle(ctrl)
	oracle.EXPECT().TokenBalance(gomock.Any(), userWallet, gateMint).
		Return(domain.TokenBalance{Raw: 1_000_000_000, Decimals: 9, Found: true}, nil)

	d := NewAccessGate(oracle, newTestLogger()).Check(context.Background(), userWallet, testPolicy())
	assert.True(t, d.HasAccess)
	assertDecimal(t, "1000", d.Balance)
}

func TestAccessGate_OraclePanicDenies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oracle := mocks.NewMockBalanceOracle(ctrl)
	oracle.EXPECT().TokenBalance(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string) (domain.TokenBalance, error) {
			panic("nil client")
		})

	var d domain.GateDecision
	assert.NotPanics(t, func() {
		d = NewAccessGate(oracle, newTestLogger()).Check(context.Background(), userWallet, testPolicy())
	})
	assert.False(t, d.HasAccess)
	assertDecimal(t, "0", d.Balance)
	assertDecimal(t, "1000", d.Required)
}
