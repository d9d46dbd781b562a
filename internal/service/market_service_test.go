package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prediction-market-gateway/internal/adapter/storage/memory"
	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/core/ports/mocks"
	"prediction-market-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type marketMocks struct {
	repo      *mocks.MockMarketRepository
	gate      *mocks.MockAccessGate
	publisher *mocks.MockEventPublisher
}

func newMarketServiceWithMocks(ctrl *gomock.Controller, opts MarketOptions) (*MarketServiceImpl, marketMocks) {
	m := marketMocks{
		repo:      mocks.NewMockMarketRepository(ctrl),
		gate:      mocks.NewMockAccessGate(ctrl),
		publisher: mocks.NewMockEventPublisher(ctrl),
	}
	svc := NewMarketService(m.repo, m.gate, testPolicy(), m.publisher, nil, opts, newTestLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func defaultOpts() MarketOptions {
	return MarketOptions{AdminWallets: []string{adminWallet}, AllowEarlyResolution: true}
}

func validCreateRequest() ports.CreateMarketRequest {
	return ports.CreateMarketRequest{
		Question:      "Will SOL close above 300 on June 1?",
		Creator:       userWallet,
		OutcomeTokenA: yesMint,
		OutcomeTokenB: noMint,
		Expiry:        fixedNow.Add(30 * 24 * time.Hour),
		ClientIP:      "10.0.0.1",
	}
}

func activeMarket(expiry time.Time) *domain.Market {
	return &domain.Market{
		ID:            uuid.New(),
		Question:      "Q?",
		Creator:       userWallet,
		OutcomeTokenA: yesMint,
		OutcomeTokenB: noMint,
		Status:        domain.MarketStatusActive,
		Expiry:        expiry,
		CreatedAt:     fixedNow.Add(-time.Hour),
	}
}

func resolvedCopy(m *domain.Market, outcome bool) *domain.Market {
	cp := *m
	cp.Status = domain.MarketStatusResolved
	cp.ResolvedOutcome = &outcome
	by := adminWallet
	cp.ResolvedBy = &by
	return &cp
}

func allow() domain.GateDecision {
	return domain.GateDecision{HasAccess: true, Balance: decimal.NewFromInt(1500), Required: decimal.NewFromInt(1000), Reason: domain.GateReasonSufficient}
}

// --- CreateMarket ---

func TestMarketService_CreateMarket_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	m.gate.EXPECT().Check(gomock.Any(), userWallet, testPolicy()).Return(allow())
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, market *domain.Market) error {
			assert.Equal(t, domain.MarketStatusActive, market.Status)
			assert.Nil(t, market.ResolvedOutcome)
			return nil
		})
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, e domain.MarketEvent) {
			assert.Equal(t, domain.MarketEventCreated, e.Type)
			assert.Equal(t, userWallet, e.Actor)
		})

	market, err := svc.CreateMarket(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, userWallet, market.Creator)
	assert.Equal(t, yesMint, market.OutcomeTokenA)
}

func TestMarketService_CreateMarket_MissingCreator(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, _ := newMarketServiceWithMocks(ctrl, defaultOpts())

	req := validCreateRequest()
	req.Creator = "   "

	_, err := svc.CreateMarket(context.Background(), req)
	assertAppError(t, err, "VAL_001")
}

func TestMarketService_CreateMarket_InvalidMarket(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ports.CreateMarketRequest)
	}{
		{"same outcome tokens", func(r *ports.CreateMarketRequest) { r.OutcomeTokenB = r.OutcomeTokenA }},
		{"empty question", func(r *ports.CreateMarketRequest) { r.Question = "" }},
		{"expiry in the past", func(r *ports.CreateMarketRequest) { r.Expiry = fixedNow.Add(-time.Minute) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, _ := newMarketServiceWithMocks(ctrl, defaultOpts())

			req := validCreateRequest()
			tt.mutate(&req)
			_, err := svc.CreateMarket(context.Background(), req)
			assertAppError(t, err, "VAL_001")
		})
	}
}

func TestMarketService_CreateMarket_GateDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	m.gate.EXPECT().Check(gomock.Any(), userWallet, gomock.Any()).Return(domain.GateDecision{
		HasAccess: false,
		Balance:   decimal.NewFromInt(500),
		Required:  decimal.NewFromInt(1000),
		Reason:    domain.GateReasonInsufficient,
	})

	_, err := svc.CreateMarket(context.Background(), validCreateRequest())
	assertAppError(t, err, "GATE_001")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "500", appErr.Details["balance"])
	assert.Equal(t, "1000", appErr.Details["required"])
}

func TestMarketService_CreateMarket_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	m.gate.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(allow())
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err := svc.CreateMarket(context.Background(), validCreateRequest())
	assertAppError(t, err, "SYS_001")
}

// --- Get / List ---

func TestMarketService_GetMarket_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	id := uuid.New()
	m.repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.GetMarket(context.Background(), id)
	assertAppError(t, err, "MKT_001")
}

func TestMarketService_ListMarkets_Pagination(t *testing.T) {
	active := domain.MarketStatusActive
	bogus := domain.MarketStatus("PENDING")

	tests := []struct {
		name     string
		in       ports.MarketListParams
		wantPage int
		wantSize int
		wantErr  string
	}{
		{"defaults", ports.MarketListParams{}, 1, 20, ""},
		{"capped", ports.MarketListParams{Page: 3, PageSize: 500, Status: &active}, 3, 100, ""},
		{"unknown status", ports.MarketListParams{Status: &bogus}, 0, 0, "VAL_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

			if tt.wantErr == "" {
				m.repo.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p ports.MarketListParams) ([]domain.Market, int64, error) {
						assert.Equal(t, tt.wantPage, p.Page)
						assert.Equal(t, tt.wantSize, p.PageSize)
						return []domain.Market{}, 0, nil
					})
			}

			_, _, err := svc.ListMarkets(context.Background(), tt.in)
			if tt.wantErr != "" {
				assertAppError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

// --- ResolveMarket ---

func TestMarketService_ResolveMarket_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	market := activeMarket(fixedNow.Add(time.Hour))
	gomock.InOrder(
		m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), market.ID, domain.MarketStatusActive, true, adminWallet, fixedNow).Return(true, nil),
		m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(resolvedCopy(market, true), nil),
	)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, e domain.MarketEvent) {
			assert.Equal(t, domain.MarketEventResolved, e.Type)
			require.NotNil(t, e.Outcome)
			assert.True(t, *e.Outcome)
		})

	got, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: true, AdminWallet: adminWallet})
	require.NoError(t, err)
	assert.Equal(t, domain.MarketStatusResolved, got.Status)
	assert.True(t, *got.ResolvedOutcome)
}

func TestMarketService_ResolveMarket_AlreadyResolved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	market := resolvedCopy(activeMarket(fixedNow), true)
	m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), market.ID, domain.MarketStatusActive, false, adminWallet, gomock.Any()).Return(false, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(market, nil)

	_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: false, AdminWallet: adminWallet})
	assertAppError(t, err, "MKT_002")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestMarketService_ResolveMarket_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	id := uuid.New()
	m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), id, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: id, Outcome: true, AdminWallet: adminWallet})
	assertAppError(t, err, "MKT_001")
}

func TestMarketService_ResolveMarket_RequiresAdmin(t *testing.T) {
	tests := []struct {
		name   string
		admins []string
		wallet string
		code   string
	}{
		{"missing wallet", []string{adminWallet}, "", "VAL_001"},
		{"not in admin set", []string{adminWallet}, userWallet, "AUTH_004"},
		{"no admins configured", nil, adminWallet, "AUTH_004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			svc, _ := newMarketServiceWithMocks(ctrl, MarketOptions{AdminWallets: tt.admins, AllowEarlyResolution: true})

			_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: uuid.New(), Outcome: true, AdminWallet: tt.wallet})
			assertAppError(t, err, tt.code)
		})
	}
}

func TestMarketService_ResolveMarket_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("conn reset"))

	_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: uuid.New(), Outcome: true, AdminWallet: adminWallet})
	assertAppError(t, err, "SYS_001")
}

// Early resolution is configurable; both interpretations are pinned here.
func TestMarketService_ResolveMarket_BeforeExpiry(t *testing.T) {
	t.Run("permitted by default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

		market := activeMarket(fixedNow.Add(24 * time.Hour))
		m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), market.ID, domain.MarketStatusActive, true, adminWallet, fixedNow).Return(true, nil)
		m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(resolvedCopy(market, true), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any())

		_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: true, AdminWallet: adminWallet})
		assert.NoError(t, err)
	})

	t.Run("rejected when disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newMarketServiceWithMocks(ctrl, MarketOptions{AdminWallets: []string{adminWallet}, AllowEarlyResolution: false})

		market := activeMarket(fixedNow.Add(24 * time.Hour))
		m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(market, nil)

		_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: true, AdminWallet: adminWallet})
		assertAppError(t, err, "MKT_004")
	})

	t.Run("expired market resolves when disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newMarketServiceWithMocks(ctrl, MarketOptions{AdminWallets: []string{adminWallet}, AllowEarlyResolution: false})

		market := activeMarket(fixedNow.Add(-time.Minute))
		gomock.InOrder(
			m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(market, nil),
			m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), market.ID, domain.MarketStatusActive, false, adminWallet, fixedNow).Return(true, nil),
			m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(resolvedCopy(market, false), nil),
		)
		m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any())

		got, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: false, AdminWallet: adminWallet})
		require.NoError(t, err)
		assert.False(t, *got.ResolvedOutcome)
	})

	t.Run("already resolved still reports conflict when disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, m := newMarketServiceWithMocks(ctrl, MarketOptions{AdminWallets: []string{adminWallet}, AllowEarlyResolution: false})

		market := resolvedCopy(activeMarket(fixedNow.Add(time.Hour)), true)
		m.repo.EXPECT().GetByID(gomock.Any(), market.ID).Return(market, nil).Times(2)
		m.repo.EXPECT().CompareAndSetResolved(gomock.Any(), market.ID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: true, AdminWallet: adminWallet})
		assertAppError(t, err, "MKT_002")
	})
}

// Scenario D against the in-memory store: the second resolve loses.
func TestMarketService_ResolveTwice_SecondFails(t *testing.T) {
	store := memory.NewMarketRepo()
	svc := NewMarketService(store, NewAccessGate(nil, newTestLogger()), domain.TokenGatePolicy{}, nil, nil, defaultOpts(), newTestLogger())

	market, err := svc.CreateMarket(context.Background(), ports.CreateMarketRequest{
		Question: "Q?", Creator: userWallet, OutcomeTokenA: yesMint, OutcomeTokenB: noMint,
		Expiry: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: true, AdminWallet: adminWallet})
	require.NoError(t, err)

	_, err = svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{MarketID: market.ID, Outcome: false, AdminWallet: adminWallet})
	assertAppError(t, err, "MKT_002")

	stored, err := svc.GetMarket(context.Background(), market.ID)
	require.NoError(t, err)
	assert.True(t, *stored.ResolvedOutcome)
}

func TestMarketService_ConcurrentResolve_ExactlyOneWins(t *testing.T) {
	store := memory.NewMarketRepo()
	svc := NewMarketService(store, NewAccessGate(nil, newTestLogger()), domain.TokenGatePolicy{}, nil, nil, defaultOpts(), newTestLogger())

	for round := 0; round < 50; round++ {
		market, err := svc.CreateMarket(context.Background(), ports.CreateMarketRequest{
			Question: "Q?", Creator: userWallet, OutcomeTokenA: yesMint, OutcomeTokenB: noMint,
			Expiry: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			outcomes = []bool{true, false}
			errs     = make([]error, len(outcomes))
		)
		for i, outcome := range outcomes {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.ResolveMarket(context.Background(), ports.ResolveMarketRequest{
					MarketID: market.ID, Outcome: outcome, AdminWallet: adminWallet,
				})
			}()
		}
		wg.Wait()

		var winner = -1
		for i, err := range errs {
			if err == nil {
				require.Equal(t, -1, winner, "both resolves succeeded")
				winner = i
				continue
			}
			assertAppError(t, err, "MKT_002")
		}
		require.NotEqual(t, -1, winner, "no resolve succeeded")

		stored, err := svc.GetMarket(context.Background(), market.ID)
		require.NoError(t, err)
		assert.Equal(t, outcomes[winner], *stored.ResolvedOutcome)
	}
}

func TestMarketService_GateStatus_UsesConfiguredPolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, m := newMarketServiceWithMocks(ctrl, defaultOpts())

	m.gate.EXPECT().Check(gomock.Any(), userWallet, testPolicy()).Return(allow())

	d := svc.GateStatus(context.Background(), userWallet)
	assert.True(t, d.HasAccess)
}
