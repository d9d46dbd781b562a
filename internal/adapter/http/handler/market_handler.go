package handler

import (
	"time"

	"prediction-market-gateway/internal/adapter/http/dto"
	"prediction-market-gateway/internal/adapter/http/middleware"
	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/pkg/apperror"
	"prediction-market-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MarketHandler handles market lifecycle and claim endpoints.
type MarketHandler struct {
	marketSvc ports.MarketService
	claimSvc  ports.ClaimService
	now       func() time.Time
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc ports.MarketService, claimSvc ports.ClaimService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc, claimSvc: claimSvc, now: time.Now}
}

// CreateMarket handles POST /api/v1/markets.
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req dto.CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	market, err := h.marketSvc.CreateMarket(c.Request.Context(), ports.CreateMarketRequest{
		Question:      req.Question,
		Description:   req.Description,
		Creator:       req.Creator,
		OutcomeTokenA: req.OutcomeTokenA,
		OutcomeTokenB: req.OutcomeTokenB,
		Expiry:        req.Expiry,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewMarketResponse(market, h.now()))
}

// GetMarket handles GET /api/v1/markets/:id.
func (h *MarketHandler) GetMarket(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}

	market, err := h.marketSvc.GetMarket(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewMarketResponse(market, h.now()))
}

// ListMarkets handles GET /api/v1/markets?status=&page=&page_size=.
func (h *MarketHandler) ListMarkets(c *gin.Context) {
	var q dto.ListMarketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	params := ports.MarketListParams{Page: q.Page, PageSize: q.PageSize}
	if q.Status != "" {
		status := domain.MarketStatus(q.Status)
		params.Status = &status
	}

	markets, total, err := h.marketSvc.ListMarkets(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The service applies defaults; echo what was actually used.
	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	now := h.now()
	items := make([]dto.MarketResponse, 0, len(markets))
	for i := range markets {
		items = append(items, dto.NewMarketResponse(&markets[i], now))
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	response.OK(c, dto.MarketListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// ResolveMarket handles POST /api/v1/markets/:id/resolve. It requires an
// admin session; the resolving wallet is the session's wallet.
func (h *MarketHandler) ResolveMarket(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}

	wallet, ok := middleware.Wallet(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ResolveMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)
	if req.AdminWallet != "" && req.AdminWallet != wallet {
		response.Error(c, apperror.ErrAdminRequired())
		return
	}

	market, err := h.marketSvc.ResolveMarket(c.Request.Context(), ports.ResolveMarketRequest{
		MarketID:    id,
		Outcome:     *req.Outcome,
		AdminWallet: wallet,
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewMarketResponse(market, h.now()))
}

// EvaluateClaim handles GET /api/v1/markets/:id/claims/:wallet.
func (h *MarketHandler) EvaluateClaim(c *gin.Context) {
	id, ok := marketID(c)
	if !ok {
		return
	}

	wallet := c.Param("wallet")
	if !dto.IsSolanaAddress(wallet) {
		response.Error(c, apperror.Validation("wallet must be a valid Solana address"))
		return
	}

	eligibility, err := h.claimSvc.EvaluateClaim(c.Request.Context(), id, wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, eligibility)
}

// marketID parses the :id path parameter, answering 400 when it is malformed.
func marketID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("market id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
