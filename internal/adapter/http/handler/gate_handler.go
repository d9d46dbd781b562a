package handler

import (
	"prediction-market-gateway/internal/adapter/http/dto"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/pkg/apperror"
	"prediction-market-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// GateHandler exposes the token gate so clients can check before creating.
type GateHandler struct {
	marketSvc ports.MarketService
}

// NewGateHandler creates a new GateHandler.
func NewGateHandler(marketSvc ports.MarketService) *GateHandler {
	return &GateHandler{marketSvc: marketSvc}
}

// GateStatus handles GET /api/v1/gate/:wallet.
func (h *GateHandler) GateStatus(c *gin.Context) {
	wallet := c.Param("wallet")
	if !dto.IsSolanaAddress(wallet) {
		response.Error(c, apperror.Validation("wallet must be a valid Solana address"))
		return
	}

	decision := h.marketSvc.GateStatus(c.Request.Context(), wallet)
	response.OK(c, dto.GateStatusResponse{Wallet: wallet, GateDecision: decision})
}
