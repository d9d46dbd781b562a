package handler

import (
	"prediction-market-gateway/internal/adapter/http/dto"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/pkg/apperror"
	"prediction-market-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles wallet sign-in endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Challenge handles POST /api/v1/auth/challenge.
func (h *AuthHandler) Challenge(c *gin.Context) {
	var req dto.ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	challenge, err := h.authSvc.IssueChallenge(c.Request.Context(), req.Wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ChallengeResponse{
		Wallet:    challenge.Wallet,
		Nonce:     challenge.Nonce,
		Message:   challenge.Message,
		ExpiresAt: challenge.ExpiresAt.Unix(),
	})
}

// Verify handles POST /api/v1/auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	session, err := h.authSvc.SignIn(c.Request.Context(), ports.SignInRequest{
		Wallet:    req.Wallet,
		Nonce:     req.Nonce,
		Signature: req.Signature,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SessionResponse{
		Token:  session.Token,
		Expiry: session.ExpiresAt.Unix(),
		Wallet: session.Wallet,
		Role:   string(session.Role),
	})
}
