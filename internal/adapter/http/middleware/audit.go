package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditDenied records write attempts rejected with 401 or 403. Successful
// writes are audited by the services themselves.
func AuditDenied(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		resourceType, resourceID := mapPathToResource(c.FullPath(), c)
		if resourceType == "" {
			return
		}

		var actor *string
		if w, ok := Wallet(c); ok {
			actor = &w
		}

		fields := map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}
		if code := lastErrorCode(c); code != "" {
			fields["error_code"] = code
		}
		details, _ := json.Marshal(fields)

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Actor:        actor,
			Action:       domain.AuditActionAccessDenied,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToResource(route string, c *gin.Context) (string, string) {
	switch {
	case route == "/api/v1/markets":
		return "market", ""
	case strings.HasPrefix(route, "/api/v1/markets/:id"):
		return "market", c.Param("id")
	case strings.HasPrefix(route, "/api/v1/auth/"):
		return "session", ""
	}
	return "", ""
}

func lastErrorCode(c *gin.Context) string {
	last := c.Errors.Last()
	if last == nil {
		return ""
	}
	var appErr *apperror.AppError
	if errors.As(last.Err, &appErr) {
		return appErr.Code
	}
	return ""
}
