package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/middleware"
	"github.com/findyourside/findyourside-backend/internal/services"
)

type LimitsHandler struct {
	svc services.LimitsService
}

func NewLimitsHandler(svc services.LimitsService) *LimitsHandler {
	return &LimitsHandler{svc: svc}
}

type checkLimitsRequest struct {
	Email string `json:"email"`
}

// POST /api/check-limits
func (h *LimitsHandler) CheckLimits(c *gin.Context) {
	var req checkLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}

	report, err := h.svc.Check(c.Request.Context(), req.Email, middleware.ClientIP(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, report)
}
