package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/services"
)

type EmailHandler struct {
	svc services.EmailService
}

func NewEmailHandler(svc services.EmailService) *EmailHandler {
	return &EmailHandler{svc: svc}
}

// POST /api/send-email
func (h *EmailHandler) SendPlaybook(c *gin.Context) {
	var req services.SendPlaybookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}

	messageID, err := h.svc.SendPlaybook(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "messageId": messageID})
}
