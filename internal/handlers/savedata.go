package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/services"
)

type SubmissionHandler struct {
	svc services.SubmissionService
}

func NewSubmissionHandler(svc services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// POST /api/save-data
func (h *SubmissionHandler) SaveData(c *gin.Context) {
	var req services.SaveDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}

	saved, err := h.svc.SaveData(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "id": saved.ID})
}
