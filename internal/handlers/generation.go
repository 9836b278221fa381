package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/middleware"
	"github.com/findyourside/findyourside-backend/internal/prompts"
	"github.com/findyourside/findyourside-backend/internal/services"
)

type GenerationHandler struct {
	svc services.GenerationService
}

func NewGenerationHandler(svc services.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

type generateIdeasRequest struct {
	QuizData prompts.QuizProfile `json:"quizData"`
}

// POST /api/generate-ideas
func (h *GenerationHandler) GenerateIdeas(c *gin.Context) {
	var req generateIdeasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}

	result, err := h.svc.GenerateIdeas(c.Request.Context(), middleware.ClientIP(c), req.QuizData)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// POST /api/generate-playbook
func (h *GenerationHandler) GeneratePlaybook(c *gin.Context) {
	var req services.PlaybookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}

	result, err := h.svc.GeneratePlaybook(c.Request.Context(), middleware.ClientIP(c), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
