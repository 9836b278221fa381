package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/findyourside/findyourside-backend/internal/apierr"
	"github.com/findyourside/findyourside-backend/internal/parse"
	"github.com/findyourside/findyourside-backend/internal/prompts"
	"github.com/findyourside/findyourside-backend/internal/services"
)

type stubGeneration struct {
	ideas    *services.IdeasResult
	playbook *services.PlaybookResult
	err      error
	lastIP   string
}

func (s *stubGeneration) GenerateIdeas(ctx context.Context, ip string, profile prompts.QuizProfile) (*services.IdeasResult, error) {
	s.lastIP = ip
	return s.ideas, s.err
}

func (s *stubGeneration) GeneratePlaybook(ctx context.Context, ip string, req services.PlaybookRequest) (*services.PlaybookResult, error) {
	s.lastIP = ip
	return s.playbook, s.err
}

func newTestRouter(h *GenerationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/generate-ideas", h.GenerateIdeas)
	router.POST("/api/generate-playbook", h.GeneratePlaybook)
	return router
}

func TestGenerateIdeasHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &stubGeneration{ideas: &services.IdeasResult{Ideas: []parse.Idea{{Name: "A"}}}}
		router := newTestRouter(NewGenerationHandler(stub))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/generate-ideas",
			strings.NewReader(`{"quizData": {"email": "a@b.com"}}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var resp services.IdeasResult
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Ideas) != 1 || resp.Ideas[0].Name != "A" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("quota denial maps to envelope", func(t *testing.T) {
		stub := &stubGeneration{err: apierr.New(http.StatusTooManyRequests, apierr.CodeIPLimit,
			fmt.Errorf("too many requests from your network, try again tomorrow"))}
		router := newTestRouter(NewGenerationHandler(stub))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/generate-ideas",
			strings.NewReader(`{"quizData": {"email": "a@b.com"}}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", w.Code)
		}
		var envelope ErrorEnvelope
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.Error.Code != apierr.CodeIPLimit {
			t.Errorf("code = %q, want %q", envelope.Error.Code, apierr.CodeIPLimit)
		}
		if envelope.Error.Message == "" {
			t.Error("empty error message")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(NewGenerationHandler(&stubGeneration{}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/generate-ideas", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestGeneratePlaybookHandler(t *testing.T) {
	stub := &stubGeneration{playbook: &services.PlaybookResult{
		Playbook:           parse.FallbackPlaybook("X"),
		Source:             "fallback",
		Degraded:           true,
		PlaybooksRemaining: 1,
	}}
	router := newTestRouter(NewGenerationHandler(stub))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-playbook",
		strings.NewReader(`{"idea": {"name": "X"}, "userEmail": "a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["source"] != "fallback" || resp["degraded"] != true {
		t.Errorf("degraded fallback must be tagged in the response, got %v", resp)
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthcheck", HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}
