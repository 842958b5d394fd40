package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kanda-lab/chatreport/internal/analyzer"
	"github.com/kanda-lab/chatreport/internal/chatlog"
	"github.com/kanda-lab/chatreport/internal/config"
	"github.com/kanda-lab/chatreport/internal/report"
)

// AnalysisService is the part of the analyzer the API needs.
type AnalysisService interface {
	Analyze(ctx context.Context, target string, dates report.DateSpec) (report.AnalysisReport, error)
	Report(id string) (report.AnalysisReport, bool)
	Reports() map[string]report.AnalysisReport
}

// ConversationService lists conversations from the transcript service.
type ConversationService interface {
	ListConversations(ctx context.Context, nameFilter string) ([]chatlog.Conversation, error)
}

// Handler carries the API endpoint implementations.
type Handler struct {
	analysis      AnalysisService
	conversations ConversationService
	runtime       *config.Runtime
}

// NewHandler creates a Handler.
func NewHandler(analysis AnalysisService, conversations ConversationService, runtime *config.Runtime) *Handler {
	return &Handler{
		analysis:      analysis,
		conversations: conversations,
		runtime:       runtime,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *zerolog.Logger, status int, msg string) {
	writeJSON(w, logger, status, errorResponse{Error: msg})
}

// ListConversations handles GET /api/v1/conversations?name=.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	conversations, err := h.conversations.ListConversations(ctx, r.URL.Query().Get("name"))
	if err != nil {
		logger.Error().Err(err).Msg("failed to list conversations")
		writeError(w, logger, http.StatusBadGateway, err.Error())
		return
	}
	if conversations == nil {
		conversations = []chatlog.Conversation{}
	}
	writeJSON(w, logger, http.StatusOK, conversations)
}

type createReportRequest struct {
	Target string `json:"target"`
	Date   string `json:"date,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// CreateReport handles POST /api/v1/reports. The analysis runs
// synchronously; the response carries the terminal report.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Target == "" {
		writeError(w, logger, http.StatusBadRequest, "target is required")
		return
	}

	dates := report.DateSpec{Date: req.Date, Start: req.Start, End: req.End}
	if err := dates.Validate(); err != nil {
		writeError(w, logger, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.analysis.Analyze(ctx, req.Target, dates)
	if err != nil {
		logger.Error().Err(err).Str("target", req.Target).Msg("analysis failed")
		if errors.Is(err, analyzer.ErrTargetNotFound) {
			writeError(w, logger, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, logger, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, logger, http.StatusOK, rep)
}

// GetReport handles GET /api/v1/reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	id := chi.URLParam(r, "id")

	rep, ok := h.analysis.Report(id)
	if !ok {
		writeError(w, logger, http.StatusNotFound, "report not found: "+id)
		return
	}
	writeJSON(w, logger, http.StatusOK, rep)
}

// ListReports handles GET /api/v1/reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	writeJSON(w, logger, http.StatusOK, h.analysis.Reports())
}

type aiConfigDTO struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	BaseURL     string  `json:"baseUrl"`
	APIKey      string  `json:"apiKey,omitempty"`
	APIKeySet   bool    `json:"apiKeySet"`
	TimeoutMS   int64   `json:"timeoutMs"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

func toAIConfigDTO(ai config.AI) aiConfigDTO {
	// The credential itself never leaves the process.
	return aiConfigDTO{
		Provider:    ai.Provider,
		Model:       ai.Model,
		BaseURL:     ai.BaseURL,
		APIKeySet:   ai.APIKey != "",
		TimeoutMS:   ai.Timeout.Milliseconds(),
		Temperature: ai.Temperature,
		MaxTokens:   ai.MaxTokens,
	}
}

// GetAIConfig handles GET /api/v1/config/ai.
func (h *Handler) GetAIConfig(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	writeJSON(w, logger, http.StatusOK, toAIConfigDTO(h.runtime.AI()))
}

// UpdateAIConfig handles PUT /api/v1/config/ai. The whole snapshot is
// replaced; a blank apiKey keeps the current credential.
func (h *Handler) UpdateAIConfig(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var dto aiConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	current := h.runtime.AI()
	next := config.AI{
		Provider:    dto.Provider,
		Model:       dto.Model,
		BaseURL:     dto.BaseURL,
		APIKey:      dto.APIKey,
		Timeout:     time.Duration(dto.TimeoutMS) * time.Millisecond,
		Temperature: dto.Temperature,
		MaxTokens:   dto.MaxTokens,
	}
	if next.APIKey == "" {
		next.APIKey = current.APIKey
	}
	if next.Provider == "" {
		next.Provider = current.Provider
	}
	if next.Timeout <= 0 {
		next.Timeout = current.Timeout
	}

	updated := h.runtime.SetAI(next)
	logger.Info().Str("model", updated.Model).Str("provider", updated.Provider).Msg("AI config updated")
	writeJSON(w, logger, http.StatusOK, toAIConfigDTO(updated))
}

type chatlogConfigDTO struct {
	BaseURL   string `json:"baseUrl"`
	TimeoutMS int64  `json:"timeoutMs"`
}

// GetChatlogConfig handles GET /api/v1/config/chatlog.
func (h *Handler) GetChatlogConfig(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	cfg := h.runtime.Chatlog()
	writeJSON(w, logger, http.StatusOK, chatlogConfigDTO{
		BaseURL:   cfg.BaseURL,
		TimeoutMS: cfg.Timeout.Milliseconds(),
	})
}

// UpdateChatlogConfig handles PUT /api/v1/config/chatlog.
func (h *Handler) UpdateChatlogConfig(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var dto chatlogConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if dto.BaseURL == "" {
		writeError(w, logger, http.StatusBadRequest, "baseUrl is required")
		return
	}

	current := h.runtime.Chatlog()
	next := config.Chatlog{
		BaseURL: dto.BaseURL,
		Timeout: time.Duration(dto.TimeoutMS) * time.Millisecond,
	}
	if next.Timeout <= 0 {
		next.Timeout = current.Timeout
	}

	updated := h.runtime.SetChatlog(next)
	logger.Info().Str("base_url", updated.BaseURL).Msg("chatlog config updated")
	writeJSON(w, logger, http.StatusOK, chatlogConfigDTO{
		BaseURL:   updated.BaseURL,
		TimeoutMS: updated.Timeout.Milliseconds(),
	})
}
