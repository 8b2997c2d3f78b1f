package history

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/yuchinlin/line-gemini-bot/internal/model/chat"
)

// Store is the read/delete slice of the history store this API needs.
type Store interface {
	List(ctx context.Context, userID string) ([]chat.Exchange, error)
	Clear(ctx context.Context, userID string) error
}

// Handler 對話紀錄的HTTP處理器
type Handler struct {
	store Store
}

// New 建立紀錄處理器
func New(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 註冊紀錄相關的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history/{userID}", h.handleGetHistory)
	r.Delete("/history/{userID}", h.handleDeleteHistory)
}

type exchangeResponse struct {
	User      string `json:"user"`
	Bot       string `json:"bot"`
	Timestamp string `json:"timestamp"`
}

// handleGetHistory 回傳使用者的完整對話紀錄
func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	exchanges, err := h.store.List(r.Context(), userID)
	if err != nil {
		logrus.Errorf("[history] failed to list history for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	result := make([]exchangeResponse, 0, len(exchanges))
	for _, ex := range exchanges {
		result = append(result, exchangeResponse{
			User:      ex.UserText,
			Bot:       ex.BotText,
			Timestamp: ex.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}

	respondJSON(w, http.StatusOK, result)
}

// handleDeleteHistory 刪除使用者的完整對話紀錄
func (h *Handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.store.Clear(r.Context(), userID); err != nil {
		logrus.Errorf("[history] failed to delete history for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "failed to delete history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// respondJSON 發送JSON回應
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError 發送錯誤回應
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
