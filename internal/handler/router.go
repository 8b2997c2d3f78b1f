package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	historyHandler "github.com/yuchinlin/line-gemini-bot/internal/handler/history"
	webhookHandler "github.com/yuchinlin/line-gemini-bot/internal/handler/webhook"
	"github.com/yuchinlin/line-gemini-bot/internal/service/dispatch"
	"github.com/yuchinlin/line-gemini-bot/internal/store"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(channelSecret string, reply webhookHandler.ReplyClient, dispatcher *dispatch.Service, historyStore *store.HistoryStore) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	webhookHandler.New(channelSecret, reply, dispatcher).RegisterRoutes(r)
	historyHandler.New(historyStore).RegisterRoutes(r)

	return r
}
