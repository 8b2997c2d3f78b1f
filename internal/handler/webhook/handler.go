package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/sirupsen/logrus"

	"github.com/yuchinlin/line-gemini-bot/internal/service/dispatch"
)

// ReplyClient sends a reply keyed by the event's single-use reply token.
// *messaging_api.MessagingApiAPI satisfies it.
type ReplyClient interface {
	ReplyMessage(request *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// Handler receives LINE platform events. Signature verification is delegated
// to the platform SDK; only verified events reach the dispatcher.
type Handler struct {
	channelSecret string
	reply         ReplyClient
	dispatcher    *dispatch.Service
}

// New 建立webhook處理器
func New(channelSecret string, reply ReplyClient, dispatcher *dispatch.Service) *Handler {
	return &Handler{
		channelSecret: channelSecret,
		reply:         reply,
		dispatcher:    dispatcher,
	}
}

// RegisterRoutes 註冊webhook回呼路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/callback", h.handleCallback)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	cb, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			logrus.Warnf("[webhook] invalid signature: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		logrus.Errorf("[webhook] failed to parse request: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// LINE batches events; each one carries its own reply token.
	for _, event := range cb.Events {
		h.handleEvent(r.Context(), event)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) handleEvent(ctx context.Context, event webhook.EventInterface) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		return
	}

	userID := sourceUserID(e.Source)

	switch m := e.Message.(type) {
	case webhook.TextMessageContent:
		reply := h.dispatcher.HandleText(ctx, userID, m.Text)
		h.replyText(e.ReplyToken, reply)
	case webhook.StickerMessageContent:
		// Echo the sticker back with identical identifiers.
		h.send(e.ReplyToken, messaging_api.StickerMessage{
			PackageId: m.PackageId,
			StickerId: m.StickerId,
		})
	case webhook.ImageMessageContent:
		h.replyText(e.ReplyToken, dispatch.ImageReply())
	case webhook.VideoMessageContent:
		h.replyText(e.ReplyToken, dispatch.VideoReply())
	case webhook.LocationMessageContent:
		h.replyText(e.ReplyToken, dispatch.LocationReply(m.Title, m.Address))
	}
}

func (h *Handler) replyText(replyToken, text string) {
	h.send(replyToken, messaging_api.TextMessage{Text: text})
}

func (h *Handler) send(replyToken string, message messaging_api.MessageInterface) {
	_, err := h.reply.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{message},
	})
	if err != nil {
		// Reply tokens are single-use; there is nothing to retry.
		logrus.Errorf("[webhook] failed to send reply: %v", err)
	}
}

func sourceUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
