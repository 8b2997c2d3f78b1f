package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yuchinlin/line-gemini-bot/internal/model/chat"
)

// HistoryStore is the durable per-user conversation log.
type HistoryStore interface {
	Append(ctx context.Context, userID, userText, botText string) error
	List(ctx context.Context, userID string) ([]chat.Exchange, error)
	Clear(ctx context.Context, userID string) error
}

// WeatherLookup renders a weather summary for a city as reply text.
type WeatherLookup interface {
	Lookup(ctx context.Context, city string) string
}

// Responder generates a reply for free text.
type Responder interface {
	Generate(ctx context.Context, prompt string) string
}

const (
	cmdClearHistory = "清除紀錄"
	cmdShowHistory  = "查紀錄"
	cmdMyID         = "我的ID"

	replyHistoryCleared = "你的歷史紀錄已成功刪除。"
	replyNoHistory      = "沒有找到你的對話紀錄。"
	replyWeatherUsage   = "請輸入城市名稱(用英文)，例如：查天氣 Taipei"
	replyImage          = "收到圖片"
	replyVideo          = "收到影片"

	// Stored timestamps are UTC; replies display Taiwan time.
	displayOffset = 8 * time.Hour
	historyShown  = 5
)

type outcome struct {
	reply   string
	persist bool
}

// rule pairs a predicate with its handler. Rules are evaluated in order and
// the first match wins, so precedence lives in the slice, not in nesting.
type rule struct {
	match  func(text string) bool
	handle func(ctx context.Context, userID, text string) outcome
}

// Service classifies inbound text messages and produces the reply. It owns
// persistence of the exchange; callers only transmit the returned text.
type Service struct {
	store   HistoryStore
	weather WeatherLookup
	ai      Responder
	rules   []rule
}

// NewService wires the dispatcher. A nil responder keeps the service usable;
// the fallback rule then replies with an error string.
func NewService(store HistoryStore, weather WeatherLookup, ai Responder) *Service {
	s := &Service{store: store, weather: weather, ai: ai}
	s.rules = []rule{
		{match: exactly(cmdClearHistory), handle: s.clearHistory},
		{match: exactly(cmdShowHistory), handle: s.showHistory},
		{match: exactly(cmdMyID), handle: s.identity},
		{match: containsAny("天氣", "查天氣"), handle: s.cityWeather},
		{match: func(string) bool { return true }, handle: s.generate},
	}
	return s
}

// HandleText runs the message through the rule list, persists the exchange
// when the matched rule calls for it, and returns the reply text.
func (s *Service) HandleText(ctx context.Context, userID, text string) string {
	text = strings.TrimSpace(text)

	for _, r := range s.rules {
		if !r.match(text) {
			continue
		}

		res := r.handle(ctx, userID, text)
		if res.persist {
			// The reply was already computed; a failed write must not
			// swallow it.
			if err := s.store.Append(ctx, userID, text, res.reply); err != nil {
				logrus.Errorf("[dispatch] failed to persist exchange for user %s: %v", userID, err)
			}
		}
		return res.reply
	}

	// Unreachable: the final rule matches unconditionally.
	return ""
}

func (s *Service) clearHistory(ctx context.Context, userID, _ string) outcome {
	if err := s.store.Clear(ctx, userID); err != nil {
		return outcome{reply: fmt.Sprintf("發生錯誤：%v", err)}
	}
	// The clear command itself is never logged.
	return outcome{reply: replyHistoryCleared}
}

func (s *Service) showHistory(ctx context.Context, userID, _ string) outcome {
	exchanges, err := s.store.List(ctx, userID)
	if err != nil {
		return outcome{reply: fmt.Sprintf("查詢失敗：%v", err), persist: true}
	}
	if len(exchanges) == 0 {
		return outcome{reply: replyNoHistory, persist: true}
	}

	if len(exchanges) > historyShown {
		exchanges = exchanges[len(exchanges)-historyShown:]
	}

	lines := make([]string, 0, len(exchanges))
	for _, ex := range exchanges {
		local := ex.Timestamp.Add(displayOffset)
		lines = append(lines, fmt.Sprintf("%s\n%s\n%s",
			local.Format("2006-01-02 15:04:05"), ex.UserText, ex.BotText))
	}

	return outcome{reply: "最近的對話紀錄：\n\n" + strings.Join(lines, "\n\n"), persist: true}
}

func (s *Service) identity(_ context.Context, userID, _ string) outcome {
	return outcome{reply: fmt.Sprintf("你的使用者 ID 是：\n%s", userID), persist: true}
}

func (s *Service) cityWeather(ctx context.Context, _, text string) outcome {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return outcome{reply: replyWeatherUsage, persist: true}
	}
	city := parts[len(parts)-1]
	return outcome{reply: s.weather.Lookup(ctx, city), persist: true}
}

func (s *Service) generate(ctx context.Context, _, text string) outcome {
	if s.ai == nil {
		return outcome{reply: "發生錯誤：AI 服務未啟用", persist: true}
	}
	return outcome{reply: s.ai.Generate(ctx, text), persist: true}
}

// ImageReply acknowledges an image message. Media events are never persisted.
func ImageReply() string { return replyImage }

// VideoReply acknowledges a video message.
func VideoReply() string { return replyVideo }

// LocationReply embeds the shared location's title and address.
func LocationReply(title, address string) string {
	if title == "" {
		title = "未命名"
	}
	return fmt.Sprintf("位置：%s\n地址：%s", title, address)
}

func exactly(want string) func(string) bool {
	return func(text string) bool { return text == want }
}

func containsAny(subs ...string) func(string) bool {
	return func(text string) bool {
		for _, sub := range subs {
			if strings.Contains(text, sub) {
				return true
			}
		}
		return false
	}
}
