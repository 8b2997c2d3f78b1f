package chat

import "time"

// Exchange persists one user message paired with the bot's reply.
type Exchange struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	UserText  string    `json:"user"`
	BotText   string    `json:"bot"`
	Timestamp time.Time `json:"timestamp"`
}
