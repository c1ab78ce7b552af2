package telegram

import (
	"context"
	"sync"
	"time"

	"auto-trader/internal/api"
	"auto-trader/internal/interfaces"
	"auto-trader/internal/logger"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
)

// Notifier posts plain-text messages to one chat. Without both a token and
// a chat id it is disabled and every send reports false.
type Notifier struct {
	token  string
	chatID string
	http   *api.Client

	disabledOnce sync.Once
}

var _ interfaces.Notifier = (*Notifier)(nil)

type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
}

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func New(token, chatID string, opts ...Option) *Notifier {
	o := options{baseURL: DefaultBaseURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Notifier{
		token:  token,
		chatID: chatID,
		// request logging stays off: the path carries the bot token
		http: api.NewClient(
			api.WithBaseURL(o.baseURL),
			api.WithTimeout(o.timeout),
		),
	}
}

func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage reports whether Telegram accepted the message. A disabled
// notifier warns on the first call only.
func (n *Notifier) SendMessage(ctx context.Context, text string) bool {
	if !n.Enabled() {
		n.disabledOnce.Do(func() {
			logger.Warn(ctx, "Telegram notifier disabled: TELEGRAM_TOKEN or TELEGRAM_CHAT_ID missing")
		})
		return false
	}

	resp, err := n.http.POST(ctx, "/bot"+n.token+"/sendMessage", sendMessageRequest{ChatID: n.chatID, Text: text})
	if err != nil {
		if status := api.StatusCode(err); status != 0 {
			logger.Warn(ctx, "Telegram API responded with error status", "status", status)
		} else {
			logger.Warn(ctx, "Telegram message failed", "error", api.Redact(err.Error(), n.token))
		}
		return false
	}

	var out sendMessageResponse
	if err := resp.ParseJSON(&out); err != nil {
		logger.Warn(ctx, "Telegram response unreadable", "error", err)
		return false
	}
	if !out.OK {
		logger.Warn(ctx, "Telegram rejected message", "description", out.Description)
		return false
	}
	return true
}
