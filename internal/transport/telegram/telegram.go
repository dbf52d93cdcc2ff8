// Package telegram delivers Telegram bot updates as transport messages
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"eino_chat_bridge/internal/transport"
	"eino_chat_bridge/src/logger"
	"eino_chat_bridge/src/model"
)

// maxMessageLength is Telegram's limit for one text message
const maxMessageLength = 4096

// botAPI is the part of *tgbotapi.BotAPI used after the connection is up
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Transport long-polls the Bot API for updates
type Transport struct {
	cfg model.TelegramConfig
}

// New creates a Telegram transport
func New(cfg model.TelegramConfig) (*Transport, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required for the telegram transport")
	}
	return &Transport{cfg: cfg}, nil
}

func (t *Transport) Name() string {
	return "telegram"
}

// Run polls updates and hands every text message to handle until ctx is done
func (t *Transport) Run(ctx context.Context, handle transport.Handler) error {
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return fmt.Errorf("create telegram bot failed: %w", err)
	}
	bot.Debug = t.cfg.Debug

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = t.cfg.PollTimeout
	updates := bot.GetUpdatesChan(updateConfig)

	logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram transport connected")

	defer func() {
		bot.StopReceivingUpdates()
		logger.Info().Msg("Telegram transport stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := newMessage(bot, update.Message)
			if msg == nil {
				continue
			}
			handle(ctx, msg)
		}
	}
}

// message adapts one inbound Telegram message
type message struct {
	api botAPI
	raw *tgbotapi.Message
}

func newMessage(api botAPI, raw *tgbotapi.Message) *message {
	if raw == nil || raw.Chat == nil {
		return nil
	}
	m := &message{api: api, raw: raw}
	if m.Body() == "" {
		return nil
	}
	return m
}

func (m *message) ID() string {
	return strconv.Itoa(m.raw.MessageID)
}

func (m *message) From() string {
	if m.raw.From != nil {
		return strconv.FormatInt(m.raw.From.ID, 10)
	}
	return strconv.FormatInt(m.raw.Chat.ID, 10)
}

func (m *message) Body() string {
	if text := strings.TrimSpace(m.raw.Text); text != "" {
		return text
	}
	return strings.TrimSpace(m.raw.Caption)
}

func (m *message) Chat(context.Context) (transport.Chat, error) {
	return &chat{api: m.api, raw: m.raw.Chat}, nil
}

// SenderName prefers the full name over the username
func (m *message) SenderName(context.Context) (string, error) {
	from := m.raw.From
	if from == nil {
		return "", errors.New("message has no sender")
	}
	if name := strings.TrimSpace(from.FirstName + " " + from.LastName); name != "" {
		return name, nil
	}
	return strings.TrimSpace(from.UserName), nil
}

// Reply answers in the same chat; long text is split, and only the first
// chunk quotes the inbound message
func (m *message) Reply(_ context.Context, text string) error {
	for i, chunk := range transport.SplitText(text, maxMessageLength) {
		out := tgbotapi.NewMessage(m.raw.Chat.ID, chunk)
		if i == 0 {
			out.ReplyToMessageID = m.raw.MessageID
		}
		if _, err := m.api.Send(out); err != nil {
			return fmt.Errorf("telegram send failed: %w", err)
		}
	}
	return nil
}

type chat struct {
	api botAPI
	raw *tgbotapi.Chat
}

// IsGroup treats everything but a private chat as multi-party
func (c *chat) IsGroup() bool {
	return !c.raw.IsPrivate()
}

func (c *chat) SendTyping(context.Context) error {
	if _, err := c.api.Request(tgbotapi.NewChatAction(c.raw.ID, tgbotapi.ChatTyping)); err != nil {
		return fmt.Errorf("telegram typing failed: %w", err)
	}
	return nil
}

// ClearTyping is a no-op: Telegram drops the typing status when the bot sends
// a message or after five seconds
func (c *chat) ClearTyping(context.Context) error {
	return nil
}
