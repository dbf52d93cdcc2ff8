// Package discord delivers Discord gateway messages as transport messages
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"eino_chat_bridge/internal/transport"
	"eino_chat_bridge/src/logger"
	"eino_chat_bridge/src/model"
)

// maxMessageLength is Discord's limit for one message
const maxMessageLength = 2000

// session is the part of *discordgo.Session used by messages
type session interface {
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Transport listens on the Discord gateway
type Transport struct {
	cfg model.DiscordConfig
}

// New creates a Discord transport
func New(cfg model.DiscordConfig) (*Transport, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("DISCORD_BOT_TOKEN is required for the discord transport")
	}
	return &Transport{cfg: cfg}, nil
}

func (t *Transport) Name() string {
	return "discord"
}

// newSession builds an unopened gateway session. Events are dispatched
// synchronously so messages reach the handler in arrival order.
func (t *Transport) newSession() (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + t.cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session failed: %w", err)
	}
	s.SyncEvents = true
	s.Identify.Intents = discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	return s, nil
}

// Run opens the gateway connection and blocks until ctx is done
func (t *Transport) Run(ctx context.Context, handle transport.Handler) error {
	s, err := t.newSession()
	if err != nil {
		return err
	}

	remove := s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if ctx.Err() != nil || m.Author == nil || m.Author.Bot {
			return
		}
		if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		if msg := newMessage(s, m.Message); msg != nil {
			handle(ctx, msg)
		}
	})
	defer remove()

	if err := s.Open(); err != nil {
		return fmt.Errorf("discord open connection: %w", err)
	}
	logger.Info().Msg("Discord transport connected")

	<-ctx.Done()

	if err := s.Close(); err != nil {
		logger.Warn().Err(err).Msg("Discord close failed")
	}
	logger.Info().Msg("Discord transport stopped")
	return nil
}

// message adapts one inbound Discord message
type message struct {
	s   session
	raw *discordgo.Message
}

func newMessage(s session, raw *discordgo.Message) *message {
	if raw == nil || raw.Author == nil || strings.TrimSpace(raw.Content) == "" {
		return nil
	}
	return &message{s: s, raw: raw}
}

func (m *message) ID() string   { return m.raw.ID }
func (m *message) From() string { return m.raw.Author.ID }
func (m *message) Body() string { return strings.TrimSpace(m.raw.Content) }

func (m *message) Chat(context.Context) (transport.Chat, error) {
	return &chat{s: m.s, channelID: m.raw.ChannelID, guild: m.raw.GuildID != ""}, nil
}

// SenderName prefers the global display name over the username
func (m *message) SenderName(context.Context) (string, error) {
	if name := strings.TrimSpace(m.raw.Author.GlobalName); name != "" {
		return name, nil
	}
	return strings.TrimSpace(m.raw.Author.Username), nil
}

func (m *message) Reply(_ context.Context, text string) error {
	for i, chunk := range transport.SplitText(text, maxMessageLength) {
		var err error
		if i == 0 {
			_, err = m.s.ChannelMessageSendReply(m.raw.ChannelID, chunk, &discordgo.MessageReference{
				ChannelID: m.raw.ChannelID,
				MessageID: m.raw.ID,
				GuildID:   m.raw.GuildID,
			})
		} else {
			_, err = m.s.ChannelMessageSend(m.raw.ChannelID, chunk)
		}
		if err != nil {
			return fmt.Errorf("discord send failed: %w", err)
		}
	}
	return nil
}

type chat struct {
	s         session
	channelID string
	guild     bool
}

// IsGroup is true for guild channels; direct messages have no guild
func (c *chat) IsGroup() bool {
	return c.guild
}

func (c *chat) SendTyping(context.Context) error {
	if err := c.s.ChannelTyping(c.channelID); err != nil {
		return fmt.Errorf("discord typing failed: %w", err)
	}
	return nil
}

// ClearTyping is a no-op: the typing state ends with the next message
func (c *chat) ClearTyping(context.Context) error {
	return nil
}
