package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eino_chat_bridge/internal/config"
	"eino_chat_bridge/internal/provider"
	"eino_chat_bridge/internal/storage"
	"eino_chat_bridge/internal/templates"
	"eino_chat_bridge/internal/transport"
	"eino_chat_bridge/src/logger"
)

// Dependencies wires a Dispatcher
type Dependencies struct {
	Store    *storage.SessionStore
	Gateway  Gateway
	Renderer Renderer
	Catalog  *templates.Catalog
	Prompt   config.SystemPrompt
	// Ledger is optional; nil discards confirmed orders
	Ledger storage.OrderLedger
}

// Dispatcher runs the per-message state machine
type Dispatcher struct {
	store    *storage.SessionStore
	gateway  Gateway
	renderer Renderer
	catalog  *templates.Catalog
	prompt   config.SystemPrompt
	ledger   storage.OrderLedger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher over deps
func NewDispatcher(deps Dependencies) *Dispatcher {
	ledger := deps.Ledger
	if ledger == nil {
		ledger = storage.NopLedger{}
	}
	return &Dispatcher{
		store:    deps.Store,
		gateway:  deps.Gateway,
		renderer: deps.Renderer,
		catalog:  deps.Catalog,
		prompt:   deps.Prompt,
		ledger:   ledger,
		now:      time.Now,
	}
}

// exchange carries the per-message state through the handler steps
type exchange struct {
	msg    transport.Message
	chat   transport.Chat
	typing bool
	res    *Result
	log    zerolog.Logger
}

// Handle processes one inbound message and reports every state it passed
// through. It never panics and never returns a nil result.
func (d *Dispatcher) Handle(ctx context.Context, msg transport.Message) (res *Result) {
	res = &Result{
		ExchangeID: uuid.NewString(),
		UserID:     msg.From(),
	}
	ex := &exchange{
		msg: msg,
		res: res,
		log: logger.Logger.With().
			Str("exchange_id", res.ExchangeID).
			Str("user_id", res.UserID).
			Str("message_id", msg.ID()).
			Logger(),
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: %v", ErrPanic, r)
			ex.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic while handling message")
			d.clearTyping(ctx, ex)
		}
		res.enter(StateDone)

		event := ex.log.Info()
		if res.Err != nil {
			event = ex.log.Error().Err(res.Err)
		}
		event.
			Str("state", string(res.Final())).
			Bool("replied", res.Replied).
			Dur("elapsed", time.Since(start)).
			Msg("Message handled")
	}()

	res.enter(StateReceived)
	ex.log.Debug().Int("body_length", len(msg.Body())).Msg("Message received")

	res.enter(StateFiltering)
	chat, err := msg.Chat(ctx)
	if err != nil {
		res.Err = fmt.Errorf("failed to fetch chat: %w", err)
		return res
	}
	ex.chat = chat
	if chat.IsGroup() {
		res.enter(StateDropped)
		ex.log.Debug().Msg("Not a direct chat, no reply sent")
		return res
	}

	if err := chat.SendTyping(ctx); err != nil {
		res.TypingErr = err
		ex.log.Warn().Err(err).Msg("Typing indicator failed, continuing without it")
	} else {
		ex.typing = true
		res.enter(StateTypingIndicated)
	}

	profile := d.gateway.Profile()
	if !d.gateway.Configured() {
		d.clearTyping(ctx, ex)
		d.reply(ctx, ex, profile.ConfigNotice(), StateRepliedError)
		return res
	}

	release := d.store.Acquire(res.UserID)
	defer release()

	name := d.senderName(ctx, ex)
	userTurn := fmt.Sprintf("%s (Customer Name: %s)", msg.Body(), name)

	_, created := d.store.GetOrCreate(res.UserID, func() string {
		return d.prompt.For(name)
	})
	d.store.Touch(res.UserID)
	res.enter(StateSessionResolved)

	if created {
		d.greet(ctx, ex, name, userTurn)
		return res
	}

	if err := d.store.AppendUser(res.UserID, userTurn); err != nil {
		res.Err = fmt.Errorf("failed to record user turn: %w", err)
		d.clearTyping(ctx, ex)
		d.reply(ctx, ex, ApologyReply, StateRepliedError)
		return res
	}

	res.enter(StateBackendInvoked)
	raw, err := d.gateway.Complete(ctx, d.store.History(res.UserID))
	if err != nil {
		res.Err = err
		d.clearTyping(ctx, ex)
		if errors.Is(err, provider.ErrNotConfigured) {
			d.reply(ctx, ex, profile.ConfigNotice(), StateRepliedError)
		} else {
			ex.log.Error().Err(err).Str("provider", profile.Name).Msg("Error from LLM")
			d.reply(ctx, ex, ApologyReply, StateRepliedError)
		}
		return res
	}

	// history keeps the unresolved text so tokens stay visible as context
	if err := d.store.AppendAssistant(res.UserID, raw); err != nil {
		ex.log.Warn().Err(err).Msg("Session vanished before the assistant turn was stored")
	}

	d.deliver(ctx, ex, raw)
	return res
}

// greet seeds a new session with the user turn and the greeting token and
// replies with the rendered greeting. The backend is not called.
func (d *Dispatcher) greet(ctx context.Context, ex *exchange, name, userTurn string) {
	userID := ex.res.UserID
	token := GreetingToken(name)

	if err := d.store.AppendUser(userID, userTurn); err != nil {
		ex.log.Warn().Err(err).Msg("Failed to seed user turn")
	}
	if err := d.store.AppendAssistant(userID, token); err != nil {
		ex.log.Warn().Err(err).Msg("Failed to seed greeting turn")
	}
	ex.log.Info().Str("customer_name", name).Msg("New session, sending greeting")

	d.deliver(ctx, ex, token)
}

// deliver renders raw generated text, records confirmed orders and replies
func (d *Dispatcher) deliver(ctx context.Context, ex *exchange, raw string) {
	rendered, err := d.renderer.Render(ctx, raw)
	if err != nil {
		ex.res.Err = err
		d.clearTyping(ctx, ex)
		d.reply(ctx, ex, ApologyReply, StateRepliedError)
		return
	}

	for _, order := range rendered.Orders {
		entry := storage.NewOrderEntry(ex.res.UserID, ex.res.ExchangeID, order, d.catalog.FinalAmount(order), d.now())
		if err := d.ledger.Record(ctx, entry); err != nil {
			ex.log.Warn().Err(err).Str("order_id", entry.ID).Msg("Failed to record order")
		}
	}

	d.clearTyping(ctx, ex)
	d.reply(ctx, ex, rendered.Text, StateRepliedSuccess)
}

func (d *Dispatcher) reply(ctx context.Context, ex *exchange, text string, state State) {
	if err := ex.msg.Reply(ctx, text); err != nil {
		ex.res.Err = errors.Join(ex.res.Err, fmt.Errorf("%w: %w", ErrSend, err))
		d.clearTyping(ctx, ex)
		return
	}
	ex.res.Reply = text
	ex.res.Replied = true
	ex.res.enter(state)
}

func (d *Dispatcher) clearTyping(ctx context.Context, ex *exchange) {
	if !ex.typing || ex.chat == nil {
		return
	}
	ex.typing = false
	if err := ex.chat.ClearTyping(ctx); err != nil {
		ex.log.Debug().Err(err).Msg("Failed to clear typing indicator")
	}
}

// senderName falls back to the sender ID when no display name is available
func (d *Dispatcher) senderName(ctx context.Context, ex *exchange) string {
	name, err := ex.msg.SenderName(ctx)
	if err != nil {
		ex.log.Debug().Err(err).Msg("Display name unavailable")
	}
	if name = strings.TrimSpace(name); name == "" {
		return ex.msg.From()
	}
	return name
}

var tokenUnsafe = strings.NewReplacer("{", "", "}", "")

// GreetingToken is the stored assistant turn of a first interaction
func GreetingToken(name string) string {
	return "{{" + templates.GreetingID + ":" + tokenUnsafe.Replace(name) + "}}"
}
