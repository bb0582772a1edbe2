package bot

import (
	"context"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"taskbot/internal/service"
)

// API is the subset of *tgbotapi.BotAPI used by the bot.
type API interface {
	Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler turns an inbound message into a reply.
type Handler interface {
	Handle(ctx context.Context, msg service.Message) (service.Reply, bool)
}

// Bot polls Telegram and feeds updates to the handler one at a time.
type Bot struct {
	api     API
	handler Handler
	outbox  *Outbox
	log     zerolog.Logger
}

// NewAPI authorizes against Telegram with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return api, nil
}

func New(api API, handler Handler, outbox *Outbox, log zerolog.Logger) *Bot {
	return &Bot{
		api:     api,
		handler: handler,
		outbox:  outbox,
		log:     log.With().Str("component", "bot").Logger(),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return ctx.Err()
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Int("update_id", update.UpdateID).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("update handler panicked")
		}
	}()

	var msg service.Message
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn().Err(err).Msg("callback ack")
		}
		if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
			return
		}
		msg = service.Message{Text: "/" + cb.Data, ChatID: cb.Message.Chat.ID, From: sender(cb.From)}
	case update.Message != nil:
		if update.Message.Chat == nil || update.Message.From == nil {
			return
		}
		msg = service.Message{Text: update.Message.Text, ChatID: update.Message.Chat.ID, From: sender(update.Message.From)}
	default:
		return
	}

	// A dispatched command runs to completion and its reply is sent even if
	// polling is being shut down.
	ctx = context.WithoutCancel(ctx)
	reply, handled := b.handler.Handle(ctx, msg)
	if !handled || reply.Empty() {
		return
	}
	if err := b.outbox.Deliver(ctx, reply); err != nil {
		b.log.Error().Err(err).Int64("chat_id", reply.ChatID).Msg("deliver reply")
	}
}

func sender(u *tgbotapi.User) service.Sender {
	return service.Sender{
		Username:   u.UserName,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		TelegramID: u.ID,
	}
}
