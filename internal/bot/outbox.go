package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"taskbot/internal/metrics"
	"taskbot/internal/service"
)

// Sender is the part of the Telegram API the outbox needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Outbox is the single outbound path shared by command replies and reminders.
// Each reply holds the lock for all of its parts so two replies never interleave.
type Outbox struct {
	api     Sender
	limiter *rate.Limiter
	log     zerolog.Logger
	metrics *metrics.Metrics
	mu      sync.Mutex
}

func NewOutbox(api Sender, perSecond int, log zerolog.Logger, m *metrics.Metrics) *Outbox {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Outbox{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		log:     log.With().Str("component", "outbox").Logger(),
		metrics: m,
	}
}

// Deliver sends the parts of reply in order. It stops at the first failure.
func (o *Outbox) Deliver(ctx context.Context, reply service.Reply) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, part := range reply.Parts {
		if err := o.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait send slot: %w", err)
		}
		msg := tgbotapi.NewMessage(reply.ChatID, clip(part.Text))
		if len(part.Menu) > 0 {
			msg.ReplyMarkup = menuKeyboard(part.Menu)
		}
		if _, err := o.api.Send(msg); err != nil {
			o.metrics.SendError()
			o.log.Error().Err(err).Int64("chat_id", reply.ChatID).Int("part", i).Msg("send message")
			return fmt.Errorf("send part %d of %d: %w", i+1, len(reply.Parts), err)
		}
	}
	return nil
}

// maxMessageRunes is Telegram's limit for a single text message.
const maxMessageRunes = 4096

func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return text
	}
	return string(runes[:maxMessageRunes-1]) + "…"
}

func menuKeyboard(items []service.MenuItem) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for _, item := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(item.Label, item.Data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
