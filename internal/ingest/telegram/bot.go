// Package telegram binds the conversation controller to the Telegram Bot
// API: long-poll update loop, reply keyboards, allow-list check.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avilchesko/betsheet/internal/ingest/conversation"
	"github.com/avilchesko/betsheet/internal/pkg/config"
	"github.com/avilchesko/betsheet/internal/pkg/models"
)

const dispatchTimeout = 30 * time.Second

type Bot struct {
	api        *tgbotapi.BotAPI
	controller *conversation.Controller
	cfg        *config.TelegramConfig
	logger     *slog.Logger
	queue      *dispatcher
}

// NewAPI authenticates against Telegram. Split from NewBot so the replier
// can be built before the controller that needs it.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	return api, nil
}

func NewBot(api *tgbotapi.BotAPI, controller *conversation.Controller, cfg *config.TelegramConfig, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, controller: controller, cfg: cfg, logger: logger, queue: newDispatcher()}
}

// Run consumes updates until ctx is cancelled. Updates go through the
// per-key dispatcher: messages from the same chat+user are handled one at
// a time in arrival order, different keys proceed in parallel.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", "account", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			msg := update.Message
			key := models.SessionKey{ChatID: msg.Chat.ID, UserID: msg.From.ID}
			b.queue.enqueue(key, func() { b.handle(ctx, key, msg) })
		}
	}
}

func (b *Bot) handle(ctx context.Context, key models.SessionKey, msg *tgbotapi.Message) {
	if len(b.cfg.AllowedUserIDs) > 0 && !b.allowed(msg.From.ID) {
		b.send(key.ChatID, "Acceso denegado: no estás autorizado para usar este bot.")
		return
	}

	text := msg.Text
	if text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	b.controller.Dispatch(ctx, key, text)
}

func (b *Bot) allowed(userID int64) bool {
	for _, id := range b.cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

// Replier sends controller output back through the Bot API.
type Replier struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewReplier(api *tgbotapi.BotAPI, logger *slog.Logger) *Replier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replier{api: api, logger: logger}
}

func (r *Replier) Reply(key models.SessionKey, text string) {
	msg := tgbotapi.NewMessage(key.ChatID, text)
	// Replying also dismisses any one-time keyboard still on screen.
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := r.api.Send(msg); err != nil {
		r.logger.Warn("failed to send reply", "chat_id", key.ChatID, "error", err)
	}
}

func (r *Replier) ReplyWithChoices(key models.SessionKey, text string, choices [][]string) {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(choices))
	for _, row := range choices {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(key.ChatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := r.api.Send(msg); err != nil {
		r.logger.Warn("failed to send keyboard", "chat_id", key.ChatID, "error", err)
	}
}
