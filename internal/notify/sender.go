package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
)

// Sender доставляет готовое письмо.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender пишет письмо в лог вместо отправки.
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender создаёт отправителя в лог.
func NewLogSender(log *logrus.Logger) *LogSender {
	if log == nil {
		log = logger.Log
	}
	return &LogSender{log: log}
}

// Send логирует письмо.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"recipient": msg.Recipient,
		"subject":   msg.Subject,
	}).Info("notification delivered")
	return nil
}

// TelegramSender дублирует письма в служебный чат.
type TelegramSender struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSender создаёт отправителя в Telegram.
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to init telegram bot: %w", err)
	}
	return &TelegramSender{api: api, chatID: chatID}, nil
}

// Send отправляет краткую версию письма в чат.
func (s *TelegramSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tgMsg := tgbotapi.NewMessage(s.chatID, FormatTelegram(msg))
	tgMsg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.api.Send(tgMsg); err != nil {
		return fmt.Errorf("notify: telegram send: %w", err)
	}
	return nil
}

// FormatTelegram готовит текст сообщения в HTML-разметке Telegram.
func FormatTelegram(msg Message) string {
	escape := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return fmt.Sprintf("📬 <b>%s</b>\nTo: %s\n\n%s",
		escape.Replace(msg.Subject), escape.Replace(msg.Recipient), escape.Replace(msg.Text))
}

// MultiSender отправляет письмо всем отправителям и собирает ошибки.
type MultiSender []Sender

// Send вызывает каждого отправителя.
func (m MultiSender) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSender собирает отправителя: лог всегда, Telegram при заданном токене.
func NewSender(log *logrus.Logger, telegramToken string, telegramChatID int64) (Sender, error) {
	senders := MultiSender{NewLogSender(log)}
	if telegramToken != "" && telegramChatID != 0 {
		tg, err := NewTelegramSender(telegramToken, telegramChatID)
		if err != nil {
			return nil, err
		}
		senders = append(senders, tg)
	}
	return senders, nil
}
