package reporter

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-openclaw-cv-sender/internal/models"
)

// Sender is satisfied by *tgbotapi.BotAPI
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramReporter posts status, sent applications and errors to the
// operator chat. A zero chat id disables it.
type TelegramReporter struct {
	bot    Sender
	chatID int64
}

func NewTelegramReporter(bot Sender, chatID int64) *TelegramReporter {
	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}
}

func (t *TelegramReporter) Enabled() bool {
	return t != nil && t.chatID != 0
}

func (t *TelegramReporter) SendMessage(text string) error {
	if !t.Enabled() {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

// RecordApplication copies every sent application to the operator chat
func (t *TelegramReporter) RecordApplication(ctx context.Context, rec models.ApplicationRecord) {
	text := fmt.Sprintf(
		"📨 <b>CV enviado</b>\n"+
			"🏢 %s\n"+
			"💼 %s\n"+
			"📧 %s\n"+
			"📎 %s\n"+
			"🕒 %s",
		html.EscapeString(rec.Company),
		html.EscapeString(rec.Vacancy),
		html.EscapeString(rec.RecruiterEmail),
		html.EscapeString(rec.FileName),
		rec.SentAt.Format("02/01/2006 15:04:05"),
	)
	if err := t.SendMessage(text); err != nil {
		log.Printf("⚠️ Failed to report application: %v", err)
	}
}

// RecordFailure reports a failed conversation step to the operator chat
func (t *TelegramReporter) RecordFailure(ctx context.Context, step string, err error) {
	if sendErr := t.SendError(fmt.Errorf("%s: %w", step, err)); sendErr != nil {
		log.Printf("⚠️ Failed to report error: %v", sendErr)
	}
}

func (t *TelegramReporter) SendStatus(message string) error {
	return t.SendMessage("ℹ️ " + html.EscapeString(message))
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>CV Sender Error</b>:\n%s", html.EscapeString(errReq.Error()))
	return t.SendMessage(text)
}
