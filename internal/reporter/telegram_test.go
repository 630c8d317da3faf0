package reporter

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-openclaw-cv-sender/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestRecordApplication(t *testing.T) {
	bot := &fakeSender{}
	r := NewTelegramReporter(bot, -100)

	r.RecordApplication(context.Background(), models.ApplicationRecord{
		Company:        "Acme & Co",
		Vacancy:        "Backend Engineer",
		RecruiterEmail: "recruiter@acme.com",
		FileName:       "CV.pdf",
		SentAt:         time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
	})

	require.Len(t, bot.sent, 1)
	msg := bot.sent[0]
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Equal(t, "HTML", msg.ParseMode)
	assert.Contains(t, msg.Text, "Acme &amp; Co")
	assert.Contains(t, msg.Text, "recruiter@acme.com")
	assert.Contains(t, msg.Text, "CV.pdf")
	assert.Contains(t, msg.Text, "05/03/2024 14:07:09")
}

func TestRecordApplication_SendFailureIsSwallowed(t *testing.T) {
	r := NewTelegramReporter(&fakeSender{err: errors.New("chat not found")}, -100)
	assert.NotPanics(t, func() {
		r.RecordApplication(context.Background(), models.ApplicationRecord{Company: "Acme"})
	})
}

func TestDisabledReporter(t *testing.T) {
	bot := &fakeSender{}
	r := NewTelegramReporter(bot, 0)

	assert.False(t, r.Enabled())
	assert.NoError(t, r.SendStatus("started"))
	r.RecordApplication(context.Background(), models.ApplicationRecord{})
	assert.Empty(t, bot.sent)

	var nilReporter *TelegramReporter
	assert.NoError(t, nilReporter.SendError(errors.New("x")))
}

func TestSendErrorEscapes(t *testing.T) {
	bot := &fakeSender{}
	r := NewTelegramReporter(bot, 1)

	require.NoError(t, r.SendError(errors.New("bad <token>")))
	assert.Contains(t, bot.sent[0].Text, "bad &lt;token&gt;")
	assert.Contains(t, bot.sent[0].Text, "<b>CV Sender Error</b>")
}

func TestRecordFailure(t *testing.T) {
	bot := &fakeSender{}
	r := NewTelegramReporter(bot, 1)

	r.RecordFailure(context.Background(), "send to hr@acme.com", errors.New("Username and Password not accepted"))
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, "send to hr@acme.com: Username and Password not accepted")
}
