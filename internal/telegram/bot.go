package telegram

import (
	"context"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-openclaw-cv-sender/internal/conversation"
	"go-openclaw-cv-sender/internal/models"
)

const parseMode = tgbotapi.ModeHTML

// API is the part of *tgbotapi.BotAPI the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler consumes one conversation event, conversation.Runner implements it
type Handler interface {
	Handle(ctx context.Context, key models.SessionKey, ev conversation.Event, out conversation.Responder) error
}

// job is one update already mapped to its session
type job struct {
	update   tgbotapi.Update
	key      models.SessionKey
	ev       conversation.Event
	sourceID int
}

// Bot handles updates of different sessions concurrently and updates of
// one session one at a time, in the order Dispatch received them.
type Bot struct {
	api     API
	handler Handler
	wg      sync.WaitGroup

	mu sync.Mutex
	//pending updates per session, a key is present while its worker runs
	queues map[models.SessionKey][]job
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	//turn this on in case of debug
	//api.Debug = true
	return api, nil
}

func NewBot(api API, handler Handler) *Bot {
	return &Bot{api: api, handler: handler, queues: make(map[models.SessionKey][]job)}
}

// Run dispatches updates until ctx is done or the channel is closed,
// then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.Dispatch(ctx, update)
		}
	}
}

// Dispatch queues one update behind the earlier updates of its session and
// returns without waiting for it to be handled
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	key, ev, sourceID, ok := ToEvent(update)
	if !ok {
		return
	}

	b.mu.Lock()
	pending, running := b.queues[key]
	b.queues[key] = append(pending, job{update: update, key: key, ev: ev, sourceID: sourceID})
	if !running {
		b.wg.Add(1)
	}
	b.mu.Unlock()

	if !running {
		go b.drain(ctx, key)
	}
}

// drain handles the queue of key until it is empty, then retires
func (b *Bot) drain(ctx context.Context, key models.SessionKey) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		pending := b.queues[key]
		if len(pending) == 0 {
			delete(b.queues, key)
			b.mu.Unlock()
			return
		}
		next := pending[0]
		b.queues[key] = pending[1:]
		b.mu.Unlock()

		b.handle(ctx, next)
	}
}

// Wait blocks until every dispatched update is handled
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handle(ctx context.Context, j job) {
	if cq := j.update.CallbackQuery; cq != nil {
		//stop the client spinner, the answer itself carries no text
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			log.Printf("⚠️ Failed to answer callback %s: %v", cq.ID, err)
		}
	}

	out := &chatResponder{api: b.api, chatID: j.key.ChatID, sourceID: j.sourceID}
	if err := b.handler.Handle(ctx, j.key, j.ev, out); err != nil {
		log.Printf("⚠️ Session %s: %v", j.key, err)
	}
}

// ToEvent maps an update to the session it belongs to and a conversation event.
// sourceID is the message carrying the pressed button, zero for plain messages.
// Updates the bot does not react to return ok=false.
func ToEvent(update tgbotapi.Update) (key models.SessionKey, ev conversation.Event, sourceID int, ok bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || msg.From == nil {
			return key, ev, 0, false
		}
		key = models.SessionKey{ChatID: msg.Chat.ID, UserID: msg.From.ID}

		if msg.IsCommand() {
			switch msg.Command() {
			case "start":
				return key, conversation.Start(), 0, true
			case "cancel":
				return key, conversation.Cancel(), 0, true
			}
			return key, ev, 0, false
		}
		if msg.Text == "" {
			return key, ev, 0, false
		}
		return key, conversation.Text(msg.Text), 0, true

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil || cq.From == nil {
			return key, ev, 0, false
		}
		key = models.SessionKey{ChatID: cq.Message.Chat.ID, UserID: cq.From.ID}
		return key, conversation.Callback(cq.Data), cq.Message.MessageID, true
	}
	return key, ev, 0, false
}

type chatResponder struct {
	api      API
	chatID   int64
	sourceID int
}

func (r *chatResponder) Reply(ctx context.Context, reply conversation.Reply) error {
	if reply.EditSource && r.sourceID != 0 {
		err := r.edit(reply)
		if err == nil {
			return nil
		}
		log.Printf("⚠️ Failed to edit message %d in chat %d, sending a new one: %v", r.sourceID, r.chatID, err)
	}

	msg := tgbotapi.NewMessage(r.chatID, reply.Text)
	msg.ParseMode = parseMode
	if len(reply.Buttons) > 0 {
		msg.ReplyMarkup = keyboard(reply.Buttons)
	}
	_, err := r.api.Send(msg)
	return err
}

func (r *chatResponder) edit(reply conversation.Reply) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(reply.Buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(r.chatID, r.sourceID, reply.Text, keyboard(reply.Buttons))
	} else {
		//no markup removes the old buttons
		edit = tgbotapi.NewEditMessageText(r.chatID, r.sourceID, reply.Text)
	}
	edit.ParseMode = parseMode
	_, err := r.api.Send(edit)
	return err
}

func keyboard(buttons [][]conversation.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		var kb []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Token))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(kb...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
