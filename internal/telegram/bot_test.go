package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-openclaw-cv-sender/internal/conversation"
	"go-openclaw-cv-sender/internal/models"
	"go-openclaw-cv-sender/internal/session"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	editErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.editErr != nil {
		return tgbotapi.Message{}, f.editErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type handled struct {
	key models.SessionKey
	ev  conversation.Event
}

type fakeHandler struct {
	mu    sync.Mutex
	calls []handled
	reply *conversation.Reply
}

func (f *fakeHandler) Handle(ctx context.Context, key models.SessionKey, ev conversation.Event, out conversation.Responder) error {
	f.mu.Lock()
	f.calls = append(f.calls, handled{key: key, ev: ev})
	f.mu.Unlock()
	if f.reply != nil {
		return out.Reply(ctx, *f.reply)
	}
	return nil
}

func textUpdate(text string) tgbotapi.Update {
	return userTextUpdate(42, text)
}

func userTextUpdate(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{
			MessageID: 55,
			Chat:      &tgbotapi.Chat{ID: 100},
		},
		Data: data,
	}}
}

func TestToEvent(t *testing.T) {
	key := models.SessionKey{ChatID: 100, UserID: 42}

	tests := []struct {
		name     string
		update   tgbotapi.Update
		wantOK   bool
		wantEv   conversation.Event
		sourceID int
	}{
		{"start command", textUpdate("/start"), true, conversation.Start(), 0},
		{"start with bot name", textUpdate("/start@cv_bot"), true, conversation.Start(), 0},
		{"cancel command", textUpdate("/cancel"), true, conversation.Cancel(), 0},
		{"unknown command", textUpdate("/help"), false, conversation.Event{}, 0},
		{"plain text", textUpdate("Acme"), true, conversation.Text("Acme"), 0},
		{"empty message", textUpdate(""), false, conversation.Event{}, 0},
		{"button press", callbackUpdate("file-1"), true, conversation.Callback("file-1"), 55},
		{"nothing", tgbotapi.Update{}, false, conversation.Event{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotKey, ev, sourceID, ok := ToEvent(tt.update)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, key, gotKey)
			assert.Equal(t, tt.wantEv, ev)
			assert.Equal(t, tt.sourceID, sourceID)
		})
	}
}

func TestToEvent_MissingSender(t *testing.T) {
	u := textUpdate("Acme")
	u.Message.From = nil
	_, _, _, ok := ToEvent(u)
	assert.False(t, ok)

	cb := callbackUpdate("x")
	cb.CallbackQuery.Message = nil
	_, _, _, ok = ToEvent(cb)
	assert.False(t, ok)
}

func TestDispatch_AnswersCallbackAndHandles(t *testing.T) {
	api := &fakeAPI{}
	h := &fakeHandler{}
	bot := NewBot(api, h)

	bot.Dispatch(context.Background(), callbackUpdate("file-1"))
	bot.Dispatch(context.Background(), textUpdate("/help"))
	bot.Wait()

	require.Len(t, h.calls, 1)
	assert.Equal(t, conversation.Callback("file-1"), h.calls[0].ev)
	require.Len(t, api.requests, 1)
	answer, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", answer.CallbackQueryID)
}

func TestRun_StopsWhenChannelCloses(t *testing.T) {
	h := &fakeHandler{}
	bot := NewBot(&fakeAPI{}, h)

	updates := make(chan tgbotapi.Update, 3)
	updates <- textUpdate("/start")
	updates <- textUpdate("Acme")
	updates <- textUpdate("Backend")
	close(updates)

	bot.Run(context.Background(), updates)
	assert.Len(t, h.calls, 3)
}

func TestResponder_SendsHTMLWithKeyboard(t *testing.T) {
	api := &fakeAPI{}
	r := &chatResponder{api: api, chatID: 100}

	err := r.Reply(context.Background(), conversation.Reply{
		Text:    "📂 <b>Elige</b>",
		Buttons: [][]conversation.Button{{{Text: "CV.pdf", Token: "f1"}}, {{Text: "CV_en.pdf", Token: "f2"}}},
	})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(100), msg.ChatID)
	assert.Equal(t, "HTML", msg.ParseMode)
	assert.Equal(t, "📂 <b>Elige</b>", msg.Text)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "CV.pdf", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "f2", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestResponder_EditsSourceMessage(t *testing.T) {
	api := &fakeAPI{}
	r := &chatResponder{api: api, chatID: 100, sourceID: 55}

	require.NoError(t, r.Reply(context.Background(), conversation.Reply{Text: "⏳ Enviando", EditSource: true}))

	require.Len(t, api.sent, 1)
	edit, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 55, edit.MessageID)
	assert.Equal(t, "HTML", edit.ParseMode)
	assert.Nil(t, edit.ReplyMarkup)
}

func TestResponder_FallsBackWhenEditFails(t *testing.T) {
	api := &fakeAPI{editErr: errors.New("Bad Request: message to edit not found")}
	r := &chatResponder{api: api, chatID: 100, sourceID: 55}

	require.NoError(t, r.Reply(context.Background(), conversation.Reply{Text: "ok", EditSource: true}))

	require.Len(t, api.sent, 1)
	_, ok := api.sent[0].(tgbotapi.MessageConfig)
	assert.True(t, ok)
}

func TestResponder_EditWithoutSourceSendsNew(t *testing.T) {
	api := &fakeAPI{}
	r := &chatResponder{api: api, chatID: 100}

	require.NoError(t, r.Reply(context.Background(), conversation.Reply{Text: "ok", EditSource: true}))
	_, ok := api.sent[0].(tgbotapi.MessageConfig)
	assert.True(t, ok)
}

func TestHandle_RepliesGoToSameChat(t *testing.T) {
	api := &fakeAPI{}
	h := &fakeHandler{reply: &conversation.Reply{Text: "hola"}}
	bot := NewBot(api, h)

	bot.Dispatch(context.Background(), textUpdate("/start"))
	bot.Wait()

	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(100), api.sent[0].(tgbotapi.MessageConfig).ChatID)
}

// gatedHandler blocks the first event of user 42 until release is closed
type gatedHandler struct {
	fakeHandler
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedHandler) Handle(ctx context.Context, key models.SessionKey, ev conversation.Event, out conversation.Responder) error {
	if key.UserID == 42 {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.fakeHandler.Handle(ctx, key, ev, out)
}

func (g *gatedHandler) eventsOf(userID int64) []conversation.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	var evs []conversation.Event
	for _, c := range g.calls {
		if c.key.UserID == userID {
			evs = append(evs, c.ev)
		}
	}
	return evs
}

func TestDispatch_SessionEventsKeepArrivalOrder(t *testing.T) {
	h := &gatedHandler{entered: make(chan struct{}), release: make(chan struct{})}
	bot := NewBot(&fakeAPI{}, h)
	ctx := context.Background()

	bot.Dispatch(ctx, userTextUpdate(42, "/start"))
	<-h.entered
	for _, text := range []string{"Acme", "Backend Engineer", "hr@acme.com"} {
		bot.Dispatch(ctx, userTextUpdate(42, text))
	}

	//another session is not held up by the blocked one
	bot.Dispatch(ctx, userTextUpdate(7, "/start"))
	require.Eventually(t, func() bool { return len(h.eventsOf(7)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, h.eventsOf(42))

	close(h.release)
	bot.Wait()

	assert.Equal(t, []conversation.Event{
		conversation.Start(),
		conversation.Text("Acme"),
		conversation.Text("Backend Engineer"),
		conversation.Text("hr@acme.com"),
	}, h.eventsOf(42))

	bot.mu.Lock()
	assert.Empty(t, bot.queues)
	bot.mu.Unlock()
}

func TestDispatch_ManyUsersCollectFieldsInOrder(t *testing.T) {
	store := session.NewStore(time.Hour)
	runner := conversation.NewRunner(conversation.Machine{}, store, nil, nil, conversation.RunnerConfig{})
	bot := NewBot(&fakeAPI{}, runner)
	ctx := context.Background()

	const users = 500
	for i := int64(1); i <= users; i++ {
		bot.Dispatch(ctx, userTextUpdate(i, "/start"))
		bot.Dispatch(ctx, userTextUpdate(i, fmt.Sprintf("Company %d", i)))
		bot.Dispatch(ctx, userTextUpdate(i, fmt.Sprintf("Vacancy %d", i)))
	}
	bot.Wait()

	for i := int64(1); i <= users; i++ {
		key := models.SessionKey{ChatID: 100, UserID: i}
		company, _ := store.Get(key, models.FieldCompany)
		vacancy, _ := store.Get(key, models.FieldVacancy)
		require.Equal(t, fmt.Sprintf("Company %d", i), company, "user %d", i)
		require.Equal(t, fmt.Sprintf("Vacancy %d", i), vacancy, "user %d", i)
	}
}
