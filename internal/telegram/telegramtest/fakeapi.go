// Package telegramtest provides a fake Telegram Bot API server for tests.
package telegramtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotUsername is the username the fake API reports from getMe
const BotUsername = "game_bot"

// SentMessage is a sendMessage call recorded by the fake API
type SentMessage struct {
	ChatID          int64
	MessageThreadID int
	Text            string
	ReplyMarkup     *models.InlineKeyboardMarkup
}

// Call is any Bot API method invocation recorded by the fake API
type Call struct {
	Method string
	Form   map[string]string
}

// FakeAPI records Bot API calls and answers them like Telegram would
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	sent     []SentMessage
	failSend bool
	nextID   int
}

// NewFakeAPI starts a fake Bot API server; it is closed when the test ends
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{nextID: 1}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Options returns bot options pointing the client at the fake server
func (f *FakeAPI) Options() []bot.Option {
	return []bot.Option{
		bot.WithServerURL(f.URL),
	}
}

// MethodCalls returns recorded calls of a single method
func (f *FakeAPI) MethodCalls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []Call
	for _, c := range f.calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// FailSendMessage makes subsequent sendMessage calls return an API error
func (f *FakeAPI) FailSendMessage(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSend = fail
}

// Sent returns a copy of the recorded sendMessage calls
func (f *FakeAPI) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.sent...)
}

// Calls returns a copy of all recorded method calls
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	// Path is /bot<token>/<method>
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	_ = r.ParseMultipartForm(1 << 20)
	form := make(map[string]string, len(r.Form))
	for k, v := range r.Form {
		if len(v) > 0 {
			form[k] = v[0]
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Form: form})

	w.Header().Set("Content-Type", "application/json")

	switch method {
	case "getMe":
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"id":         1,
				"is_bot":     true,
				"first_name": "Game",
				"username":   BotUsername,
			},
		})
	case "sendMessage":
		if f.failSend {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"ok":          false,
				"error_code":  400,
				"description": "Bad Request: chat not found",
			})
			return
		}

		msg := SentMessage{Text: form["text"]}
		msg.ChatID, _ = strconv.ParseInt(strings.Trim(form["chat_id"], `"`), 10, 64)
		msg.MessageThreadID, _ = strconv.Atoi(form["message_thread_id"])
		if raw := form["reply_markup"]; raw != "" {
			var kb models.InlineKeyboardMarkup
			if err := json.Unmarshal([]byte(raw), &kb); err == nil {
				msg.ReplyMarkup = &kb
			}
		}
		f.sent = append(f.sent, msg)

		id := f.nextID
		f.nextID++
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": id,
				"date":       0,
				"chat":       map[string]any{"id": msg.ChatID, "type": "private"},
				"text":       msg.Text,
			},
		})
	default:
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": true})
	}
}
