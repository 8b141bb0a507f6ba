package telegram

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/mixelka/gamebot/internal/database"
	"github.com/mixelka/gamebot/internal/formatter"
	"github.com/mixelka/gamebot/internal/metrics"
	"github.com/mixelka/gamebot/internal/telegram/telegramtest"
	appmodels "github.com/mixelka/gamebot/pkg/models"
)

const testGameURL = "https://game.example.com/play"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBot(t *testing.T) (*Bot, *telegramtest.FakeAPI, *database.DB) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	api := telegramtest.NewFakeAPI(t)
	b, err := NewBot(context.Background(), BotDeps{
		Token:     "test-token",
		DB:        db,
		Formatter: formatter.NewGameFormatter(testGameURL),
		Metrics:   metrics.New(),
		Logger:    testLogger(),
		Options:   api.Options(),
	})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return b, api, db
}

func textUpdate(id int64, chatID int64, text string) *models.Update {
	return &models.Update{
		ID: id,
		Message: &models.Message{
			ID:   int(id),
			Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
			From: &models.User{ID: 7, Username: "alice"},
			Text: text,
		},
	}
}

func TestCommandsReplyWithGameButton(t *testing.T) {
	tests := []struct {
		text     string
		wantText string
		wantBtn  string
	}{
		{"/start", "Welcome to the game! Click the button below to play.", "Play Game"},
		{"/play", "Click the button to play the latest version of the game:", "Play Latest Game"},
		{"/play@game_bot", "Click the button to play the latest version of the game:", "Play Latest Game"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			b, api, _ := newTestBot(t)

			b.ProcessUpdate(context.Background(), textUpdate(1, 42, tt.text))

			sent := api.Sent()
			if len(sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(sent))
			}
			msg := sent[0]
			if msg.ChatID != 42 {
				t.Errorf("chat id = %d, want 42", msg.ChatID)
			}
			if msg.Text != tt.wantText {
				t.Errorf("text = %q, want %q", msg.Text, tt.wantText)
			}
			if msg.ReplyMarkup == nil {
				t.Fatal("reply has no keyboard")
			}
			rows := msg.ReplyMarkup.InlineKeyboard
			if len(rows) != 1 || len(rows[0]) != 1 {
				t.Fatalf("keyboard = %+v, want one button", rows)
			}
			if rows[0][0].URL != testGameURL {
				t.Errorf("button url = %q, want %q", rows[0][0].URL, testGameURL)
			}
			if rows[0][0].Text != tt.wantBtn {
				t.Errorf("button text = %q, want %q", rows[0][0].Text, tt.wantBtn)
			}
		})
	}
}

func TestLaunchRecorded(t *testing.T) {
	b, _, db := newTestBot(t)
	ctx := context.Background()

	b.ProcessUpdate(ctx, textUpdate(5, 42, "/start"))
	b.ProcessUpdate(ctx, textUpdate(6, 42, "/play"))

	var launches []appmodels.Launch
	err := db.SelectContext(ctx, &launches, `SELECT * FROM game_launches WHERE chat_id = ? ORDER BY id DESC`, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(launches) != 2 {
		t.Fatalf("got %d launches, want 2", len(launches))
	}
	if launches[0].Command != appmodels.CommandPlay || launches[0].UpdateID != 6 {
		t.Errorf("newest launch = %+v", launches[0])
	}
	if launches[1].Username != "alice" || launches[1].UserID != 7 {
		t.Errorf("launch user = %q/%d", launches[1].Username, launches[1].UserID)
	}
	if launches[1].MessageID == 0 {
		t.Error("reply message id not recorded")
	}
}

func TestNewBotFetchesUsername(t *testing.T) {
	b, api, _ := newTestBot(t)

	if b.username != telegramtest.BotUsername {
		t.Errorf("username = %q, want %q", b.username, telegramtest.BotUsername)
	}
	if n := len(api.MethodCalls("getMe")); n != 1 {
		t.Errorf("getMe called %d times, want 1", n)
	}
}

func TestReplySentBeforeProcessUpdateReturns(t *testing.T) {
	b, api, _ := newTestBot(t)

	// A cancelled context after return must not matter: the send already happened
	ctx, cancel := context.WithCancel(context.Background())
	b.ProcessUpdate(ctx, textUpdate(1, 42, "/play"))
	cancel()

	if n := len(api.MethodCalls("sendMessage")); n != 1 {
		t.Errorf("sendMessage calls at return = %d, want 1", n)
	}
}

func TestIgnoresOtherMessages(t *testing.T) {
	b, api, db := newTestBot(t)
	ctx := context.Background()

	for i, text := range []string{"hello", "/help", "/player", "/start@other_bot", ""} {
		b.ProcessUpdate(ctx, textUpdate(int64(i+1), 42, text))
	}
	b.ProcessUpdate(ctx, &models.Update{ID: 99})

	if sent := api.Sent(); len(sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(sent))
	}
	n, err := db.CountLaunches(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("recorded %d launches, want 0", n)
	}
}

func TestSendFailureNotRecorded(t *testing.T) {
	b, api, db := newTestBot(t)
	ctx := context.Background()
	api.FailSendMessage(true)

	b.ProcessUpdate(ctx, textUpdate(1, 42, "/start"))

	n, err := db.CountLaunches(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("recorded %d launches after failed send, want 0", n)
	}
}

func TestRespondReturnsClientError(t *testing.T) {
	b, api, _ := newTestBot(t)
	api.FailSendMessage(true)

	msg := textUpdate(1, 42, "/play").Message
	if _, err := b.respond(context.Background(), msg, appmodels.CommandPlay); err == nil {
		t.Fatal("expected error from failed sendMessage")
	}
}

func TestWebhookRegistration(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	if err := b.RegisterWebhook(ctx, "https://bot.example.com/webhook", "s3cret"); err != nil {
		t.Fatalf("RegisterWebhook: %v", err)
	}
	if err := b.RemoveWebhook(ctx); err != nil {
		t.Fatalf("RemoveWebhook: %v", err)
	}

	calls := api.Calls()
	if len(calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(calls))
	}
	if calls[0].Method != "getMe" {
		t.Errorf("first call = %s, want getMe", calls[0].Method)
	}
	if calls[1].Method != "setWebhook" {
		t.Errorf("second call = %s, want setWebhook", calls[1].Method)
	}
	if calls[1].Form["url"] != "https://bot.example.com/webhook" {
		t.Errorf("url = %q", calls[1].Form["url"])
	}
	if calls[1].Form["secret_token"] != "s3cret" {
		t.Errorf("secret_token = %q", calls[1].Form["secret_token"])
	}
	if calls[2].Method != "deleteWebhook" {
		t.Errorf("third call = %s, want deleteWebhook", calls[2].Method)
	}
}
