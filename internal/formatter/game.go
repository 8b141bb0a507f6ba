package formatter

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-telegram/bot/models"

	appmodels "github.com/mixelka/gamebot/pkg/models"
)

// ErrUnknownCommand is returned for commands the bot does not answer
var ErrUnknownCommand = errors.New("unknown command")

// Reply is an outgoing message with its inline keyboard
type Reply struct {
	Text     string
	Keyboard *models.InlineKeyboardMarkup
}

type replyTemplate struct {
	text   string
	button string
}

var replies = map[appmodels.Command]replyTemplate{
	appmodels.CommandStart: {
		text:   "Welcome to the game! Click the button below to play.",
		button: "Play Game",
	},
	appmodels.CommandPlay: {
		text:   "Click the button to play the latest version of the game:",
		button: "Play Latest Game",
	},
}

// GameFormatter builds replies pointing at the game URL
type GameFormatter struct {
	gameURL string
}

// NewGameFormatter creates a new game formatter
func NewGameFormatter(gameURL string) *GameFormatter {
	return &GameFormatter{gameURL: gameURL}
}

// Reply returns the message for a command
func (f *GameFormatter) Reply(cmd appmodels.Command) (Reply, error) {
	tmpl, ok := replies[cmd]
	if !ok {
		return Reply{}, ErrUnknownCommand
	}
	return Reply{
		Text:     tmpl.text,
		Keyboard: BuildGameKeyboard(tmpl.button, f.gameURL),
	}, nil
}

// ParseCommand extracts a known command from message text.
// "/Play@my_bot now" yields CommandPlay when botUsername is "my_bot" or empty;
// commands addressed to another bot are ignored.
func ParseCommand(text, botUsername string) (appmodels.Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	token := text[1:]
	if i := strings.IndexFunc(token, unicode.IsSpace); i >= 0 {
		token = token[:i]
	}
	if i := strings.IndexByte(token, '@'); i >= 0 {
		target := token[i+1:]
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return "", false
		}
		token = token[:i]
	}

	cmd := appmodels.Command(strings.ToLower(token))
	if !cmd.Valid() {
		return "", false
	}
	return cmd, true
}
