package models

// Command bot command recognized by the game launcher
type Command string

const (
	CommandStart Command = "start"
	CommandPlay  Command = "play"
)

// Valid reports whether the command is one the bot answers
func (c Command) Valid() bool {
	switch c {
	case CommandStart, CommandPlay:
		return true
	default:
		return false
	}
}
