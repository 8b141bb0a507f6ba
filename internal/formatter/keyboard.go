package formatter

import (
	"github.com/go-telegram/bot/models"
)

// BuildGameKeyboard creates an inline keyboard with a single button opening the game
func BuildGameKeyboard(label, gameURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: label, URL: gameURL},
			},
		},
	}
}
