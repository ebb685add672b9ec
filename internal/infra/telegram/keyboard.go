package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// BuildReplyKeyboard builds a resized persistent keyboard, one row per slice.
func BuildReplyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	keyboardRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, title := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(title))
		}
		keyboardRows = append(keyboardRows, buttons)
	}

	keyboard := tgbotapi.NewReplyKeyboard(keyboardRows...)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = false
	return keyboard
}
