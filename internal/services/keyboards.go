package services

import (
	"github.com/ad/go-telegram-blog/internal/models"
	tgmodels "github.com/go-telegram/bot/models"
)

// Reply-keyboard button labels. The dispatcher treats them as synonyms
// for the matching slash commands.
const (
	ButtonNewPost = "🆕 New post"
	ButtonStatus  = "📍 Status"
	ButtonBack    = "⬅️ Back"
	ButtonSkip    = "⏭️ Skip image"
	ButtonCancel  = "❌ Cancel"
)

// MainReplyKeyboard is the persistent keyboard shown under the input field.
func MainReplyKeyboard() *tgmodels.ReplyKeyboardMarkup {
	return &tgmodels.ReplyKeyboardMarkup{
		Keyboard: [][]tgmodels.KeyboardButton{
			{{Text: ButtonNewPost}, {Text: ButtonStatus}},
			{{Text: ButtonBack}, {Text: ButtonSkip}, {Text: ButtonCancel}},
		},
		ResizeKeyboard: true,
	}
}

// CategoryKeyboard renders one inline button per category.
func CategoryKeyboard(categories []models.Category) *tgmodels.InlineKeyboardMarkup {
	buttons := make([][]tgmodels.InlineKeyboardButton, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, []tgmodels.InlineKeyboardButton{
			{Text: c.Title, CallbackData: "cat:" + c.Slug},
		})
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: buttons}
}

// TagKeyboard renders a toggle button per tag, checking the selected ones,
// with a final Done row.
func TagKeyboard(tags []models.Tag, selected []string) *tgmodels.InlineKeyboardMarkup {
	isSelected := make(map[string]bool, len(selected))
	for _, slug := range selected {
		isSelected[slug] = true
	}

	buttons := make([][]tgmodels.InlineKeyboardButton, 0, len(tags)+1)
	for _, t := range tags {
		label := t.Title
		if isSelected[t.Slug] {
			label = "✅ " + label
		}
		buttons = append(buttons, []tgmodels.InlineKeyboardButton{
			{Text: label, CallbackData: "tag:" + t.Slug},
		})
	}
	buttons = append(buttons, []tgmodels.InlineKeyboardButton{
		{Text: "✅ Done", CallbackData: "tag:done"},
	})
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: buttons}
}
