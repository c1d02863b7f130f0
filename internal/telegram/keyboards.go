package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) settingsKeyboard(ctx context.Context, userID int64) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, b := range []struct{ key, data string }{
		{"SET_MODEL", "set_model"},
		{"SET_SYSTEM_PROMPT", "set_system_prompt"},
		{"SET_TEMPERATURE", "set_temperature"},
		{"SET_TOP_P", "set_top_p"},
		{"SET_MAX_TOKENS", "set_max_tokens"},
		{"GO_BACK", "back"},
	} {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(app.loc(ctx, userID, b.key), b.data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (app *BotApp) listKeyboard(ctx context.Context, userID int64, items []string, prefix string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(item, prefix+item),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(app.loc(ctx, userID, "GO_BACK"), "back"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (app *BotApp) languageKeyboard(ctx context.Context, userID int64) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, lang := range app.Loc.Languages() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(app.Loc.Get(lang, "LANGUAGE_NAME"), "set_language:"+lang),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(app.loc(ctx, userID, "GO_BACK"), "back"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
