package telegram

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (app *BotApp) cmdStart(ctx context.Context, msg *tgbotapi.Message) {
	app.reply(msg.Chat.ID, app.loc(ctx, msg.From.ID, "WELCOME"))
}

func (app *BotApp) cmdReset(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if err := app.UserService.ResetHistory(ctx, userID); err != nil {
		log.Printf("[cmd] reset fail userID=%d err=%v", userID, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}
	app.reply(msg.Chat.ID, app.loc(ctx, userID, "HISTORY_RESET"))
}

func (app *BotApp) cmdSettings(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		log.Printf("[cmd] settings load fail userID=%d err=%v", userID, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}

	current := fmt.Sprintf(
		"Current settings:\nModel: %s\nSystem Prompt: %s\nTemperature: %g\nTop P: %g\nMax Tokens: %d\n",
		data.Model, data.SystemPrompt, data.Temperature, data.TopP, data.MaxTokens,
	)

	out := tgbotapi.NewMessage(msg.Chat.ID, current+"\n"+app.loc(ctx, userID, "SETTINGS"))
	out.ReplyMarkup = app.settingsKeyboard(ctx, userID)
	if _, err := app.send(out); err != nil {
		log.Printf("[cmd] settings send fail: %v", err)
	}
}

func (app *BotApp) cmdLanguage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	out := tgbotapi.NewMessage(msg.Chat.ID, app.loc(ctx, userID, "CHOOSE_LANGUAGE"))
	out.ReplyMarkup = app.languageKeyboard(ctx, userID)
	if _, err := app.send(out); err != nil {
		log.Printf("[cmd] language send fail: %v", err)
	}
}

func (app *BotApp) cmdSpeaker(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	out := tgbotapi.NewMessage(msg.Chat.ID, app.loc(ctx, userID, "CHOOSE_SPEAKER"))
	out.ReplyMarkup = app.listKeyboard(ctx, userID, app.Provider.Speakers(), "set_speaker:")
	if _, err := app.send(out); err != nil {
		log.Printf("[cmd] speaker send fail: %v", err)
	}
}

// cmdHistory exports the conversation as a txt document.
func (app *BotApp) cmdHistory(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		log.Printf("[cmd] history load fail userID=%d err=%v", userID, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}

	if len(data.MessageHistory) == 0 {
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "NO_HISTORY"))
		return
	}

	var b strings.Builder
	for _, m := range data.MessageHistory {
		b.WriteString(capitalize(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	path := fmt.Sprintf("%s/history_%s.txt", os.TempDir(), uuid.NewString())
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		log.Printf("[cmd] history write fail userID=%d err=%v", userID, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HISTORY_EXPORT_ERROR"))
		return
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(path))
	doc.Caption = "message_history.txt"
	if _, err := app.send(doc); err != nil {
		log.Printf("[cmd] history send fail userID=%d err=%v", userID, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HISTORY_EXPORT_ERROR"))
	}
}
