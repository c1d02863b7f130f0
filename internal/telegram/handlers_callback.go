package telegram

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (app *BotApp) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	if _, err := app.request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[callback] ack fail: %v", err)
	}

	if !app.UserService.CheckAccess(ctx, userID) {
		app.reply(chatID, app.loc(ctx, userID, "NO_PERMISSION"))
		return
	}
	if !app.allowRequest(ctx, userID, chatID) {
		return
	}

	data := cb.Data
	edit := func(text string) {
		if _, err := app.send(tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text)); err != nil {
			log.Printf("[callback] edit fail: %v", err)
		}
	}

	switch {
	case data == "back":
		app.states.Clear(userID)
		edit(app.loc(ctx, userID, "OK"))

	case strings.HasPrefix(data, "set_language:"):
		app.applyLanguage(ctx, userID, strings.TrimPrefix(data, "set_language:"), edit)

	case strings.HasPrefix(data, "set_speaker:"):
		app.applySpeaker(ctx, userID, strings.TrimPrefix(data, "set_speaker:"), edit)

	case data == "set_model":
		markup := app.listKeyboard(ctx, userID, app.Provider.Models(), "choose_model:")
		out := tgbotapi.NewEditMessageTextAndMarkup(chatID, cb.Message.MessageID,
			app.loc(ctx, userID, "CHOOSE_MODEL"), markup)
		if _, err := app.send(out); err != nil {
			log.Printf("[callback] model menu fail: %v", err)
		}

	case strings.HasPrefix(data, "choose_model:"):
		app.applyModel(ctx, userID, strings.TrimPrefix(data, "choose_model:"), edit)

	default:
		app.startAwaiting(ctx, userID, chatID, data)
	}
}

// startAwaiting arms an input state: the next plain message becomes
// the new value. Unknown callback data is ignored on purpose — stale
// keyboards keep working after restarts.
func (app *BotApp) startAwaiting(ctx context.Context, userID, chatID int64, data string) {
	promptKeys := map[string]struct{ state, key string }{
		"set_system_prompt": {stateAwaitingSystemPrompt, "AWAITING_SYSTEM_PROMPT"},
		"set_temperature":   {stateAwaitingTemperature, "AWAITING_TEMPERATURE"},
		"set_top_p":         {stateAwaitingTopP, "AWAITING_TOP_P"},
		"set_max_tokens":    {stateAwaitingMaxTokens, "AWAITING_MAX_TOKENS"},
	}

	p, ok := promptKeys[data]
	if !ok {
		log.Printf("[callback] unknown data %q userID=%d", data, userID)
		return
	}

	app.states.Set(userID, p.state)
	app.reply(chatID, app.loc(ctx, userID, p.key))
}

func (app *BotApp) applyLanguage(ctx context.Context, userID int64, lang string, show func(string)) {
	if !app.Loc.Has(lang) {
		show(app.loc(ctx, userID, "LANGUAGE_INVALID"))
		return
	}

	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		show(app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}
	if data.Language != lang {
		data.Language = lang
		if err := app.UserService.Update(ctx, data); err != nil {
			log.Printf("[callback] set language fail userID=%d err=%v", userID, err)
			show(app.loc(ctx, userID, "HANDLING_ERROR"))
			return
		}
	}
	show(fmt.Sprintf(app.Loc.Get(lang, "LANGUAGE_SET"), app.Loc.Get(lang, "LANGUAGE_NAME")))
}

func (app *BotApp) applySpeaker(ctx context.Context, userID int64, speaker string, show func(string)) {
	if !slices.Contains(app.Provider.Speakers(), speaker) {
		show(app.loc(ctx, userID, "SPEAKER_INVALID"))
		return
	}

	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		show(app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}
	if data.Speaker != speaker {
		data.Speaker = speaker
		if err := app.UserService.Update(ctx, data); err != nil {
			log.Printf("[callback] set speaker fail userID=%d err=%v", userID, err)
			show(app.loc(ctx, userID, "HANDLING_ERROR"))
			return
		}
	}
	show(fmt.Sprintf(app.loc(ctx, userID, "SPEAKER_SET"), speaker))
}

func (app *BotApp) applyModel(ctx context.Context, userID int64, model string, show func(string)) {
	if !slices.Contains(app.Provider.Models(), model) {
		show(app.loc(ctx, userID, "MODEL_INVALID"))
		return
	}

	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		show(app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}
	if data.Model != model {
		data.Model = model
		if err := app.UserService.Update(ctx, data); err != nil {
			log.Printf("[callback] set model fail userID=%d err=%v", userID, err)
			show(app.loc(ctx, userID, "HANDLING_ERROR"))
			return
		}
	}
	show(fmt.Sprintf(app.loc(ctx, userID, "MODEL_SET"), model))
}
