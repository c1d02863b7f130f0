package telegram

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strconv"

	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleSettingInput consumes a plain message as the value for the
// armed awaiting state. The state is cleared whether or not the value
// was valid, matching a single-shot prompt.
func (app *BotApp) handleSettingInput(ctx context.Context, msg *tgbotapi.Message, state string) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	value := msg.Text

	defer app.states.Clear(userID)

	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		log.Printf("[settings] load fail userID=%d err=%v", userID, err)
		app.reply(chatID, app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}

	switch state {
	case stateAwaitingModel:
		if !slices.Contains(app.Provider.Models(), value) {
			app.reply(chatID, app.loc(ctx, userID, "MODEL_INVALID"))
			return
		}
		data.Model = value
		app.saveSetting(ctx, chatID, data, fmt.Sprintf(app.loc(ctx, userID, "MODEL_SET"), value))

	case stateAwaitingSystemPrompt:
		data.SystemPrompt = value
		app.saveSetting(ctx, chatID, data,
			fmt.Sprintf(app.loc(ctx, userID, "PARAM_SET"), "System prompt", value))

	case stateAwaitingTemperature:
		app.setFloatSetting(ctx, chatID, data, "Temperature", value, &data.Temperature)

	case stateAwaitingTopP:
		app.setFloatSetting(ctx, chatID, data, "Top_p", value, &data.TopP)

	case stateAwaitingMaxTokens:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			app.reply(chatID, app.loc(ctx, userID, "MAX_TOKENS_INVALID"))
			return
		}
		data.MaxTokens = n
		app.saveSetting(ctx, chatID, data, fmt.Sprintf(app.loc(ctx, userID, "MAX_TOKENS_SET"), n))

	default:
		log.Printf("[settings] unknown state %q userID=%d", state, userID)
	}
}

func (app *BotApp) setFloatSetting(ctx context.Context, chatID int64, data *user.Data, param, value string, dst *float64) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 || f > 1 {
		app.reply(chatID, fmt.Sprintf(app.loc(ctx, data.UserID, "PARAM_INVALID_VALUE"), param))
		return
	}
	*dst = f
	app.saveSetting(ctx, chatID, data, fmt.Sprintf(app.loc(ctx, data.UserID, "PARAM_SET"), param, f))
}

func (app *BotApp) saveSetting(ctx context.Context, chatID int64, data *user.Data, done string) {
	if err := app.UserService.Update(ctx, data); err != nil {
		log.Printf("[settings] save fail userID=%d err=%v", data.UserID, err)
		app.reply(chatID, app.loc(ctx, data.UserID, "HANDLING_ERROR"))
		return
	}
	app.reply(chatID, done)
}
