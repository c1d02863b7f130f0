package telegram

import (
	"context"
	"fmt"
	"log"

	"github.com/KPEKEP/universal-llm-chatbot/internal/ratelimit"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Run — главный цикл получения апдейтов
func (app *BotApp) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := app.bot.GetUpdatesChan(u)
	log.Printf("[bot_loop] started username=@%s", app.bot.Self.UserName)

	for update := range updates {
		go app.routeUpdate(context.Background(), update)
	}
}

func (app *BotApp) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in update handler: %v", r)
			log.Printf("[bot_loop] %v", err)
			app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("updateID=%d", update.UpdateID))
		}
	}()

	switch {
	case update.Message != nil && update.Message.From != nil:
		app.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		app.handleCallback(ctx, update.CallbackQuery)
	}
}

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		app.handleCommand(ctx, msg)
		return
	}

	// -----------------------------------------------------------------
	// обычные сообщения: доступ → лимит → обработка
	// -----------------------------------------------------------------

	// no row yet means no access: /start is the only way in
	if !app.UserService.CheckAccess(ctx, userID) {
		app.reply(chatID, app.loc(ctx, userID, "NO_PERMISSION"))
		return
	}

	if !app.allowRequest(ctx, userID, chatID) {
		return
	}

	// pending settings input consumes the message
	if state, ok := app.states.Get(userID); ok {
		app.handleSettingInput(ctx, msg, state)
		return
	}

	app.processMessage(ctx, msg)
}

// allowRequest applies the global and per-user limiters, answering the
// user with the exhausted scope on rejection.
func (app *BotApp) allowRequest(ctx context.Context, userID, chatID int64) bool {
	ok, scope := app.Limiter.Allow(userID)
	if ok {
		return true
	}

	log.Printf("[rate] reject userID=%d scope=%s", userID, scope)
	key := "NO_USER_CAPACITY"
	if scope == ratelimit.ScopeGlobal {
		key = "NO_GLOBAL_CAPACITY"
	}
	app.reply(chatID, app.loc(ctx, userID, key))
	return false
}

func (app *BotApp) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	// /start is the entry point: the only handler that creates the
	// user row, so it skips the access check
	case "start":
		if _, err := app.UserService.GetOrCreate(ctx, userID, msg.From.UserName); err != nil {
			log.Printf("[dispatch] getOrCreate fail userID=%d err=%v", userID, err)
			app.reply(chatID, app.loc(ctx, userID, "HANDLING_ERROR"))
			return
		}
		if app.allowRequest(ctx, userID, chatID) {
			app.cmdStart(ctx, msg)
		}
		return

	// admin commands skip the rate limiter but require the flag
	case "whitelist":
		app.adminGated(ctx, msg, app.cmdWhitelist)
		return
	case "blacklist":
		app.adminGated(ctx, msg, app.cmdBlacklist)
		return
	case "grant_admin":
		app.adminGated(ctx, msg, app.cmdGrantAdmin)
		return
	case "broadcast":
		app.adminGated(ctx, msg, app.cmdBroadcast)
		return
	}

	if !app.UserService.CheckAccess(ctx, userID) {
		app.reply(chatID, app.loc(ctx, userID, "NO_PERMISSION"))
		return
	}
	if !app.allowRequest(ctx, userID, chatID) {
		return
	}

	switch msg.Command() {
	case "reset":
		app.cmdReset(ctx, msg)
	case "settings":
		app.cmdSettings(ctx, msg)
	case "language":
		app.cmdLanguage(ctx, msg)
	case "speaker":
		app.cmdSpeaker(ctx, msg)
	case "history":
		app.cmdHistory(ctx, msg)
	default:
		app.reply(chatID, app.loc(ctx, userID, "UNKNOWN_COMMAND"))
	}
}

func (app *BotApp) adminGated(ctx context.Context, msg *tgbotapi.Message, handler func(context.Context, *tgbotapi.Message)) {
	userID := msg.From.ID
	if !app.UserService.IsAdmin(ctx, userID) {
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "ADMIN_PERMISSION_DENIED"))
		return
	}
	handler(ctx, msg)
}
