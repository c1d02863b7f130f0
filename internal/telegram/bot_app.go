package telegram

import (
	"context"
	"log"

	"github.com/KPEKEP/universal-llm-chatbot/internal/archive"
	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
	"github.com/KPEKEP/universal-llm-chatbot/internal/error_notificator"
	"github.com/KPEKEP/universal-llm-chatbot/internal/localization"
	"github.com/KPEKEP/universal-llm-chatbot/internal/provider"
	"github.com/KPEKEP/universal-llm-chatbot/internal/ratelimit"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type BotApp struct {
	Cfg          *config.Config
	Loc          *localization.Bundle
	UserService  user.Service
	Provider     provider.Provider
	Limiter      *ratelimit.Limiter
	ErrorNotify  error_notificator.Notificator
	ArchiveStore *archive.Service

	bot     *tgbotapi.BotAPI
	send    func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	request func(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	states  *stateStore
}

func NewBotApp(
	cfg *config.Config,
	loc *localization.Bundle,
	users user.Service,
	prov provider.Provider,
	limiter *ratelimit.Limiter,
	errNotify error_notificator.Notificator,
	arch *archive.Service,
) *BotApp {
	return &BotApp{
		Cfg:          cfg,
		Loc:          loc,
		UserService:  users,
		Provider:     prov,
		Limiter:      limiter,
		ErrorNotify:  errNotify,
		ArchiveStore: arch,
		states:       newStateStore(stateTimeout),
	}
}

// InitBot authorizes against the Telegram API.
func (app *BotApp) InitBot() error {
	bot, err := tgbotapi.NewBotAPI(app.Cfg.Telegram.Token)
	if err != nil {
		return err
	}
	app.bot = bot
	app.send = bot.Send
	app.request = bot.Request
	log.Printf("[bot_app] ready: @%s", bot.Self.UserName)
	return nil
}

func (app *BotApp) Bot() *tgbotapi.BotAPI {
	return app.bot
}

// loc resolves a localized string in the user's language.
func (app *BotApp) loc(ctx context.Context, userID int64, key string) string {
	lang := app.Cfg.Language
	if d, err := app.UserService.Get(ctx, userID); err == nil && d != nil {
		lang = d.Language
	}
	return app.Loc.Get(lang, key)
}

func (app *BotApp) reply(chatID int64, text string) {
	if _, err := app.send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("[bot_app] send fail chatID=%d err=%v", chatID, err)
	}
}
