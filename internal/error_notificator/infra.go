package error_notificator

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

type Infra struct {
	bot   *tgbotapi.BotAPI
	users user.Service
}

func NewInfra(users user.Service) *Infra {
	return &Infra{users: users}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался
func (i *Infra) SetBot(bot *tgbotapi.BotAPI) {
	i.bot = bot
}

// Notify sends the error to every admin, attaching the current stack
// as a txt document. Failures here are logged and swallowed: error
// reporting must never take the bot down.
func (i *Infra) Notify(ctx context.Context, err error, details string) {
	if i.bot == nil {
		log.Printf("[error_notificator] bot not set, dropping: %v", err)
		return
	}

	admins, aerr := i.users.ListAdminIDs(ctx)
	if aerr != nil {
		log.Printf("[error_notificator] list admins fail: %v", aerr)
		return
	}

	text := fmt.Sprintf("❗ Bot error\n\nError: %v\n\nDetails: %s", err, details)
	stack := debug.Stack()

	tracePath := fmt.Sprintf("%s/error_%s.txt", os.TempDir(), uuid.NewString())
	traceOK := os.WriteFile(tracePath, stack, 0600) == nil
	if traceOK {
		defer os.Remove(tracePath)
	}

	for _, adminID := range admins {
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(adminID, text)); sendErr != nil {
			log.Printf("[error_notificator] send fail admin=%d err=%v", adminID, sendErr)
			continue
		}
		if !traceOK {
			continue
		}
		doc := tgbotapi.NewDocument(adminID, tgbotapi.FilePath(tracePath))
		doc.Caption = "error_stack_trace.txt"
		if _, sendErr := i.bot.Send(doc); sendErr != nil {
			log.Printf("[error_notificator] send trace fail admin=%d err=%v", adminID, sendErr)
		}
	}
}
