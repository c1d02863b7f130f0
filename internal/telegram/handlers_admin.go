package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// parseTargetArgs reads "<user_id|@username> [on|off]" command
// arguments; the mode defaults to on, matching `/whitelist 123`
// adding to the list.
func parseTargetArgs(args string) (string, bool, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", false, fmt.Errorf("no target given")
	}

	mode := true
	if len(fields) > 1 {
		switch strings.ToLower(fields[1]) {
		case "false", "0", "off", "no":
			mode = false
		}
	}
	return fields[0], mode, nil
}

// resolveTarget turns a numeric id or an @username into a user id.
func (app *BotApp) resolveTarget(ctx context.Context, target string) (int64, error) {
	if name, ok := strings.CutPrefix(target, "@"); ok {
		d, err := app.UserService.GetByUsername(ctx, name)
		if err != nil {
			return 0, err
		}
		if d == nil {
			return 0, fmt.Errorf("unknown username %q", name)
		}
		return d.UserID, nil
	}

	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad user id %q", target)
	}
	return id, nil
}

func (app *BotApp) cmdWhitelist(ctx context.Context, msg *tgbotapi.Message) {
	app.setUserFlag(ctx, msg, "USER_WHITELISTED", app.UserService.SetWhitelist)
}

func (app *BotApp) cmdBlacklist(ctx context.Context, msg *tgbotapi.Message) {
	app.setUserFlag(ctx, msg, "USER_BLACKLISTED", app.UserService.SetBlacklist)
}

func (app *BotApp) cmdGrantAdmin(ctx context.Context, msg *tgbotapi.Message) {
	app.setUserFlag(ctx, msg, "USER_ADMINED", app.UserService.SetAdmin)
}

func (app *BotApp) setUserFlag(
	ctx context.Context,
	msg *tgbotapi.Message,
	doneKey string,
	set func(context.Context, int64, bool) error,
) {
	userID := msg.From.ID

	rawTarget, mode, err := parseTargetArgs(msg.CommandArguments())
	if err != nil {
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "BAD_COMMAND_ARGS"))
		return
	}
	target, err := app.resolveTarget(ctx, rawTarget)
	if err != nil {
		log.Printf("[admin] resolve target %q fail: %v", rawTarget, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "BAD_COMMAND_ARGS"))
		return
	}

	if err := set(ctx, target, mode); err != nil {
		log.Printf("[admin] set flag fail target=%d err=%v", target, err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}

	app.reply(msg.Chat.ID, fmt.Sprintf(app.loc(ctx, userID, doneKey), target, mode))
}

func (app *BotApp) cmdBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "BAD_COMMAND_ARGS"))
		return
	}

	ids, err := app.UserService.ListIDs(ctx)
	if err != nil {
		log.Printf("[admin] broadcast list fail err=%v", err)
		app.reply(msg.Chat.ID, app.loc(ctx, userID, "HANDLING_ERROR"))
		return
	}

	sent := 0
	for _, id := range ids {
		if _, err := app.send(tgbotapi.NewMessage(id, text)); err != nil {
			log.Printf("[admin] broadcast send fail userID=%d err=%v", id, err)
			continue
		}
		sent++
	}
	log.Printf("[admin] broadcast done sent=%d total=%d", sent, len(ids))

	app.reply(msg.Chat.ID, app.loc(ctx, userID, "BROADCAST_SENT"))
}
