package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/KPEKEP/universal-llm-chatbot/internal/provider"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	"github.com/abadojack/whatlanggo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// processMessage is the main text/voice pipeline: transcribe if voice,
// build the prompt from history, generate, persist the exchange, reply.
func (app *BotApp) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if _, err := app.request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("[process] typing action fail: %v", err)
	}

	data, err := app.UserService.Get(ctx, userID)
	if err != nil || data == nil {
		log.Printf("[process] load user fail userID=%d err=%v", userID, err)
		app.reply(chatID, app.loc(ctx, userID, "PROCESSING_ERROR"))
		return
	}

	isVoice := msg.Voice != nil
	userText := msg.Text
	if isVoice {
		userText, _, err = app.transcribeVoice(ctx, msg)
		if err != nil {
			log.Printf("[process] transcribe fail userID=%d err=%v", userID, err)
			app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("voice transcription, userID=%d", userID))
			app.reply(chatID, app.loc(ctx, userID, "PROCESSING_ERROR"))
			return
		}
		log.Printf("[process] transcribed userID=%d: %q", userID, userText)
	}
	if userText == "" {
		return
	}

	messages := app.buildPrompt(data, userText)

	start := time.Now()
	reply, err := app.Provider.GenerateResponse(ctx, data.Model, messages, provider.Options{
		Temperature: data.Temperature,
		TopP:        data.TopP,
		MaxTokens:   data.MaxTokens,
	})
	if err != nil {
		log.Printf("[process] generate fail userID=%d model=%s err=%v", userID, data.Model, err)
		app.ErrorNotify.Notify(ctx, err, fmt.Sprintf("generation, userID=%d model=%s", userID, data.Model))
		app.reply(chatID, app.loc(ctx, userID, "PROCESSING_ERROR"))
		return
	}
	log.Printf("[process] generated userID=%d in %s", userID, time.Since(start).Round(time.Millisecond))

	now := time.Now()
	data.LastRequest = &now
	if err := app.UserService.AppendExchange(ctx, data, userText, reply); err != nil {
		// история потеряется, но ответ пользователю важнее
		log.Printf("[process] save history fail userID=%d err=%v", userID, err)
	}

	if isVoice {
		app.sendVoiceResponse(ctx, msg, reply, data)
		return
	}
	app.reply(chatID, reply)
}

// buildPrompt assembles [system] + history (+ system again when
// remind_system_prompt is on) + the new user message.
func (app *BotApp) buildPrompt(data *user.Data, userText string) []user.Message {
	system := user.Message{Role: user.RoleSystem, Content: data.SystemPrompt}

	messages := make([]user.Message, 0, len(data.MessageHistory)+3)
	messages = append(messages, system)
	messages = append(messages, data.MessageHistory...)
	if app.Cfg.RemindSystemPrompt {
		messages = append(messages, system)
	}
	return append(messages, user.Message{Role: user.RoleUser, Content: userText})
}

// detectLanguage picks the TTS language for a generated reply.
func detectLanguage(text, fallback string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return fallback
	}
	return info.Lang.Iso6391()
}
