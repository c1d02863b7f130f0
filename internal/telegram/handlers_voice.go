package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/KPEKEP/universal-llm-chatbot/internal/archive"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// transcribeVoice downloads the voice ogg to a temp file and runs the
// provider's transcription. Returns text and detected language.
func (app *BotApp) transcribeVoice(ctx context.Context, msg *tgbotapi.Message) (string, string, error) {
	fileID := msg.Voice.FileID

	file, err := app.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", "", fmt.Errorf("get voice file: %w", err)
	}

	path := fmt.Sprintf("%s/voice_%s.ogg", os.TempDir(), uuid.NewString())
	if err := downloadFile(ctx, file.Link(app.bot.Token), path); err != nil {
		return "", "", err
	}
	defer os.Remove(path)

	app.ArchiveStore.Save(ctx, archive.KindIncoming, path)

	text, language, err := app.Provider.TranscribeVoice(ctx, path)
	if err != nil {
		return "", "", err
	}
	log.Printf("[voice] detected language=%s", language)
	return text, language, nil
}

// downloadFile fetches url to path. Telegram answers errors with a
// JSON body, so anything but 200 is a failure, not audio.
func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download voice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download voice: status %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("save voice: %w", err)
	}
	return out.Close()
}

// sendVoiceResponse synthesizes the reply and sends it as a voice
// message, degrading to text when synthesis or sending fails.
func (app *BotApp) sendVoiceResponse(ctx context.Context, msg *tgbotapi.Message, reply string, data *user.Data) {
	chatID := msg.Chat.ID
	language := detectLanguage(reply, data.Language)
	log.Printf("[voice] reply language=%s", language)

	outPath := fmt.Sprintf("%s/reply_%s.wav", os.TempDir(), uuid.NewString())
	if err := app.Provider.TextToSpeech(ctx, reply, outPath, language, data.Speaker); err != nil {
		log.Printf("[voice] synth fail userID=%d err=%v", data.UserID, err)
		app.reply(chatID, app.loc(ctx, data.UserID, "VOICE_ERROR_SORRY")+reply)
		return
	}
	defer os.Remove(outPath)

	app.ArchiveStore.Save(ctx, archive.KindSynthesis, outPath)

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FilePath(outPath))
	if _, err := app.send(voice); err != nil {
		log.Printf("[voice] send fail userID=%d err=%v", data.UserID, err)
		app.reply(chatID, app.loc(ctx, data.UserID, "VOICE_ERROR_SORRY")+reply)
	}
}
