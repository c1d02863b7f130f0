package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KPEKEP/universal-llm-chatbot/internal/archive"
	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
	"github.com/KPEKEP/universal-llm-chatbot/internal/localization"
	"github.com/KPEKEP/universal-llm-chatbot/internal/provider"
	"github.com/KPEKEP/universal-llm-chatbot/internal/ratelimit"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

// sendRecorder captures everything the bot would send.
type sendRecorder struct {
	sent []tgbotapi.Chattable
	fail func(c tgbotapi.Chattable) error
}

func (r *sendRecorder) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if r.fail != nil {
		if err := r.fail(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, nil
}

func (r *sendRecorder) texts() []string {
	var out []string
	for _, c := range r.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *sendRecorder) lastText() string {
	texts := r.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeUserService struct {
	users    map[int64]*user.Data
	created  []int64
	updates  int
	defaults user.Defaults
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		users: make(map[int64]*user.Data),
		defaults: user.Defaults{
			Model:       "llama3.1",
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   512,
			Language:    "en",
			Speaker:     "s1",
		},
	}
}

func (f *fakeUserService) add(id int64, name string) *user.Data {
	d := &user.Data{
		UserID:         id,
		UserName:       name,
		MessageHistory: []user.Message{},
		Model:          f.defaults.Model,
		Temperature:    f.defaults.Temperature,
		TopP:           f.defaults.TopP,
		MaxTokens:      f.defaults.MaxTokens,
		Language:       f.defaults.Language,
		Speaker:        f.defaults.Speaker,
	}
	f.users[id] = d
	return d
}

func (f *fakeUserService) GetOrCreate(_ context.Context, id int64, name string) (*user.Data, error) {
	if d, ok := f.users[id]; ok {
		return d, nil
	}
	f.created = append(f.created, id)
	return f.add(id, name), nil
}

func (f *fakeUserService) Get(_ context.Context, id int64) (*user.Data, error) {
	return f.users[id], nil
}

func (f *fakeUserService) GetByUsername(_ context.Context, name string) (*user.Data, error) {
	for _, d := range f.users {
		if d.UserName == name {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeUserService) Update(_ context.Context, d *user.Data) error {
	f.updates++
	f.users[d.UserID] = d
	return nil
}

func (f *fakeUserService) AppendExchange(ctx context.Context, d *user.Data, q, a string) error {
	d.MessageHistory = append(d.MessageHistory,
		user.Message{Role: user.RoleUser, Content: q},
		user.Message{Role: user.RoleAssistant, Content: a},
	)
	return f.Update(ctx, d)
}

func (f *fakeUserService) ResetHistory(_ context.Context, id int64) error {
	if d, ok := f.users[id]; ok {
		d.MessageHistory = []user.Message{}
	}
	return nil
}

func (f *fakeUserService) setFlag(id int64, set func(*user.Data)) error {
	d, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	set(d)
	return nil
}

func (f *fakeUserService) SetAdmin(_ context.Context, id int64, v bool) error {
	return f.setFlag(id, func(d *user.Data) { d.IsAdmin = v })
}

func (f *fakeUserService) SetWhitelist(_ context.Context, id int64, v bool) error {
	return f.setFlag(id, func(d *user.Data) { d.IsWhitelisted = v })
}

func (f *fakeUserService) SetBlacklist(_ context.Context, id int64, v bool) error {
	return f.setFlag(id, func(d *user.Data) { d.IsBlacklisted = v })
}

func (f *fakeUserService) ListIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id := range f.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeUserService) ListAdminIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id, d := range f.users {
		if d.IsAdmin {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeUserService) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserService) IsAdmin(_ context.Context, id int64) bool {
	d := f.users[id]
	return d != nil && d.IsAdmin
}

func (f *fakeUserService) CheckAccess(_ context.Context, id int64) bool {
	d := f.users[id]
	return d != nil && !d.IsBlacklisted
}

type fakeProvider struct {
	models   []string
	speakers []string
	ttsErr   error
}

func (p *fakeProvider) GenerateResponse(_ context.Context, _ string, messages []user.Message, _ provider.Options) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	return "echo: " + messages[len(messages)-1].Content, nil
}

func (p *fakeProvider) TranscribeVoice(context.Context, string) (string, string, error) {
	return "", "", nil
}

func (p *fakeProvider) TextToSpeech(_ context.Context, _ string, outPath string, _, _ string) error {
	if p.ttsErr != nil {
		return p.ttsErr
	}
	return os.WriteFile(outPath, []byte("RIFF"), 0600)
}

func (p *fakeProvider) Speakers() []string { return p.speakers }
func (p *fakeProvider) Models() []string   { return p.models }
func (p *fakeProvider) Name() string       { return "fake" }

type noopNotify struct{}

func (noopNotify) Notify(context.Context, error, string) {}

type nullArchive struct{}

func (nullArchive) SaveFile(context.Context, string, string) (string, error) { return "", nil }
func (nullArchive) Enabled() bool                                            { return false }

// newTestApp builds a BotApp against fakes; sends land in the recorder.
func newTestApp(t *testing.T) (*BotApp, *fakeUserService, *fakeProvider, *sendRecorder) {
	t.Helper()

	locPath := filepath.Join(t.TempDir(), "loc.yml")
	require.NoError(t, os.WriteFile(locPath, []byte("en:\n  LANGUAGE_NAME: English\n"), 0600))
	loc, err := localization.Load(locPath, "en")
	require.NoError(t, err)

	users := newFakeUserService()
	prov := &fakeProvider{models: []string{"llama3.1", "mistral"}, speakers: []string{"s1", "s2"}}
	rec := &sendRecorder{}

	limiter := ratelimit.New(ratelimit.Options{
		UserMaxRequests:   100,
		UserWindow:        time.Minute,
		GlobalMaxRequests: 100,
		GlobalWindow:      time.Minute,
	})

	app := NewBotApp(&config.Config{Language: "en"}, loc, users, prov, limiter, noopNotify{}, archive.NewService(nullArchive{}))
	app.send = rec.send
	app.request = func(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
		return &tgbotapi.APIResponse{Ok: true}, nil
	}
	return app, users, prov, rec
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "member"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func commandMessage(userID int64, text string) *tgbotapi.Message {
	msg := textMessage(userID, text)
	end := len(text)
	if i := strings.Index(text, " "); i > 0 {
		end = i
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	return msg
}
