package user

import "time"

// Message is one history entry in the chat format the LLM expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Data holds a user's settings and conversation history.
type Data struct {
	UserID         int64
	UserName       string
	MessageHistory []Message
	Model          string
	SystemPrompt   string
	Temperature    float64
	TopP           float64
	MaxTokens      int
	Language       string
	Speaker        string
	IsAdmin        bool
	IsWhitelisted  bool
	IsBlacklisted  bool
	LastRequest    *time.Time
}

// Clone returns a deep copy. Handlers run in their own goroutines, so
// a row handed out twice must never share the history slice or the
// LastRequest pointer.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	cp := *d
	cp.MessageHistory = append([]Message(nil), d.MessageHistory...)
	if d.LastRequest != nil {
		t := *d.LastRequest
		cp.LastRequest = &t
	}
	return &cp
}

// Defaults are the values a fresh user row gets, taken from the active
// provider block of the config.
type Defaults struct {
	Model        string
	SystemPrompt string
	Temperature  float64
	TopP         float64
	MaxTokens    int
	Language     string
	Speaker      string
}

func newData(userID int64, userName string, d Defaults) *Data {
	return &Data{
		UserID:         userID,
		UserName:       userName,
		MessageHistory: []Message{},
		Model:          d.Model,
		SystemPrompt:   d.SystemPrompt,
		Temperature:    d.Temperature,
		TopP:           d.TopP,
		MaxTokens:      d.MaxTokens,
		Language:       d.Language,
		Speaker:        d.Speaker,
	}
}
