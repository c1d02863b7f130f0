package user

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type infra struct {
	db       *sql.DB
	postgres bool
	defaults Defaults
}

// NewInfra creates the SQL-backed repo. driver is "sqlite" or "postgres";
// the same queries run on both, placeholders are rebound for postgres.
func NewInfra(db *sql.DB, driver string, defaults Defaults) Repo {
	return &infra{
		db:       db,
		postgres: driver == "postgres",
		defaults: defaults,
	}
}

// SetupSchema creates the users table if it does not exist.
func SetupSchema(ctx context.Context, db *sql.DB, driver string) error {
	serial := "INTEGER"
	if driver == "postgres" {
		serial = "BIGINT"
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS users (
			user_id %s PRIMARY KEY,
			user_name TEXT,
			message_history TEXT NOT NULL DEFAULT '[]',
			model TEXT NOT NULL DEFAULT '',
			system_prompt TEXT NOT NULL DEFAULT '',
			temperature REAL NOT NULL DEFAULT 0.7,
			top_p REAL NOT NULL DEFAULT 0.9,
			max_tokens INTEGER NOT NULL DEFAULT 1024,
			language TEXT NOT NULL DEFAULT 'en',
			speaker TEXT NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_whitelisted BOOLEAN NOT NULL DEFAULT FALSE,
			is_blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
			last_request TEXT
		)
	`, serial))
	if err != nil {
		return fmt.Errorf("setup users table: %w", err)
	}
	return nil
}

// bind rewrites ? placeholders to $1..$n for postgres.
func (i *infra) bind(q string) string {
	if !i.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const selectColumns = `user_id, user_name, message_history, model, system_prompt,
	temperature, top_p, max_tokens, language, speaker,
	is_admin, is_whitelisted, is_blacklisted, last_request`

func (i *infra) scanRow(row *sql.Row) (*Data, error) {
	var (
		d        Data
		userName sql.NullString
		history  string
		lastReq  sql.NullString
	)
	err := row.Scan(
		&d.UserID, &userName, &history, &d.Model, &d.SystemPrompt,
		&d.Temperature, &d.TopP, &d.MaxTokens, &d.Language, &d.Speaker,
		&d.IsAdmin, &d.IsWhitelisted, &d.IsBlacklisted, &lastReq,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d.UserName = userName.String

	if err := json.Unmarshal([]byte(history), &d.MessageHistory); err != nil {
		return nil, fmt.Errorf("decode message_history for user %d: %w", d.UserID, err)
	}
	if d.MessageHistory == nil {
		d.MessageHistory = []Message{}
	}
	if lastReq.Valid && lastReq.String != "" {
		t, err := time.Parse(time.RFC3339Nano, lastReq.String)
		if err != nil {
			return nil, fmt.Errorf("decode last_request for user %d: %w", d.UserID, err)
		}
		d.LastRequest = &t
	}
	return &d, nil
}

func (i *infra) Get(ctx context.Context, userID int64) (*Data, error) {
	row := i.db.QueryRowContext(ctx,
		i.bind(`SELECT `+selectColumns+` FROM users WHERE user_id = ?`), userID)
	return i.scanRow(row)
}

func (i *infra) GetByUsername(ctx context.Context, userName string) (*Data, error) {
	row := i.db.QueryRowContext(ctx,
		i.bind(`SELECT `+selectColumns+` FROM users WHERE user_name = ?`), userName)
	return i.scanRow(row)
}

func (i *infra) Upsert(ctx context.Context, data *Data) error {
	history, err := json.Marshal(data.MessageHistory)
	if err != nil {
		return fmt.Errorf("encode message_history: %w", err)
	}

	var lastReq any
	if data.LastRequest != nil {
		lastReq = data.LastRequest.UTC().Format(time.RFC3339Nano)
	}

	_, err = i.db.ExecContext(ctx, i.bind(`
		INSERT INTO users (
			user_id, user_name, message_history, model, system_prompt,
			temperature, top_p, max_tokens, language, speaker,
			is_admin, is_whitelisted, is_blacklisted, last_request
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			user_name = excluded.user_name,
			message_history = excluded.message_history,
			model = excluded.model,
			system_prompt = excluded.system_prompt,
			temperature = excluded.temperature,
			top_p = excluded.top_p,
			max_tokens = excluded.max_tokens,
			language = excluded.language,
			speaker = excluded.speaker,
			is_admin = excluded.is_admin,
			is_whitelisted = excluded.is_whitelisted,
			is_blacklisted = excluded.is_blacklisted,
			last_request = excluded.last_request
	`),
		data.UserID, data.UserName, string(history), data.Model, data.SystemPrompt,
		data.Temperature, data.TopP, data.MaxTokens, data.Language, data.Speaker,
		data.IsAdmin, data.IsWhitelisted, data.IsBlacklisted, lastReq,
	)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", data.UserID, err)
	}
	return nil
}

func (i *infra) setFlag(ctx context.Context, column string, userID int64, value bool) error {
	res, err := i.db.ExecContext(ctx,
		i.bind(`UPDATE users SET `+column+` = ? WHERE user_id = ?`), value, userID)
	if err != nil {
		return fmt.Errorf("set %s for user %d: %w", column, userID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

func (i *infra) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return i.setFlag(ctx, "is_admin", userID, isAdmin)
}

func (i *infra) SetWhitelist(ctx context.Context, userID int64, isWhitelisted bool) error {
	return i.setFlag(ctx, "is_whitelisted", userID, isWhitelisted)
}

func (i *infra) SetBlacklist(ctx context.Context, userID int64, isBlacklisted bool) error {
	return i.setFlag(ctx, "is_blacklisted", userID, isBlacklisted)
}

func (i *infra) listIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := i.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (i *infra) ListIDs(ctx context.Context) ([]int64, error) {
	return i.listIDs(ctx, `SELECT user_id FROM users`)
}

func (i *infra) ListAdminIDs(ctx context.Context) ([]int64, error) {
	return i.listIDs(ctx, `SELECT user_id FROM users WHERE is_admin = TRUE`)
}

func (i *infra) Count(ctx context.Context) (int, error) {
	var n int
	err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
