package user

import (
	"context"
	"log"
)

type service struct {
	repo       Repo
	defaults   Defaults
	maxHistory int
	accessMode string // open | whitelist | blacklist
	adminIDs   map[int64]bool
}

type ServiceOptions struct {
	Defaults   Defaults
	MaxHistory int
	AccessMode string
	AdminIDs   []int64
}

func NewService(repo Repo, opts ServiceOptions) Service {
	admins := make(map[int64]bool, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}
	return &service{
		repo:       repo,
		defaults:   opts.Defaults,
		maxHistory: opts.MaxHistory,
		accessMode: opts.AccessMode,
		adminIDs:   admins,
	}
}

func (s *service) GetOrCreate(ctx context.Context, userID int64, userName string) (*Data, error) {
	d, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return d, nil
	}

	d = newData(userID, userName, s.defaults)
	if err := s.repo.Upsert(ctx, d); err != nil {
		return nil, err
	}
	log.Printf("[user] created userID=%d name=%q", userID, userName)
	return d, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*Data, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) GetByUsername(ctx context.Context, userName string) (*Data, error) {
	return s.repo.GetByUsername(ctx, userName)
}

// Update persists user data, keeping only the newest maxHistory messages.
func (s *service) Update(ctx context.Context, data *Data) error {
	if s.maxHistory > 0 && len(data.MessageHistory) > s.maxHistory {
		data.MessageHistory = data.MessageHistory[len(data.MessageHistory)-s.maxHistory:]
	}
	return s.repo.Upsert(ctx, data)
}

func (s *service) AppendExchange(ctx context.Context, data *Data, userMsg, assistantMsg string) error {
	data.MessageHistory = append(data.MessageHistory,
		Message{Role: RoleUser, Content: userMsg},
		Message{Role: RoleAssistant, Content: assistantMsg},
	)
	return s.Update(ctx, data)
}

func (s *service) ResetHistory(ctx context.Context, userID int64) error {
	d, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	d.MessageHistory = []Message{}
	return s.repo.Upsert(ctx, d)
}

func (s *service) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return s.repo.SetAdmin(ctx, userID, isAdmin)
}

func (s *service) SetWhitelist(ctx context.Context, userID int64, isWhitelisted bool) error {
	return s.repo.SetWhitelist(ctx, userID, isWhitelisted)
}

func (s *service) SetBlacklist(ctx context.Context, userID int64, isBlacklisted bool) error {
	return s.repo.SetBlacklist(ctx, userID, isBlacklisted)
}

func (s *service) ListIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListIDs(ctx)
}

// ListAdminIDs returns config admins plus everyone flagged in the DB.
func (s *service) ListAdminIDs(ctx context.Context) ([]int64, error) {
	stored, err := s.repo.ListAdminIDs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(stored))
	out := make([]int64, 0, len(stored)+len(s.adminIDs))
	for _, id := range stored {
		seen[id] = true
		out = append(out, id)
	}
	for id := range s.adminIDs {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *service) IsAdmin(ctx context.Context, userID int64) bool {
	if s.adminIDs[userID] {
		return true
	}
	d, err := s.repo.Get(ctx, userID)
	if err != nil {
		log.Printf("[user] isAdmin lookup fail userID=%d err=%v", userID, err)
		return false
	}
	return d != nil && d.IsAdmin
}

// CheckAccess: blacklist always denies, whitelist mode additionally
// requires the flag, open mode admits anyone with a row.
func (s *service) CheckAccess(ctx context.Context, userID int64) bool {
	d, err := s.repo.Get(ctx, userID)
	if err != nil {
		log.Printf("[user] access lookup fail userID=%d err=%v", userID, err)
		return false
	}
	if d == nil {
		return false
	}
	if d.IsBlacklisted {
		return false
	}
	if s.accessMode == "whitelist" && !d.IsWhitelisted {
		return false
	}
	return true
}
