package user

import "context"

// Repo — работа с БД
type Repo interface {
	Get(ctx context.Context, userID int64) (*Data, error)
	GetByUsername(ctx context.Context, userName string) (*Data, error)
	Upsert(ctx context.Context, data *Data) error
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
	SetWhitelist(ctx context.Context, userID int64, isWhitelisted bool) error
	SetBlacklist(ctx context.Context, userID int64, isBlacklisted bool) error
	ListIDs(ctx context.Context) ([]int64, error)
	ListAdminIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

// Service — бизнес-операции
type Service interface {
	GetOrCreate(ctx context.Context, userID int64, userName string) (*Data, error)
	Get(ctx context.Context, userID int64) (*Data, error)
	GetByUsername(ctx context.Context, userName string) (*Data, error)
	Update(ctx context.Context, data *Data) error
	AppendExchange(ctx context.Context, data *Data, userMsg, assistantMsg string) error
	ResetHistory(ctx context.Context, userID int64) error
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
	SetWhitelist(ctx context.Context, userID int64, isWhitelisted bool) error
	SetBlacklist(ctx context.Context, userID int64, isBlacklisted bool) error
	ListIDs(ctx context.Context) ([]int64, error)
	ListAdminIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
	IsAdmin(ctx context.Context, userID int64) bool
	CheckAccess(ctx context.Context, userID int64) bool
}
