package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) Repo {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, SetupSchema(context.Background(), db, "sqlite"))
	return NewInfra(db, "sqlite", testDefaults)
}

func TestRepoUnknownUserIsNilNil(t *testing.T) {
	repo := newTestDB(t)

	d, err := repo.Get(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestRepoUpsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	last := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	in := newData(7, "carol", testDefaults)
	in.MessageHistory = []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
	}
	in.Temperature = 0.3
	in.LastRequest = &last

	require.NoError(t, repo.Upsert(ctx, in))

	out, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "carol", out.UserName)
	assert.Equal(t, in.MessageHistory, out.MessageHistory)
	assert.Equal(t, 0.3, out.Temperature)
	require.NotNil(t, out.LastRequest)
	assert.True(t, out.LastRequest.Equal(last))

	// upsert over the same id replaces, not duplicates
	in.Model = "mistral"
	require.NoError(t, repo.Upsert(ctx, in))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out, err = repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "mistral", out.Model)
}

func TestRepoGetByUsername(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	require.NoError(t, repo.Upsert(ctx, newData(1, "dave", testDefaults)))

	d, err := repo.GetByUsername(ctx, "dave")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, int64(1), d.UserID)

	missing, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepoFlagsAndListing(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	require.NoError(t, repo.Upsert(ctx, newData(1, "a", testDefaults)))
	require.NoError(t, repo.Upsert(ctx, newData(2, "b", testDefaults)))

	require.NoError(t, repo.SetAdmin(ctx, 1, true))
	require.NoError(t, repo.SetWhitelist(ctx, 2, true))
	require.NoError(t, repo.SetBlacklist(ctx, 2, true))

	d1, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, d1.IsAdmin)

	d2, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, d2.IsWhitelisted)
	assert.True(t, d2.IsBlacklisted)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)

	admins, err := repo.ListAdminIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, admins)

	// flag update for an unknown user is an error
	err = repo.SetAdmin(ctx, 999, true)
	assert.Error(t, err)
}
