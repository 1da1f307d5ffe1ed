package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/randx"
)

func TestErrorClassification(t *testing.T) {
	req := require.New(t)

	req.True(IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	req.False(IsUniqueViolation(&pgconn.PgError{Code: "22P02"}))
	req.False(IsUniqueViolation(errors.New("plain")))

	req.NoError(directoryError("op", nil))
	req.ErrorIs(directoryError("op", pgx.ErrNoRows), user.ErrNotFound)
	req.ErrorIs(directoryError("op", &pgconn.PgError{Code: "23505"}), user.ErrEmailTaken)

	wrapped := directoryError("rename user", errors.New("conn reset"))
	req.ErrorContains(wrapped, "rename user: conn reset")
}

// TestUserStore runs against a real database when TEST_DATABASE_URL is set.
func TestUserStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	req := require.New(t)
	ctx := context.Background()

	pool, err := Open(ctx, dsn, DefaultPoolOptions)
	req.NoError(err)
	defer pool.Close()

	store := NewUserStore(pool)

	email := randx.IdentityID() + "@example.com"
	u, err := user.New(email, "secret1", user.RoleReader)
	req.NoError(err)
	req.NoError(store.Create(ctx, u))
	req.ErrorIs(store.Create(ctx, u), user.ErrEmailTaken)

	found, err := store.FindByEmail(ctx, email)
	req.NoError(err)
	req.Equal(u.ID, found.ID)
	req.True(found.CheckPassword("secret1"))

	renamed, err := store.Rename(ctx, u.ID, "Carol B")
	req.NoError(err)
	req.Equal("Carol B", renamed.Name)

	_, err = store.FindByID(ctx, "not-a-uuid")
	req.ErrorIs(err, user.ErrNotFound)
}
