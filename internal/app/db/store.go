package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rwchat/internal/app/user"
)

// UserStore implements user.Directory on PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore wraps an open pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id::text, email, password_hash, role, name`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var role string

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.Name); err != nil {
		return nil, err
	}

	u.Role = user.Role(role)
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`,
		email,
	)

	u, err := scanUser(row)
	if err != nil {
		return nil, directoryError("find user by email", err)
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, user.ErrNotFound
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		return nil, directoryError("find user by id", err)
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, name) VALUES ($1::uuid, lower($2), $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.Name,
	)
	return directoryError("create user", err)
}

func (s *UserStore) Rename(ctx context.Context, id, name string) (*user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, user.ErrNotFound
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1::uuid RETURNING `+userColumns,
		id, name,
	)

	u, err := scanUser(row)
	if err != nil {
		return nil, directoryError("rename user", err)
	}
	return u, nil
}
