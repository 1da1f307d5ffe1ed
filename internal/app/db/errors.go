package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rwchat/internal/app/user"
)

const codeUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// directoryError maps driver errors onto the user.Directory contract:
// no rows becomes ErrNotFound, a duplicate email becomes ErrEmailTaken,
// anything else is wrapped with the operation name.
func directoryError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return user.ErrNotFound
	case IsUniqueViolation(err):
		return user.ErrEmailTaken
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
