/*
Package admission issues session tokens for login and signup.

The Gate consults the writer lock before handing a Writer-role participant a token.
That check is advisory: it never acquires the lock, and the coordinator repeats it
atomically when the connection registers.
*/
package admission

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
)

// Occupancy is the read-only view of the writer lock.
type Occupancy interface {
	Occupied() bool
}

// Gate authenticates participants and refuses Writer tokens while a writer is active.
type Gate struct {
	directory user.Directory
	lock      Occupancy
	secretKey string
	logger    zerolog.Logger
}

// NewGate constructs a Gate.
func NewGate(directory user.Directory, lock Occupancy, secretKey string) *Gate {
	return &Gate{
		directory: directory,
		lock:      lock,
		secretKey: secretKey,
		logger:    logx.Component("AdmissionGate"),
	}
}

// Login verifies credentials and returns a session token for the account.
func (g *Gate) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	if err := validateRequest(LoginRequest{Email: email, Password: password}); err != nil {
		return "", nil, err
	}

	account, err := g.directory.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			g.logger.Warn().Msg("Login rejected: unknown email.")
			return "", nil, errs.NewError(errs.ErrInvalidCredentials)
		}
		return "", nil, errs.NewError(errs.ErrUnknown, err)
	}

	if !account.CheckPassword(password) {
		g.logger.Warn().Str("identity_id", account.ID).Msg("Login rejected: password mismatch.")
		return "", nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	if err := g.checkWriterSlot(account.Role); err != nil {
		g.logger.Info().Str("identity_id", account.ID).Msg("Writer login refused: writer slot occupied.")
		return "", nil, err
	}

	return g.issue(account)
}

// Signup creates an account and returns a session token for it.
// A duplicate email is reported before the writer slot is considered.
func (g *Gate) Signup(ctx context.Context, email, password string, role user.Role) (string, *user.User, error) {
	email = strings.TrimSpace(email)

	if err := validateRequest(SignupRequest{Email: email, Password: password, Role: role}); err != nil {
		return "", nil, err
	}

	_, err := g.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", nil, errs.NewError(errs.ErrUserAlreadyExists)
	case !errors.Is(err, user.ErrNotFound):
		return "", nil, errs.NewError(errs.ErrUnknown, err)
	}

	if err := g.checkWriterSlot(role); err != nil {
		g.logger.Info().Str("email_domain", emailDomain(email)).Msg("Writer signup refused: writer slot occupied.")
		return "", nil, err
	}

	account, err := user.New(email, password, role)
	if err != nil {
		return "", nil, errs.NewError(errs.ErrUnknown, err)
	}

	if err := g.directory.Create(ctx, account); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return "", nil, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return "", nil, errs.NewError(errs.ErrUnknown, err)
	}

	g.logger.Info().
		Str("identity_id", account.ID).
		Str("role", string(account.Role)).
		Msg("Account created.")

	return g.issue(account)
}

func (g *Gate) checkWriterSlot(role user.Role) error {
	if role == user.RoleWriter && g.lock.Occupied() {
		return errs.NewError(errs.ErrWriterActive)
	}
	return nil
}

func (g *Gate) issue(account *user.User) (string, *user.User, error) {
	token, err := account.IssueToken(g.secretKey)
	if err != nil {
		return "", nil, errs.NewError(errs.ErrUnknown, err)
	}
	return token, account, nil
}

func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return ""
}
