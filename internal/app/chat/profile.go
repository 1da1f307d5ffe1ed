package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
)

// MaxNameRunes is the longest display name a rename may set.
const MaxNameRunes = 50

// ProfileExchange renames identities over transient profile-update connections.
// It holds no per-request state and never touches the writer lock or the broadcast set.
type ProfileExchange struct {
	directory user.Directory
	secretKey string
	logger    zerolog.Logger
}

// NewProfileExchange constructs a ProfileExchange backed by directory.
func NewProfileExchange(directory user.Directory, secretKey string) *ProfileExchange {
	return &ProfileExchange{
		directory: directory,
		secretKey: secretKey,
		logger:    logx.Component("ProfileExchange"),
	}
}

// Rename updates the display name of the session's identity and returns a token
// reflecting the new name. Only profile-update sessions may rename.
func (p *ProfileExchange) Rename(ctx context.Context, session *Session, newName string) (string, error) {
	if session.Purpose != PurposeProfileUpdate {
		return "", errs.NewError(errs.ErrMessageNotPermitted)
	}

	name := strings.TrimSpace(newName)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameRunes {
		return "", errs.NewError(errs.ErrInvalidName)
	}

	updated, err := p.directory.Rename(ctx, session.Identity.ID, name)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", errs.NewError(errs.ErrUserNotFound)
		}
		p.logger.Error().Err(err).Str("identity_id", session.Identity.ID).Msg("Directory rename failed.")
		return "", errs.NewError(errs.ErrUnknown, err)
	}

	token, err := updated.IssueToken(p.secretKey)
	if err != nil {
		p.logger.Error().Err(err).Str("identity_id", updated.ID).Msg("Token reissue failed after rename.")
		return "", errs.NewError(errs.ErrUnknown, err)
	}

	p.logger.Info().
		Str("session_id", session.ID).
		Str("identity_id", updated.ID).
		Msg("Identity renamed.")

	return token, nil
}

// HandleRename performs Rename and queues the reply on the same connection.
// Validation failures are reported with an error frame; protocol violations are
// only logged. The caller closes the transport after the reply.
func (p *ProfileExchange) HandleRename(ctx context.Context, session *Session, newName string) {
	token, err := p.Rename(ctx, session, newName)
	if err != nil {
		if errs.HasCode(err, errs.ErrMessageNotPermitted) {
			p.logger.Warn().
				Str("session_id", session.ID).
				Str("purpose", string(session.Purpose)).
				Msg("Protocol error: profile update on a non profile-update connection ignored.")
			return
		}

		if sendErr := session.SendError(err); sendErr != nil {
			p.logger.Warn().Err(sendErr).Msg("Failed to queue profile error frame.")
		}
		return
	}

	reply := ProfileUpdateSuccess{Type: TypeProfileUpdateSuccess, NewToken: token}
	if err := session.Send(reply); err != nil {
		p.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to queue profile update reply.")
	}
}
