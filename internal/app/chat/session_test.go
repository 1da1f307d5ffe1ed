package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/auth/jwt"
	"rwchat/internal/pkg/errs"
)

func TestIdentityFromToken(t *testing.T) {
	req := require.New(t)
	const secret = "identity-secret"

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:    "id-1",
		Email: "alice@example.com",
		Role:  string(user.RoleWriter),
		Name:  "Alice",
	}, secret, time.Minute)
	req.NoError(err)

	identity, err := IdentityFromToken(token, secret)
	req.NoError(err)
	req.Equal(Identity{ID: "id-1", Email: "alice@example.com", Role: user.RoleWriter, Name: "Alice"}, identity)

	_, err = IdentityFromToken(token, "other-secret")
	req.True(errs.HasCode(err, errs.ErrUnauthorized))

	_, err = IdentityFromToken("", secret)
	req.True(errs.HasCode(err, errs.ErrUnauthorized))

	badRole, err := jwt.GenerateToken(&jwt.Payload{ID: "id-2", Role: "Admin"}, secret, time.Minute)
	req.NoError(err)
	_, err = IdentityFromToken(badRole, secret)
	req.True(errs.HasCode(err, errs.ErrUnauthorized))
}

func TestSession_SendError(t *testing.T) {
	req := require.New(t)
	s := newSession(Identity{ID: "x", Role: user.RoleWriter}, PurposeChat, 2)

	req.NoError(s.SendError(errs.NewError(errs.ErrMessageContentTooLong)))

	frame := nextFrame(t, s)
	req.Equal(string(TypeError), frame["type"])
	req.EqualValues(errs.ErrMessageContentTooLong, frame["code"])
	req.NotEmpty(frame["message"])
}
