package chat

import (
	"encoding/json"
	"strings"
	"time"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/auth/jwt"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/randx"
)

// Purpose distinguishes a persistent chat session from a transient profile exchange.
type Purpose string

const (
	// PurposeChat connections join the chat; writers contend for the writer lock.
	PurposeChat Purpose = "chat"

	// PurposeProfileUpdate connections only carry a rename request and its reply.
	PurposeProfileUpdate Purpose = "profile-update"
)

// ParsePurpose maps the connection's purpose parameter. An empty value means chat,
// and "profile" is accepted as an alias of profile-update.
func ParsePurpose(raw string) (Purpose, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(PurposeChat):
		return PurposeChat, nil
	case string(PurposeProfileUpdate), "profile":
		return PurposeProfileUpdate, nil
	default:
		return "", errs.NewError(errs.ErrInvalidPurpose)
	}
}

// Identity is the token-derived view of the participant behind a connection.
// It is fixed at registration; later renames do not change it.
type Identity struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
	Name  string    `json:"name"`
}

// IdentityFromToken decodes and validates a session token.
func IdentityFromToken(token, secretKey string) (Identity, error) {
	if token == "" {
		return Identity{}, errs.NewError(errs.ErrUnauthorized)
	}

	payload, err := jwt.ParseToken(token, secretKey)
	if err != nil {
		return Identity{}, errs.NewError(errs.ErrUnauthorized)
	}

	role := user.Role(payload.Role)
	if !role.Valid() {
		return Identity{}, errs.NewError(errs.ErrUnauthorized)
	}

	return Identity{
		ID:    payload.ID,
		Email: payload.Email,
		Role:  role,
		Name:  payload.Name,
	}, nil
}

// Session is a registered connection. It is owned by the coordinator's registry.
type Session struct {
	ID       string
	Identity Identity
	Purpose  Purpose
	JoinedAt time.Time

	outbox *Outbox
}

func newSession(identity Identity, purpose Purpose, queueSize int) *Session {
	return &Session{
		ID:       randx.SessionID(),
		Identity: identity,
		Purpose:  purpose,
		JoinedAt: time.Now(),
		outbox:   NewOutbox(queueSize),
	}
}

// IsWriter reports whether the session is the writer-role chat connection.
func (s *Session) IsWriter() bool {
	return s.Purpose == PurposeChat && s.Identity.Role == user.RoleWriter
}

// ReceivesBroadcast reports whether chat traffic is fanned out to this session.
func (s *Session) ReceivesBroadcast() bool {
	return s.Purpose == PurposeChat && s.Identity.Role == user.RoleReader
}

// State names the session's lifecycle state for logs.
func (s *Session) State() string {
	switch {
	case s.Purpose == PurposeProfileUpdate:
		return "transient"
	case s.IsWriter():
		return "active_writer"
	default:
		return "active_reader"
	}
}

// Outbound is the stream of encoded frames queued for this connection.
func (s *Session) Outbound() <-chan []byte {
	return s.outbox.C()
}

// Send encodes v and queues it for this connection.
func (s *Session) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = s.outbox.Push(data)
	return err
}

// SendError queues an error frame built from err.
func (s *Session) SendError(err error) error {
	customErr := errs.From(err)
	return s.Send(ErrorFrame{
		Type:    TypeError,
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
