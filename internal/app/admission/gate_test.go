package admission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"rwchat/internal/app/chat"
	"rwchat/internal/app/user"
	"rwchat/internal/mocks"
	"rwchat/internal/pkg/auth/jwt"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
)

const testSecret = "test-secret"

type fakeOccupancy bool

func (f fakeOccupancy) Occupied() bool { return bool(f) }

func mustUser(t *testing.T, email string, role user.Role) *user.User {
	t.Helper()
	u, err := user.New(email, user.DefaultPassword, role)
	require.NoError(t, err)
	return u
}

func TestGate_Login(t *testing.T) {
	logx.Discard()

	writer := mustUser(t, "writer@example.com", user.RoleWriter)
	reader := mustUser(t, "reader@example.com", user.RoleReader)

	tests := []struct {
		name     string
		email    string
		password string
		occupied bool
		setup    func(dir *mocks.MockDirectory)
		wantCode int
	}{
		{
			name:     "writer while slot free",
			email:    writer.Email,
			password: user.DefaultPassword,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), writer.Email).Return(writer, nil)
			},
		},
		{
			name:     "reader while writer active",
			email:    reader.Email,
			password: user.DefaultPassword,
			occupied: true,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), reader.Email).Return(reader, nil)
			},
		},
		{
			name:     "writer while writer active",
			email:    writer.Email,
			password: user.DefaultPassword,
			occupied: true,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), writer.Email).Return(writer, nil)
			},
			wantCode: errs.ErrWriterActive,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: user.DefaultPassword,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), "nobody@example.com").Return(nil, user.ErrNotFound)
			},
			wantCode: errs.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    reader.Email,
			password: "nope-nope",
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), reader.Email).Return(reader, nil)
			},
			wantCode: errs.ErrInvalidCredentials,
		},
		{
			name:     "directory failure",
			email:    reader.Email,
			password: user.DefaultPassword,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), reader.Email).Return(nil, errors.New("boom"))
			},
			wantCode: errs.ErrUnknown,
		},
		{
			name:     "missing password",
			email:    reader.Email,
			setup:    func(dir *mocks.MockDirectory) {},
			wantCode: errs.ErrInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			dir := mocks.NewMockDirectory(ctrl)
			tt.setup(dir)

			gate := NewGate(dir, fakeOccupancy(tt.occupied), testSecret)
			token, account, err := gate.Login(context.Background(), tt.email, tt.password)

			if tt.wantCode != 0 {
				req.True(errs.HasCode(err, tt.wantCode), "got %v", err)
				req.Empty(token)
				req.Nil(account)
				return
			}

			req.NoError(err)
			payload, err := jwt.ParseToken(token, testSecret)
			req.NoError(err)
			req.Equal(account.ID, payload.ID)
			req.Equal(string(account.Role), payload.Role)
			req.Equal(account.Name, payload.Name)
		})
	}
}

func TestGate_Signup(t *testing.T) {
	logx.Discard()

	existing := mustUser(t, "taken@example.com", user.RoleReader)

	tests := []struct {
		name     string
		email    string
		password string
		role     user.Role
		occupied bool
		setup    func(dir *mocks.MockDirectory)
		wantCode int
	}{
		{
			name:     "new reader",
			email:    "dave@example.com",
			password: "secret1",
			role:     user.RoleReader,
			occupied: true,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), "dave@example.com").Return(nil, user.ErrNotFound)
				dir.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:     "duplicate email wins over writer check",
			email:    existing.Email,
			password: "secret1",
			role:     user.RoleWriter,
			occupied: true,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), existing.Email).Return(existing, nil)
			},
			wantCode: errs.ErrUserAlreadyExists,
		},
		{
			name:     "writer while writer active",
			email:    "bob@example.com",
			password: "secret1",
			role:     user.RoleWriter,
			occupied: true,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), "bob@example.com").Return(nil, user.ErrNotFound)
			},
			wantCode: errs.ErrWriterActive,
		},
		{
			name:     "create race lost",
			email:    "eve@example.com",
			password: "secret1",
			role:     user.RoleReader,
			setup: func(dir *mocks.MockDirectory) {
				dir.EXPECT().FindByEmail(gomock.Any(), "eve@example.com").Return(nil, user.ErrNotFound)
				dir.EXPECT().Create(gomock.Any(), gomock.Any()).Return(user.ErrEmailTaken)
			},
			wantCode: errs.ErrUserAlreadyExists,
		},
		{
			name:     "invalid email",
			email:    "not-an-email",
			password: "secret1",
			role:     user.RoleReader,
			setup:    func(dir *mocks.MockDirectory) {},
			wantCode: errs.ErrInvalidEmail,
		},
		{
			name:     "short password",
			email:    "frank@example.com",
			password: "123",
			role:     user.RoleReader,
			setup:    func(dir *mocks.MockDirectory) {},
			wantCode: errs.ErrInvalidPassword,
		},
		{
			name:     "unknown role",
			email:    "gina@example.com",
			password: "secret1",
			role:     user.Role("Admin"),
			setup:    func(dir *mocks.MockDirectory) {},
			wantCode: errs.ErrInvalidRole,
		},
		{
			name:     "missing role",
			email:    "gina@example.com",
			password: "secret1",
			setup:    func(dir *mocks.MockDirectory) {},
			wantCode: errs.ErrInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			dir := mocks.NewMockDirectory(ctrl)
			tt.setup(dir)

			gate := NewGate(dir, fakeOccupancy(tt.occupied), testSecret)
			token, account, err := gate.Signup(context.Background(), tt.email, tt.password, tt.role)

			if tt.wantCode != 0 {
				req.True(errs.HasCode(err, tt.wantCode), "got %v", err)
				return
			}

			req.NoError(err)
			req.NotEmpty(token)
			req.Equal(tt.role, account.Role)
			req.Equal("Dave", account.Name)
		})
	}
}

// A writer blocked at login gets in once the active writer's connection is gone.
func TestGate_WriterHandOff(t *testing.T) {
	logx.Discard()
	req := require.New(t)
	ctx := context.Background()

	dir := user.NewMemoryDirectory()
	alice := mustUser(t, "alice@example.com", user.RoleWriter)
	bob := mustUser(t, "bob@example.com", user.RoleWriter)
	req.NoError(dir.Create(ctx, alice))
	req.NoError(dir.Create(ctx, bob))

	lock := chat.NewWriterLock()
	coordinator := chat.NewCoordinator(lock, chat.Options{})
	t.Cleanup(coordinator.Shutdown)

	gate := NewGate(dir, lock, testSecret)

	aliceToken, _, err := gate.Login(ctx, alice.Email, user.DefaultPassword)
	req.NoError(err)
	aliceIdentity, err := chat.IdentityFromToken(aliceToken, testSecret)
	req.NoError(err)

	aliceSession, err := coordinator.Register(ctx, aliceIdentity, chat.PurposeChat)
	req.NoError(err)
	req.True(lock.Occupied())

	_, _, err = gate.Login(ctx, bob.Email, user.DefaultPassword)
	req.True(errs.HasCode(err, errs.ErrWriterActive))

	coordinator.Unregister(aliceSession.ID)
	req.False(lock.Occupied())

	bobToken, _, err := gate.Login(ctx, bob.Email, user.DefaultPassword)
	req.NoError(err)
	bobIdentity, err := chat.IdentityFromToken(bobToken, testSecret)
	req.NoError(err)

	_, err = coordinator.Register(ctx, bobIdentity, chat.PurposeChat)
	req.NoError(err)
	req.True(lock.Occupied())
}
