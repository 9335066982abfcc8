package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"donation_backend/internal/auth"
	"donation_backend/internal/services/dto"
	"donation_backend/internal/testutil"
	"donation_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	users    *testutil.FakeAdminUserRepo
	sessions *testutil.FakeSessionRepo
	session  SessionService
	service  AdminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	signer, err := auth.NewTokenSigner("test-secret")
	require.NoError(t, err)

	f := &adminFixture{
		users:    testutil.NewFakeAdminUserRepo(),
		sessions: testutil.NewFakeSessionRepo(),
	}
	f.session = NewSessionService(f.sessions, signer, time.Hour)
	f.service = NewAdminService(f.users, f.session)
	return f
}

func creds(username, password string) *dto.AdminCredentialsRequest {
	return &dto.AdminCredentialsRequest{Username: username, Password: password}
}

func TestCheckSetup(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	status, err := f.service.CheckSetup(ctx, nil)
	require.NoError(t, err)
	assert.False(t, status.Setup)

	require.NoError(t, f.service.Register(ctx, nil, creds("root", "pw"), false))

	status, err = f.service.CheckSetup(ctx, nil)
	require.NoError(t, err)
	assert.True(t, status.Setup)
}

func TestCheckSetup_StoreFailure(t *testing.T) {
	f := newAdminFixture(t)
	f.users.CountErr = testutil.ErrStore

	_, err := f.service.CheckSetup(context.Background(), nil)
	requireAppError(t, err, http.StatusInternalServerError)
}

func TestRegister_BootstrapThenLocked(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Register(ctx, nil, creds("first", "pw1"), false))
	users := f.users.Users()
	require.Len(t, users, 1)
	assert.Equal(t, uint(1), users[0].ID)
	assert.NotEqual(t, "pw1", users[0].PasswordHash)

	err := f.service.Register(ctx, nil, creds("second", "pw2"), false)
	requireAppError(t, err, http.StatusUnauthorized)
	assert.Len(t, f.users.Users(), 1)

	require.NoError(t, f.service.Register(ctx, nil, creds("second", "pw2"), true))
	assert.Len(t, f.users.Users(), 2)
}

func TestCreateUser_UsernameTaken(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.CreateUser(ctx, nil, creds("ops", "pw")))
	err := f.service.CreateUser(ctx, nil, creds("ops", "other"))
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)
}

func TestLogin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Register(ctx, nil, creds("root", "correct"), false))

	session, err := f.service.Login(ctx, nil, creds("root", "correct"))
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 1, f.sessions.Len())

	identity, err := f.session.Resolve(ctx, nil, session.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), identity.AdminID)
	assert.Equal(t, session.SessionID, identity.SessionID)
}

func TestLogin_NoUsernameEnumeration(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Register(ctx, nil, creds("root", "correct"), false))

	_, wrongPassword := f.service.Login(ctx, nil, creds("root", "wrong"))
	_, unknownUser := f.service.Login(ctx, nil, creds("nobody", "wrong"))

	a := requireAppError(t, wrongPassword, http.StatusUnauthorized)
	b := requireAppError(t, unknownUser, http.StatusUnauthorized)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, "Invalid username or password", a.Message)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestLogout_InvalidatesSession(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Register(ctx, nil, creds("root", "pw"), false))

	session, err := f.service.Login(ctx, nil, creds("root", "pw"))
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, nil, session.SessionID))

	_, err = f.session.Resolve(ctx, nil, session.Token)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestLogout_StoreFailure(t *testing.T) {
	f := newAdminFixture(t)
	f.sessions.DeleteErr = testutil.ErrStore

	err := f.service.Logout(context.Background(), nil, "some-session")
	requireAppError(t, err, http.StatusInternalServerError)
}

func TestSeedBootstrapAdmin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.SeedBootstrapAdmin(ctx, nil, "", ""))
	assert.Empty(t, f.users.Users())

	require.NoError(t, f.service.SeedBootstrapAdmin(ctx, nil, "boot", "pw"))
	require.Len(t, f.users.Users(), 1)

	// повторный запуск ничего не делает
	require.NoError(t, f.service.SeedBootstrapAdmin(ctx, nil, "other", "pw"))
	assert.Len(t, f.users.Users(), 1)

	_, err := f.service.Login(ctx, nil, creds("boot", "pw"))
	assert.NoError(t, err)
}
