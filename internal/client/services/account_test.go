package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/accountkeeper/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---- fake provider ----

// fakeProvider implements auth.Provider for AccountService unit tests.
type fakeProvider struct {
	session *auth.Session
	user    *auth.User

	SignInErr  error
	GetUserErr error
	UpdateErr  error
	SignOutErr error

	signIns []string
	updates []auth.UserAttributes
	signOut int
}

var _ auth.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) GetSession(context.Context) (*auth.Session, error) { return f.session, nil }

func (f *fakeProvider) SetSession(_ context.Context, access, refresh string) (*auth.Session, error) {
	f.session = &auth.Session{AccessToken: access, RefreshToken: refresh}
	return f.session, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	f.signIns = append(f.signIns, email+":"+password)
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.session = &auth.Session{AccessToken: "at", RefreshToken: "rt", User: auth.User{ID: "u1", Email: email}}
	f.user = &f.session.User
	return f.session, nil
}

func (f *fakeProvider) SignUp(context.Context, string, string, auth.SignUpOptions) (*auth.User, error) {
	return nil, errors.New("not used")
}

func (f *fakeProvider) GetUser(context.Context) (*auth.User, error) {
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	if f.user == nil {
		return nil, auth.ErrNoSession
	}
	return f.user, nil
}

func (f *fakeProvider) UpdateUser(_ context.Context, attrs auth.UserAttributes) (*auth.User, error) {
	f.updates = append(f.updates, attrs)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return f.user, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.signOut++
	f.session, f.user = nil, nil
	return f.SignOutErr
}

func (f *fakeProvider) ResetPasswordForEmail(context.Context, string, string) error { return nil }

func signedIn(email string, meta map[string]any) *fakeProvider {
	u := auth.User{ID: "u1", Email: email, Metadata: meta}
	return &fakeProvider{session: &auth.Session{AccessToken: "at", RefreshToken: "rt", User: u}, user: &u}
}

// ---- tests ----

func TestLogin(t *testing.T) {
	f := &fakeProvider{}
	svc := NewAccountService(f, setupDB(t), nil, nil)

	u, err := svc.Login(context.Background(), " Me@X.com ", []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "me@x.com", u.Email)
	assert.Equal(t, []string{"me@x.com:secret1"}, f.signIns)
}

func TestLogin_ValidationBeforeNetwork(t *testing.T) {
	f := &fakeProvider{}
	svc := NewAccountService(f, setupDB(t), nil, nil)

	_, err := svc.Login(context.Background(), "nope", []byte("secret1"))
	require.ErrorIs(t, err, policy.ErrInvalidEmail)
	_, err = svc.Login(context.Background(), "me@x.com", nil)
	require.ErrorIs(t, err, ErrPasswordRequired)
	assert.Empty(t, f.signIns)
}

func TestLogin_Rejected(t *testing.T) {
	f := &fakeProvider{SignInErr: auth.ErrUnauthorized}
	svc := NewAccountService(f, setupDB(t), nil, nil)

	_, err := svc.Login(context.Background(), "me@x.com", []byte("secret1"))
	require.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestLogout_ReturnsRemoteErrorButClears(t *testing.T) {
	f := signedIn("me@x.com", nil)
	f.SignOutErr = auth.ErrUnavailable
	svc := NewAccountService(f, setupDB(t), nil, nil)

	require.ErrorIs(t, svc.Logout(context.Background()), auth.ErrUnavailable)
	assert.Equal(t, 1, f.signOut)
	assert.Nil(t, f.session)
}

func TestChangePassword_Validation(t *testing.T) {
	tests := []struct {
		name                  string
		current, next, repeat string
		reset                 bool
		want                  error
	}{
		{"missing current", "", "abc12345", "abc12345", false, ErrCurrentPasswordRequired},
		{"mismatch", "old", "abc12345", "abc12346", false, policy.ErrMismatch},
		{"too short", "", "ab1", "ab1", true, policy.ErrTooShort},
		{"no digit", "", "abcdefgh", "abcdefgh", true, policy.ErrNeedsLetterAndDigit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := signedIn("me@x.com", nil)
			svc := NewAccountService(f, setupDB(t), nil, nil)

			err := svc.ChangePassword(context.Background(), []byte(tt.current), []byte(tt.next), []byte(tt.repeat), tt.reset)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.updates)
			assert.Empty(t, f.signIns)
		})
	}
}

func TestChangePassword_ResetFlowSkipsCurrent(t *testing.T) {
	f := signedIn("me@x.com", nil)
	svc := NewAccountService(f, setupDB(t), nil, nil)

	require.NoError(t, svc.ChangePassword(context.Background(), nil, []byte("abc123"), []byte("abc123"), true))
	assert.Empty(t, f.signIns)
	require.Len(t, f.updates, 1)
	assert.Equal(t, "abc123", f.updates[0].Password, "a medium password passes")
}

func TestChangePassword_VerifiesCurrent(t *testing.T) {
	f := signedIn("me@x.com", nil)
	svc := NewAccountService(f, setupDB(t), nil, nil)

	require.NoError(t, svc.ChangePassword(context.Background(), []byte("old1"), []byte("new12345"), []byte("new12345"), false))
	assert.Equal(t, []string{"me@x.com:old1"}, f.signIns)
	require.Len(t, f.updates, 1)
	assert.Equal(t, "new12345", f.updates[0].Password)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	f := signedIn("me@x.com", nil)
	f.SignInErr = &auth.APIError{Status: 400, Message: "Invalid login credentials"}
	svc := NewAccountService(f, setupDB(t), nil, nil)

	err := svc.ChangePassword(context.Background(), []byte("bad"), []byte("new12345"), []byte("new12345"), false)
	require.ErrorIs(t, err, ErrWrongCurrentPassword)
	assert.Empty(t, f.updates)
}

func TestProfile_RoundTrip(t *testing.T) {
	f := signedIn("me@x.com", map[string]any{"full_name": "Ana", "company": "ACME", "role": 3})
	svc := NewAccountService(f, setupDB(t), nil, nil)

	p, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Profile{Email: "me@x.com", FullName: "Ana", Company: "ACME"}, p)

	p.Role = "Lead"
	require.NoError(t, svc.UpdateProfile(context.Background(), p))
	require.Len(t, f.updates, 1)
	assert.Equal(t, map[string]any{"full_name": "Ana", "company": "ACME", "role": "Lead"}, f.updates[0].Data)
	assert.Empty(t, f.updates[0].Password)
}

func TestSavePreferences_WritesServiceThenBackup(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	f := signedIn("me@x.com", nil)
	svc := NewAccountService(f, db, nil, nil)

	p := DefaultPreferences()
	p.DarkMode = false
	p.ItemsPerPage = 50
	require.NoError(t, svc.SavePreferences(ctx, p))

	require.Len(t, f.updates, 1)
	sent := f.updates[0].Data["preferences"].(map[string]any)
	assert.Equal(t, false, sent["darkMode"])
	assert.Equal(t, float64(50), sent["itemsPerPage"])

	var backup Preferences
	found, err := metadata.GetJSON(ctx, metadata.NewSQLiteRepository(db), metadata.KeyPreferences, &backup)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p, backup)
}

func TestSavePreferences_ServiceFailureSkipsBackup(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	f := signedIn("me@x.com", nil)
	f.UpdateErr = auth.ErrUnavailable
	svc := NewAccountService(f, db, nil, nil)

	require.ErrorIs(t, svc.SavePreferences(ctx, DefaultPreferences()), auth.ErrUnavailable)

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, metadata.KeyPreferences)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestLoadPreferences_Sources(t *testing.T) {
	ctx := context.Background()

	t.Run("user metadata wins and overlays defaults", func(t *testing.T) {
		db := setupDB(t)
		require.NoError(t, metadata.SetJSON(ctx, metadata.NewSQLiteRepository(db), metadata.KeyPreferences,
			map[string]any{"language": "de"}))
		f := signedIn("me@x.com", map[string]any{"preferences": map[string]any{"language": "en", "itemsPerPage": float64(10)}})

		p, err := NewAccountService(f, db, nil, nil).LoadPreferences(ctx)
		require.NoError(t, err)
		want := DefaultPreferences()
		want.Language = "en"
		want.ItemsPerPage = 10
		assert.Equal(t, want, p)
	})

	t.Run("local backup when metadata is empty", func(t *testing.T) {
		db := setupDB(t)
		require.NoError(t, metadata.SetJSON(ctx, metadata.NewSQLiteRepository(db), metadata.KeyPreferences,
			map[string]any{"darkMode": false}))
		f := signedIn("me@x.com", map[string]any{"preferences": map[string]any{}})

		p, err := NewAccountService(f, db, nil, nil).LoadPreferences(ctx)
		require.NoError(t, err)
		assert.False(t, p.DarkMode)
		assert.Equal(t, "es", p.Language)
	})

	t.Run("local backup when service is down", func(t *testing.T) {
		db := setupDB(t)
		require.NoError(t, metadata.SetJSON(ctx, metadata.NewSQLiteRepository(db), metadata.KeyPreferences,
			map[string]any{"timezone": "UTC"}))
		f := &fakeProvider{GetUserErr: auth.ErrUnavailable}

		p, err := NewAccountService(f, db, nil, nil).LoadPreferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, "UTC", p.Timezone)
	})

	t.Run("defaults when nothing stored", func(t *testing.T) {
		p, err := NewAccountService(signedIn("me@x.com", nil), setupDB(t), nil, nil).LoadPreferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultPreferences(), p)
	})

	t.Run("signed out", func(t *testing.T) {
		_, err := NewAccountService(&fakeProvider{}, setupDB(t), nil, nil).LoadPreferences(ctx)
		require.ErrorIs(t, err, auth.ErrNoSession)
	})
}

func TestIsAdmin(t *testing.T) {
	allow := func(email string) bool { return email == "boss@x.com" }

	ok, err := NewAccountService(signedIn("boss@x.com", nil), setupDB(t), allow, nil).IsAdmin(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewAccountService(signedIn("me@x.com", nil), setupDB(t), allow, nil).IsAdmin(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewAccountService(&fakeProvider{}, setupDB(t), allow, nil).IsAdmin(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
