package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key"
	testCookie = "bookshelf_session"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeUsers struct {
	users map[string]user.User
	err   error
}

func (f fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// identityRecorder records the identity that reached the inner handler.
func identityRecorder(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = UserIDFrom(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	token, jti, err := crypto.GenerateToken(testSecret, "user-1", "alice", time.Hour)
	require.NoError(t, err)
	foreign, _, err := crypto.GenerateToken("other-secret", "user-1", "alice", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		prepare     func(r *http.Request)
		revocations RevocationList
		users       UserLookup
		wantUser    string
	}{
		{
			name:     "anonymous without credentials",
			prepare:  func(r *http.Request) {},
			wantUser: "",
		},
		{
			name: "session cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			wantUser: "user-1",
		},
		{
			name: "bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantUser: "user-1",
		},
		{
			name: "token signed with another secret",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: foreign})
			},
			wantUser: "",
		},
		{
			name: "garbage cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})
			},
			wantUser: "",
		},
		{
			name: "revoked token",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			revocations: fakeRevocations{revoked: map[string]bool{jti: true}},
			wantUser:    "",
		},
		{
			name: "revocation store failure fails closed",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			revocations: fakeRevocations{err: errors.New("redis down")},
			wantUser:    "",
		},
		{
			name: "not revoked",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			revocations: fakeRevocations{revoked: map[string]bool{}},
			wantUser:    "user-1",
		},
		{
			name: "active user",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			users:    fakeUsers{users: map[string]user.User{"user-1": {ID: "user-1", IsActive: true}}},
			wantUser: "user-1",
		},
		{
			name: "user deactivated after login",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			users:    fakeUsers{users: map[string]user.User{"user-1": {ID: "user-1", IsActive: false}}},
			wantUser: "",
		},
		{
			name: "user deleted after login",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			users:    fakeUsers{users: map[string]user.User{}},
			wantUser: "",
		},
		{
			name: "user store failure fails closed",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testCookie, Value: token})
			},
			users:    fakeUsers{err: errors.New("db down")},
			wantUser: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			mw := Authenticate(AuthConfig{
				Secret:      testSecret,
				CookieName:  testCookie,
				Revocations: tt.revocations,
				Users:       tt.users,
			})

			r := httptest.NewRequest(http.MethodGet, "/books/", nil)
			tt.prepare(r)
			w := httptest.NewRecorder()

			mw(identityRecorder(&got)).ServeHTTP(w, r)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantUser, got)
		})
	}
}

func TestRequireLogin(t *testing.T) {
	t.Run("anonymous is redirected and next is not called", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/3/", nil)

		RequireLogin("/accounts/login/")(next).ServeHTTP(w, r)

		assert.False(t, called)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "/accounts/login/")
		assert.Equal(t, "/accounts/login/?next=%2Fbooks%2F3%2F", w.Header().Get("Location"))
	})

	t.Run("authenticated passes through unchanged", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/", nil)
		r = r.WithContext(ContextWithUser(r.Context(), "user-1", "alice", "jti"))

		RequireLogin("/accounts/login/")(identityRecorder(&got)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", got)
		assert.Empty(t, w.Header().Get("Location"))
	})
}

func TestLoginRedirectURL(t *testing.T) {
	assert.Equal(t, "/accounts/login/", LoginRedirectURL("/accounts/login/", ""))
	assert.Equal(t, "/accounts/login/?next=%2Fbooks%2F", LoginRedirectURL("/accounts/login/", "/books/"))
	assert.Equal(t, "/login?lang=en&next=%2Fbooks%2F", LoginRedirectURL("/login?lang=en", "/books/"))
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/books/3/", "/books/3/"},
		{"/books/?x=1", "/books/?x=1"},
		{"", "/books/"},
		{"books/", "/books/"},
		{"//evil.example.com", "/books/"},
		{"/\\evil.example.com", "/books/"},
		{"https://evil.example.com/books/", "/books/"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeNext(tt.next, "/books/"))
		})
	}
}
