package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const goodToken = "good-token"

// fakeBackend speaks just enough of the server's wire contract for the
// session manager: login, me, profile patch.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	user := map[string]interface{}{
		"id":       42,
		"email":    "lewis@example.com",
		"username": "lewis44",
	}
	unauthorized := func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired token", "code": "UNAUTHORIZED"})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UsernameOrEmail string `json:"usernameOrEmail"`
			Password        string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.UsernameOrEmail != "lewis44" || req.Password != "password123" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials", "code": "INVALID_CREDENTIALS"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"token": goodToken, "user": user})
	})
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			unauthorized(w)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("PATCH /user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			unauthorized(w)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	return httptest.NewServer(mux)
}

func newTestSession(t *testing.T, backendURL string) (*Session, *Store) {
	t.Helper()
	store := NewStore(t.TempDir())
	return NewSession(NewAPI(backendURL), store), store
}

func TestSession_Bootstrap(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	t.Run("empty slot stays logged out", func(t *testing.T) {
		session, _ := newTestSession(t, backend.URL)

		assert.NoError(t, session.Bootstrap(context.Background()))
		_, ok := session.Current()
		assert.False(t, ok)
	})

	t.Run("valid token logs in", func(t *testing.T) {
		session, store := newTestSession(t, backend.URL)
		assert.NoError(t, store.Save(goodToken))

		assert.NoError(t, session.Bootstrap(context.Background()))
		user, ok := session.Current()
		assert.True(t, ok)
		assert.Equal(t, "lewis44", user.Username)
	})

	t.Run("rejected token clears the slot silently", func(t *testing.T) {
		session, store := newTestSession(t, backend.URL)
		assert.NoError(t, store.Save("dead-token"))

		assert.NoError(t, session.Bootstrap(context.Background()))

		_, ok := session.Current()
		assert.False(t, ok)
		persisted, err := store.Load()
		assert.NoError(t, err)
		assert.Empty(t, persisted)
	})
}

func TestSession_Login(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	t.Run("success persists the token", func(t *testing.T) {
		session, store := newTestSession(t, backend.URL)

		user, err := session.Login(context.Background(), "lewis44", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "lewis44", user.Username)

		persisted, err := store.Load()
		assert.NoError(t, err)
		assert.Equal(t, goodToken, persisted)
	})

	t.Run("failure persists nothing", func(t *testing.T) {
		session, store := newTestSession(t, backend.URL)

		user, err := session.Login(context.Background(), "lewis44", "wrongpassword")
		assert.Nil(t, user)
		assert.True(t, IsUnauthorized(err))

		persisted, loadErr := store.Load()
		assert.NoError(t, loadErr)
		assert.Empty(t, persisted)
		_, ok := session.Current()
		assert.False(t, ok)
	})
}

func TestSession_LogoutIsIdempotent(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	session, store := newTestSession(t, backend.URL)
	_, err := session.Login(context.Background(), "lewis44", "password123")
	assert.NoError(t, err)

	session.Logout()
	session.Logout() // already logged out: still a no-op

	_, ok := session.Current()
	assert.False(t, ok)
	persisted, err := store.Load()
	assert.NoError(t, err)
	assert.Empty(t, persisted)
	assert.Empty(t, session.Token())
}

func TestSession_UpdateProfile(t *testing.T) {
	backend := fakeBackend(t)
	defer backend.Close()

	t.Run("requires a session", func(t *testing.T) {
		session, _ := newTestSession(t, backend.URL)

		_, err := session.UpdateProfile(context.Background(), ProfilePatch{})
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("rejected token forces logout", func(t *testing.T) {
		session, store := newTestSession(t, backend.URL)
		_, err := session.Login(context.Background(), "lewis44", "password123")
		assert.NoError(t, err)

		// simulate the server no longer honoring the token
		session.mu.Lock()
		session.token = "revoked"
		session.mu.Unlock()

		_, err = session.UpdateProfile(context.Background(), ProfilePatch{Username: strptr("newname")})
		assert.True(t, IsUnauthorized(err))

		_, ok := session.Current()
		assert.False(t, ok)
		persisted, loadErr := store.Load()
		assert.NoError(t, loadErr)
		assert.Empty(t, persisted)
	})
}

func TestProfilePatch_MarshalOmitsAbsentFields(t *testing.T) {
	data, err := json.Marshal(ProfilePatch{Username: strptr("newname"), FavoriteTeamIDs: []string{}})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"username":"newname","favoriteTeamIds":[]}`, string(data))
}

func strptr(s string) *string { return &s }
