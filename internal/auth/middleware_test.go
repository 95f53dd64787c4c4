package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddleware_LoadSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.activeUser(t, "alice", "alice@example.com", "pw1")
	token, err := env.tokens.MintSession(user.ID.String())
	require.NoError(t, err)

	mw := NewSessionMiddleware(env.svc, testCookieName, newTestLogger(t))

	var (
		got    *PublicUser
		gotErr error
		called bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got, gotErr = GetUserFromContext(r.Context())
	})
	handler := mw.LoadSession(next)

	serve := func(cookie *http.Cookie) *httptest.ResponseRecorder {
		called, got, gotErr = false, nil, nil
		req := httptest.NewRequest(http.MethodGet, "/current", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid session", func(t *testing.T) {
		serve(&http.Cookie{Name: testCookieName, Value: token})
		require.True(t, called)
		require.NoError(t, gotErr)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("no cookie", func(t *testing.T) {
		serve(nil)
		require.True(t, called)
		assert.ErrorIs(t, gotErr, ErrNoSession)
	})

	t.Run("invalid cookie", func(t *testing.T) {
		serve(&http.Cookie{Name: testCookieName, Value: "forged"})
		require.True(t, called)
		assert.ErrorIs(t, gotErr, ErrNoSession)
	})

	t.Run("store failure", func(t *testing.T) {
		env.repo.err = errors.New("connection refused")
		defer func() { env.repo.err = nil }()

		rec := serve(&http.Cookie{Name: testCookieName, Value: token})
		assert.False(t, called)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetUserFromContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	var nilUser *PublicUser
	_, err = GetUserFromContext(context.WithValue(context.Background(), UserContextKey, nilUser))
	assert.ErrorIs(t, err, ErrNoSession)
}
