package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/current", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateToken(t *testing.T) {
	srv := authServer(t, http.StatusOK, `{"id":"u1","name":"Ana","permissions":["user","admin"],"login":"ana","enabled":true}`)
	auth := NewAuthService(srv.URL + "/")

	user, err := auth.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, Actor{ID: "u1", IsAdmin: true}, user.Actor())

	_, err = auth.ValidateToken(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenDisabledUser(t *testing.T) {
	srv := authServer(t, http.StatusOK, `{"id":"u2","permissions":["user"],"enabled":false}`)
	_, err := NewAuthService(srv.URL).ValidateToken(context.Background(), "good")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestValidateTokenAuthDown(t *testing.T) {
	srv := authServer(t, http.StatusOK, "{}")
	srv.Close()
	_, err := NewAuthService(srv.URL).ValidateToken(context.Background(), "good")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenAuthServerError(t *testing.T) {
	srv := authServer(t, http.StatusBadGateway, "upstream caído")
	_, err := NewAuthService(srv.URL).ValidateToken(context.Background(), "good")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.ErrorContains(t, err, "502")
}

func TestValidateTokenForbidden(t *testing.T) {
	srv := authServer(t, http.StatusForbidden, "")
	_, err := NewAuthService(srv.URL).ValidateToken(context.Background(), "good")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
