package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication(t *testing.T) {
	t.Setenv("STAGE", "test")
	t.Setenv("AIRDROP_OWNER", "0x00000000000000000000000000000000000000aa")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EVENTS_QUEUE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("RESEND_API_KEY", "")

	app, err := newApplication(context.Background())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	assert.Nil(t, app.dispatcher, "no publisher is configured")

	for _, path := range []string{"/health", "/api/v1/deployment", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNewApplication_MissingSecret(t *testing.T) {
	t.Setenv("STAGE", "test")
	t.Setenv("AIRDROP_OWNER", "0x00000000000000000000000000000000000000aa")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_ARN", "")

	_, err := newApplication(context.Background())
	assert.ErrorContains(t, err, "JWT_SECRET")
}
