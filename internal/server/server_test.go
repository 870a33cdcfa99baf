package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-airdrop/internal/constants"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
	"github.com/cyphera/cyphera-airdrop/internal/middleware"
	"github.com/cyphera/cyphera-airdrop/internal/server"
	"github.com/cyphera/cyphera-airdrop/internal/services"
	"github.com/cyphera/cyphera-airdrop/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger("test")
}

func newRouter(t *testing.T, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	env := testutil.NewEnv(t)
	svc := services.NewAirdropService(env.Chain, services.Deployment{
		Token:                  env.Token.Address(),
		LockImplementation:     env.LockImpl.Address(),
		LockFactory:            env.LockFactory.Address(),
		CampaignImplementation: env.CampaignImpl.Address(),
		Factory:                env.Factory.Address(),
	}, nil)
	return server.NewRouter(server.Options{
		Service:      svc,
		Auth:         middleware.NewAuthenticator("server-test", ""),
		Limiter:      limiter,
		AllowOrigins: []string{"https://app.example.com"},
		Swagger:      true,
	})
}

func serve(router http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter(t *testing.T) {
	router := newRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "deployment is public", method: http.MethodGet, path: "/api/v1/deployment", want: http.StatusOK},
		{name: "events are public", method: http.MethodGet, path: "/api/v1/events", want: http.StatusOK},
		{name: "create needs a token", method: http.MethodPost, path: "/api/v1/campaigns", want: http.StatusUnauthorized},
		{name: "redeem needs a token", method: http.MethodPost, path: "/api/v1/campaigns/0x0000000000000000000000000000000000000001/redeem", want: http.StatusUnauthorized},
		{name: "batch needs a token", method: http.MethodPost, path: "/api/v1/redeem/batch", want: http.StatusUnauthorized},
		{name: "withdraw needs a token", method: http.MethodPost, path: "/api/v1/withdraw", want: http.StatusUnauthorized},
		{name: "mint needs a token", method: http.MethodPost, path: "/api/v1/tokens/mint", want: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/api/v2/campaigns", want: http.StatusNotFound},
		{name: "swagger", method: http.MethodGet, path: "/swagger/doc.json", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(constants.CorrelationIDHeader))
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	router := newRouter(t, nil)

	w := serve(router, http.MethodOptions, "/api/v1/campaigns", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodGet, "/health", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1)
	t.Cleanup(limiter.Close)
	router := newRouter(t, limiter)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/deployment", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/api/v1/deployment", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", nil).Code)
}

func TestServer_Run(t *testing.T) {
	srv := server.New(0, http.NewServeMux())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
