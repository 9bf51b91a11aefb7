package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-notes/internal/application"
	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "6f1c2f9e-3a0f-4b8e-9a51-0a2b3c4d5e6f")
	w = serve(r, req)
	assert.Equal(t, "6f1c2f9e-3a0f-4b8e-9a51-0a2b3c4d5e6f", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = serve(r, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "1.2.3.4", "X-Forwarded-For": "5.6.7.8"}, "1.2.3.4"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": " 5.6.7.8 , 10.0.0.1"}, "5.6.7.8"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"garbage falls back", map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, serve(r, req).Body.String())
		})
	}
}

func TestPrivateOnly(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", PrivateOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "127.0.0.1")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	assert.Equal(t, http.StatusNotFound, serve(r, req).Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, helpers.NewNopLogger(), 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		return serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, send().Code)

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, send().Code)
}

func TestRateLimit_FailsOpenAndDisabled(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := gin.New()
	r.GET("/down", RateLimit(rdb, helpers.NewNopLogger(), 1, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/off", RateLimit(nil, helpers.NewNopLogger(), 1, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/down", nil)).Code)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/off", nil)).Code)
	}
}

func TestAuth(t *testing.T) {
	users := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	auth := application.NewAuthService(users, jwt, nil, "Notes", helpers.NewNopLogger())
	cookies := helpers.NewCookie("auth_token", "", false)

	sess, err := auth.Register(context.Background(), application.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Auth(auth, cookies), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey)+"|"+c.GetString(CtxUserEmailKey))
	})

	withCookie := func(v string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if v != "" {
			req.AddCookie(&http.Cookie{Name: "auth_token", Value: v})
		}
		return req
	}

	w := serve(r, withCookie(sess.Token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sess.User.ID+"|ana@example.com", w.Body.String())

	for _, tok := range []string{"", "garbage"} {
		w = serve(r, withCookie(tok))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Not authenticated"}`, w.Body.String())
	}
}
