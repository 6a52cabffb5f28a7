package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/pkg/auth"
	"github.com/your-org/kupipodariday-backend/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryCounter struct {
	hits map[string]int64
	err  error
}

func (m *memoryCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.hits == nil {
		m.hits = make(map[string]int64)
	}
	m.hits[key]++
	return m.hits[key], nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "KupiPodariDay"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-long-enough-1234",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"*.example.com"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Authorization"},
		},
	}
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "trace-42")
	rec = serve(engine, req)
	assert.Equal(t, "trace-42", rec.Header().Get(HeaderRequestID))
}

func TestRateLimit(t *testing.T) {
	counter := &memoryCounter{}
	engine := gin.New()
	engine.Use(RateLimit(2, counter, logger.Discard()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	for name, counter := range map[string]WindowCounter{
		"no counter":     nil,
		"broken counter": &memoryCounter{err: errors.New("connection refused")},
	} {
		t.Run(name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(RateLimit(1, counter, logger.Discard()))
			engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			for i := 0; i < 3; i++ {
				rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	pair, err := auth.NewJWTManager(cfg).IssuePair(7, "alice")
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/private", AuthMiddleware(cfg), func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		username, _ := GetUsernameFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": userID, "username": username})
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec = serve(engine, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"username":"alice"}`, rec.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	pair, err := auth.NewJWTManager(cfg).IssuePair(7, "alice")
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/", OptionalAuthMiddleware(cfg), func(c *gin.Context) {
		_, ok := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.JSONEq(t, `{"authenticated":false}`, serve(engine, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	assert.JSONEq(t, `{"authenticated":true}`, serve(engine, req).Body.String())
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS(testConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := serve(engine, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), HeaderRequestID)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evilexample.com")
	rec = serve(engine, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = serve(engine, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestSecurityHeaders(t *testing.T) {
	cfg := testConfig()
	engine := gin.New()
	engine.Use(SecurityHeaders(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	assert.Equal(t, "no-store", serve(engine, req).Header().Get("Cache-Control"))

	cfg.App.Environment = "production"
	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestTimeoutBoundsContext(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(50 * time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	engine.GET("/fast", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})

	assert.Equal(t, http.StatusGatewayTimeout, serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.JSONEq(t, `{"deadline":true}`, rec.Body.String())
}

func TestRequestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestSizeLimit(8))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(engine, req).Code)
}

func TestLocalRateLimiter(t *testing.T) {
	limiter := NewLocalRateLimiter(2)
	engine := gin.New()
	engine.Use(limiter.Handler())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.9:4000"
	assert.Equal(t, http.StatusOK, serve(engine, other).Code)
}

func TestLocalRateLimiterForgetsIdleClients(t *testing.T) {
	limiter := NewLocalRateLimiter(1)
	start := time.Now()

	assert.True(t, limiter.allow("10.0.0.1", start))
	assert.False(t, limiter.allow("10.0.0.1", start))

	later := start.Add(2 * limiterIdleTTL)
	assert.True(t, limiter.allow("10.0.0.2", later))
	limiter.mu.Lock()
	_, kept := limiter.clients["10.0.0.1"]
	limiter.mu.Unlock()
	assert.False(t, kept)
}
