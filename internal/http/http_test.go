package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/squareconnect/internal/config"
	identityDomain "github.com/allisson/squareconnect/internal/identity/domain"
	"github.com/allisson/squareconnect/internal/metrics"
	onboardingHTTP "github.com/allisson/squareconnect/internal/onboarding/http"
	squareDomain "github.com/allisson/squareconnect/internal/square/domain"
	squareHTTP "github.com/allisson/squareconnect/internal/square/http"
	"github.com/allisson/squareconnect/internal/square/http/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestServer creates a test server without a database.
func createTestServer(db *sql.DB) *Server {
	return NewServer(db, "localhost", 0, discardLogger())
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, rawToken string) (*identityDomain.Caller, error) {
	if rawToken != "valid-id-token" {
		return nil, identityDomain.ErrInvalidCredential
	}
	return &identityDomain.Caller{ID: "firebase-uid-1"}, nil
}

type routerFixture struct {
	server     *Server
	exchange   *mocks.MockExchangeUseCase
	relay      *mocks.MockRelayUseCase
	connection *mocks.MockConnectionUseCase
}

func newRouterFixture(t *testing.T, cfg *config.Config, provider *metrics.Provider) *routerFixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := &routerFixture{
		server:     createTestServer(nil),
		exchange:   &mocks.MockExchangeUseCase{},
		relay:      &mocks.MockRelayUseCase{},
		connection: &mocks.MockConnectionUseCase{},
	}
	logger := discardLogger()
	f.server.SetupRouter(ctx, cfg, stubVerifier{}, Handlers{
		Token:      squareHTTP.NewTokenHandler(f.exchange, &mocks.MockTokenUseCase{}, logger),
		Relay:      squareHTTP.NewRelayHandler(f.relay, logger),
		Connection: squareHTTP.NewConnectionHandler(f.connection, logger),
		Onboarding: onboardingHTTP.NewOnboardingHandler(logger),
	}, provider)
	return f
}

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:                "info",
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 100,
		RateLimitBurst:          100,
		MetricsNamespace:        "squareconnect_test",
	}
}

func TestHealthHandler(t *testing.T) {
	server := createTestServer(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessHandler(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		server := createTestServer(nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"not_ready","components":{"database":"error"}}`, w.Body.String())
	})

	t.Run("database reachable", func(t *testing.T) {
		db, mockDB, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()
		mockDB.ExpectPing()

		server := createTestServer(db)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","components":{"database":"ok"}}`, w.Body.String())
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("database ping fails", func(t *testing.T) {
		db, mockDB, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()
		mockDB.ExpectPing().WillReturnError(errors.New("connection refused"))

		server := createTestServer(db)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/oauth/square/callback", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/square/callback?code=secret-code&state=abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"path":"/oauth/square/callback"`)
	assert.Contains(t, buf.String(), `"request_id":"`)
	assert.NotContains(t, buf.String(), "secret-code")
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := newRouterFixture(t, testConfig(), nil)

	for _, path := range []string{"/health", "/api/onboarding/catalog"} {
		w := httptest.NewRecorder()
		f.server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"), path)
	}
}

func TestRouter_SquareRoutesRequireAuthentication(t *testing.T) {
	f := newRouterFixture(t, testConfig(), nil)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/square/exchange-token"},
		{http.MethodPost, "/api/square/refresh-token"},
		{http.MethodPost, "/api/square/api"},
		{http.MethodGet, "/api/square/api?merchantId=ML1&endpoint=/v2/locations"},
		{http.MethodGet, "/api/square/connections"},
		{http.MethodGet, "/api/square/connections/ML1"},
		{http.MethodDelete, "/api/square/connections/ML1"},
	}

	for _, route := range routes {
		w := httptest.NewRecorder()
		f.server.GetHandler().ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
		assert.JSONEq(t, `{"error":"No authorization token provided"}`, w.Body.String())
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/square/connections", nil)
	req.Header.Set("Authorization", "Bearer forged")
	f.server.GetHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())
}

func TestRouter_AuthenticatedCallerReachesHandler(t *testing.T) {
	f := newRouterFixture(t, testConfig(), nil)
	f.connection.On("List", mock.Anything, "firebase-uid-1").
		Return([]squareDomain.Connection{}, nil).
		Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/square/connections", nil)
	req.Header.Set("Authorization", "bearer valid-id-token")
	f.server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"connections":[]}`, w.Body.String())
	f.connection.AssertExpectations(t)
}

func TestRouter_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequestsPerSec = 0.001
	cfg.RateLimitBurst = 1
	f := newRouterFixture(t, cfg, nil)
	f.connection.On("List", mock.Anything, "firebase-uid-1").Return([]squareDomain.Connection{}, nil)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/square/connections", nil)
		req.Header.Set("Authorization", "Bearer valid-id-token")
		f.server.GetHandler().ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	f := newRouterFixture(t, testConfig(), nil)

	w := httptest.NewRecorder()
	f.server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_NoMetricsEndpoint(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()
	f := newRouterFixture(t, testConfig(), provider)

	w := httptest.NewRecorder()
	f.server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	f := newRouterFixture(t, testConfig(), nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- f.server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	assert.NoError(t, f.server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 0, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsServer_WithoutProvider(t *testing.T) {
	metricsServer := NewMetricsServer("localhost", 0, discardLogger(), nil)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
