package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/newsletter/internal/delivery"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/ratelimit"
	"github.com/ignite/newsletter/internal/service/subscription"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory subscription repository.
type memoryRepo struct {
	mu      sync.Mutex
	records []*domain.Subscription
	err     error
}

func (m *memoryRepo) Insert(_ context.Context, s *domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, s)
	return nil
}

func (m *memoryRepo) all() []*domain.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Subscription(nil), m.records...)
}

// emailAPI is a fake Postmark-style email API.
type emailAPI struct {
	mu       sync.Mutex
	requests []map[string]string
	status   int
}

func (e *emailAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	e.mu.Lock()
	e.requests = append(e.requests, body)
	status := e.status
	e.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (e *emailAPI) received() []map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]map[string]string(nil), e.requests...)
}

type testApp struct {
	repo    *memoryRepo
	email   *emailAPI
	handler http.Handler
}

func withLimiter(l ratelimit.Allower) func(*Deps) {
	return func(d *Deps) { d.Limiter = l }
}

func withTrustProxy() func(*Deps) {
	return func(d *Deps) { d.TrustProxy = true }
}

func setupTestApp(t *testing.T, opts ...func(*Deps)) *testApp {
	t.Helper()
	email := &emailAPI{}
	emailSrv := httptest.NewServer(email)
	t.Cleanup(emailSrv.Close)

	sender, err := delivery.NewHTTPSender(emailSrv.URL, "news@example.com", "token", time.Second)
	require.NoError(t, err)

	repo := &memoryRepo{}
	svc, err := subscription.NewService(repo, sender, "https://my-api.com")
	require.NoError(t, err)

	deps := Deps{
		Subscriptions: svc,
		Logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testApp{repo: repo, email: email, handler: SetupRoutes(deps)}
}

func (a *testApp) postForm(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health_check", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, app.repo.all())
}

func TestSubscribe_ValidForm(t *testing.T) {
	app := setupTestApp(t)

	rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	records := app.repo.all()
	require.Len(t, records, 1)
	assert.Equal(t, "ursula_le_guin@gmail.com", records[0].Email)
	assert.Equal(t, "le guin", records[0].Name)
	assert.Equal(t, domain.StatusPendingConfirmation, records[0].Status)
}

func TestSubscribe_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing email", "name=le%20guin"},
		{"missing name", "email=ursula_le_guin%40gmail.com"},
		{"missing both", ""},
		{"empty name", "name=&email=ursula_le_guin%40gmail.com"},
		{"empty email", "name=Ursula&email="},
		{"invalid email", "name=Ursula&email=definitely-not-an-email"},
		{"forbidden character", "name=%3Cscript%3E&email=ursula_le_guin%40gmail.com"},
		{"malformed encoding", "name=%zz&email=ursula_le_guin%40gmail.com"},
		{"name not utf-8", "name=%FF%FE&email=ursula_le_guin%40gmail.com"},
		{"email not utf-8", "name=Ursula&email=urs%FFula%40gmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t)

			rec := app.postForm(tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Empty(t, app.repo.all())
			assert.Empty(t, app.email.received())
		})
	}
}

func TestSubscribe_SendsConfirmationEmail(t *testing.T) {
	app := setupTestApp(t)

	rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")
	require.Equal(t, http.StatusOK, rec.Code)

	sent := app.email.received()
	require.Len(t, sent, 1)
	assert.Equal(t, "ursula_le_guin@gmail.com", sent[0]["To"])

	link := "https://my-api.com/subscriptions/confirm"
	assert.Contains(t, sent[0]["HtmlBody"], link)
	assert.Contains(t, sent[0]["TextBody"], link)
}

func TestSubscribe_EmailFailureStillSucceeds(t *testing.T) {
	app := setupTestApp(t)
	app.email.status = http.StatusInternalServerError

	rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, app.repo.all(), 1)
	assert.Len(t, app.email.received(), 1)
}

func TestSubscribe_StorageFailure(t *testing.T) {
	app := setupTestApp(t)
	app.repo.err = errors.New("connection reset by peer")

	rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, app.email.received())
}

func TestSubscribe_NotIdempotent(t *testing.T) {
	app := setupTestApp(t)

	for i := 0; i < 2; i++ {
		rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	records := app.repo.all()
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestSubscribe_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := setupTestApp(t, withLimiter(ratelimit.New(client, "subscribe", 2, time.Minute)))

	for i := 0; i < 2; i++ {
		rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, app.repo.all(), 2)

	confirm := httptest.NewRecorder()
	app.handler.ServeHTTP(confirm, httptest.NewRequest(http.MethodGet, "/subscriptions/confirm", nil))
	assert.Equal(t, http.StatusOK, confirm.Code, "confirm is not rate limited")
}

func (a *testApp) postFormFrom(body, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestSubscribe_RateLimitIgnoresForwardedFor(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := setupTestApp(t, withLimiter(ratelimit.New(client, "subscribe", 1, time.Minute)))

	rec := app.postFormFrom("name=le%20guin&email=ursula_le_guin%40gmail.com", "10.9.9.0")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, ip := range []string{"10.9.9.1", "10.9.9.2", "10.9.9.3"} {
		rec := app.postFormFrom("name=le%20guin&email=ursula_le_guin%40gmail.com", ip)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "X-Forwarded-For %s", ip)
	}
	assert.Len(t, app.repo.all(), 1)
}

func TestSubscribe_RateLimitTrustedProxy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := setupTestApp(t, withLimiter(ratelimit.New(client, "subscribe", 1, time.Minute)), withTrustProxy())

	for _, ip := range []string{"10.9.9.1", "10.9.9.2"} {
		rec := app.postFormFrom("name=le%20guin&email=ursula_le_guin%40gmail.com", ip)
		assert.Equal(t, http.StatusOK, rec.Code, "X-Forwarded-For %s", ip)
	}
	rec := app.postFormFrom("name=le%20guin&email=ursula_le_guin%40gmail.com", "10.9.9.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestConfirm(t *testing.T) {
	app := setupTestApp(t)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscriptions/confirm", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp(t)
	app.postForm("name=le%20guin&email=ursula_le_guin%40gmail.com")

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `newsletter_subscriptions_total{outcome="accepted"}`)
	assert.Contains(t, rec.Body.String(), "newsletter_http_request_duration_seconds")
}

// =============================================================================
// Readiness
// =============================================================================

func TestReadiness(t *testing.T) {
	tests := []struct {
		name      string
		dbErr     error
		withRedis bool
		redisDown bool
		wantCode  int
		wantReady bool
	}{
		{"database up, no redis", nil, false, false, http.StatusOK, true},
		{"database and redis up", nil, true, false, http.StatusOK, true},
		{"database down", errors.New("connection refused"), false, false, http.StatusServiceUnavailable, false},
		{"redis down", nil, true, true, http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()
			mock.ExpectPing().WillReturnError(tt.dbErr)

			var client *redis.Client
			if tt.withRedis {
				mr := miniredis.RunT(t)
				client = redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
				t.Cleanup(func() { client.Close() })
				if tt.redisDown {
					mr.Close()
				}
			}

			router := SetupRoutes(Deps{
				Health: NewHealthChecker(db, client),
				Logger: zerolog.Nop(),
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body struct {
				Ready  bool                      `json:"ready"`
				Checks map[string]ComponentCheck `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantReady, body.Ready)
			assert.Contains(t, body.Checks, "database")
			assert.Contains(t, body.Checks, "redis")
		})
	}
}
