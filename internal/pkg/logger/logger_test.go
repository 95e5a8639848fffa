package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}

func TestNew_RedactsEmails(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", RedactPII: true, Output: &buf})

	l.Info().Str("email", "ursula_le_guin@gmail.com").Msg("subscriber ursula_le_guin@gmail.com added")

	out := buf.String()
	assert.NotContains(t, out, "ursula_le_guin@gmail.com")
	assert.Contains(t, out, "ur***@gmail.com")
}

func TestNew_NoRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Service: "newsletter"})

	l.Info().Str("email", "ursula_le_guin@gmail.com").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ursula_le_guin@gmail.com", entry["email"])
	assert.Equal(t, "newsletter", entry["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})

	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestMiddleware_AttachesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf})

	var sawLogger bool
	h := middleware.RequestID(Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := From(r)
		sawLogger = l.GetLevel() != zerolog.Disabled
		l.Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/health_check", nil).WithContext(context.Background())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, sawLogger)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var done map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &done))
	assert.Equal(t, "request completed", done["message"])
	assert.Equal(t, float64(http.StatusTeapot), done["status"])
	assert.NotEmpty(t, done["request_id"])
	assert.Equal(t, "/health_check", done["path"])
}
