// Package logger builds the structured JSON logger used across the service.
//
// There is no package-level default: main builds one zerolog.Logger and the
// HTTP middleware attaches a request-scoped child to every request context.
// Code below the handlers retrieves it with zerolog.Ctx(ctx).
package logger

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// RedactPII masks every email address that appears in a log line.
	RedactPII bool
	// Output defaults to os.Stderr.
	Output io.Writer
	// Service is added to every entry when non-empty.
	Service string
}

// New returns a JSON logger writing to opts.Output.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.RedactPII {
		out = &redactWriter{w: out}
	}

	ctx := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// redactWriter masks email addresses in each serialized entry before it
// reaches the underlying writer.
type redactWriter struct {
	w io.Writer
}

func (r *redactWriter) Write(p []byte) (int, error) {
	masked := emailRegex.ReplaceAllFunc(p, func(m []byte) []byte {
		return []byte(RedactEmail(string(m)))
	})
	if _, err := r.w.Write(masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
