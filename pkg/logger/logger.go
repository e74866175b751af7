package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/env"
	"github.com/rs/zerolog"
)

const (
	defaultServiceName = "storefront-api"
	maxStackFrames     = 32
)

// Format selects the encoder used for log lines.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// ParseFormat maps a config value to a Format, defaulting to JSON.
func ParseFormat(value string) Format {
	if Format(strings.ToLower(strings.TrimSpace(value))) == FormatConsole {
		return FormatConsole
	}
	return FormatJSON
}

// Options configures the structured logger. A blank Format falls back to
// STOREFRONT_LOG_FORMAT (or LOG_FORMAT) so the bootstrap logger built before
// config is loaded still honours the operator's choice.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	Format      Format
	WarnStack   bool
	Output      io.Writer
}

// Logger emits zerolog events enriched with fields carried on the context.
type Logger struct {
	base      zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}
	service := strings.TrimSpace(opts.ServiceName)
	if service == "" {
		service = defaultServiceName
	}
	format := opts.Format
	if format == "" {
		format = ParseFormat(env.Get(string(FormatJSON), "STOREFRONT_LOG_FORMAT", "LOG_FORMAT"))
	}

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	return &Logger{
		base:      zerolog.New(out).Level(opts.Level).With().Timestamp().Str("service", service).Logger(),
		warnStack: opts.WarnStack,
	}
}

// Nop returns a logger that discards everything. Used by tests and tools.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) from(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if scoped, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return scoped
		}
	}
	return &l.base
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	scoped := build(l.from(ctx).With()).Logger()
	return context.WithValue(ctx, ctxKey{}, &scoped)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Interface(key, value)
	})
}

// WithFields attaches fields in key order so repeated calls encode identically.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		for _, k := range keys {
			c = c.Interface(k, fields[k])
		}
		return c
	})
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", requestID) })
}

func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("user_id", userID) })
}

func (l *Logger) WithActorRole(ctx context.Context, role string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("actor_role", role) })
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.from(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.from(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.from(ctx).Warn()
	if l.warnStack {
		event.Strs("stack", callerStack(3))
	}
	event.Msg(msg)
}

// Error always records the caller stack alongside err.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.from(ctx).Error()
	if err != nil {
		event.Err(err)
	}
	event.Strs("stack", callerStack(3)).Msg(msg)
}

// callerStack renders "func file:line" frames above the logger itself.
func callerStack(skip int) []string {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	out := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			out = append(out, fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return out
}
