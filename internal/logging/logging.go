package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"
)

const ginKey = "logger"

type ctxKey struct{}

var (
	once sync.Once
	base *slog.Logger
)

// Init builds the process logger on first call; later calls return it unchanged.
// Output is JSON on stdout, mirrored to a rotating file when filePath is set.
// Every line carries app; loggers from New add their own component.
func Init(app, filePath, level string) *slog.Logger {
	once.Do(func() {
		base = newLogger(sink(filePath), app, level)
	})
	return base
}

func newLogger(w io.Writer, app, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h).With("app", app)
}

func sink(filePath string) io.Writer {
	if filePath == "" {
		return os.Stdout
	}
	_ = os.MkdirAll(filepath.Dir(filePath), 0o755)
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})
}

// ParseLevel maps a config string to a slog level; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Base is the process logger, initialized to stdout at info if Init was skipped.
func Base() *slog.Logger {
	if base == nil {
		return Init("storefront", "", "info")
	}
	return base
}

// New tags the process logger with a component name.
func New(component string) *slog.Logger {
	return Base().With("component", component)
}

func WithCtx(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromCtx(ctx context.Context) *slog.Logger {
	return orBase(ctx.Value(ctxKey{}))
}

// With attaches a request-scoped logger to the gin context.
func With(c *gin.Context, l *slog.Logger) {
	c.Set(ginKey, l)
}

func From(c *gin.Context) *slog.Logger {
	v, _ := c.Get(ginKey)
	return orBase(v)
}

func orBase(v any) *slog.Logger {
	if l, ok := v.(*slog.Logger); ok && l != nil {
		return l
	}
	return Base()
}
