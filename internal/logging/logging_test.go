package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestCtxRoundTrip(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := WithCtx(context.Background(), l)
	assert.Same(t, l, FromCtx(ctx))
	assert.NotNil(t, FromCtx(context.Background()))
}

func TestGinRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, From(c))

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	With(c, l)
	assert.Same(t, l, From(c))
}

func TestComponentLoggerHasSingleComponentKey(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "storefront-api", "info").With("component", "cart")
	l.Info("cart changed")
	l.Debug("dropped below level")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, `"component"`), line)
	assert.Contains(t, line, `"app":"storefront-api"`)
	assert.Contains(t, line, `"component":"cart"`)
	assert.NotContains(t, line, "dropped below level")
}
