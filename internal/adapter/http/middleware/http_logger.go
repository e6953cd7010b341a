package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/gin-gonic/gin"
)

const bodyLogLimit = 4 * 1024 // 4KB

// Order text, preview and links echo the shopper's delivery location.
var redactedKeys = map[string]struct{}{
	"location": {},
	"text":     {},
	"html":     {},
	"chat":     {},
	"email":    {},
}

const redacted = "***redacted***"

// cappedWriter tees up to bodyLogLimit bytes of the response.
type cappedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *cappedWriter) Write(b []byte) (int, error) {
	if room := bodyLogLimit - w.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.buf.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

func scrub(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			if _, ok := redactedKeys[strings.ToLower(k)]; ok {
				x[k] = redacted
				continue
			}
			x[k] = scrub(val)
		}
	case []any:
		for i := range x {
			x[i] = scrub(x[i])
		}
	}
	return v
}

// redactBody returns a loggable form of a JSON body, or "" when it is not JSON.
func redactBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	out, err := json.Marshal(scrub(v))
	if err != nil {
		return ""
	}
	return string(out)
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

// Logging logs one line per request and puts a request-scoped slog.Logger on
// the gin context. Bodies are logged only when JSON and small enough to parse.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = start.UTC().Format("20060102T150405.000000000")
		}
		c.Header("X-Request-Id", reqID)

		l := base.With("req_id", reqID, "method", c.Request.Method, "path", c.FullPath())
		if s := c.GetHeader("X-Cart-Session"); s != "" {
			l = l.With("cart_session", s)
		}
		logging.With(c, l)
		c.Request = c.Request.WithContext(logging.WithCtx(c.Request.Context(), l))

		var reqBody string
		if isJSON(c.GetHeader("Content-Type")) && c.Request.Body != nil {
			orig := c.Request.Body
			raw, _ := io.ReadAll(io.LimitReader(orig, bodyLogLimit+1))
			c.Request.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(raw), orig), orig}
			if len(raw) <= bodyLogLimit {
				reqBody = redactBody(raw)
			}
		}

		w := &cappedWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if isJSON(c.Writer.Header().Get("Content-Type")) && w.buf.Len() < bodyLogLimit {
			if s := redactBody(w.buf.Bytes()); s != "" {
				attrs = append(attrs, "resp_body", s)
			}
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusInternalServerError {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}
