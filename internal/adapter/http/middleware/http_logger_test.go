package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactBody(t *testing.T) {
	out := redactBody([]byte(`{"mode":"DELIVERY","location":"Plot 4","links":{"chat":"https://wa.me/1?text=x"},"lines":[{"text":"hi"}]}`))

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "DELIVERY", v["mode"])
	assert.Equal(t, redacted, v["location"])
	assert.Equal(t, redacted, v["links"].(map[string]any)["chat"])
	assert.Equal(t, redacted, v["lines"].([]any)[0].(map[string]any)["text"])

	assert.Empty(t, redactBody([]byte("not json")))
	assert.Empty(t, redactBody(nil))
}

func TestLogging_KeepsRequestBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	big := strings.Repeat("a", bodyLogLimit*2)
	var seen string
	r := gin.New()
	r.Use(Logging(l))
	r.POST("/echo", func(c *gin.Context) {
		raw, _ := io.ReadAll(c.Request.Body)
		seen = string(raw)
		c.JSON(http.StatusOK, gin.H{"location": "secret", "ok": true})
	})

	body := `{"location":"Plot 4","pad":"` + big + `"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, body, seen)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), "secret")

	logged := buf.String()
	assert.Contains(t, logged, `"req_id":"req-1"`)
	assert.NotContains(t, logged, "Plot 4")
	assert.NotContains(t, logged, "secret")
	assert.Contains(t, logged, redacted)
}

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/v1/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/v1/cart", "/v1/cart", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/cart", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", unmatchedRoute, "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
}
