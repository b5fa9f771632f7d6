package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ecoleplus/mobile-api/pkg/config"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(config.CORSConfig{AllowedOrigins: origins}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func doRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAllowlistedOriginEchoed(t *testing.T) {
	r := newRouter([]string{"https://app.ecoleplus.sn/"})

	w := doRequest(r, http.MethodGet, "https://app.ecoleplus.sn")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.ecoleplus.sn", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestUnknownOriginGetsNoCORSHeaders(t *testing.T) {
	r := newRouter([]string{"https://app.ecoleplus.sn"})

	w := doRequest(r, http.MethodGet, "https://evil.example.com")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEmptyAllowlistAllowsAnyOrigin(t *testing.T) {
	r := newRouter(nil)

	w := doRequest(r, http.MethodGet, "https://anywhere.example.com")

	assert.Equal(t, "https://anywhere.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	r := newRouter([]string{"https://app.ecoleplus.sn"})

	w := doRequest(r, http.MethodOptions, "https://app.ecoleplus.sn")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestNoOriginPassesThroughUntouched(t *testing.T) {
	r := newRouter([]string{"https://app.ecoleplus.sn"})

	w := doRequest(r, http.MethodGet, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Vary"))
}
