package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/noticeboard-api/internal/service"
	"github.com/noah-isme/noticeboard-api/pkg/config"
)

func TestRouterProtectsMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api"}
	r := newRouter(cfg, zap.NewNop(), routerDeps{
		notices: service.NewNoticeService(nil, nil, nil, nil, nil, nil, service.NoticeServiceConfig{Now: time.Now}),
		tokens:  service.NewTokenService("secret"),
		metrics: service.NewMetricsService(),
	})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/notices"},
		{http.MethodPut, "/api/notices/1"},
		{http.MethodDelete, "/api/notices/1"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
