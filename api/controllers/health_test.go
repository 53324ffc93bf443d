package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakanusa/gerai-analytics-backend/pkg/config"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func healthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return cfg
}

func TestHealthLive(t *testing.T) {
	w := httptest.NewRecorder()
	HealthLive(healthConfig())(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", w.Header().Get("X-Gerai-Env"))
}

func TestHealthReadyChecksDependencies(t *testing.T) {
	deps := map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}
	w := httptest.NewRecorder()
	HealthReady(healthConfig(), testLogger(), deps)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthReadyFailsWhenDependencyDown(t *testing.T) {
	deps := map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("refused")}}
	w := httptest.NewRecorder()
	HealthReady(healthConfig(), testLogger(), deps)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
