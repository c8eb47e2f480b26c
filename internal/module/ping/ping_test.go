package ping

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"cohort-checkin/test"

	"github.com/stretchr/testify/assert"
)

func init() {
	log = slog.Default()
}

func TestPing(t *testing.T) {
	resp := test.DoRequest(t, Ping, test.Request{Method: http.MethodGet})
	test.NoError(t, resp)
	data := test.DecodeData[map[string]string](t, resp)
	assert.Equal(t, "pong", data["message"])
	assert.Equal(t, Version, data["version"])
}

func TestHealth(t *testing.T) {
	probes = []Probe{
		{Name: "database", Check: func(context.Context) error { return nil }},
	}
	resp := test.DoRequest(t, Health, test.Request{Method: http.MethodGet})
	test.NoError(t, resp)
	data := test.DecodeData[HealthResult](t, resp)
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, "ok", data.Components["database"])

	probes = append(probes, Probe{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }})
	w := test.Serve(t, Health, test.Request{Method: http.MethodGet})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "degraded")
}
