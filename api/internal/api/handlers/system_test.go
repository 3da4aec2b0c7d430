package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingPinger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	return p.err
}

type fixedHealth bool

func (f fixedHealth) Healthy() bool { return bool(f) }

func TestSystemHandler_Health(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name      string
		pingErr   error
		monitor   HealthSource
		status    int
		wantPings int32
	}{
		{name: "no monitor, store up", status: http.StatusOK, wantPings: 1},
		{name: "no monitor, store down", pingErr: errors.New("refused"), status: http.StatusServiceUnavailable, wantPings: 1},
		{name: "monitor healthy still pings", monitor: fixedHealth(true), status: http.StatusOK, wantPings: 1},
		{name: "monitor healthy, ping fails", monitor: fixedHealth(true), pingErr: errors.New("refused"), status: http.StatusServiceUnavailable, wantPings: 1},
		{name: "monitor down skips ping", monitor: fixedHealth(false), status: http.StatusServiceUnavailable, wantPings: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &countingPinger{err: tc.pingErr}
			h := NewSystemHandler(store, "test", logger)
			if tc.monitor != nil {
				h.WithMonitor(tc.monitor)
			}

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.wantPings, store.calls.Load())
		})
	}
}
