package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeerIP_UsesSocketAddress(t *testing.T) {
	var got string
	h := KeepPeer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.RemoteAddr = "10.9.9.9:1" // what RealIP would do
		got = peerIP(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set("X-Forwarded-For", "10.9.9.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.7", got)
}

func TestIPLimiters_EvictsIdle(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newIPLimiters(1, 1)
	s.now = func() time.Time { return clock }

	s.get("192.0.2.1")
	s.get("192.0.2.2")
	assert.Equal(t, 2, len(s.limiters))

	clock = clock.Add(limiterIdle / 2)
	s.get("192.0.2.2")

	clock = clock.Add(limiterIdle - time.Minute)
	s.get("192.0.2.3")
	assert.Equal(t, 2, len(s.limiters))
	assert.NotContains(t, s.limiters, "192.0.2.1")
	assert.Contains(t, s.limiters, "192.0.2.2")
}
