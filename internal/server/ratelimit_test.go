package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerIP(t *testing.T) {
	rl := newRateLimiter(0.001, 1)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(1, 1)
	rl.allow("10.0.0.1")
	rl.limiters["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.allow("10.0.0.2")

	rl.cleanup(10 * time.Minute)

	assert.Equal(t, 1, rl.size())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientIP(req))
}
