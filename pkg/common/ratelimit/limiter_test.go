package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolAllowsBurstPerKey(t *testing.T) {
	p := NewPool(0.001, 2)
	assert.True(t, p.Allow("a"))
	assert.True(t, p.Allow("a"))
	assert.False(t, p.Allow("a"))
	assert.True(t, p.Allow("b"))
}

func TestMiddleware(t *testing.T) {
	rejected := 0
	h := NewPool(0.001, 1).Middleware(func() { rejected++ })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, rejected)
}

func TestPoolEvictsIdleKeys(t *testing.T) {
	p := NewPool(1, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.Allow("10.0.0.1")
	p.Allow("10.0.0.2")
	assert.Equal(t, 2, p.Len())

	now = now.Add(defaultTTL / 2)
	p.Allow("10.0.0.2")

	now = now.Add(defaultTTL/2 + time.Second)
	p.evictIdle()
	assert.Equal(t, 1, p.Len())

	now = now.Add(defaultTTL + time.Second)
	p.evictIdle()
	assert.Equal(t, 0, p.Len())
}

func TestMiddlewareKeysOnPeerAddress(t *testing.T) {
	p := NewPool(0.001, 1)
	h := p.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i, forwarded := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i == 0 {
			assert.Equal(t, http.StatusNoContent, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
	assert.Equal(t, 1, p.Len())
}
