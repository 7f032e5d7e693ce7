package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 7, 17, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if ok, _, _ := rl.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	ok, retry, _ := rl.Allow(ctx, "1.2.3.4")
	if ok {
		t.Fatal("third request should be limited")
	}
	if retry != time.Minute {
		t.Fatalf("expected retry after 1m, got %s", retry)
	}
	if ok, _, _ := rl.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatal("other client should be allowed")
	}

	now = now.Add(time.Minute + time.Second)
	if ok, _, _ := rl.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatal("window should have reset")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Minute), nil, RateLimitOptions{FailOpen: true, TrustForwardedFor: true})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/book", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rw.Code)
	}
	if rw.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if ct := rw.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json error body, got content type %q", ct)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rw.Body).Decode(&body); err != nil || body.Error != "rate limit exceeded" {
		t.Fatalf("unexpected body %+v (%v)", body, err)
	}

	req.Header.Set("X-Forwarded-For", "8.8.8.8")
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("trusted forwarded address should get its own window, got %d", rw.Code)
	}
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Minute), nil, RateLimitOptions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/public/book", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		req.Header.Set("X-Forwarded-For", xff)
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)

		want := http.StatusOK
		if i > 0 {
			want = http.StatusTooManyRequests
		}
		if rw.Code != want {
			t.Fatalf("request %d with forged X-Forwarded-For: expected %d, got %d", i, want, rw.Code)
		}
	}
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	rl := NewRedisRateLimiter(rdb, 2, time.Minute, "test")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := rl.Allow(ctx, "client")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	ok, retry, err := rl.Allow(ctx, "client")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("third request should be limited")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("unexpected retry %s", retry)
	}
	if !mr.Exists("test:client") {
		t.Fatal("expected window key in redis")
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _, _ := rl.Allow(ctx, "client"); !ok {
		t.Fatal("window should have expired")
	}
}

func TestRateLimitMiddleware_FailClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	h := RateLimit(NewRedisRateLimiter(rdb, 1, time.Minute, ""), nil, RateLimitOptions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when redis is down, got %d", rw.Code)
	}
}
