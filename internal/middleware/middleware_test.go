package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var echoMethod = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.Method))
})

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		method, field, want string
	}{
		{"POST", "patch", "PATCH"},
		{"POST", "DELETE", "DELETE"},
		{"POST", "GET", "POST"},
		{"POST", "", "POST"},
		{"GET", "DELETE", "GET"},
	}
	for _, tt := range tests {
		form := url.Values{}
		if tt.field != "" {
			form.Set(MethodOverrideField, tt.field)
		}
		req := httptest.NewRequest(tt.method, "/entries/1", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		MethodOverride(echoMethod).ServeHTTP(rec, req)
		if got := rec.Body.String(); got != tt.want {
			t.Errorf("%s with _method=%q: got %s, want %s", tt.method, tt.field, got, tt.want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(false)(echoMethod).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get(headerXFrameOptions) != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if rec.Header().Get(headerStrictTransportSecurity) != "" {
		t.Error("HSTS sent without TLS")
	}

	rec = httptest.NewRecorder()
	SecurityHeaders(true)(echoMethod).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get(headerStrictTransportSecurity) == "" {
		t.Error("HSTS missing")
	}
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("journal.example.com")(echoMethod)

	req := httptest.NewRequest("GET", "http://journal.example.com:443/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("allowed host got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "http://evil.example.com/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign host got %d", rec.Code)
	}
}

func TestLoginRateLimitOnlyCoversLoginPaths(t *testing.T) {
	l := NewIPLimiter(rate.Every(time.Hour), 1, time.Hour)
	defer l.Stop()
	h := LoginRateLimit(l)(echoMethod)

	do := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("POST", "/sessions"); code != http.StatusOK {
		t.Fatalf("first login got %d", code)
	}
	if code := do("POST", "/sessions"); code != http.StatusTooManyRequests {
		t.Errorf("second login got %d", code)
	}
	if code := do("GET", "/login"); code != http.StatusOK {
		t.Errorf("login form limited: %d", code)
	}
}

func TestGlobalRateLimitPerIP(t *testing.T) {
	l := NewIPLimiter(rate.Every(time.Hour), 2, time.Hour)
	defer l.Stop()
	h := GlobalRateLimit(l)(echoMethod)

	codes := map[string][]int{}
	for _, ip := range []string{"10.0.0.1", "10.0.0.1", "10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[ip] = append(codes[ip], rec.Code)
	}
	if c := codes["10.0.0.1"]; c[2] != http.StatusTooManyRequests {
		t.Errorf("third request from same ip: %v", c)
	}
	if c := codes["10.0.0.2"]; c[0] != http.StatusOK {
		t.Errorf("other ip limited: %v", c)
	}
}

func TestRedisRateLimiterBlocks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisRateLimiter(client, nil)
	l.MaxRequests = 2
	h := l.Middleware(echoMethod)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.9:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request got %d", last)
	}
	if !mr.Exists(BlockedIPKeyPrefix + "10.0.0.9") {
		t.Error("ip not blocked")
	}
	if ttl := mr.TTL(RateLimitKeyPrefix + "10.0.0.9"); ttl != RateLimitWindow {
		t.Errorf("window ttl = %v", ttl)
	}

	if err := l.Unblock(req().Context(), "10.0.0.9"); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(RateLimitWindow + time.Second)
	rec := httptest.NewRecorder()
	r := req()
	r.RemoteAddr = "10.0.0.9:1000"
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Errorf("after unblock and window reset got %d", rec.Code)
	}
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	rec := httptest.NewRecorder()
	NewRedisRateLimiter(client, nil).Middleware(echoMethod).ServeHTTP(rec, req())
	if rec.Code != http.StatusOK {
		t.Errorf("redis down got %d", rec.Code)
	}
}

func TestRecoverer(t *testing.T) {
	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	Recoverer(nopLogger())(boom).ServeHTTP(rec, req())
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://journal.example.com"})(echoMethod)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://journal.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://journal.example.com" {
		t.Errorf("allowed origin not echoed: %v", rec.Header())
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("foreign origin allowed")
	}
}

func req() *http.Request {
	return httptest.NewRequest("GET", "/", nil)
}

func nopLogger() logger.Logger {
	return logger.NewNop()
}
