package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"

	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/ratelimit"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

func newRateLimitedRouter(a *Authenticator) *gin.Engine {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 2*time.Minute, ratelimit.Budgets{
		ratelimit.Guest:  5,
		domain.RoleUser:  10,
		domain.RoleAdmin: 20,
	})
	r, err := NewEngine(nil)
	if err != nil {
		panic(err)
	}
	r.Use(a.Identify(), RateLimit(limiter, ratelimit.NewShield()))
	r.GET("/api/posts", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func send(r http.Handler, target, userAgent, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "203.0.113.7:40000"
	req.Header.Set("User-Agent", userAgent)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func denials(t *testing.T, reason ratelimit.Reason) float64 {
	t.Helper()
	var m dto.Metric
	if err := SecurityDenials.WithLabelValues(string(reason)).Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRateLimitGuestBudget(t *testing.T) {
	a, _ := newTestAuthenticator()
	r := newRateLimitedRouter(a)
	before := denials(t, ratelimit.ReasonRateLimit)

	for i := 1; i <= 5; i++ {
		if w := send(r, "/api/posts", browserUA, ""); w.Code != http.StatusOK {
			t.Fatalf("guest request %d = %d, want 200", i, w.Code)
		}
	}
	w := send(r, "/api/posts", browserUA, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("6th guest request = %d, want 403", w.Code)
	}
	if want := `{"error":"Forbidden","message":"Too many requests"}`; w.Body.String() != want {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
	if got := denials(t, ratelimit.ReasonRateLimit); got != before+1 {
		t.Errorf("rate_limit denials = %v, want %v", got, before+1)
	}
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	a, _ := newTestAuthenticator()
	r := newRateLimitedRouter(a)

	for i := 1; i <= 6; i++ {
		forwarded := fmt.Sprintf("198.51.100.%d", i)
		w := send(r, "/api/posts", browserUA, "", "X-Forwarded-For", forwarded, "X-Real-IP", forwarded)
		want := http.StatusOK
		if i == 6 {
			want = http.StatusForbidden
		}
		if w.Code != want {
			t.Fatalf("request %d with X-Forwarded-For %s = %d, want %d", i, forwarded, w.Code, want)
		}
	}
}

func TestNewEngineTrustedProxy(t *testing.T) {
	r, err := NewEngine([]string{"203.0.113.0/24"})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	w := send(r, "/ip", browserUA, "", "X-Forwarded-For", "198.51.100.9")
	if got := w.Body.String(); got != "198.51.100.9" {
		t.Errorf("ClientIP behind trusted proxy = %q, want 198.51.100.9", got)
	}

	if _, err := NewEngine([]string{"not-an-ip"}); err == nil {
		t.Error("NewEngine(invalid) error = nil, want error")
	}
}

func TestRateLimitUserBudget(t *testing.T) {
	a, tokens := newTestAuthenticator()
	r := newRateLimitedRouter(a)
	token, _ := tokens.Issue(9, "u@x.com", domain.RoleUser)

	for i := 1; i <= 10; i++ {
		if w := send(r, "/api/posts", browserUA, token); w.Code != http.StatusOK {
			t.Fatalf("user request %d = %d, want 200", i, w.Code)
		}
	}
	if w := send(r, "/api/posts", browserUA, token); w.Code != http.StatusForbidden {
		t.Fatalf("11th user request = %d, want 403", w.Code)
	}
	if w := send(r, "/api/posts", browserUA, ""); w.Code != http.StatusOK {
		t.Fatalf("guest request after user exhausted budget = %d, want 200", w.Code)
	}
}

func TestRateLimitShieldReasons(t *testing.T) {
	a, _ := newTestAuthenticator()
	r := newRateLimitedRouter(a)

	tests := []struct {
		name    string
		target  string
		ua      string
		reason  ratelimit.Reason
		message string
	}{
		{"curl", "/api/posts", "curl/8.4.0", ratelimit.ReasonBot, "Access denied: Bot detected"},
		{"sql injection", "/api/posts?q=1%27%20OR%201=1", browserUA, ratelimit.ReasonShield, "Request blocked by security policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := denials(t, tt.reason)
			w := send(r, tt.target, tt.ua, "")
			if w.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", w.Code)
			}
			if got := denials(t, tt.reason); got != before+1 {
				t.Errorf("%s denials = %v, want %v", tt.reason, got, before+1)
			}
			if !strings.Contains(w.Body.String(), tt.message) {
				t.Errorf("body = %s, want message %q", w.Body.String(), tt.message)
			}
		})
	}
}

func TestRateLimitNilChecks(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, nil))
	r.GET("/api/posts", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		if w := send(r, "/api/posts", "", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, w.Code)
		}
	}
}
