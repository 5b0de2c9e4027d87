// Package ratelimit implements per-role sliding-window request budgets over a
// shared counter store, plus a bot and attack-signature heuristic.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/duynhne/content-service/internal/core/domain"
)

// Guest classifies unauthenticated callers.
const Guest domain.Role = "guest"

// Reason tags why a request was denied. The wire response is the same for
// every reason; logs and metrics keep them apart.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonBot       Reason = "bot"
	ReasonShield    Reason = "shield"
	ReasonRateLimit Reason = "rate_limit"
)

// Store records hits in a sliding window shared by every instance.
type Store interface {
	// Hit records one request for key at now and returns the number of hits
	// in (now-window, now], including this one.
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

// Budgets maps a role to its request budget per window.
type Budgets map[domain.Role]int

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed   bool
	Role      domain.Role
	Limit     int
	Count     int64
	Remaining int
	Reason    Reason
}

// Limiter applies role budgets over a fixed-length sliding window.
type Limiter struct {
	store   Store
	window  time.Duration
	budgets Budgets
	now     func() time.Time
}

// NewLimiter returns a Limiter. Roles missing from budgets use the guest budget.
func NewLimiter(store Store, window time.Duration, budgets Budgets) *Limiter {
	return &Limiter{store: store, window: window, budgets: budgets, now: time.Now}
}

// Window returns the sliding window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow records a request by subject under role and reports whether it fits
// the role's budget.
func (l *Limiter) Allow(ctx context.Context, role domain.Role, subject string) (Decision, error) {
	limit, ok := l.budgets[role]
	if !ok {
		role = Guest
		limit = l.budgets[Guest]
	}

	key := fmt.Sprintf("ratelimit:%s:%s", role, subject)
	count, err := l.store.Hit(ctx, key, l.now(), l.window)
	if err != nil {
		return Decision{Allowed: true, Role: role, Limit: limit}, fmt.Errorf("record hit %s: %w", key, err)
	}

	d := Decision{
		Allowed: count <= int64(limit),
		Role:    role,
		Limit:   limit,
		Count:   count,
	}
	if d.Allowed {
		d.Remaining = limit - int(count)
	} else {
		d.Reason = ReasonRateLimit
	}
	return d, nil
}
