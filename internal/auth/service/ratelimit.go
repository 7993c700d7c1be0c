package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/idx"
)

const (
	DefaultRateWindow      = 10 * time.Second
	DefaultRateMaxRequests = 5
)

// ConnectionLimiter is a sliding-window counter per (ip, route) backed by the
// append-only connections log. Every call is recorded, rejected ones included.
type ConnectionLimiter struct {
	Store       store.Store
	Window      time.Duration
	MaxRequests int
	Now         func() time.Time
}

// Admit records the request and reports whether the number of requests from
// ip to route within the trailing window is still within MaxRequests.
func (l *ConnectionLimiter) Admit(ctx context.Context, ip, route string) (bool, error) {
	now := time.Now().UTC()
	if l.Now != nil {
		now = l.Now().UTC()
	}
	window := orDefault(l.Window, DefaultRateWindow)
	maxRequests := l.MaxRequests
	if maxRequests <= 0 {
		maxRequests = DefaultRateMaxRequests
	}

	err := l.Store.Connections().CreateConnection(ctx, domain.Connection{
		ID:        idx.NewAt(now).String(),
		IP:        ip,
		RoutePath: route,
		CreatedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("record connection: %w", err)
	}

	count, err := l.Store.Connections().CountConnectionsSince(ctx, ip, route, now.Add(-window))
	if err != nil {
		return false, fmt.Errorf("count connections: %w", err)
	}
	return count <= maxRequests, nil
}
