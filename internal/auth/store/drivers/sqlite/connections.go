package sqlite

import (
	"context"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store/drivers/sqlite/gen"
)

type connectionsRepo struct {
	q *gen.Queries
}

func (r *connectionsRepo) CreateConnection(ctx context.Context, c domain.Connection) error {
	return r.q.CreateConnection(ctx, gen.CreateConnectionParams{
		ID:        c.ID,
		Ip:        c.IP,
		RoutePath: c.RoutePath,
		CreatedAt: toMillis(c.CreatedAt),
	})
}

func (r *connectionsRepo) CountConnectionsSince(
	ctx context.Context,
	ip, route string,
	since time.Time,
) (int, error) {
	n, err := r.q.CountConnectionsSince(ctx, gen.CountConnectionsSinceParams{
		Ip:        ip,
		RoutePath: route,
		CreatedAt: toMillis(since),
	})
	return int(n), err
}

func (r *connectionsRepo) DeleteConnectionsBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteConnectionsBefore(ctx, toMillis(before))
}
