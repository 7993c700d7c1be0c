package domain

import "time"

// Connection is a single entry in the rate limiter's request log. Entries are
// only ever appended; housekeeping prunes the old ones.
type Connection struct {
	ID        string
	IP        string
	RoutePath string
	CreatedAt time.Time
}
