package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ItemCounter reports how many items the catalog holds.
type ItemCounter interface {
	Count(ctx context.Context) (int, error)
}
