package health

import "context"

// DBPinger checks store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BackendPinger checks vector search backend availability.
type BackendPinger interface {
	Ping(ctx context.Context) error
}
