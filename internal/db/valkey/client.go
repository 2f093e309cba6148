package valkey

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/discover/internal/db"
	redisstore "github.com/kailas-cloud/discover/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store implements db.Store for Valkey with valkey-search. Plain key, hash
// and JSON commands are shared with the Redis store; searching differs
// because valkey-search has no TEXT fields and no SORTBY.
type Store struct {
	*redisstore.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{Store: redisstore.NewFromClient(client)}, nil
}

// SupportsTextSearch returns false: valkey-search 1.0 has no TEXT fields.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return false
}

// CreateIndex rejects definitions with TEXT fields and otherwise delegates.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if def.HasText() {
		return &db.Error{Op: db.OpCreateIndex, Err: db.ErrTextSearchNotSupported}
	}
	if def.NoStopwords {
		d := *def
		d.NoStopwords = false
		def = &d
	}
	return s.Store.CreateIndex(ctx, def)
}
