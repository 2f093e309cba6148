package valkey

import (
	"github.com/redis/rueidis"

	redisstore "github.com/kailas-cloud/discover/internal/db/redis"
)

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{Store: redisstore.NewFromClient(c)}
}
