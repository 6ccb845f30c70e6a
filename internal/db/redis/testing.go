package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing client (typically a rueidis mock) with the default prefix.
func NewStoreForTest(c rueidis.Client) *Store {
	return newStore(c, "")
}
