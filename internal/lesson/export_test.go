package lesson

// Exports for testing.

// NewTestRedisLedger creates a RedisLedger around a fake set store.
func NewTestRedisLedger(store setStore, key string) *RedisLedger {
	return newRedisLedger(store, key)
}

// Member exposes the ledger member key for a video.
var Member = member
