package benchmark

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/storage/memory"
)

// KeyCounts defines the keyspace sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

func keyAt(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

// prefillStore fills a store with count keys; every other key expires in
// an hour.
func prefillStore(store *memory.Store, count int) {
	for i := 0; i < count; i++ {
		value := ulid.Make().String()
		if i%2 == 0 {
			store.SetWithExpiry(keyAt(i), value, time.Hour)
			continue
		}
		store.Set(keyAt(i), value)
	}
}
