package fleet

import (
	"hash/fnv"
	"sync"

	"github.com/novaforge/cosmos-core/internal/loop"
)

// shardCount is the number of independent locks the player-session map is
// split across (spec.md §4.9: "active player sessions keyed by player
// id", "mutation is serialized per key by the map's sharding").
const shardCount = 16

// shard holds one partition of the fleet's player sessions, each guarded
// by its own RWMutex so unrelated players never contend on the same lock.
type shard struct {
	mu      sync.RWMutex
	players map[string]*loop.Loop
}

func newShards() [shardCount]*shard {
	var shards [shardCount]*shard
	for i := range shards {
		shards[i] = &shard{players: make(map[string]*loop.Loop)}
	}
	return shards
}

func shardFor(shards [shardCount]*shard, playerID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return shards[h.Sum32()%shardCount]
}
