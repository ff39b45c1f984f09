package interfaces

import (
	"context"
	"strconv"
	"time"
)

// KeeperID identifies a keeper. It is derived from the keeper's forum topic.
type KeeperID uint32

// ParseKeeperID parses the decimal form used as a JSON object key upstream.
func ParseKeeperID(s string) (KeeperID, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return KeeperID(id), nil
}

// String returns the decimal representation of the id.
func (id KeeperID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Keeper is a peer known to seed content.
type Keeper struct {
	ID       KeeperID
	Username string
}

// Keepers maps keeper ids to keeper records.
type Keepers map[KeeperID]Keeper

// Clone returns a shallow copy of the map. Keeper values carry no pointers,
// so the copy is fully independent of k.
func (k Keepers) Clone() Keepers {
	c := make(Keepers, len(k))
	for id, keeper := range k {
		c[id] = keeper
	}
	return c
}

// KeeperSnapshot is one complete set of keepers returned by a single fetch.
type KeeperSnapshot struct {
	// FetchedAt is the upstream-reported update time. It is informational only.
	FetchedAt time.Time
	Keepers   Keepers
}

// KeeperSource produces keeper snapshots from the upstream authority.
type KeeperSource interface {
	// Fetch performs a single fetch. It must not retry.
	Fetch(ctx context.Context) (*KeeperSnapshot, error)
}

// KeeperRegistry is the in-memory cache of known keepers.
//
// Read returns a point-in-time view owned by the caller.
// Replace substitutes the whole contents atomically.
type KeeperRegistry interface {
	Read() Keepers
	Replace(keepers Keepers)
	Get(id KeeperID) (Keeper, bool)
	Len() int
}
