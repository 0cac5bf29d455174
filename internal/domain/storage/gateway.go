package storage

import "context"

// Keys under which the engine persists its state. They mirror the shape of
// the serialized entities: the lineup collection, the active lineup pointer
// and the ability cache each get their own blob.
const (
	KeyLineups         = "lineups"
	KeyCurrentLineupID = "current_lineup_id"
	KeyPlayerAbilities = "player_abilities"
)

// Gateway persists named blobs to durable local storage. A Save either fully
// succeeds or fails atomically; partial writes must never become visible to a
// later Load.
type Gateway interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, blob []byte) error
}
