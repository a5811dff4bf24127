package domain

import "context"

// RoomRepository is the registry of live rooms. Implementations must allow
// concurrent Create/GetByID/Evict without corrupting the id mapping.
type RoomRepository interface {
	// Create allocates a room with a fresh unique id and exposes it.
	Create(ctx context.Context, creationInfo string) (*Room, error)
	// GetByID returns ErrRoomNotFound for unknown or evicted ids.
	GetByID(ctx context.Context, id string) (*Room, error)
	// Evict removes a room; later lookups fail. Idempotent.
	Evict(ctx context.Context, id string) error
	// Rooms returns a point-in-time snapshot of all live rooms.
	Rooms(ctx context.Context) []*Room
	// Len reports the number of live rooms.
	Len() int
}
