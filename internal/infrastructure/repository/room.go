package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/parley/internal/domain"
)

const idCollisionRetries = 10

type roomRepository struct {
	rooms    map[string]*domain.Room // ID -> Room
	capacity uint
	roomOpts domain.Options
	mu       sync.RWMutex
}

// Options configure the in-memory registry and the rooms it creates.
type Options struct {
	// Capacity caps the number of live rooms; 0 means the default.
	Capacity uint
	// QueueSize bounds each stream subscriber's queue.
	QueueSize int
	// MaxMembers caps each room's membership; 0 means the default.
	MaxMembers int
	// OnDrop is invoked when a slow stream subscriber is disconnected.
	OnDrop func()
}

func NewRoomRepository(opts Options) domain.RoomRepository {
	if opts.Capacity == 0 {
		opts.Capacity = 10000
	}

	return &roomRepository{
		rooms:    make(map[string]*domain.Room),
		capacity: opts.Capacity,
		roomOpts: domain.Options{
			QueueSize:  opts.QueueSize,
			MaxMembers: opts.MaxMembers,
			OnDrop:     opts.OnDrop,
		},
	}
}

// Create reserves a fresh id under the registry lock, so an id is unique for
// the room's whole lifetime and reusable only after eviction.
func (r *roomRepository) Create(ctx context.Context, creationInfo string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if uint(len(r.rooms)) >= r.capacity {
		return nil, domain.ErrRegistryFull
	}

	var id string
	for i := 0; ; i++ {
		candidate, err := domain.NewRoomID()
		if err != nil {
			return nil, err
		}
		if _, taken := r.rooms[candidate]; !taken {
			id = candidate
			break
		}
		if i >= idCollisionRetries {
			return nil, domain.ErrRoomAlreadyExists
		}
	}

	room := domain.NewRoom(id, creationInfo, r.roomOpts)
	r.rooms[id] = room

	return room, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	room, exists := r.rooms[id]
	r.mu.RUnlock()
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	return room, nil
}

func (r *roomRepository) Evict(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, id)
	return nil
}

func (r *roomRepository) Rooms(ctx context.Context) []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *roomRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
