package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	roomIDLength = 6

	roomIDChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	defaultMaxMembers = 20
)

var (
	charsetLen = big.NewInt(int64(len(roomIDChars)))

	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotActive     = errors.New("room is not active")
	ErrRoomCompleted     = errors.New("room already complete")
	ErrNotMember         = errors.New("token does not belong to this room")
	ErrNotCreator        = errors.New("permission denied")
	ErrRoomFull          = errors.New("room is full")
	ErrRegistryFull      = errors.New("too many rooms")
	ErrInvalidInput      = errors.New("invalid input")
)

// State is a room's lifecycle position. Transitions are linear:
// Active -> Completed -> Expired, no cycles, no re-entry.
type State int

const (
	StateActive State = iota
	StateCompleted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type Role string

const (
	RoleCreator     Role = "creator"
	RoleParticipant Role = "participant"
)

// Member is a participant of a single room. The creator is always member 0.
// The token is the bearer credential for every operation on the room.
type Member struct {
	ID    int
	Name  string
	Role  Role
	token string
}

// MemberInfo is the externally visible shape of a member.
type MemberInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Snapshot is the result of an info query. CompletionInfo is only present
// once the room has completed.
type Snapshot struct {
	Users          []MemberInfo `json:"users"`
	CreationInfo   string       `json:"creation_info"`
	CompletionInfo string       `json:"completion_info,omitempty"`
}

// Room is the aggregate owning membership, tokens, lifecycle state and the
// event bus. Every state-dependent operation is serialized by the room's own
// mutex; rooms never contend with each other.
type Room struct {
	mu sync.Mutex

	id             string
	state          State
	creationInfo   string
	completionInfo string
	createdAt      time.Time
	completedAt    time.Time

	nextMemberID int
	maxMembers   int
	members      []*Member
	tokens       map[string]*Member

	bus *Bus
}

// Options tune per-room resources. The zero value is usable.
type Options struct {
	// QueueSize bounds each subscriber's event queue.
	QueueSize int
	// MaxMembers caps a room's membership; 0 means the default.
	MaxMembers int
	// OnDrop is invoked whenever a slow subscriber is disconnected.
	OnDrop func()
}

func NewRoom(id, creationInfo string, opts Options) *Room {
	if opts.MaxMembers <= 0 {
		opts.MaxMembers = defaultMaxMembers
	}

	return &Room{
		id:           id,
		state:        StateActive,
		creationInfo: creationInfo,
		createdAt:    time.Now(),
		maxMembers:   opts.MaxMembers,
		tokens:       make(map[string]*Member),
		bus:          NewBus(opts.QueueSize, opts.OnDrop),
	}
}

// NewRoomID generates a short, human-shareable room identifier. Uniqueness
// across live rooms is the registry's job; it retries on collision.
func NewRoomID() (string, error) {
	var sb strings.Builder
	sb.Grow(roomIDLength)

	for i := 0; i < roomIDLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(roomIDChars[n.Int64()])
	}

	return sb.String(), nil
}

// issueToken returns a fresh opaque bearer credential. UUIDs are 36
// characters and unguessable, and never repeat across the process lifetime.
func issueToken() string {
	return uuid.NewString()
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) CreationInfo() string {
	return r.creationInfo
}

// Join appends a new member and announces it on the stream. The first join
// (made at creation time) becomes the creator with id 0; later joiners get
// sequential ids that are never reused.
func (r *Room) Join(name string) (int, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return 0, "", ErrRoomNotActive
	}

	if len(r.members) >= r.maxMembers {
		return 0, "", ErrRoomFull
	}

	member := &Member{
		ID:    r.nextMemberID,
		Name:  name,
		Role:  RoleParticipant,
		token: issueToken(),
	}
	if member.ID == 0 {
		member.Role = RoleCreator
	}
	r.nextMemberID++

	r.members = append(r.members, member)
	r.tokens[member.token] = member

	r.bus.Publish(NewUserAdded(member.ID, member.Name))

	return member.ID, member.token, nil
}

// Rename changes a member's name in place. Name uniqueness is deliberately
// not enforced, and renaming to the current name still emits an event.
func (r *Room) Rename(token, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return ErrRoomNotActive
	}

	member, ok := r.tokens[token]
	if !ok {
		return ErrNotMember
	}

	member.Name = name
	r.bus.Publish(NewUserRenamed(member.ID, member.Name))

	return nil
}

// Complete freezes the room. Only the creator's token is accepted; the
// terminal event is delivered to every subscriber and all streams close.
func (r *Room) Complete(token, completionInfo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.tokens[token]
	if !ok || member.Role != RoleCreator {
		return ErrNotCreator
	}

	switch r.state {
	case StateCompleted:
		return ErrRoomCompleted
	case StateExpired:
		return ErrRoomNotFound
	}

	r.state = StateCompleted
	r.completionInfo = completionInfo
	r.completedAt = time.Now()

	r.bus.CloseWith(NewComplete(r.completionInfo))

	return nil
}

// Info returns the membership snapshot. Tokens keep resolving after
// completion; only expiry invalidates them.
func (r *Room) Info(token string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateExpired {
		return Snapshot{}, ErrRoomNotFound
	}

	if _, ok := r.tokens[token]; !ok {
		return Snapshot{}, ErrNotMember
	}

	snap := Snapshot{
		Users:        make([]MemberInfo, 0, len(r.members)),
		CreationInfo: r.creationInfo,
	}
	for _, m := range r.members {
		snap.Users = append(snap.Users, MemberInfo{ID: m.ID, Name: m.Name})
	}
	if r.state == StateCompleted {
		snap.CompletionInfo = r.completionInfo
	}

	return snap, nil
}

// Subscribe attaches a new stream for the member owning token. An existing
// stream held by the same member is told it was replaced and closed.
func (r *Room) Subscribe(token string) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateExpired {
		return nil, ErrRoomNotFound
	}

	if _, ok := r.tokens[token]; !ok {
		return nil, ErrNotMember
	}

	r.bus.Replace(token)

	return r.bus.Subscribe(token), nil
}

// Unsubscribe releases a stream without touching room state. Idempotent.
func (r *Room) Unsubscribe(sub *Subscription) {
	r.bus.Unsubscribe(sub)
}

// Lifecycle reports the data the reaper needs to decide on eviction.
func (r *Room) Lifecycle() (State, time.Time, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.createdAt, r.completedAt
}

// Expire is the one-way transition out of the registry. Remaining streams
// get a disconnect notice before closing; every later operation fails as
// not-found.
func (r *Room) Expire() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateExpired {
		return
	}

	r.state = StateExpired
	r.bus.CloseWith(NewDisconnected("closed"))
}
