package domain

// Event kinds delivered on a room's stream. The wire names are part of the
// public contract and must not change.
const (
	EventUserAdded    = "user_added"
	EventUserRenamed  = "user_renamed"
	EventComplete     = "complete"
	EventDisconnected = "disconnected"
)

// Event is a single room lifecycle notification. Kind doubles as the SSE
// event name; Data is the JSON payload.
type Event struct {
	Kind string
	Data any
}

// Payload structs
type MemberPayload struct {
	MessageType string `json:"message_type"`
	ID          int    `json:"id"`
	Name        string `json:"name"`
}

type CompletePayload struct {
	MessageType    string `json:"message_type"`
	CompletionInfo string `json:"completion_info"`
}

type DisconnectedPayload struct {
	MessageType string `json:"message_type"`
	Reason      string `json:"reason"`
}

func NewUserAdded(id int, name string) Event {
	return Event{
		Kind: EventUserAdded,
		Data: MemberPayload{
			MessageType: EventUserAdded,
			ID:          id,
			Name:        name,
		},
	}
}

func NewUserRenamed(id int, name string) Event {
	return Event{
		Kind: EventUserRenamed,
		Data: MemberPayload{
			MessageType: EventUserRenamed,
			ID:          id,
			Name:        name,
		},
	}
}

func NewComplete(completionInfo string) Event {
	return Event{
		Kind: EventComplete,
		Data: CompletePayload{
			MessageType:    EventComplete,
			CompletionInfo: completionInfo,
		},
	}
}

func NewDisconnected(reason string) Event {
	return Event{
		Kind: EventDisconnected,
		Data: DisconnectedPayload{
			MessageType: EventDisconnected,
			Reason:      reason,
		},
	}
}
