package rooms

import "github.com/hilthontt/parley/internal/domain"

// createRequest represents the request to open a new room
type createRequest struct {
	Name         string `json:"name" example:"admin"`                        // Display name of the creator (member 0)
	CreationInfo string `json:"creation_info" example:"..." minLength:"1"`   // Opaque blob shown to every member
}

// createResponse represents the response after opening a room
type createResponse struct {
	Status string `json:"status" example:"success"`
	Room   string `json:"room" example:"QX7NMP"` // Shareable room identifier
	UserID int    `json:"user_id" example:"0"`   // Creator is always member 0
	Token  string `json:"token" example:"550e8400-e29b-41d4-a716-446655440000"` // Bearer credential for member 0
}

// joinRequest represents the request to join an existing room
type joinRequest struct {
	Name string `json:"name" example:"Mario"`
	Room string `json:"room" example:"QX7NMP"`
}

// joinResponse represents the response after joining
type joinResponse struct {
	Status string `json:"status" example:"success"`
	ID     int    `json:"id" example:"1"` // Sequential member id, never reused
	Token  string `json:"token" example:"550e8400-e29b-41d4-a716-446655440001"`
	Info   string `json:"info"` // The room's creation_info
}

// renameRequest represents the request to change a member's name
type renameRequest struct {
	Room  string `json:"room" example:"QX7NMP"`
	Token string `json:"token"`
	Name  string `json:"name" example:"Luigi"`
}

// completeRequest represents the creator-only request to end a room
type completeRequest struct {
	Room           string `json:"room" example:"QX7NMP"`
	Token          string `json:"token"`
	CompletionInfo string `json:"completion_info"`
}

// statusResponse is the bare success acknowledgement
type statusResponse struct {
	Status string `json:"status" example:"success"`
}

// infoResponse wraps the membership snapshot
type infoResponse struct {
	Status string          `json:"status" example:"success"`
	Info   domain.Snapshot `json:"info"`
}
