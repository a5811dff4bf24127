package rooms

import (
	"errors"
	"net/http"

	"github.com/hilthontt/parley/internal/domain"
	"github.com/hilthontt/parley/internal/infrastructure/json"
	"github.com/hilthontt/parley/internal/infrastructure/logging"
	"github.com/hilthontt/parley/internal/infrastructure/metrics"
	"github.com/hilthontt/parley/internal/infrastructure/stream"
	"github.com/hilthontt/parley/internal/infrastructure/validate"
)

// maxInfoLength bounds the opaque info blobs; they ride on every snapshot
// and on the terminal event.
const maxInfoLength = 1024

var (
	validName        = validate.Field("name", validate.MaxLength(128), validate.Printable())
	requiredName     = validate.Field("name", validate.Required(), validate.MaxLength(128), validate.Printable())
	requiredRoom     = validate.Field("room", validate.Required())
	requiredToken    = validate.Field("token", validate.Required())
	requiredCreation = validate.Field("creation_info", validate.Required(), validate.MaxLength(maxInfoLength))
	requiredComplete = validate.Field("completion_info", validate.Required(), validate.MaxLength(maxInfoLength))
)

type Handler struct {
	roomRepository domain.RoomRepository
	logger         logging.Logger
}

func NewHandler(roomRepository domain.RoomRepository, logger logging.Logger) *Handler {
	return &Handler{
		roomRepository: roomRepository,
		logger:         logger,
	}
}

// CreateRoomHandler godoc
// @Summary      Open a new room
// @Description  Allocates a room and registers the caller as its creator (member 0)
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body createRequest true "Creator name and creation info"
// @Success      200 {object} createResponse "Room opened"
// @Failure      400 {object} json.ErrorResponse "Validation error or registry full"
// @Router       /create [post]
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteBadRequestError(w, "Invalid JSON")
		return
	}

	if err := requiredCreation(req.CreationInfo); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := validName(req.Name); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	room, err := h.roomRepository.Create(r.Context(), req.CreationInfo)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, token, err := room.Join(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.RoomsCreated.Inc()
	metrics.EventsPublished.WithLabelValues(domain.EventUserAdded).Inc()
	metrics.LiveRooms.Set(float64(h.roomRepository.Len()))

	h.logger.Info(logging.Registry, logging.Startup, "room created",
		map[logging.ExtraKey]any{"room": room.ID()})

	json.Write(w, http.StatusOK, createResponse{
		Status: "success",
		Room:   room.ID(),
		UserID: id,
		Token:  token,
	})
}

// JoinRoomHandler godoc
// @Summary      Join a room
// @Description  Appends a new member with the next sequential id and announces it on the stream
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body joinRequest true "Member name and room id"
// @Success      200 {object} joinResponse "Joined"
// @Failure      400 {object} json.ErrorResponse "Unknown room or room no longer active"
// @Router       /join [post]
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteBadRequestError(w, "Invalid JSON")
		return
	}

	if err := requiredRoom(req.Room); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := validName(req.Name); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), req.Room)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, token, err := room.Join(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.EventsPublished.WithLabelValues(domain.EventUserAdded).Inc()

	json.Write(w, http.StatusOK, joinResponse{
		Status: "success",
		ID:     id,
		Token:  token,
		Info:   room.CreationInfo(),
	})
}

// RenameHandler godoc
// @Summary      Rename a member
// @Description  Changes the calling member's display name; collisions are allowed
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body renameRequest true "Room id, member token and new name"
// @Success      200 {object} statusResponse "Renamed"
// @Failure      400 {object} json.ErrorResponse "Bad token or room no longer active"
// @Router       /name [post]
func (h *Handler) RenameHandler(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteBadRequestError(w, "Invalid JSON")
		return
	}

	if err := requiredRoom(req.Room); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := requiredToken(req.Token); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := requiredName(req.Name); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), req.Room)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := room.Rename(req.Token, req.Name); err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.EventsPublished.WithLabelValues(domain.EventUserRenamed).Inc()

	json.Write(w, http.StatusOK, statusResponse{Status: "success"})
}

// CompleteHandler godoc
// @Summary      Complete a room
// @Description  Creator-only terminal transition; freezes membership and closes every stream
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body completeRequest true "Room id, creator token and completion info"
// @Success      200 {object} statusResponse "Completed"
// @Failure      400 {object} json.ErrorResponse "Permission denied or already completed"
// @Router       /complete [post]
func (h *Handler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteBadRequestError(w, "Invalid JSON")
		return
	}

	if err := requiredRoom(req.Room); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := requiredToken(req.Token); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := requiredComplete(req.CompletionInfo); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), req.Room)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := room.Complete(req.Token, req.CompletionInfo); err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.RoomsCompleted.Inc()
	metrics.EventsPublished.WithLabelValues(domain.EventComplete).Inc()

	h.logger.Info(logging.Registry, logging.Shutdown, "room completed",
		map[logging.ExtraKey]any{"room": room.ID()})

	json.Write(w, http.StatusOK, statusResponse{Status: "success"})
}

// GetInfoHandler godoc
// @Summary      Room snapshot
// @Description  Returns the member list and creation info; completion info appears once completed
// @Tags         rooms
// @Produce      json
// @Param        room query string true "Room id"
// @Param        token query string true "Member token"
// @Success      200 {object} infoResponse "Snapshot"
// @Failure      400 {object} json.ErrorResponse "Bad token or unknown/expired room"
// @Router       /info [get]
func (h *Handler) GetInfoHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	token := r.URL.Query().Get("token")

	if err := requiredRoom(roomID); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := requiredToken(token); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snap, err := room.Info(token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, infoResponse{Status: "success", Info: snap})
}

// EventsHandler godoc
// @Summary      Room event stream
// @Description  Long-lived SSE stream of room lifecycle events, terminated by the complete event
// @Tags         rooms
// @Produce      text/event-stream
// @Param        room query string true "Room id"
// @Param        token query string true "Member token"
// @Success      200 "SSE stream"
// @Failure      400 {object} json.ErrorResponse "Bad token or unknown/expired room"
// @Router       /events [get]
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	token := r.URL.Query().Get("token")

	if err := requiredRoom(roomID); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if err := requiredToken(token); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	room, err := h.roomRepository.GetByID(r.Context(), roomID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sub, err := room.Subscribe(token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer room.Unsubscribe(sub)

	flusher, ok := w.(http.Flusher)
	if !ok {
		json.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream.SetHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.ActiveSubscribers.Inc()
	defer metrics.ActiveSubscribers.Dec()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			// Client went away; the room is unaffected.
			return
		case ev, open := <-sub.Events():
			if !open {
				// Terminal event delivered (or subscriber replaced/dropped):
				// close the connection rather than wait for the client.
				return
			}
			if err := stream.WriteEvent(w, ev); err != nil {
				h.logger.Warn(logging.Stream, logging.Broadcast, "failed to write event",
					map[logging.ExtraKey]any{"room": roomID, logging.ErrorMessage: err.Error()})
				return
			}
			flusher.Flush()
		}
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotCreator):
		json.WriteBadRequestError(w, "Permission denied")
	case errors.Is(err, domain.ErrRoomNotFound):
		json.WriteBadRequestError(w, "Room not found")
	default:
		json.WriteBadRequestError(w, err.Error())
	}
}
