package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hilthontt/parley/internal/infrastructure/json"
)

var (
	startTime       = time.Now()
	healthy   int32 = 1 // 1: healthy, 0 = unhealthy
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetPing godoc
// @Summary      Liveness ping
// @Description  Minimal reachability probe used by clients before opening a room
// @Tags         health
// @Produce      json
// @Success      200 {object} pingResponse
// @Router       /ping [get]
func (h *Handler) GetPing(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, pingResponse{Message: "pong"})
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the service, including uptime and current timestamp
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "Service is unhealthy"
// @Router       /health [get]
// @Router       /healthz [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&healthy) == 0 {
		json.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		})
		return
	}

	json.Write(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	})
}
