package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_rooms_created_total",
		Help: "Total number of rooms created.",
	})

	RoomsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_rooms_completed_total",
		Help: "Total number of rooms completed by their creator.",
	})

	RoomsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_rooms_expired_total",
		Help: "Total number of rooms evicted by the expiry reaper.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_events_published_total",
		Help: "Total number of lifecycle events published, by type.",
	}, []string{"type"})

	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parley_subscribers_dropped_total",
		Help: "Total number of stream subscribers dropped for falling behind.",
	})

	ActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_active_subscribers",
		Help: "Number of currently open event streams.",
	})

	LiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parley_live_rooms",
		Help: "Number of rooms currently in the registry.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
