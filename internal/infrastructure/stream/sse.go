// Package stream encodes room events as Server-Sent Events.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hilthontt/parley/internal/domain"
)

// SetHeaders writes the SSE response headers. Callers must flush them before
// the first event so clients see the stream open immediately.
func SetHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Transfer-Encoding", "chunked")
}

// WriteEvent emits one SSE frame. The format deliberately omits the space
// after the colon; clients in the wild parse the field value byte-for-byte.
func WriteEvent(w io.Writer, ev domain.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event %q: %w", ev.Kind, err)
	}

	if _, err := fmt.Fprintf(w, "event:%s\ndata:%s\n\n", ev.Kind, data); err != nil {
		return err
	}

	return nil
}
