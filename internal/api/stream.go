package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// monitorStream serves the event bus as Server-Sent Events. The client's
// Last-Event-ID header (or last_id query param) is the resumption cursor;
// every frame carries the event id, so a reconnecting client picks up where
// it left off instead of replaying from scratch. A cursor older than
// retention silently resumes from the oldest retained event.
func (s *Server) monitorStream(c *gin.Context) {
	afterID := parseCursor(c.GetHeader("Last-Event-ID"))
	if afterID == 0 {
		afterID = parseCursor(c.Query("last_id"))
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ch := s.Bus.Subscribe(c.Request.Context(), afterID)
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-ch
		if !ok {
			return false
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return false
		}
		_, _ = w.Write([]byte("id: " + strconv.FormatUint(ev.ID, 10) + "\ndata: "))
		_, _ = w.Write(data)
		_, _ = w.Write([]byte("\n\n"))
		return true
	})
}

func parseCursor(raw string) uint64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
