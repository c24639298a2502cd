package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
)

const keepAliveInterval = 15 * time.Second

// streamEvents pushes section state changes of one document over
// Server-Sent Events until the client disconnects.
func (h *Handler) streamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	docID := c.Param("id")

	doc, err := h.assembler.GetDocument(ctx, auth.SessionFrom(c), docID)
	if err != nil {
		writeError(c, "stream_events", err)
		return
	}
	if h.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"ok": false, "error": "event streaming disabled"})
		return
	}

	events, cancel, err := h.events.Subscribe(ctx, doc.ID)
	if err != nil {
		writeError(c, "stream_events", err)
		return
	}
	defer cancel()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	initial, _ := json.Marshal(gin.H{"document": doc})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				logging.NewLogger(ctx).LogWarnf("stream_events", "subscription for %s closed", doc.ID)
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: section\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
