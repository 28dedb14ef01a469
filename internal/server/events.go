package server

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	eventTypeSnapshot  = "snapshot"
	eventTypeHeartbeat = "heartbeat"
	heartbeatInterval  = 25 * time.Second
)

type snapshotEventPayload struct {
	RefreshedAt   time.Time `json:"refreshed_at"`
	Leads         int       `json:"leads"`
	Manufacturers int       `json:"manufacturers"`
	Orders        int       `json:"orders"`
	Documents     int       `json:"documents"`
}

// handleEvents streams snapshot refresh notifications to the UI over
// server-sent events until the client disconnects.
func (h *httpHandler) handleEvents(c *gin.Context) {
	events, cancel := h.store.Watch(c.Request.Context())
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(eventTypeSnapshot, snapshotEventPayload{
				RefreshedAt:   event.RefreshedAt,
				Leads:         event.Leads,
				Manufacturers: event.Manufacturers,
				Orders:        event.Orders,
				Documents:     event.Documents,
			})
			return true
		case <-heartbeat.C:
			c.SSEvent(eventTypeHeartbeat, time.Now().UTC().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
