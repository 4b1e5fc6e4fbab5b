package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/reversi-server/internal/proto"
)

// SSE streams room or lobby state as server-sent events.
// GET /subscribe?room={1..4|all}&seat=&session=&sse=
func (h *PushHandlers) SSE(c *gin.Context) {
	params, err := parseSubscription(c)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	sub, err := h.coord.Subscribe(ctx, params.target, params.seat, params.identity)
	if err != nil {
		writeError(c, err)
		return
	}
	defer h.release(ctx, sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				// dropped by the core; the client reconnects and gets a fresh snapshot
				return
			}
			c.SSEvent(proto.EventRoomState, ev.Payload())
			c.Writer.Flush()
		case now := <-ticker.C:
			if _, err := fmt.Fprintf(c.Writer, ": ping %d\n\n", now.UnixMilli()); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
