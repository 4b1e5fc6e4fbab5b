package http

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/reversi-server/internal/proto"
)

// WebSocket streams the same frames as SSE, wrapped as proto.Outbound.
// Inbound messages are ignored; actions go through POST /action and /move.
// GET /ws?room={1..4|all}&seat=&session=&sse=
func (h *PushHandlers) WebSocket(c *gin.Context) {
	params, err := parseSubscription(c)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(c.Request.Context())
	sub, err := h.coord.Subscribe(ctx, params.target, params.seat, params.identity)
	if err != nil {
		conn.Close(websocket.StatusTryAgainLater, "subscribe failed")
		return
	}
	defer h.release(ctx, sub)

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "channel dropped")
				return
			}
			if err := h.write(ctx, conn, proto.Outbound{Type: proto.EventRoomState, Data: ev.Payload()}); err != nil {
				if !errors.Is(err, context.Canceled) {
					h.log.Warn().Err(err).Str("subscriber", sub.ID).Msg("write ws event")
				}
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *PushHandlers) write(ctx context.Context, conn *websocket.Conn, msg proto.Outbound) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
