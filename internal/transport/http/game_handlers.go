package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/auth"
	"github.com/vovakirdan/reversi-server/internal/core"
	"github.com/vovakirdan/reversi-server/internal/proto"
	"github.com/vovakirdan/reversi-server/internal/utils"
)

// Coordinator is the part of the room registry the HTTP layer drives.
type Coordinator interface {
	Dispatch(ctx context.Context, cmd core.Command) (core.Result, error)
	Subscribe(ctx context.Context, target int, seat core.Seat, id core.Identity) (*core.Subscriber, error)
	Unsubscribe(ctx context.Context, sub *core.Subscriber) (bool, error)
	Snapshot(ctx context.Context, room int, seat core.Seat) (core.Snapshot, error)
	Summary(ctx context.Context) (core.LobbySummary, error)
}

// GameHandlers serves the request/response side of the game: actions,
// moves, admin reset and read-only views.
type GameHandlers struct {
	coord Coordinator
	admin *auth.JWTConfig
	log   *zerolog.Logger
}

// NewGameHandlers creates a new game handlers instance.
func NewGameHandlers(coord Coordinator, admin *auth.JWTConfig, logger *zerolog.Logger) *GameHandlers {
	return &GameHandlers{
		coord: coord,
		admin: admin,
		log:   logger,
	}
}

// Action handles join, leave, admin reset and, with an empty body, heartbeats.
// POST /action
func (h *GameHandlers) Action(c *gin.Context) {
	token := sessionToken(c)

	// Beacons arrive as text/plain, so the body is decoded by hand.
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, fmt.Errorf("%w: unreadable body", core.ErrBadRequest))
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.heartbeat(c, token)
		return
	}

	var req proto.ActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.log.Debug().Err(err).Msg("invalid action request")
		writeError(c, fmt.Errorf("%w: invalid request body", core.ErrBadRequest))
		return
	}
	cmd, err := actionToCommand(req, token)
	if err != nil {
		writeError(c, err)
		return
	}

	if cmd.Kind == core.CommandReset {
		if err := authorizeAdmin(c, h.admin); err != nil {
			rejectAdmin(c, err, h.log)
			return
		}
	}

	res, err := h.coord.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		h.log.Debug().Err(err).Stringer("action", cmd.Kind).Int("room", cmd.Room).Msg("action rejected")
		writeError(c, err)
		return
	}

	switch cmd.Kind {
	case core.CommandJoin:
		if res.Token != "" {
			c.Header(proto.HeaderSessionToken, res.Token)
		}
		h.log.Info().Int("room", cmd.Room).Str("seat", string(res.Seat)).Str("token", utils.Mask(res.Token)).Msg("join")
		c.JSON(http.StatusOK, res.Snapshot)
	default:
		c.Status(http.StatusNoContent)
	}
}

func (h *GameHandlers) heartbeat(c *gin.Context, token string) {
	if token == "" {
		writeError(c, fmt.Errorf("%w: empty body without session token", core.ErrBadRequest))
		return
	}
	cmd := core.Command{Kind: core.CommandHeartbeat, Identity: core.Identity{Token: token}}
	if _, err := h.coord.Dispatch(c.Request.Context(), cmd); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Move places a disc for the session in the token header.
// POST /move
func (h *GameHandlers) Move(c *gin.Context) {
	var req proto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid move request")
		writeError(c, fmt.Errorf("%w: invalid request body", core.ErrBadRequest))
		return
	}
	cmd, err := moveToCommand(req, sessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.coord.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		h.log.Debug().Err(err).Int("room", cmd.Room).Stringer("pos", cmd.Pos).Msg("move rejected")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Snapshot)
}

// AdminReset returns every room to its initial state.
// POST /admin/reset
func (h *GameHandlers) AdminReset(c *gin.Context) {
	if _, err := h.coord.Dispatch(c.Request.Context(), core.Command{Kind: core.CommandReset}); err != nil {
		h.log.Error().Err(err).Msg("admin reset failed")
		writeError(c, err)
		return
	}
	h.log.Warn().Str("client", c.ClientIP()).Msg("admin reset")
	c.Status(http.StatusNoContent)
}

// Lobby returns the summary of all rooms.
// GET /lobby
func (h *GameHandlers) Lobby(c *gin.Context) {
	summary, err := h.coord.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Room returns the observer view of one room.
// GET /rooms/:id
func (h *GameHandlers) Room(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, core.ErrInvalidRoom)
		return
	}
	snap, err := h.coord.Snapshot(c.Request.Context(), id, core.SeatObserver)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
