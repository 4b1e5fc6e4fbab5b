package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/reversi-server/internal/core"
	"github.com/vovakirdan/reversi-server/internal/proto"
	"github.com/vovakirdan/reversi-server/internal/reversi"
)

// sessionToken reads the session token header, accepting the legacy alias.
func sessionToken(c *gin.Context) string {
	if tok := strings.TrimSpace(c.GetHeader(proto.HeaderSessionToken)); tok != "" {
		return tok
	}
	return strings.TrimSpace(c.GetHeader(proto.HeaderPlayToken))
}

func actionToCommand(req proto.ActionRequest, token string) (core.Command, error) {
	id := core.Identity{Token: token, ChannelID: strings.TrimSpace(req.Channel)}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case proto.ActionJoin:
		if !core.ValidRoom(int(req.Room)) {
			return core.Command{}, core.ErrInvalidRoom
		}
		return core.Command{
			Kind:     core.CommandJoin,
			Room:     int(req.Room),
			Seat:     core.ParseSeat(req.Seat),
			Identity: core.Identity{ChannelID: id.ChannelID},
		}, nil
	case proto.ActionLeave:
		if req.Room != 0 && !core.ValidRoom(int(req.Room)) {
			return core.Command{}, core.ErrInvalidRoom
		}
		return core.Command{Kind: core.CommandLeave, Room: int(req.Room), Identity: id}, nil
	case proto.ActionAdminReset:
		return core.Command{Kind: core.CommandReset}, nil
	case "":
		return core.Command{}, fmt.Errorf("%w: action is required", core.ErrBadRequest)
	default:
		return core.Command{}, fmt.Errorf("%w: unknown action %q", core.ErrBadRequest, req.Action)
	}
}

func moveToCommand(req proto.MoveRequest, token string) (core.Command, error) {
	pos, err := reversi.ParsePos(req.Pos)
	if err != nil {
		return core.Command{}, core.ErrInvalidPosition
	}
	return core.Command{
		Kind:     core.CommandMove,
		Room:     int(req.Room),
		Identity: core.Identity{Token: token},
		Pos:      pos,
	}, nil
}

// subscription is a parsed /subscribe or /ws query.
type subscription struct {
	target   int
	seat     core.Seat
	identity core.Identity
}

func parseSubscription(c *gin.Context) (subscription, error) {
	room := strings.ToLower(strings.TrimSpace(c.Query("room")))
	if room == proto.RoomAll {
		return subscription{target: core.LobbyTarget, seat: core.SeatObserver}, nil
	}
	n, err := strconv.Atoi(room)
	if err != nil || !core.ValidRoom(n) {
		return subscription{}, core.ErrInvalidRoom
	}

	token := strings.TrimSpace(c.Query("session"))
	if token == "" {
		token = sessionToken(c)
	}
	return subscription{
		target: n,
		seat:   core.ParseSeat(c.Query("seat")),
		identity: core.Identity{
			Token:     token,
			ChannelID: strings.TrimSpace(c.Query("sse")),
		},
	}, nil
}

func statusForError(err error) (int, proto.ErrorResponse) {
	ce, ok := core.AsCoreError(err)
	if !ok {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return http.StatusServiceUnavailable, proto.ErrorResponse{Error: "request cancelled", Code: core.ErrCodeUnavailable}
		}
		return http.StatusInternalServerError, proto.ErrorResponse{Error: "internal server error", Code: core.ErrCodeInternal}
	}

	resp := proto.ErrorResponse{Error: err.Error(), Code: ce.Code}
	switch {
	case ce.Code == core.ErrCodeInternal:
		return http.StatusInternalServerError, proto.ErrorResponse{Error: "internal server error", Code: ce.Code}
	case ce.Kind == core.KindValidation:
		return http.StatusBadRequest, resp
	case ce.Kind == core.KindAuthorization && ce.Code == core.ErrCodeMissingToken:
		return http.StatusUnauthorized, resp
	case ce.Kind == core.KindAuthorization:
		return http.StatusForbidden, resp
	case ce.Kind == core.KindConflict:
		return http.StatusConflict, resp
	default:
		return http.StatusServiceUnavailable, resp
	}
}

func writeError(c *gin.Context, err error) {
	status, body := statusForError(err)
	c.AbortWithStatusJSON(status, body)
}
