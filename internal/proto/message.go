package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// HeaderSessionToken carries the session token on requests and on join
	// responses that granted a seat.
	HeaderSessionToken = "X-Session-Token"
	// HeaderPlayToken is accepted as an alias of HeaderSessionToken.
	HeaderPlayToken = "X-Play-Token"

	ActionJoin       = "join"
	ActionLeave      = "leave"
	ActionAdminReset = "__admin_reset__"

	// EventRoomState names every push frame, room or lobby.
	EventRoomState = "room_state"

	// RoomAll selects the lobby view on /subscribe and /ws.
	RoomAll = "all"
)

// RoomID accepts a room as a JSON number or a numeric string.
type RoomID int

// UnmarshalJSON implements json.Unmarshaler.
func (r *RoomID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*r = 0
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("room %q is not a number", s)
		}
		*r = RoomID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("room is not a number: %w", err)
	}
	*r = RoomID(n)
	return nil
}

// ActionRequest is the body of POST /action. An empty body is a heartbeat.
type ActionRequest struct {
	Action  string `json:"action"`
	Room    RoomID `json:"room"`
	Seat    string `json:"seat,omitempty"`
	Channel string `json:"sse,omitempty"`
}

// MoveRequest is the body of POST /move.
type MoveRequest struct {
	Room RoomID `json:"room"`
	Pos  string `json:"pos"`
}

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Outbound is a WebSocket push frame.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ResultView is one row of GET /results.
type ResultView struct {
	ID         int64  `json:"id"`
	Room       int    `json:"room"`
	Black      int    `json:"black"`
	White      int    `json:"white"`
	Winner     string `json:"winner"`
	FinishedAt int64  `json:"finished_at"`
}
