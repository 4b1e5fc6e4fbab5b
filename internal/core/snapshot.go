package core

import "github.com/vovakirdan/reversi-server/internal/reversi"

// BoardView is the serialized board: 8 row strings over {'-','B','W'}, row 0 = rank 1.
type BoardView struct {
	Size   int      `json:"size"`
	Stones []string `json:"stones"`
}

// NewBoardView renders b.
func NewBoardView(b reversi.Board) BoardView {
	return BoardView{Size: reversi.Size, Stones: b.Rows()}
}

// Snapshot is a read-only projection of one room for one seat. It is built
// fresh for every delivery and never mutated afterwards.
type Snapshot struct {
	Room     int       `json:"room"`
	Seat     Seat      `json:"seat"`
	Status   Status    `json:"status"`
	Turn     *Seat     `json:"turn"`
	Board    BoardView `json:"board"`
	Legal    []string  `json:"legal"`
	Watchers int       `json:"watchers"`
}

// TurnSeat returns the seat to move, or SeatNone.
func (s Snapshot) TurnSeat() Seat {
	if s.Turn == nil {
		return SeatNone
	}
	return *s.Turn
}

// RoomSummary is one room's row in the lobby.
type RoomSummary struct {
	Room     int    `json:"room"`
	Status   Status `json:"status"`
	Black    bool   `json:"black"`
	White    bool   `json:"white"`
	Watchers int    `json:"watchers"`
}

// LobbySummary aggregates all rooms, ordered by room id.
type LobbySummary struct {
	Rooms []RoomSummary `json:"rooms"`
}

func initialSummary(room int) RoomSummary {
	return RoomSummary{Room: room, Status: StatusWaiting}
}
