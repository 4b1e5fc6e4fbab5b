package core

import (
	"strings"

	"github.com/vovakirdan/reversi-server/internal/reversi"
)

// RoomCount is the fixed number of rooms; ids run 1..RoomCount.
const RoomCount = 4

// Seat is a player's place at a room: black, white, or observer.
type Seat string

const (
	SeatNone     Seat = ""
	SeatBlack    Seat = "black"
	SeatWhite    Seat = "white"
	SeatObserver Seat = "observer"
)

// ParseSeat maps free-form input to a seat. Anything other than black or
// white is treated as observer.
func ParseSeat(s string) Seat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SeatBlack):
		return SeatBlack
	case string(SeatWhite):
		return SeatWhite
	default:
		return SeatObserver
	}
}

// Playing reports whether the seat is one of the two player seats.
func (s Seat) Playing() bool {
	return s == SeatBlack || s == SeatWhite
}

// Opponent returns the other player seat.
func (s Seat) Opponent() Seat {
	switch s {
	case SeatBlack:
		return SeatWhite
	case SeatWhite:
		return SeatBlack
	default:
		return SeatNone
	}
}

// Disc is the board color moved by this seat.
func (s Seat) Disc() reversi.Cell {
	switch s {
	case SeatBlack:
		return reversi.Black
	case SeatWhite:
		return reversi.White
	default:
		return reversi.Empty
	}
}

func (s Seat) index() (int, bool) {
	switch s {
	case SeatBlack:
		return 0, true
	case SeatWhite:
		return 1, true
	default:
		return 0, false
	}
}

func seatAt(i int) Seat {
	if i == 0 {
		return SeatBlack
	}
	return SeatWhite
}

// Status is the room's position in its game state machine.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusSeatLeft Status = "leave"
	StatusFinished Status = "finished"
)

// ValidRoom reports whether id names one of the fixed rooms.
func ValidRoom(id int) bool {
	return id >= 1 && id <= RoomCount
}
