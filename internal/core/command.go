package core

import "github.com/vovakirdan/reversi-server/internal/reversi"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin reserves a seat, or observes when the seat is taken.
	CommandJoin CommandKind = iota
	// CommandLeave vacates the seat held by the identity.
	CommandLeave
	// CommandMove places a disc.
	CommandMove
	// CommandHeartbeat refreshes a session.
	CommandHeartbeat
	// CommandReset returns every room to its initial state.
	CommandReset
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoin:
		return "join"
	case CommandLeave:
		return "leave"
	case CommandMove:
		return "move"
	case CommandHeartbeat:
		return "heartbeat"
	case CommandReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Identity names a seated player: by session token, or failing that by the
// push-channel id they registered on join.
type Identity struct {
	Token     string
	ChannelID string
}

// Empty reports whether the identity carries nothing to resolve.
func (id Identity) Empty() bool {
	return id.Token == "" && id.ChannelID == ""
}

// Command is the closed set of client actions, validated at the transport
// boundary before it reaches a room.
type Command struct {
	Kind     CommandKind
	Room     int
	Seat     Seat
	Identity Identity
	Pos      reversi.Pos
}

// Result is what a dispatched command yields.
type Result struct {
	Seat     Seat
	Token    string
	Snapshot *Snapshot
}
