package core

// EventKind is a notification the core pushes to subscribers.
type EventKind int

const (
	// EventRoomState carries a room snapshot.
	EventRoomState EventKind = iota
	// EventLobbyState carries the lobby summary.
	EventLobbyState
)

// Event is delivered on a subscriber's channel.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Lobby    LobbySummary
}

// Payload returns the value to serialize for this event.
func (e Event) Payload() any {
	if e.Kind == EventLobbyState {
		return e.Lobby
	}
	return e.Snapshot
}
