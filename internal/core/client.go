package core

import "github.com/vovakirdan/reversi-server/internal/utils"

// LobbyTarget is the subscription target for the lobby view.
const LobbyTarget = 0

// Subscriber is an open push channel as seen by the core: something that
// receives events and can be closed. Transports read Events until it is
// closed and call Unsubscribe when their client goes away.
type Subscriber struct {
	ID        string
	Target    int // room id, or LobbyTarget
	Seat      Seat
	Token     string // session token presented on subscribe, if any
	ChannelID string // client-chosen channel id for identity fallback

	events chan Event
}

// NewSubscriber constructs a subscriber with a buffered event channel.
func NewSubscriber(target int, seat Seat, token, channelID string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 1
	}
	if seat == SeatNone {
		seat = SeatObserver
	}
	return &Subscriber{
		ID:        utils.NewID(),
		Target:    target,
		Seat:      seat,
		Token:     token,
		ChannelID: channelID,
		events:    make(chan Event, buffer),
	}
}

// Events is closed when the core drops the subscriber.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// offer attempts a non-blocking delivery. False means the buffer is full.
func (s *Subscriber) offer(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

func (s *Subscriber) close() {
	close(s.events)
}
