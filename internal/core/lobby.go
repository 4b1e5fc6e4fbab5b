package core

import (
	"context"

	"github.com/rs/zerolog"
)

type lobbyOp int

const (
	lobbyUpdate lobbyOp = iota
	lobbySubscribe
	lobbyUnsubscribe
	lobbyReset
)

type lobbyRequest struct {
	op      lobbyOp
	summary RoomSummary
	sub     *Subscriber
	reply   chan bool
}

// Lobby fans the cross-room summary out to lobby subscribers. Its view is
// rebuilt from the summaries each room publishes after every accepted
// mutation, so per-room ordering matches the rooms' own ordering.
type Lobby struct {
	log   zerolog.Logger
	inbox chan lobbyRequest
	done  chan struct{}

	view [RoomCount]RoomSummary
	subs map[*Subscriber]struct{}
}

func newLobby(opts Options) *Lobby {
	l := &Lobby{
		log:   opts.logger().With().Str("component", "lobby").Logger(),
		inbox: make(chan lobbyRequest, 4*RoomCount),
		done:  make(chan struct{}),
		subs:  make(map[*Subscriber]struct{}),
	}
	for i := range l.view {
		l.view[i] = initialSummary(i + 1)
	}
	return l
}

func (l *Lobby) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			for sub := range l.subs {
				sub.close()
			}
			l.subs = nil
			return
		case req := <-l.inbox:
			l.handle(req)
		}
	}
}

func (l *Lobby) handle(req lobbyRequest) {
	switch req.op {
	case lobbyUpdate:
		if ValidRoom(req.summary.Room) {
			l.view[req.summary.Room-1] = req.summary
			l.broadcast()
		}
	case lobbySubscribe:
		l.subs[req.sub] = struct{}{}
		if !req.sub.offer(l.event()) {
			l.drop(req.sub)
		}
	case lobbyUnsubscribe:
		_, ok := l.subs[req.sub]
		if ok {
			delete(l.subs, req.sub)
			req.sub.close()
		}
		req.reply <- ok
		return
	case lobbyReset:
		for sub := range l.subs {
			sub.close()
		}
		l.subs = make(map[*Subscriber]struct{})
	}
	if req.reply != nil {
		req.reply <- true
	}
}

// update is called from room goroutines. The lobby never calls back into a
// room, so blocking here cannot deadlock.
func (l *Lobby) update(ctx context.Context, s RoomSummary) {
	select {
	case l.inbox <- lobbyRequest{op: lobbyUpdate, summary: s}:
	case <-l.done:
	case <-ctx.Done():
	}
}

func (l *Lobby) call(ctx context.Context, req lobbyRequest) (bool, error) {
	req.reply = make(chan bool, 1)
	select {
	case l.inbox <- req:
	case <-l.done:
		return false, ErrUnavailable
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-l.done:
		select {
		case ok := <-req.reply:
			return ok, nil
		default:
			return false, ErrUnavailable
		}
	}
}

func (l *Lobby) event() Event {
	return Event{Kind: EventLobbyState, Lobby: l.summary()}
}

func (l *Lobby) summary() LobbySummary {
	rooms := make([]RoomSummary, RoomCount)
	copy(rooms, l.view[:])
	return LobbySummary{Rooms: rooms}
}

func (l *Lobby) broadcast() {
	ev := l.event()
	for sub := range l.subs {
		if !sub.offer(ev) {
			l.drop(sub)
		}
	}
}

func (l *Lobby) drop(sub *Subscriber) {
	delete(l.subs, sub)
	sub.close()
	l.log.Warn().Str("subscriber", sub.ID).Msg("dropping slow lobby subscriber")
}
