package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/reversi"
	"github.com/vovakirdan/reversi-server/internal/utils"
)

type roomOp int

const (
	opJoin roomOp = iota
	opLeave
	opMove
	opSubscribe
	opUnsubscribe
	opSnapshot
	opSummary
	opReset
)

func (o roomOp) String() string {
	return [...]string{"join", "leave", "move", "subscribe", "unsubscribe", "snapshot", "summary", "reset"}[o]
}

type roomRequest struct {
	op        roomOp
	seat      Seat
	identity  Identity
	channelID string
	pos       reversi.Pos
	sub       *Subscriber
	reply     chan roomReply
}

type roomReply struct {
	seat     Seat
	token    string
	snapshot Snapshot
	summary  RoomSummary
	removed  bool
	err      error
}

type seatHolder struct {
	token     string
	channelID string
}

func (h seatHolder) vacant() bool {
	return h.token == ""
}

// Room is the actor owning one room. Every field below inbox is touched only
// by the run goroutine, so operations on a room are linearized by its inbox.
type Room struct {
	id     int
	opts   Options
	tokens *TokenStore
	lobby  *Lobby
	log    zerolog.Logger
	inbox  chan roomRequest
	done   chan struct{}

	seats    [2]seatHolder
	board    reversi.Board
	status   Status
	turn     Seat
	subs     map[*Subscriber]struct{}
	watchers int
}

func newRoom(id int, tokens *TokenStore, lobby *Lobby, opts Options) *Room {
	return &Room{
		id:     id,
		opts:   opts,
		tokens: tokens,
		lobby:  lobby,
		log:    opts.logger().With().Int("room", id).Logger(),
		inbox:  make(chan roomRequest),
		done:   make(chan struct{}),
		board:  reversi.StartingBoard(),
		status: StatusWaiting,
		turn:   SeatNone,
		subs:   make(map[*Subscriber]struct{}),
	}
}

func (r *Room) run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			for sub := range r.subs {
				sub.close()
			}
			r.subs = nil
			return
		case req := <-r.inbox:
			r.handle(ctx, req)
		}
	}
}

// call hands req to the actor and waits for its reply. Once a request is
// accepted it runs to completion even if ctx is cancelled meanwhile.
func (r *Room) call(ctx context.Context, req roomRequest) (roomReply, error) {
	req.reply = make(chan roomReply, 1)
	select {
	case r.inbox <- req:
	case <-r.done:
		return roomReply{}, ErrUnavailable
	case <-ctx.Done():
		return roomReply{}, ctx.Err()
	}
	select {
	case rep := <-req.reply:
		return rep, rep.err
	case <-r.done:
		select {
		case rep := <-req.reply:
			return rep, rep.err
		default:
			return roomReply{}, ErrUnavailable
		}
	}
}

func (r *Room) handle(ctx context.Context, req roomRequest) {
	var rep roomReply
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Stringer("op", req.op).Msg("room operation panicked")
			rep = roomReply{err: ErrInternal}
		}
		req.reply <- rep
	}()

	switch req.op {
	case opJoin:
		rep = r.join(ctx, req.seat, req.channelID)
	case opLeave:
		rep = r.leave(ctx, req.identity)
	case opMove:
		rep = r.move(ctx, req.identity.Token, req.pos)
	case opSubscribe:
		r.subscribe(ctx, req.sub)
	case opUnsubscribe:
		rep = r.unsubscribe(ctx, req.sub)
	case opSnapshot:
		rep.snapshot = r.snapshot(req.seat)
	case opSummary:
		rep.summary = r.summary()
	case opReset:
		r.reset(ctx)
	}
}

func (r *Room) join(ctx context.Context, want Seat, channelID string) roomReply {
	idx, ok := want.index()
	if !ok || !r.seats[idx].vacant() {
		return roomReply{seat: SeatObserver, snapshot: r.snapshot(SeatObserver)}
	}

	tok, err := r.tokens.Issue(r.id, want)
	if err != nil {
		return roomReply{err: fmt.Errorf("room %d: %w", r.id, err)}
	}
	r.seats[idx] = seatHolder{token: tok, channelID: channelID}
	if !r.seats[0].vacant() && !r.seats[1].vacant() {
		r.board = reversi.StartingBoard()
		r.status = StatusPlaying
		r.turn = SeatBlack
	}

	r.log.Info().Str("seat", string(want)).Str("token", utils.Mask(tok)).Str("status", string(r.status)).Msg("seat taken")
	r.changed(ctx)
	return roomReply{seat: want, token: tok, snapshot: r.snapshot(want)}
}

// resolve finds the seat held by id: token first, then channel id.
func (r *Room) resolve(id Identity) (int, bool) {
	if id.Token != "" {
		for i, h := range r.seats {
			if !h.vacant() && h.token == id.Token {
				return i, true
			}
		}
	}
	if id.ChannelID != "" {
		for i, h := range r.seats {
			if !h.vacant() && h.channelID == id.ChannelID {
				return i, true
			}
		}
	}
	return 0, false
}

func (r *Room) leave(ctx context.Context, id Identity) roomReply {
	idx, ok := r.resolve(id)
	if !ok {
		return roomReply{}
	}

	r.tokens.Revoke(r.seats[idx].token)
	r.seats[idx] = seatHolder{}

	switch {
	case r.seats[1-idx].vacant():
		r.resetGame()
	case r.status == StatusFinished:
		// final board stays visible to the remaining player
	default:
		r.status = StatusSeatLeft
		r.turn = SeatNone
		if r.opts.ClearBoardOnSeatLeft {
			r.board = reversi.EmptyBoard()
		}
	}

	r.log.Info().Str("seat", string(seatAt(idx))).Str("status", string(r.status)).Msg("seat vacated")
	r.changed(ctx)
	return roomReply{seat: seatAt(idx)}
}

func (r *Room) move(ctx context.Context, token string, pos reversi.Pos) roomReply {
	idx, ok := r.resolve(Identity{Token: token})
	if !ok {
		return roomReply{err: ErrUnknownToken}
	}
	seat := seatAt(idx)

	switch {
	case r.status != StatusPlaying:
		return roomReply{err: ErrNotPlaying}
	case r.turn != seat:
		return roomReply{err: ErrNotYourTurn}
	case r.board.At(pos) != reversi.Empty:
		return roomReply{err: ErrCellOccupied}
	case !r.board.IsLegal(pos, seat.Disc()):
		return roomReply{err: ErrIllegalMove}
	}

	next, flipped := r.board.Apply(pos, seat.Disc())
	status, turn := StatusPlaying, seat.Opponent()
	switch {
	case next.HasMove(turn.Disc()):
	case next.HasMove(seat.Disc()):
		turn = seat
	default:
		status, turn = StatusFinished, SeatNone
	}
	r.board, r.status, r.turn = next, status, turn
	r.tokens.Touch(token)

	r.log.Debug().Str("seat", string(seat)).Stringer("pos", pos).Int("flipped", flipped).
		Str("next", string(turn)).Msg("move applied")
	r.changed(ctx)
	if status == StatusFinished {
		r.finish()
	}
	return roomReply{seat: seat, snapshot: r.snapshot(seat)}
}

func (r *Room) finish() {
	black, white := r.board.Count()
	res := GameResult{Room: r.id, Black: black, White: white, Winner: SeatNone, FinishedAt: time.Now()}
	switch {
	case black > white:
		res.Winner = SeatBlack
	case white > black:
		res.Winner = SeatWhite
	}
	r.log.Info().Int("black", black).Int("white", white).Str("winner", string(res.Winner)).Msg("game finished")
	if r.opts.OnFinished != nil {
		r.opts.OnFinished(res)
	}
}

func (r *Room) subscribe(ctx context.Context, sub *Subscriber) {
	r.subs[sub] = struct{}{}
	if sub.Seat == SeatObserver {
		r.watchers++
		r.changed(ctx)
		return
	}
	if !sub.offer(Event{Kind: EventRoomState, Snapshot: r.snapshot(sub.Seat)}) {
		r.drop(sub)
	}
}

// unsubscribe removes sub. A seated subscriber that still holds its seat
// leaves the room; an observer only lowers the watcher count.
func (r *Room) unsubscribe(ctx context.Context, sub *Subscriber) roomReply {
	if _, ok := r.subs[sub]; !ok {
		return roomReply{}
	}
	delete(r.subs, sub)
	sub.close()

	if sub.Seat == SeatObserver {
		r.watchers--
		r.changed(ctx)
		return roomReply{removed: true}
	}

	id := Identity{Token: sub.Token, ChannelID: sub.ChannelID}
	if id.Empty() {
		return roomReply{removed: true}
	}
	if idx, ok := r.resolve(id); ok && seatAt(idx) == sub.Seat {
		r.log.Info().Str("seat", string(sub.Seat)).Str("subscriber", sub.ID).Msg("seated channel closed")
		r.leave(ctx, id)
	}
	return roomReply{removed: true}
}

func (r *Room) drop(sub *Subscriber) {
	delete(r.subs, sub)
	sub.close()
	if sub.Seat == SeatObserver {
		r.watchers--
	}
	r.log.Warn().Str("subscriber", sub.ID).Str("seat", string(sub.Seat)).Msg("dropping slow subscriber")
}

func (r *Room) reset(ctx context.Context) {
	for i, h := range r.seats {
		if !h.vacant() {
			r.tokens.Revoke(h.token)
		}
		r.seats[i] = seatHolder{}
	}
	r.resetGame()
	for sub := range r.subs {
		sub.close()
	}
	r.subs = make(map[*Subscriber]struct{})
	r.watchers = 0
	r.log.Info().Msg("room reset")
	r.lobby.update(ctx, r.summary())
}

func (r *Room) resetGame() {
	r.board = reversi.StartingBoard()
	r.status = StatusWaiting
	r.turn = SeatNone
}

// changed pushes the new state to the room's subscribers and the lobby.
func (r *Room) changed(ctx context.Context) {
	r.broadcast()
	r.lobby.update(ctx, r.summary())
}

// broadcast fans out one snapshot per seat tag. Channels that cannot take
// the event are dropped; dropping an observer changes the watcher count, so
// the remaining channels get another round.
func (r *Room) broadcast() {
	for {
		events := make(map[Seat]Event, 3)
		again := false
		for sub := range r.subs {
			ev, ok := events[sub.Seat]
			if !ok {
				ev = Event{Kind: EventRoomState, Snapshot: r.snapshot(sub.Seat)}
				events[sub.Seat] = ev
			}
			if !sub.offer(ev) {
				r.drop(sub)
				again = again || sub.Seat == SeatObserver
			}
		}
		if !again {
			return
		}
	}
}

func (r *Room) snapshot(seat Seat) Snapshot {
	snap := Snapshot{
		Room:     r.id,
		Seat:     seat,
		Status:   r.status,
		Board:    NewBoardView(r.board),
		Legal:    []string{},
		Watchers: r.watchers,
	}
	if r.turn != SeatNone {
		turn := r.turn
		snap.Turn = &turn
	}
	if r.status == StatusPlaying && seat == r.turn {
		for _, p := range r.board.LegalMoves(seat.Disc()) {
			snap.Legal = append(snap.Legal, p.String())
		}
	}
	return snap
}

func (r *Room) summary() RoomSummary {
	return RoomSummary{
		Room:     r.id,
		Status:   r.status,
		Black:    !r.seats[0].vacant(),
		White:    !r.seats[1].vacant(),
		Watchers: r.watchers,
	}
}
