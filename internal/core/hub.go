package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/reversi"
)

// Registry owns the fixed set of room actors, the lobby and the token store,
// and routes every request to the right actor.
type Registry struct {
	rooms  [RoomCount]*Room
	lobby  *Lobby
	tokens *TokenStore
	opts   Options
	log    zerolog.Logger
}

// NewRegistry builds rooms 1..RoomCount. Nothing runs until Run is called.
func NewRegistry(tokens *TokenStore, opts Options) *Registry {
	if tokens == nil {
		tokens = NewTokenStore()
	}
	g := &Registry{
		lobby:  newLobby(opts),
		tokens: tokens,
		opts:   opts,
		log:    opts.logger(),
	}
	for i := range g.rooms {
		g.rooms[i] = newRoom(i+1, tokens, g.lobby, opts)
	}
	return g
}

// Run starts the lobby and room actors and blocks until ctx is done.
// Open push channels are closed on the way out.
func (g *Registry) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1 + RoomCount)
	go func() {
		defer wg.Done()
		g.lobby.run(ctx)
	}()
	for _, r := range g.rooms {
		go func() {
			defer wg.Done()
			r.run(ctx)
		}()
	}
	g.log.Info().Int("rooms", RoomCount).Msg("room coordinator started")
	wg.Wait()
	g.log.Info().Msg("room coordinator stopped")
}

// Tokens exposes the session store shared by all rooms.
func (g *Registry) Tokens() *TokenStore {
	return g.tokens
}

func (g *Registry) room(id int) (*Room, error) {
	if !ValidRoom(id) {
		return nil, ErrInvalidRoom
	}
	return g.rooms[id-1], nil
}

// Join asks for seat in room. A taken seat is downgraded to observer; only a
// granted player seat carries a token.
func (g *Registry) Join(ctx context.Context, room int, seat Seat, channelID string) (Result, error) {
	r, err := g.room(room)
	if err != nil {
		return Result{}, err
	}
	rep, err := r.call(ctx, roomRequest{op: opJoin, seat: seat, channelID: channelID})
	if err != nil {
		return Result{}, err
	}
	return Result{Seat: rep.seat, Token: rep.token, Snapshot: &rep.snapshot}, nil
}

// Leave vacates whatever seat id holds. A known token decides the room;
// otherwise room is used with the channel-id fallback. Unknown identities
// are a no-op, including a repeated beacon that names no room.
func (g *Registry) Leave(ctx context.Context, room int, id Identity) error {
	if sess, ok := g.tokens.Resolve(id.Token); ok {
		room = sess.Room
	} else if room == 0 {
		return nil
	}
	r, err := g.room(room)
	if err != nil {
		return err
	}
	if id.Empty() {
		return nil
	}
	_, err = r.call(ctx, roomRequest{op: opLeave, identity: id})
	return err
}

// Move plays pos for the session behind token.
func (g *Registry) Move(ctx context.Context, room int, token string, pos reversi.Pos) (Snapshot, error) {
	if token == "" {
		return Snapshot{}, ErrMissingToken
	}
	r, err := g.room(room)
	if err != nil {
		return Snapshot{}, err
	}
	if !pos.Valid() {
		return Snapshot{}, ErrInvalidPosition
	}
	sess, ok := g.tokens.Resolve(token)
	if !ok {
		return Snapshot{}, ErrUnknownToken
	}
	if sess.Room != room {
		return Snapshot{}, ErrWrongRoom
	}
	rep, err := r.call(ctx, roomRequest{op: opMove, identity: Identity{Token: token}, pos: pos})
	if err != nil {
		return Snapshot{}, err
	}
	return rep.snapshot, nil
}

// Heartbeat refreshes token. Unknown tokens are ignored.
func (g *Registry) Heartbeat(token string) bool {
	return g.tokens.Touch(token)
}

// Dispatch runs a validated command.
func (g *Registry) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	switch cmd.Kind {
	case CommandJoin:
		return g.Join(ctx, cmd.Room, cmd.Seat, cmd.Identity.ChannelID)
	case CommandLeave:
		return Result{}, g.Leave(ctx, cmd.Room, cmd.Identity)
	case CommandMove:
		snap, err := g.Move(ctx, cmd.Room, cmd.Identity.Token, cmd.Pos)
		if err != nil {
			return Result{}, err
		}
		return Result{Seat: snap.Seat, Snapshot: &snap}, nil
	case CommandHeartbeat:
		g.Heartbeat(cmd.Identity.Token)
		return Result{}, nil
	case CommandReset:
		return Result{}, g.Reset(ctx)
	default:
		return Result{}, fmt.Errorf("%w: unknown command %d", ErrBadRequest, cmd.Kind)
	}
}

// Subscribe opens a push channel on a room or, with LobbyTarget, the lobby.
// The current state is delivered immediately.
func (g *Registry) Subscribe(ctx context.Context, target int, seat Seat, id Identity) (*Subscriber, error) {
	if target == LobbyTarget {
		sub := NewSubscriber(LobbyTarget, SeatObserver, "", "", g.opts.buffer())
		if _, err := g.lobby.call(ctx, lobbyRequest{op: lobbySubscribe, sub: sub}); err != nil {
			return nil, err
		}
		return sub, nil
	}
	r, err := g.room(target)
	if err != nil {
		return nil, err
	}
	sub := NewSubscriber(target, seat, id.Token, id.ChannelID, g.opts.buffer())
	if _, err := r.call(ctx, roomRequest{op: opSubscribe, sub: sub}); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes sub. It reports false when the core had already
// dropped the channel.
func (g *Registry) Unsubscribe(ctx context.Context, sub *Subscriber) (bool, error) {
	if sub.Target == LobbyTarget {
		return g.lobby.call(ctx, lobbyRequest{op: lobbyUnsubscribe, sub: sub})
	}
	r, err := g.room(sub.Target)
	if err != nil {
		return false, err
	}
	rep, err := r.call(ctx, roomRequest{op: opUnsubscribe, sub: sub})
	return rep.removed, err
}

// Snapshot returns the current state of room as seen from seat.
func (g *Registry) Snapshot(ctx context.Context, room int, seat Seat) (Snapshot, error) {
	r, err := g.room(room)
	if err != nil {
		return Snapshot{}, err
	}
	rep, err := r.call(ctx, roomRequest{op: opSnapshot, seat: seat})
	return rep.snapshot, err
}

// Summary asks every room for its current row.
func (g *Registry) Summary(ctx context.Context) (LobbySummary, error) {
	rooms := make([]RoomSummary, 0, RoomCount)
	for _, r := range g.rooms {
		rep, err := r.call(ctx, roomRequest{op: opSummary})
		if err != nil {
			return LobbySummary{}, err
		}
		rooms = append(rooms, rep.summary)
	}
	return LobbySummary{Rooms: rooms}, nil
}

// Reset returns every room to its initial state and closes every push
// channel. Each room revokes the sessions it held; a join that lands after its
// room was reset keeps a live session.
func (g *Registry) Reset(ctx context.Context) error {
	for _, r := range g.rooms {
		if _, err := r.call(ctx, roomRequest{op: opReset}); err != nil {
			return fmt.Errorf("reset room %d: %w", r.id, err)
		}
	}
	if _, err := g.lobby.call(ctx, lobbyRequest{op: lobbyReset}); err != nil {
		return fmt.Errorf("reset lobby: %w", err)
	}
	g.log.Info().Msg("all rooms reset")
	return nil
}
