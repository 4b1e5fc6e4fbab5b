package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func startRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	return startRegistryWithTokens(t, NewTokenStore(), opts)
}

func startRegistryWithTokens(t *testing.T, tokens *TokenStore, opts Options) *Registry {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry(tokens, opts)
	done := make(chan struct{})
	go func() {
		registry.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return registry
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func nextEvent(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatalf("subscriber %s closed", sub.ID)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for subscriber %s", sub.ID)
	}
	return Event{}
}

// mustSnapshot reads room events until one satisfies match.
func mustSnapshot(t *testing.T, sub *Subscriber, match func(Snapshot) bool) Snapshot {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatalf("subscriber %s closed before expected snapshot", sub.ID)
			}
			if ev.Kind == EventRoomState && match(ev.Snapshot) {
				return ev.Snapshot
			}
		case <-deadline:
			t.Fatalf("expected snapshot not received by %s", sub.ID)
		}
	}
}

func mustLobby(t *testing.T, sub *Subscriber, match func(LobbySummary) bool) LobbySummary {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatalf("lobby subscriber closed before expected summary")
			}
			if ev.Kind == EventLobbyState && match(ev.Lobby) {
				return ev.Lobby
			}
		case <-deadline:
			t.Fatalf("expected lobby summary not received")
		}
	}
}

func mustClosed(t *testing.T, sub *Subscriber) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("subscriber %s still open", sub.ID)
		}
	}
}

func mustJoin(t *testing.T, g *Registry, room int, seat Seat) Result {
	t.Helper()
	res, err := g.Join(testCtx(t), room, seat, "")
	if err != nil {
		t.Fatalf("join %s in room %d: %v", seat, room, err)
	}
	return res
}

func allEmpty(rows []string) bool {
	for _, row := range rows {
		if row != strings.Repeat("-", 8) {
			return false
		}
	}
	return true
}

// newIdleRoom builds a room whose actor is not running so tests can drive
// its handlers directly. Lobby updates are discarded.
func newIdleRoom(t *testing.T, tokens *TokenStore, opts Options) (*Room, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return newRoom(1, tokens, newLobby(opts), opts), ctx
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func statusIs(s Status) func(Snapshot) bool {
	return func(snap Snapshot) bool { return snap.Status == s }
}
