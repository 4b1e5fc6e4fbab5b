package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/reversi-server/internal/core"
	"github.com/vovakirdan/reversi-server/internal/proto"
)

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, ts *testServer, query string) (*websocket.Conn, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?" + query
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func readSnapshot(t *testing.T, ctx context.Context, conn *websocket.Conn) core.Snapshot {
	t.Helper()

	var frame wsFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Type != proto.EventRoomState {
		t.Fatalf("unexpected frame type %q", frame.Type)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(frame.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestWebSocketPushesRoomState(t *testing.T) {
	ts := startTestServer(t, nil, nil)
	conn, ctx := dialWS(t, ts, "room=2")

	first := readSnapshot(t, ctx, conn)
	if first.Room != 2 || first.Seat != core.SeatObserver || first.Watchers != 1 {
		t.Fatalf("unexpected initial snapshot: %+v", first)
	}

	ts.join(t, 2, "black")
	next := readSnapshot(t, ctx, conn)
	if next.Status != core.StatusWaiting || next.Watchers != 1 {
		t.Fatalf("unexpected snapshot after join: %+v", next)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
	eventually(t, func() bool {
		summary, err := ts.registry.Summary(context.Background())
		return err == nil && summary.Rooms[1].Watchers == 0
	}, "watcher count should drop after disconnect")
}

func TestWebSocketLobby(t *testing.T) {
	ts := startTestServer(t, nil, nil)
	conn, ctx := dialWS(t, ts, "room=all")

	var frame wsFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var lobby core.LobbySummary
	if err := json.Unmarshal(frame.Data, &lobby); err != nil {
		t.Fatalf("decode lobby: %v", err)
	}
	if len(lobby.Rooms) != core.RoomCount {
		t.Fatalf("expected %d rooms, got %+v", core.RoomCount, lobby)
	}
}

func TestWebSocketRejectsBadRoom(t *testing.T) {
	ts := startTestServer(t, nil, nil)

	resp, err := ts.Client().Get(ts.URL + "/ws?room=7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	expectError(t, resp, http.StatusBadRequest, core.ErrCodeInvalidRoom)
}
