package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/reversi-server/internal/core"
	"github.com/vovakirdan/reversi-server/internal/proto"
	"github.com/vovakirdan/reversi-server/internal/reversi"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	room := flag.Int("room", 1, "room to play in (1..4)")
	plies := flag.Int("plies", 6, "number of moves to play")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wsURL := strings.Replace(*base, "http", "ws", 1) + fmt.Sprintf("/ws?room=%d", *room)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	printFrame(ctx, conn)

	tokens := map[core.Seat]string{}
	for _, seat := range []core.Seat{core.SeatBlack, core.SeatWhite} {
		tok, snap := join(ctx, *base, *room, seat)
		if tok == "" {
			log.Fatalf("seat %s in room %d is taken (got %s)", seat, *room, snap.Seat)
		}
		tokens[seat] = tok
		fmt.Printf("joined as %s\n", seat)
		printFrame(ctx, conn)
	}

	for ply := 0; ply < *plies; ply++ {
		snap := roomState(ctx, *base, *room)
		if snap.Status != core.StatusPlaying {
			break
		}
		board, err := reversi.ParseRows(snap.Board.Stones)
		if err != nil {
			log.Fatalf("parse board: %v", err)
		}
		turn := snap.TurnSeat()
		moves := board.LegalMoves(turn.Disc())
		if len(moves) == 0 {
			log.Fatalf("%s to move but has no legal moves", turn)
		}
		move(ctx, *base, *room, tokens[turn], moves[0])
		fmt.Printf("%s plays %s\n", turn, moves[0])
		printFrame(ctx, conn)
	}

	for seat, tok := range tokens {
		leave(ctx, *base, *room, tok)
		fmt.Printf("%s left\n", seat)
	}
}

func printFrame(ctx context.Context, conn *websocket.Conn) {
	var frame struct {
		Type string        `json:"type"`
		Data core.Snapshot `json:"data"`
	}
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		log.Fatalf("read: %v", err)
	}
	fmt.Printf("  [%s] status=%s turn=%s watchers=%d\n", frame.Type, frame.Data.Status, frame.Data.TurnSeat(), frame.Data.Watchers)
	for _, row := range frame.Data.Board.Stones {
		fmt.Printf("    %s\n", row)
	}
}

func post(ctx context.Context, url, token string, body any) *http.Response {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(proto.HeaderSessionToken, token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	if resp.StatusCode >= 300 {
		var e proto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		resp.Body.Close()
		log.Fatalf("POST %s: %d %s (%s)", url, resp.StatusCode, e.Error, e.Code)
	}
	return resp
}

func join(ctx context.Context, base string, room int, seat core.Seat) (string, core.Snapshot) {
	resp := post(ctx, base+"/action", "", proto.ActionRequest{Action: proto.ActionJoin, Room: proto.RoomID(room), Seat: string(seat)})
	defer resp.Body.Close()
	var snap core.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		log.Fatalf("decode join: %v", err)
	}
	return resp.Header.Get(proto.HeaderSessionToken), snap
}

func move(ctx context.Context, base string, room int, token string, pos reversi.Pos) {
	resp := post(ctx, base+"/move", token, proto.MoveRequest{Room: proto.RoomID(room), Pos: pos.String()})
	resp.Body.Close()
}

func leave(ctx context.Context, base string, room int, token string) {
	resp := post(ctx, base+"/action", token, proto.ActionRequest{Action: proto.ActionLeave, Room: proto.RoomID(room)})
	resp.Body.Close()
}

func roomState(ctx context.Context, base string, room int) core.Snapshot {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/rooms/%d", base, room), nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("GET room: %v", err)
	}
	defer resp.Body.Close()
	var snap core.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		log.Fatalf("decode room: %v", err)
	}
	return snap
}
