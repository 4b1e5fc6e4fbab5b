package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/config"
	"github.com/vovakirdan/reversi-server/internal/core"
	"github.com/vovakirdan/reversi-server/internal/proto"
	"github.com/vovakirdan/reversi-server/internal/store"
)

type testServer struct {
	*httptest.Server
	registry *core.Registry
}

func startTestServer(t *testing.T, mutate func(*config.Config), results store.ResultStore) *testServer {
	t.Helper()

	registry := core.NewRegistry(core.NewTokenStore(), core.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		registry.Run(ctx)
		close(done)
	}()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.New(nil)
	server := NewServer(registry, results, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})

	return &testServer{Server: ts, registry: registry}
}

func (s *testServer) post(t *testing.T, path, body string, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, s.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *testServer) join(t *testing.T, room int, seat string) (string, core.Snapshot) {
	t.Helper()

	body, _ := json.Marshal(map[string]any{"action": "join", "room": room, "seat": seat})
	resp := s.post(t, "/action", string(body), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status: %d", resp.StatusCode)
	}
	return resp.Header.Get(proto.HeaderSessionToken), decode[core.Snapshot](t, resp.Body)
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d", status, resp.StatusCode)
	}
	body := decode[proto.ErrorResponse](t, resp.Body)
	if body.Code != code {
		t.Fatalf("expected code %q, got %+v", code, body)
	}
}

type sseFrame struct {
	event string
	data  []byte
	// lines holds the field lines exactly as received.
	lines []string
}

// openStream issues a GET on an SSE endpoint and returns decoded frames.
// Cancelling the returned func disconnects the client.
func openStream(t *testing.T, s *testServer, query string) (<-chan sseFrame, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL+"/subscribe?"+query, nil)
	if err != nil {
		cancel()
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := s.Client().Do(req)
	if err != nil {
		cancel()
		t.Fatalf("subscribe: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		cancel()
		_ = resp.Body.Close()
		t.Fatalf("subscribe status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	frames := make(chan sseFrame, 16)
	go func() {
		defer close(frames)
		defer resp.Body.Close()
		reader := bufio.NewReader(resp.Body)
		var frame sseFrame
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			switch {
			case line == "":
				if frame.event != "" || frame.data != nil {
					select {
					case frames <- frame:
					case <-ctx.Done():
						return
					}
				}
				frame = sseFrame{}
			case strings.HasPrefix(line, ":"):
				// keepalive comment
			case strings.HasPrefix(line, "event:"):
				frame.lines = append(frame.lines, line)
				frame.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				frame.lines = append(frame.lines, line)
				frame.data = append(frame.data, bytes.TrimSpace([]byte(strings.TrimPrefix(line, "data:")))...)
			}
		}
	}()
	t.Cleanup(cancel)
	return frames, cancel
}

func nextFrame(t *testing.T, frames <-chan sseFrame) sseFrame {
	t.Helper()
	select {
	case f, ok := <-frames:
		if !ok {
			t.Fatalf("stream closed")
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame received")
	}
	return sseFrame{}
}

func nextSnapshot(t *testing.T, frames <-chan sseFrame, match func(core.Snapshot) bool) core.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				t.Fatalf("stream closed")
			}
			if f.event != proto.EventRoomState {
				t.Fatalf("unexpected event %q", f.event)
			}
			snap := decode[core.Snapshot](t, bytes.NewReader(f.data))
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("expected snapshot not received")
		}
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}
