package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-wayfinder/pkg/detection"
	"github.com/teslashibe/go-wayfinder/pkg/pipeline"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
	"github.com/teslashibe/go-wayfinder/pkg/source"
)

func newTestServer(t *testing.T) (*Server, *pipeline.Pipeline) {
	t.Helper()
	p := pipeline.New(nil, detection.NewScripted(), nil, pipeline.DefaultConfig())
	s := NewServer(p, Config{FrameEvery: 3})
	t.Cleanup(func() {
		s.Close()
		p.Close()
	})
	return s, p
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s, p := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, p.ID(), body["run_id"])

	ctrl := body["control"].(map[string]any)
	assert.Equal(t, false, ctrl["paused"])
	assert.Equal(t, 3.0, ctrl["fusion_cooldown_seconds"])
}

func TestControl(t *testing.T) {
	s, p := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/api/control", `{"kind":"pause"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["paused"])
	assert.True(t, p.Snapshot().Paused)

	code, body = do(t, s, http.MethodPost, "/api/control", `{"kind":"set_threshold","value":{"tracker_iou_threshold":0.5,"fusion_cooldown_seconds":1.5}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.5, body["tracker_iou_threshold"])
	assert.Equal(t, 1.5, body["fusion_cooldown_seconds"])

	code, body = do(t, s, http.MethodGet, "/api/control", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.5, body["tracker_iou_threshold"])
}

func TestControl_Rejected(t *testing.T) {
	s, p := newTestServer(t)
	before := p.Snapshot()

	tests := []struct {
		name string
		body string
	}{
		{"unknown kind", `{"kind":"rewind"}`},
		{"negative cooldown", `{"kind":"set_threshold","value":{"fusion_cooldown_seconds":-1}}`},
		{"zero speed", `{"kind":"speed","value":{"speed":0}}`},
		{"malformed", `{"kind":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, s, http.MethodPost, "/api/control", tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Equal(t, before, p.Snapshot())
}

func TestScene_EmptyIsNoContent(t *testing.T) {
	s, _ := newTestServer(t)
	code, _ := do(t, s, http.MethodGet, "/api/scene", "")
	assert.Equal(t, http.StatusNoContent, code)
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, source.WriteFrameDir(filepath.Join(dir, "hallway"), source.Info{FPS: 30}, [][]byte{[]byte("a")}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "walk.mp4"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), nil, 0o644))

	tests := []struct {
		name string
		dir  string
		want []any
	}{
		{
			name: "samples",
			dir:  dir,
			want: []any{
				map[string]any{"name": "hallway", "path": filepath.Join(dir, "hallway"), "kind": "frames"},
				map[string]any{"name": "walk.mp4", "path": filepath.Join(dir, "walk.mp4"), "kind": "video"},
			},
		},
		{name: "missing", dir: filepath.Join(dir, "absent"), want: []any{}},
		{name: "unset", dir: "", want: []any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := pipeline.New(nil, detection.NewScripted(), nil, pipeline.DefaultConfig())
			s := NewServer(p, Config{SamplesDir: tc.dir})
			t.Cleanup(func() {
				s.Close()
				p.Close()
			})

			code, body := do(t, s, http.MethodGet, "/api/sources", "")
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tc.want, body["sources"])
		})
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t)
	code, body := do(t, s, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "pipeline")

	hubs := body["hubs"].(map[string]any)
	assert.Contains(t, hubs, "events")
	assert.Contains(t, hubs, "frames")
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func serve(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(shutdownTimeout + time.Second):
			t.Error("server did not stop")
		}
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr, path string) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial("ws://"+addr+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocket_Events(t *testing.T) {
	s, p := newTestServer(t)
	conn := dial(t, serve(t, s), "/ws/events")
	waitFor(t, func() bool { return s.eventHub.ClientCount() == 1 })

	want := protocol.SceneDescription{TimestampMs: 42, Description: "One object detected: a chair on the left", ObjectCount: 1, TrackIDs: []int{1}}
	require.NoError(t, p.Events().Publish(want))

	kind, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, gws.TextMessage, kind)

	msg, err := protocol.ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeScene, msg.Type)

	var got protocol.SceneDescription
	require.NoError(t, msg.ParseData(&got))
	assert.Equal(t, want, got)
}

func TestWebSocket_FramesAreDecimated(t *testing.T) {
	s, p := newTestServer(t)
	conn := dial(t, serve(t, s), "/ws/frames")
	waitFor(t, func() bool { return s.frameHub.ClientCount() == 1 })

	require.NoError(t, p.Frames().Publish(protocol.FramePacket{FrameID: 1, JPEG: []byte("skip")}))
	require.NoError(t, p.Frames().Publish(protocol.FramePacket{FrameID: 3, JPEG: []byte("keep")}))

	kind, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, gws.BinaryMessage, kind)
	assert.Equal(t, []byte("keep"), raw)
}
