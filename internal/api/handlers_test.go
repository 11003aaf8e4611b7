package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/everforgeworks/outrider/internal/game"
)

func newTestServer(t *testing.T, mutate func(*game.Config)) (*Server, http.Handler) {
	t.Helper()
	cfg := game.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)
	g := game.NewGame(cfg, game.Options{Rand: game.NewRand(1), Notifier: hub})
	s := NewServer(ctx, g, game.NewScheduler(g), hub)
	return s, s.Routes()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetState(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(h, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/state: expected 200 got %d", rec.Code)
	}
	var snap game.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Phase != game.PhaseRunning || snap.MapTimer != 330 || len(snap.Slots) != 8 {
		t.Fatalf("snapshot: unexpected phase %s timer %d slots %d", snap.Phase, snap.MapTimer, len(snap.Slots))
	}
}

func TestCraftThenCooldown(t *testing.T) {
	_, h := newTestServer(t, nil)

	if rec := do(h, http.MethodPost, "/api/craft/sail", ""); rec.Code != http.StatusOK {
		t.Fatalf("craft: expected 200 got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/craft/sail", ""); rec.Code != http.StatusConflict {
		t.Fatalf("craft on cooldown: expected 409 got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/craft/sail", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET craft: expected 405 got %d", rec.Code)
	}
}

func TestCraftBatteryNeedsLightyears(t *testing.T) {
	_, h := newTestServer(t, nil)
	if rec := do(h, http.MethodPost, "/api/craft/battery", ""); rec.Code != http.StatusPaymentRequired {
		t.Fatalf("battery: expected 402 got %d", rec.Code)
	}
}

func TestRemoveSlot(t *testing.T) {
	_, h := newTestServer(t, nil)
	do(h, http.MethodPost, "/api/craft/sail", "")

	if rec := do(h, http.MethodPost, "/api/slots/remove", `{"index": 5}`); rec.Code != http.StatusNotFound {
		t.Fatalf("remove empty slot: expected 404 got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/slots/remove", `{"index": 0}`); rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200 got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/slots/remove", `{index`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400 got %d", rec.Code)
	}
}

func TestDebugEndpoints(t *testing.T) {
	_, h := newTestServer(t, nil)
	if rec := do(h, http.MethodPost, "/api/debug/lightyears", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("debug disabled: expected 403 got %d", rec.Code)
	}

	_, h = newTestServer(t, func(cfg *game.Config) { cfg.Debug = true })
	rec := do(h, http.MethodPost, "/api/debug/lightyears", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("debug enabled: expected 200 got %d", rec.Code)
	}
	var snap game.Snapshot
	json.NewDecoder(rec.Body).Decode(&snap)
	if snap.Lightyears != 250000 {
		t.Fatalf("mint: expected 250000 got %d", snap.Lightyears)
	}
}

func TestEncounterEndpoints(t *testing.T) {
	_, h := newTestServer(t, nil)

	if rec := do(h, http.MethodPost, "/api/encounter/decide", `{"risk": true}`); rec.Code != http.StatusConflict {
		t.Fatalf("decide without encounter: expected 409 got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/encounter/dismiss", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss: expected 204 got %d", rec.Code)
	}
	rec := do(h, http.MethodGet, "/api/encounter", "")
	var resp EncounterResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Encounter != nil || resp.LastResult != nil {
		t.Fatalf("encounter: expected none got %+v", resp)
	}
}

func TestNextMapBeforeWin(t *testing.T) {
	_, h := newTestServer(t, nil)
	if rec := do(h, http.MethodPost, "/api/map/next", ""); rec.Code != http.StatusConflict {
		t.Fatalf("next map: expected 409 got %d", rec.Code)
	}
}

func TestWarpEndpointsWhileIdle(t *testing.T) {
	_, h := newTestServer(t, nil)
	if rec := do(h, http.MethodPost, "/api/warp/input", `{"value": 40}`); rec.Code != http.StatusConflict {
		t.Fatalf("warp input idle: expected 409 got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/warp/out", ""); rec.Code != http.StatusConflict {
		t.Fatalf("warp out idle: expected 409 got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/blackhole", ""); rec.Code != http.StatusPaymentRequired {
		t.Fatalf("blackhole: expected 402 got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := NewIPRateLimiter(1, 2).Middleware(ok)

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(h, http.MethodGet, "/api/state", "").Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("limiter: expected 200 200 429 got %v", codes)
	}
}

func TestWebsocketCommandReply(t *testing.T) {
	_, h := newTestServer(t, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Inbound{Type: "warp_out"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Sender != "hub" {
			continue
		}
		if msg.Type != "error" {
			t.Fatalf("reply: expected error got %s", msg.Type)
		}
		return
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for range 2 * sendBufferSize {
			hub.Publish(game.Event{Type: game.EventMarket})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish: expected to drop events instead of blocking")
	}
}

func TestRateLimiterSweepsIdleAddresses(t *testing.T) {
	l := NewIPRateLimiter(10, 10)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, addr := range []string{"192.0.2.1:1000", "192.0.2.2:1000", "192.0.2.1:2000"} {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		req.RemoteAddr = addr
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if l.Len() != 2 {
		t.Fatalf("Len: expected 2 addresses got %d", l.Len())
	}
	if n := l.Sweep(time.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("Sweep: expected recent addresses to stay, dropped %d", n)
	}
	if n := l.Sweep(time.Now().Add(time.Second)); n != 2 || l.Len() != 0 {
		t.Fatalf("Sweep: expected both idle addresses dropped got %d (left %d)", n, l.Len())
	}
}
