package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/rss-desk/app/events"
	"github.com/lysyi3m/rss-desk/app/tasks"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	env.createFeed(t, "alpha")

	rec := env.do(t, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", rec.Code)
	}

	body := decode[map[string]any](t, rec)
	if body["ok"] != true {
		t.Errorf("Expected ok=true, got: %v", body["ok"])
	}
	if body["feeds"] != float64(1) {
		t.Errorf("Expected feeds=1, got: %v", body["feeds"])
	}
}

func TestGetFetchStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/fetch/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", rec.Code)
	}

	body := decode[map[string]any](t, rec)
	if body["at"] != nil || body["error"] != nil {
		t.Errorf("Expected empty status before any run, got: %v", body)
	}
	if body["totalNew"] != float64(0) {
		t.Errorf("Expected totalNew=0, got: %v", body["totalNew"])
	}

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	durationMs := int64(1234)
	env.runner.status = tasks.Status{At: &at, DurationMs: &durationMs, TotalNew: 7}

	body = decode[map[string]any](t, env.do(t, http.MethodGet, "/api/fetch/status", nil))
	if body["at"] != "2024-05-01T10:00:00Z" {
		t.Errorf("Expected at timestamp, got: %v", body["at"])
	}
	if body["durationMs"] != float64(1234) || body["totalNew"] != float64(7) {
		t.Errorf("Expected durationMs=1234 totalNew=7, got: %v", body)
	}
}

func TestRunFetch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/fetch/run", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", rec.Code)
	}
	if decode[map[string]any](t, rec)["ok"] != true {
		t.Errorf("Expected ok=true, got: %s", rec.Body.String())
	}
	if env.runner.Calls() != 1 {
		t.Errorf("Expected 1 run, got: %d", env.runner.Calls())
	}
	if env.guard.Running() {
		t.Error("Expected guard to be released after the run")
	}
}

func TestRunFetchRejectsConcurrentTrigger(t *testing.T) {
	env := newTestEnv(t)
	env.runner.release = make(chan struct{})

	var wg sync.WaitGroup
	var first *httptest.ResponseRecorder
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = env.do(t, http.MethodPost, "/api/fetch/run", nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !env.guard.Running() {
		if time.Now().After(deadline) {
			t.Fatal("Expected first run to start")
		}
		time.Sleep(time.Millisecond)
	}

	second := env.do(t, http.MethodPost, "/api/fetch/run", nil)
	if second.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got: %d", second.Code)
	}
	if msg := errorMessage(t, second); msg != "Fetch already running" {
		t.Errorf("Expected 'Fetch already running', got: %s", msg)
	}

	close(env.runner.release)
	wg.Wait()

	if first.Code != http.StatusOK {
		t.Errorf("Expected first run status 200, got: %d", first.Code)
	}
	if env.runner.Calls() != 1 {
		t.Errorf("Expected rejected trigger not to be queued, got %d runs", env.runner.Calls())
	}
}

func TestRunFetchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.runner.err = errBoom

	rec := env.do(t, http.MethodPost, "/api/fetch/run", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got: %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "boom" {
		t.Errorf("Expected error 'boom', got: %s", msg)
	}
}

func TestRefreshLogosEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.refresher.updated = 3

	rec := env.do(t, http.MethodPost, "/api/feeds/logos/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got: %d", rec.Code)
	}
	if decode[map[string]any](t, rec)["updated"] != float64(3) {
		t.Errorf("Expected updated=3, got: %s", rec.Body.String())
	}

	env.refresher.err = errBoom
	if rec := env.do(t, http.MethodPost, "/api/feeds/logos/refresh", nil); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got: %d", rec.Code)
	}
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, reader *bufio.Reader) sseEvent {
	t.Helper()

	var ev sseEvent
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Expected event stream to stay open, got: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if ev.name != "" || ev.data != "" {
				return ev
			}
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func waitForSubscribers(t *testing.T, bus *events.Bus, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for bus.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d subscribers, got: %d", want, bus.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamEvents(t *testing.T) {
	env := newTestEnv(t)
	env.handler.keepAlive = time.Hour

	server := httptest.NewServer(env.router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("Expected no error building request, got: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Expected no error connecting, got: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Expected text/event-stream, got: %s", ct)
	}

	reader := bufio.NewReader(resp.Body)

	connected := readEvent(t, reader)
	var msg events.Message
	if err := json.Unmarshal([]byte(connected.data), &msg); err != nil {
		t.Fatalf("Expected JSON payload, got %q: %v", connected.data, err)
	}
	if connected.name != "update" || msg.Event != "connected" {
		t.Errorf("Expected update/connected, got: %s/%s", connected.name, msg.Event)
	}

	// one recorder from newTestEnv plus the stream
	waitForSubscribers(t, env.bus, 2)

	env.bus.Publish(events.FetchCompleted, map[string]int{"totalNew": 4})

	update := readEvent(t, reader)
	if err := json.Unmarshal([]byte(update.data), &msg); err != nil {
		t.Fatalf("Expected JSON payload, got %q: %v", update.data, err)
	}
	if update.name != "update" || msg.Event != events.FetchCompleted {
		t.Errorf("Expected update/%s, got: %s/%s", events.FetchCompleted, update.name, msg.Event)
	}
	if data, ok := msg.Data.(map[string]any); !ok || data["totalNew"] != float64(4) {
		t.Errorf("Expected totalNew=4 in payload, got: %v", msg.Data)
	}

	cancel()
	waitForSubscribers(t, env.bus, 1)
}

func TestStreamEventsKeepAlive(t *testing.T) {
	env := newTestEnv(t)

	server := httptest.NewServer(env.router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Expected no error connecting, got: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent(t, reader)

	ping := readEvent(t, reader)
	if ping.name != "ping" {
		t.Errorf("Expected ping event, got: %s", ping.name)
	}
	if ping.data != "{}" {
		t.Errorf("Expected empty ping payload, got: %s", ping.data)
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	env.router = NewServer(env.handler, "secret")

	if rec := env.do(t, http.MethodGet, "/api/feeds", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected reads to stay open, got: %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/fetch/run", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without key, got: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/fetch/run", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with wrong key, got: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/fetch/run", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bearer key, got: %d", rec.Code)
	}
}
