package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"events-pipeline/event-generator/generator"
	"events-pipeline/event-generator/registry"
)

type fakePublisher struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakePublisher) Enqueue(ctx context.Context, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

func newTestServer(t *testing.T, pub Publisher) (*echo.Echo, *Server) {
	t.Helper()
	m := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { rc.Close() })
	s := NewServer(generator.New(), pub, registry.NewRedisRegistry(rc, time.Hour), "dev")
	e := echo.New()
	Register(e, s)
	return e, s
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSinglePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	e, _ := newTestServer(t, pub)

	rec := do(e, http.MethodPost, "/generate/single/order", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if pub.count() != 1 {
		t.Fatalf("published %d events, want 1", pub.count())
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(pub.bodies[0]), &payload); err != nil {
		t.Fatalf("published body is not JSON: %v", err)
	}
	if payload["event_type"] != "order" {
		t.Errorf("event_type = %v, want order", payload["event_type"])
	}
}

func TestSingleUnknownTypeRejected(t *testing.T) {
	pub := &fakePublisher{}
	e, _ := newTestServer(t, pub)

	rec := do(e, http.MethodPost, "/generate/single/telemetry", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if pub.count() != 0 {
		t.Fatalf("published %d events, want 0", pub.count())
	}
}

func TestBatchSplitsRateAcrossTypes(t *testing.T) {
	pub := &fakePublisher{}
	e, _ := newTestServer(t, pub)

	rec := do(e, http.MethodPost, "/generate/batch",
		`{"events_per_minute": 6, "event_types": ["order", "inventory"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		TotalEvents      int `json:"total_events"`
		SuccessfulEvents int `json:"successful_events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalEvents != 6 || resp.SuccessfulEvents != 6 {
		t.Fatalf("got %d/%d events, want 6/6", resp.SuccessfulEvents, resp.TotalEvents)
	}
	if pub.count() != 6 {
		t.Fatalf("published %d events, want 6", pub.count())
	}
}

func TestStartStatusStopLifecycle(t *testing.T) {
	pub := &fakePublisher{}
	e, _ := newTestServer(t, pub)

	rec := do(e, http.MethodPost, "/generate/start",
		`{"events_per_minute": 600, "duration_minutes": 1, "event_types": ["order"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", rec.Code)
	}
	var started struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(started.RunID, "task-") {
		t.Fatalf("run_id = %q, want task- prefix", started.RunID)
	}

	rec = do(e, http.MethodGet, "/generate/status/"+started.RunID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status lookup = %d, want 200", rec.Code)
	}
	var run registry.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatal(err)
	}
	if run.Status != registry.StatusRunning {
		t.Fatalf("run status = %q, want running", run.Status)
	}

	rec = do(e, http.MethodDelete, "/generate/stop/"+started.RunID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", rec.Code)
	}

	// The loop observes the stopped status on its next registry check.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec = do(e, http.MethodGet, "/generate/status/"+started.RunID, "")
		if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
			t.Fatal(err)
		}
		if run.Status == registry.StatusStopped {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if run.Status != registry.StatusStopped {
		t.Fatalf("run status = %q, want stopped", run.Status)
	}
}

func TestStatusUnknownRunNotFound(t *testing.T) {
	e, _ := newTestServer(t, &fakePublisher{})

	rec := do(e, http.MethodGet, "/generate/status/task-missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	rec = do(e, http.MethodDelete, "/generate/stop/task-missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stop status = %d, want 404", rec.Code)
	}
}

func TestSampleDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	e, _ := newTestServer(t, pub)

	rec := do(e, http.MethodGet, "/sample/user_activity", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if pub.count() != 0 {
		t.Fatalf("published %d events, want 0", pub.count())
	}
	var resp struct {
		Sample map[string]any `json:"sample_event"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Sample["event_type"] != "user_activity" {
		t.Errorf("sample event_type = %v, want user_activity", resp.Sample["event_type"])
	}
}

func TestScenarioEndpoints(t *testing.T) {
	e, _ := newTestServer(t, &fakePublisher{})

	rec := do(e, http.MethodGet, "/scenarios", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	rec = do(e, http.MethodGet, "/scenarios/light_demo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status = %d, want 200", rec.Code)
	}
	rec = do(e, http.MethodGet, "/scenarios/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown lookup status = %d, want 404", rec.Code)
	}

	rec = do(e, http.MethodPost, "/scenarios/quick_sample/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("scenario start status = %d, want 200", rec.Code)
	}
	var started struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(started.RunID, "scenario-quick_sample-") {
		t.Fatalf("run_id = %q, want scenario-quick_sample- prefix", started.RunID)
	}
	do(e, http.MethodDelete, "/generate/stop/"+started.RunID, "")
}

func TestStopAllStopsOnlyRunning(t *testing.T) {
	pub := &fakePublisher{}
	e, s := newTestServer(t, pub)
	ctx := context.Background()

	done := time.Now().UTC()
	if err := s.runs.Put(ctx, registry.Run{ID: "task-a", Status: registry.StatusRunning, StartTime: done}); err != nil {
		t.Fatal(err)
	}
	if err := s.runs.Put(ctx, registry.Run{ID: "task-b", Status: registry.StatusCompleted, StartTime: done, EndTime: &done}); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodDelete, "/generate/stop", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Stopped []string `json:"stopped_runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Stopped) != 1 || resp.Stopped[0] != "task-a" {
		t.Fatalf("stopped = %v, want [task-a]", resp.Stopped)
	}

	run, err := s.runs.Get(ctx, "task-b")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != registry.StatusCompleted {
		t.Errorf("task-b status = %q, want completed", run.Status)
	}
}
