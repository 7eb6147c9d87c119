package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"review-transformer/internal/domain"
	"review-transformer/internal/session"
	"review-transformer/internal/transform"
)

// blockUntil builds a transform function that waits for release before
// succeeding.
func blockUntil(release <-chan struct{}) func(context.Context, []domain.Item, domain.Options) (transform.BatchResponse, error) {
	return func(_ context.Context, items []domain.Item, _ domain.Options) (transform.BatchResponse, error) {
		<-release
		results := make([]domain.ItemResult, 0, len(items))
		for _, item := range items {
			results = append(results, domain.ItemResult{ID: item.ID, Success: true, TransformedContent: "ok"})
		}
		return transform.BatchResponse{Success: true, Results: results}, nil
	}
}

// TestHandleStartSessionAccepted checks the async start response.
func TestHandleStartSessionAccepted(t *testing.T) {
	app := newTestApp(&fakeClient{})
	body := `{"items":[{"id":"r-1","content":"great product"}],"options":{"kind":"translate"}}`

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var sess domain.Session
	if err := json.NewDecoder(rec.Body).Decode(&sess); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}

	waitForState(t, app, domain.SessionStateCompleted)
}

// TestHandleStartSessionEmptyItemsIsNoOp checks the nothing-to-do response.
func TestHandleStartSessionEmptyItemsIsNoOp(t *testing.T) {
	app := newTestApp(&fakeClient{})
	body := `{"items":[],"options":{"kind":"enhance"}}`

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var ack StartAck
	if err := json.NewDecoder(rec.Body).Decode(&ack); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ack.Message != "nothing to do" {
		t.Fatalf("message = %q", ack.Message)
	}
	if got := app.CurrentSession().Session.State; got != domain.SessionStateIdle {
		t.Fatalf("state = %s, want idle", got)
	}
}

// TestHandleStartSessionConflict checks the overlapping-session rejection.
func TestHandleStartSessionConflict(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	app := newTestApp(&fakeClient{
		transform: blockUntil(release),
	})
	body := `{"items":[{"id":"r-1","content":"text"}],"options":{"kind":"translate"}}`

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

// TestHandleRequestCloseNoSession checks the redundant-close response.
func TestHandleRequestCloseNoSession(t *testing.T) {
	app := newTestApp(&fakeClient{})

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/close", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp CloseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "no active session" {
		t.Fatalf("message = %q", resp.Message)
	}
}

// TestHandleEvents checks incremental event reads.
func TestHandleEvents(t *testing.T) {
	app := newTestApp(&fakeClient{})
	if _, err := app.StartSession(makeItems(3), domain.Options{Kind: domain.TransformKindGenerate}); err != nil {
		t.Fatalf("start session: %v", err)
	}
	waitForState(t, app, domain.SessionStateCompleted)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?since=0", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var events []session.Event
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected events")
	}

	last := events[len(events)-1].Seq
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?since="+strconv.FormatInt(last, 10), nil))
	var rest []session.Event
	if err := json.NewDecoder(rec.Body).Decode(&rest); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("events after seq %d = %d, want 0", last, len(rest))
	}
}

// TestHandleEventsInvalidSince checks parameter validation.
func TestHandleEventsInvalidSince(t *testing.T) {
	app := newTestApp(&fakeClient{})

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?since=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
