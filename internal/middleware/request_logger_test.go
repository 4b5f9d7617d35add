package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/reeltide/backend/internal/logging"
)

type countingRecorder struct {
	mu        sync.Mutex
	statuses  []int
	durations int
}

func (c *countingRecorder) RecordHTTPStatus(status int) {
	c.mu.Lock()
	c.statuses = append(c.statuses, status)
	c.mu.Unlock()
}

func (c *countingRecorder) RecordRequestDuration(time.Duration) {
	c.mu.Lock()
	c.durations++
	c.mu.Unlock()
}

func (c *countingRecorder) RecordFollowToggle(bool) {}
func (c *countingRecorder) RecordLikeToggle(bool)   {}
func (c *countingRecorder) RecordComment()          {}
func (c *countingRecorder) RecordView()             {}

func TestRequestLoggerInjectsContextLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := &countingRecorder{}

	var sawLogger bool
	handler := RequestLogger(logger, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !sawLogger {
		t.Fatal("request context missing logger")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d got %d", http.StatusTeapot, rec.Code)
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusTeapot {
		t.Fatalf("recorder saw statuses %v", recorder.statuses)
	}
	if recorder.durations != 1 {
		t.Fatalf("expected one duration sample got %d", recorder.durations)
	}
}

func TestRequestLoggerRecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := &countingRecorder{}

	handler := RequestLogger(logger, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d", http.StatusInternalServerError, rec.Code)
	}
}
