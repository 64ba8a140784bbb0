package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/memory"
)

// testWindow parses a window or fails the test.
func testWindow(t *testing.T, s string) attendance.Window {
	t.Helper()
	w, err := attendance.ParseWindow(s)
	if err != nil {
		t.Fatalf("failed to parse window %q: %v", s, err)
	}
	return w
}

// testService creates an identification service over in-memory stores with a
// fixed clock, so window decisions are deterministic.
func testService(t *testing.T, enrollments *memory.EnrollmentStore, ledger *memory.AttendanceStore, at time.Time) *attendance.Service {
	t.Helper()
	cfg := attendance.Config{
		Threshold: 0.8,
		CheckIn:   testWindow(t, "08:00-10:00"),
		CheckOut:  testWindow(t, "16:00-18:00"),
	}
	return attendance.NewService(enrollments, ledger, cfg).WithClock(func() time.Time { return at })
}

// enrollPerson seeds the store with one enrollment.
func enrollPerson(t *testing.T, store *memory.EnrollmentStore, id, name string, embedding []float32) {
	t.Helper()
	err := store.Enroll(context.Background(), database.Enrollment{
		IdentityID:  id,
		DisplayName: name,
		Embedding:   embedding,
		EnrolledAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to enroll %s: %v", id, err)
	}
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
