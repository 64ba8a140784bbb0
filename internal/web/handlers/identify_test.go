package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database/memory"
	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// fakeEmbedder returns a fixed vector or error for every image.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ []byte) ([]float32, error) {
	return f.vector, f.err
}

func identifyBody(t *testing.T, embedding []float32) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(IdentifyRequest{Embedding: embedding})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func imageUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "probe.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte("fake jpeg bytes"))
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestIdentifyRecordsCheckIn(t *testing.T) {
	enrollments := memory.NewEnrollmentStore()
	ledger := memory.NewAttendanceStore()
	enrollPerson(t, enrollments, "emp-001", "Jana Dvořáková", []float32{1, 0, 0, 0})

	nine := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	handler := NewIdentifyHandler(testService(t, enrollments, ledger, nine), nil)

	req := httptest.NewRequest("POST", "/api/v1/identify", identifyBody(t, []float32{1, 0, 0, 0}))
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp IdentifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Outcome != "recorded" {
		t.Fatalf("expected recorded outcome, got %s (%s)", resp.Outcome, resp.Message)
	}
	if resp.Event == nil || resp.Event.Type != "CHECK_IN" {
		t.Errorf("expected a CHECK_IN event, got %+v", resp.Event)
	}
	if resp.DisplayName != "Jana Dvořáková" {
		t.Errorf("expected display name snapshot, got %s", resp.DisplayName)
	}

	events, err := ledger.List(req.Context())
	if err != nil {
		t.Fatalf("listing ledger failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected exactly one ledger write, got %d", len(events))
	}
}

func TestIdentifyNoMatchWritesNothing(t *testing.T) {
	enrollments := memory.NewEnrollmentStore()
	ledger := memory.NewAttendanceStore()
	enrollPerson(t, enrollments, "emp-001", "Jana Dvořáková", []float32{1, 0, 0, 0})

	nine := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	handler := NewIdentifyHandler(testService(t, enrollments, ledger, nine), nil)

	req := httptest.NewRequest("POST", "/api/v1/identify", identifyBody(t, []float32{0, 1, 0, 0}))
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp IdentifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Outcome != "no_match" {
		t.Fatalf("expected no_match outcome, got %s", resp.Outcome)
	}

	events, err := ledger.List(req.Context())
	if err != nil {
		t.Fatalf("listing ledger failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no ledger writes, got %d", len(events))
	}
}

func TestIdentifyRejectedOutsideWindows(t *testing.T) {
	enrollments := memory.NewEnrollmentStore()
	ledger := memory.NewAttendanceStore()
	enrollPerson(t, enrollments, "emp-001", "Jana Dvořáková", []float32{1, 0, 0, 0})

	twoPM := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	handler := NewIdentifyHandler(testService(t, enrollments, ledger, twoPM), nil)

	req := httptest.NewRequest("POST", "/api/v1/identify", identifyBody(t, []float32{1, 0, 0, 0}))
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp IdentifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Outcome != "rejected" {
		t.Fatalf("expected rejected outcome, got %s", resp.Outcome)
	}
	if resp.Message == "" {
		t.Error("expected a rejection message")
	}
	if resp.Event != nil {
		t.Errorf("expected no event, got %+v", resp.Event)
	}
}

func TestIdentifyMissingEmbedding(t *testing.T) {
	handler := NewIdentifyHandler(testService(t, memory.NewEnrollmentStore(), memory.NewAttendanceStore(), time.Now()), nil)

	req := httptest.NewRequest("POST", "/api/v1/identify", identifyBody(t, nil))
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "embedding is required")
}

func TestIdentifyImageUpload(t *testing.T) {
	enrollments := memory.NewEnrollmentStore()
	ledger := memory.NewAttendanceStore()
	enrollPerson(t, enrollments, "emp-001", "Jana Dvořáková", []float32{1, 0, 0, 0})

	nine := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	embedder := &fakeEmbedder{vector: []float32{1, 0, 0, 0}}
	handler := NewIdentifyHandler(testService(t, enrollments, ledger, nine), embedder)

	body, contentType := imageUpload(t)
	req := httptest.NewRequest("POST", "/api/v1/identify", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp IdentifyResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Outcome != "recorded" {
		t.Errorf("expected recorded outcome, got %s (%s)", resp.Outcome, resp.Message)
	}
}

func TestIdentifyImageUploadNoFaceDetected(t *testing.T) {
	embedder := &fakeEmbedder{err: embedding.ErrFaceNotDetected}
	handler := NewIdentifyHandler(testService(t, memory.NewEnrollmentStore(), memory.NewAttendanceStore(), time.Now()), embedder)

	body, contentType := imageUpload(t)
	req := httptest.NewRequest("POST", "/api/v1/identify", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestIdentifyImageUploadWithoutEmbedder(t *testing.T) {
	handler := NewIdentifyHandler(testService(t, memory.NewEnrollmentStore(), memory.NewAttendanceStore(), time.Now()), nil)

	body, contentType := imageUpload(t)
	req := httptest.NewRequest("POST", "/api/v1/identify", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}
