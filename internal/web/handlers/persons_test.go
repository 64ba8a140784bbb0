package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/database/memory"
)

func enrollBody(t *testing.T, id, name string, embedding []float32) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(EnrollRequest{
		IdentityID:  id,
		DisplayName: name,
		Embedding:   embedding,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestPersonsEnroll(t *testing.T) {
	store := memory.NewEnrollmentStore()
	handler := NewPersonsHandler(store)

	req := httptest.NewRequest("POST", "/api/v1/persons", enrollBody(t, "emp-001", "Jana Dvořáková", []float32{0.1, 0.2, 0.3}))
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var person PersonResponse
	parseJSONResponse(t, recorder, &person)
	if person.IdentityID != "emp-001" {
		t.Errorf("expected identity emp-001, got %s", person.IdentityID)
	}
	if person.EmbeddingDim != 3 {
		t.Errorf("expected embedding_dim 3, got %d", person.EmbeddingDim)
	}
}

func TestPersonsEnrollDuplicate(t *testing.T) {
	store := memory.NewEnrollmentStore()
	enrollPerson(t, store, "emp-001", "Jana Dvořáková", []float32{0.1, 0.2, 0.3})
	handler := NewPersonsHandler(store)

	req := httptest.NewRequest("POST", "/api/v1/persons", enrollBody(t, "emp-001", "Someone Else", []float32{0.9, 0.8, 0.7}))
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusConflict)
	assertJSONError(t, recorder, "identity already enrolled")
}

func TestPersonsEnrollValidation(t *testing.T) {
	handler := NewPersonsHandler(memory.NewEnrollmentStore())

	tests := []struct {
		name    string
		request EnrollRequest
		wantMsg string
	}{
		{"missing identity", EnrollRequest{DisplayName: "X", Embedding: []float32{1}}, "identity_id is required"},
		{"missing name", EnrollRequest{IdentityID: "emp-001", Embedding: []float32{1}}, "display_name is required"},
		{"missing embedding", EnrollRequest{IdentityID: "emp-001", DisplayName: "X"}, "embedding is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest("POST", "/api/v1/persons", bytes.NewBuffer(body))
			recorder := httptest.NewRecorder()
			handler.Enroll(recorder, req)

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, tt.wantMsg)
		})
	}
}

func TestPersonsEnrollInvalidBody(t *testing.T) {
	handler := NewPersonsHandler(memory.NewEnrollmentStore())

	req := httptest.NewRequest("POST", "/api/v1/persons", bytes.NewBufferString("not json"))
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestPersonsList(t *testing.T) {
	store := memory.NewEnrollmentStore()
	enrollPerson(t, store, "emp-001", "Jana Dvořáková", []float32{0.1, 0.2})
	enrollPerson(t, store, "emp-002", "Petr Svoboda", []float32{0.3, 0.4})
	handler := NewPersonsHandler(store)

	req := httptest.NewRequest("GET", "/api/v1/persons", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var persons []PersonResponse
	parseJSONResponse(t, recorder, &persons)
	if len(persons) != 2 {
		t.Fatalf("expected 2 persons, got %d", len(persons))
	}
	if persons[0].IdentityID != "emp-001" || persons[1].IdentityID != "emp-002" {
		t.Errorf("unexpected order: %s, %s", persons[0].IdentityID, persons[1].IdentityID)
	}
}

func TestPersonsListStoreFailure(t *testing.T) {
	store := memory.NewEnrollmentStore()
	store.ListError = errors.New("boom")
	handler := NewPersonsHandler(store)

	req := httptest.NewRequest("GET", "/api/v1/persons", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}

func TestPersonsGet(t *testing.T) {
	store := memory.NewEnrollmentStore()
	enrollPerson(t, store, "emp-001", "Jana Dvořáková", []float32{0.1, 0.2})
	handler := NewPersonsHandler(store)

	req := httptest.NewRequest("GET", "/api/v1/persons/emp-001", nil)
	req = requestWithChiParams(req, map[string]string{"id": "emp-001"})
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var person PersonResponse
	parseJSONResponse(t, recorder, &person)
	if person.DisplayName != "Jana Dvořáková" {
		t.Errorf("expected display name Jana Dvořáková, got %s", person.DisplayName)
	}
}

func TestPersonsGetNotFound(t *testing.T) {
	handler := NewPersonsHandler(memory.NewEnrollmentStore())

	req := httptest.NewRequest("GET", "/api/v1/persons/ghost", nil)
	req = requestWithChiParams(req, map[string]string{"id": "ghost"})
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestPersonsReplace(t *testing.T) {
	store := memory.NewEnrollmentStore()
	enrollPerson(t, store, "emp-001", "Jana Dvořáková", []float32{0.1, 0.2})
	handler := NewPersonsHandler(store)

	body, _ := json.Marshal(ReplaceRequest{
		DisplayName: "Jana Nováková",
		Embedding:   []float32{0.5, 0.6},
	})
	req := httptest.NewRequest("PUT", "/api/v1/persons/emp-001", bytes.NewBuffer(body))
	req = requestWithChiParams(req, map[string]string{"id": "emp-001"})
	recorder := httptest.NewRecorder()
	handler.Replace(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	updated, err := store.Get(req.Context(), "emp-001")
	if err != nil || updated == nil {
		t.Fatalf("expected enrollment after replace, got %v, %v", updated, err)
	}
	if updated.DisplayName != "Jana Nováková" {
		t.Errorf("expected updated display name, got %s", updated.DisplayName)
	}
}

func TestPersonsReplaceCreatesWhenMissing(t *testing.T) {
	store := memory.NewEnrollmentStore()
	handler := NewPersonsHandler(store)

	body, _ := json.Marshal(ReplaceRequest{
		DisplayName: "Petr Svoboda",
		Embedding:   []float32{0.5, 0.6},
	})
	req := httptest.NewRequest("PUT", "/api/v1/persons/emp-new", bytes.NewBuffer(body))
	req = requestWithChiParams(req, map[string]string{"id": "emp-new"})
	recorder := httptest.NewRecorder()
	handler.Replace(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	created, err := store.Get(req.Context(), "emp-new")
	if err != nil || created == nil {
		t.Fatalf("expected enrollment after replace, got %v, %v", created, err)
	}
}

func TestPersonsDelete(t *testing.T) {
	store := memory.NewEnrollmentStore()
	enrollPerson(t, store, "emp-001", "Jana Dvořáková", []float32{0.1, 0.2})
	handler := NewPersonsHandler(store)

	req := httptest.NewRequest("DELETE", "/api/v1/persons/emp-001", nil)
	req = requestWithChiParams(req, map[string]string{"id": "emp-001"})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	gone, err := store.Get(req.Context(), "emp-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if gone != nil {
		t.Error("expected enrollment to be deleted")
	}
}

func TestPersonsDeleteUnknownIsNoop(t *testing.T) {
	handler := NewPersonsHandler(memory.NewEnrollmentStore())

	req := httptest.NewRequest("DELETE", "/api/v1/persons/ghost", nil)
	req = requestWithChiParams(req, map[string]string{"id": "ghost"})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
}
