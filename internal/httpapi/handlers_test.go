package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatmodeld/internal/manager"
	"chatmodeld/pkg/types"
)

func getPath(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHistoryDefaultLimit(t *testing.T) {
	recs := make([]types.GenerationRecord, 60)
	for i := range recs {
		recs[i] = types.GenerationRecord{ID: "g", ModelID: "m1"}
	}
	svc := &mockService{history: recs}
	w := getPath(t, NewMux(svc), "/history")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Generations) != 50 {
		t.Fatalf("expected default limit 50, got %d rows", len(body.Generations))
	}
}

func TestHistoryExplicitLimit(t *testing.T) {
	recs := make([]types.GenerationRecord, 10)
	svc := &mockService{history: recs}
	w := getPath(t, NewMux(svc), "/history?limit=3")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Generations) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(body.Generations))
	}
}

func TestHistoryLimitValidation(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	for _, q := range []string{"limit=0", "limit=-1", "limit=501", "limit=abc"} {
		w := getPath(t, h, "/history?"+q)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", q, w.Code)
		}
	}
}

func TestHistoryEmptyIsJSONArray(t *testing.T) {
	svc := &mockService{history: []types.GenerationRecord{}}
	w := getPath(t, NewMux(svc), "/history")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	if string(raw["generations"]) == "null" {
		t.Fatalf("generations must encode as [], got null")
	}
}

func TestPreflightReportsChecks(t *testing.T) {
	svc := &mockService{preflight: manager.SanityReport{
		LlamaBuilt: false,
		OK:         false,
		Models: []manager.ModelCheck{
			{ModelID: "m1", Runtime: "llamacpp", Path: "/x.gguf", OK: true},
			{ModelID: "m2", Runtime: "genie", Path: "/bundle", OK: false, Error: "engine config missing"},
		},
	}}
	w := getPath(t, NewMux(svc), "/preflight")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var rep manager.SanityReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rep.OK || len(rep.Models) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Models[1].Error == "" {
		t.Fatalf("expected failing check to carry its error")
	}
}
