package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	agent "github.com/tonioloewald/agent-99"
)

func TestHandleRunSuccess(t *testing.T) {
	srv := New(agent.NewVM(nil), agent.Capabilities{}, 0)
	body := `{"ast":{"op":"seq","steps":[
		{"op":"var.set","key":"a","value":1},
		{"op":"return","schema":["a"]}
	]},"args":{}}`

	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp runResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	out, ok := resp.Output.(map[string]any)
	if !ok || out["a"] != 1.0 {
		t.Errorf("expected output {a:1}, got %#v", resp.Output)
	}
}

func TestHandleRunMethodNotAllowed(t *testing.T) {
	srv := New(agent.NewVM(nil), agent.Capabilities{}, 0)
	req := httptest.NewRequest(http.MethodGet, "/run", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleRunBadJSON(t *testing.T) {
	srv := New(agent.NewVM(nil), agent.Capabilities{}, 0)
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRunVMErrorReportsUnprocessableEntity(t *testing.T) {
	srv := New(agent.NewVM(nil), agent.Capabilities{}, 0)
	body := `{"ast":{"op":"seq","steps":[{"op":"nonexistent.op"}]}}`
	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp runResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestHandleRunDefaultsFuelWhenOmitted(t *testing.T) {
	srv := New(agent.NewVM(nil), agent.Capabilities{}, 5)
	steps := make([]map[string]any, 10)
	for i := range steps {
		steps[i] = map[string]any{"op": "var.set", "key": "k", "value": i}
	}
	payload, _ := json.Marshal(map[string]any{"ast": map[string]any{"op": "seq", "steps": steps}})

	req := httptest.NewRequest(http.MethodPost, "/run", bytes.NewBuffer(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected the small default fuel to exhaust on 10 steps, got %d: %s", rec.Code, rec.Body.String())
	}
}
