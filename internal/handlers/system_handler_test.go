package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"gopkg.in/yaml.v3"
)

type staticLLM struct {
	model string
}

func (s *staticLLM) Generate(ctx context.Context, req *interfaces.GenerationRequest) (string, error) {
	return "{}", nil
}

func (s *staticLLM) GetModelInfo() string { return s.model }

func (s *staticLLM) Close() error { return nil }

func TestHealthHandler(t *testing.T) {
	h := NewSystemHandler(&staticLLM{model: "perplexity:sonar"}, nil, common.GetLogger())

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.HealthHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", payload["status"])
	}
	if payload["model"] != "perplexity:sonar" {
		t.Errorf("model field = %v, want perplexity:sonar", payload["model"])
	}
	if _, ok := payload["scheduler"]; ok {
		t.Error("scheduler section present without a scheduler")
	}
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	h := NewSystemHandler(&staticLLM{}, nil, common.GetLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	h.HealthHandler(w, r)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestVersionHandler(t *testing.T) {
	h := NewSystemHandler(&staticLLM{}, nil, common.GetLogger())

	r := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	w := httptest.NewRecorder()
	h.VersionHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var payload map[string]string
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["version"] != common.Version {
		t.Errorf("version = %q, want %q", payload["version"], common.Version)
	}
}

func TestSpecHandler(t *testing.T) {
	h := NewSystemHandler(&staticLLM{}, nil, common.GetLogger())

	r := httptest.NewRequest(http.MethodGet, "/api/spec", nil)
	w := httptest.NewRecorder()
	h.SpecHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q, want application/yaml", ct)
	}

	var doc apiDoc
	if err := yaml.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if doc.Name != "finlearn" {
		t.Errorf("name = %q, want finlearn", doc.Name)
	}
	if len(doc.Endpoints) == 0 {
		t.Fatal("no endpoints documented")
	}
	for _, ep := range doc.Endpoints {
		if ep.Method == "" || !strings.HasPrefix(ep.Path, "/api/") {
			t.Errorf("malformed endpoint entry: %+v", ep)
		}
	}
}
