package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ternarybob/finlearn/internal/interfaces"
)

func TestRequireUserID(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		wantOK bool
	}{
		{"valid", "user-123", true},
		{"valid with underscore", "alice_smith", true},
		{"missing", "", false},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 65), false},
		{"invalid characters", "user 123", false},
		{"path traversal", "../etc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/test?user_id="+url.QueryEscape(tt.userID), nil)
			w := httptest.NewRecorder()

			got, ok := RequireUserID(w, r)
			if ok != tt.wantOK {
				t.Fatalf("RequireUserID ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.userID {
				t.Errorf("RequireUserID = %q, want %q", got, tt.userID)
			}
			if !ok && w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestWriteStorageError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", interfaces.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("get watchlist"), interfaces.ErrNotFound), http.StatusNotFound},
		{"already exists", interfaces.ErrAlreadyExists, http.StatusConflict},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteStorageError(w, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestQueryBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"T", true},
		{"false", false},
		{"yes", false},
		{"", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/test?refresh="+tt.value, nil)
		if got := QueryBool(r, "refresh"); got != tt.want {
			t.Errorf("QueryBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/test?limit=7", nil)
	if got := QueryInt(r, "limit", 5); got != 7 {
		t.Errorf("QueryInt = %d, want 7", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/test?limit=abc", nil)
	if got := QueryInt(r, "limit", 5); got != 5 {
		t.Errorf("QueryInt fallback = %d, want 5", got)
	}
}

func TestDecodeBodyValidation(t *testing.T) {
	type payload struct {
		UserID string `json:"user_id" validate:"required,min=3,max=64,userid"`
		Symbol string `json:"symbol" validate:"required"`
	}

	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{"valid", `{"user_id":"user-1","symbol":"AAPL"}`, true},
		{"malformed json", `{"user_id":`, false},
		{"missing symbol", `{"user_id":"user-1"}`, false},
		{"bad user id", `{"user_id":"u!","symbol":"AAPL"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/test", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var p payload
			if ok := DecodeBody(w, r, &p); ok != tt.wantOK {
				t.Fatalf("DecodeBody ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK && w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
