package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"blogwriter/internal/config"
	"blogwriter/internal/domain/models"
)

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		present bool
		value   *string
	}{
		{"absent", `{}`, false, nil},
		{"null", `{"title":null}`, true, nil},
		{"empty", `{"title":""}`, true, ptr("")},
		{"value", `{"title":"x"}`, true, ptr("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				Title OptionalString `json:"title"`
			}
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if req.Title.Present != tt.present {
				t.Errorf("Present = %v, want %v", req.Title.Present, tt.present)
			}
			if (req.Title.Value == nil) != (tt.value == nil) ||
				(tt.value != nil && *req.Title.Value != *tt.value) {
				t.Errorf("Value = %v, want %v", req.Title.Value, tt.value)
			}
		})
	}

	var bad struct {
		Title OptionalString `json:"title"`
	}
	if err := json.Unmarshal([]byte(`{"title":3}`), &bad); err == nil {
		t.Error("Unmarshal() accepted a number")
	}
}

func ptr(s string) *string { return &s }

func TestOptionalList(t *testing.T) {
	var req struct {
		Keywords Optional[[]string] `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(`{"keywords":["a","b"]}`), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !req.Keywords.Present || len(*req.Keywords.Value) != 2 {
		t.Errorf("Keywords = %+v", req.Keywords)
	}
	if err := json.Unmarshal([]byte(`{"keywords":"a"}`), &req); err == nil {
		t.Error("Unmarshal() accepted a string for a list")
	}
}

func TestParseJSON(t *testing.T) {
	var dest map[string]any
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	if err := ParseJSON(httptest.NewRecorder(), r, &dest); err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
	if err := ParseJSON(httptest.NewRecorder(), r, &dest); err == nil {
		t.Error("ParseJSON() accepted truncated JSON")
	}

	big := `{"a":"` + strings.Repeat("x", config.MaxRequestBytes) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	if err := ParseJSON(httptest.NewRecorder(), r, &dest); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("ParseJSON() error = %v, want ErrBodyTooLarge", err)
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusUnprocessableEntity, "bad", map[string]any{"violations": []string{"x"}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if body["detail"] != "bad" || body["status"] != float64(422) || body["violations"] == nil {
		t.Errorf("body = %v", body)
	}
	if !strings.Contains(body["type"].(string), "section-15.5.21") {
		t.Errorf("type = %v", body["type"])
	}
}

func TestClaimsContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if Claims(r) != nil || ClientID(r) != "" {
		t.Errorf("unauthenticated request: Claims() = %v, ClientID() = %q", Claims(r), ClientID(r))
	}

	claims := &models.APIClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "desktop", ID: "tok-1"}, Scope: "api"}
	r = WithClaims(r, claims)
	if got := Claims(r); got != claims {
		t.Errorf("Claims() = %v, want %v", got, claims)
	}
	if got := ClientID(r); got != "desktop" {
		t.Errorf("ClientID() = %q, want desktop", got)
	}
}
