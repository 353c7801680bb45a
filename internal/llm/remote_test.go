package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRemoteProvider(t *testing.T, handler http.HandlerFunc) *RemoteProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	p, err := NewRemoteProvider(RemoteConfig{URL: server.URL + "/"}, server.Client())
	if err != nil {
		t.Fatalf("new remote provider: %v", err)
	}
	return p
}

func TestRemoteProvider_HappyPath(t *testing.T) {
	var got GenerateRequest
	p := newTestRemoteProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(GenerateResponse{Text: "A loop is a treadmill."})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:   "Be brief.",
		Messages: []Message{{Role: RoleUser, Content: "Explain loops"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "A loop is a treadmill." {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if got.Prompt != "Explain loops" || got.SystemInstruction != "Be brief." {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestRemoteProvider_ErrorBody(t *testing.T) {
	p := newTestRemoteProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorBody{Error: "Failed to get response from Gemini.", Details: "quota"})
	})

	_, err := p.Generate(context.Background(), UserText("", "hi"))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
	if !strings.Contains(err.Error(), "Failed to get response from Gemini.: quota") {
		t.Fatalf("expected server message in error, got %q", err.Error())
	}
}

func TestRemoteProvider_EmptyText(t *testing.T) {
	p := newTestRemoteProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{Text: "  "})
	})
	_, err := p.Generate(context.Background(), UserText("", "hi"))
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestNewRemoteProvider_RequiresURL(t *testing.T) {
	if _, err := NewRemoteProvider(RemoteConfig{}, nil); err == nil {
		t.Fatal("expected error for empty url")
	}
}
