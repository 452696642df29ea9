package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("wrong auth header: %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("wrong model: %v", body["model"])
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"first"}},{"message":{"content":"second"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "gpt-4o-mini", "sk-test")
	got, err := c.Complete(context.Background(), "say something", 100)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "first" {
		t.Fatalf("expected first choice, got %q", got)
	}
}

func TestCompleteSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "gpt-4o-mini", "sk-test")
	if _, err := c.Complete(context.Background(), "say something", 100); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestCompleteRequiresConfiguration(t *testing.T) {
	c := NewClient("", "gpt-4o-mini", "")
	if _, err := c.Complete(context.Background(), "say something", 100); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}

func TestMockShapesReplyToPrompt(t *testing.T) {
	var m Mock
	reply, err := m.Complete(context.Background(), `Respond with JSON: {"title": ..., "relevanceScore": ...}`, 200)
	if err != nil {
		t.Fatalf("mock returned error: %v", err)
	}
	var parsed struct {
		Title          string `json:"title"`
		RelevanceScore int    `json:"relevanceScore"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		t.Fatalf("mock clean reply is not JSON: %v", err)
	}
	if parsed.Title == "" || parsed.RelevanceScore == 0 {
		t.Fatalf("mock clean reply incomplete: %+v", parsed)
	}

	styled, err := m.Complete(context.Background(), "Rewrite this story in the presenter's voice", 200)
	if err != nil {
		t.Fatalf("mock returned error: %v", err)
	}
	if strings.HasPrefix(styled, "{") {
		t.Fatalf("styled reply should be prose, got %q", styled)
	}
}
