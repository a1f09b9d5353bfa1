package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(url string) *Client {
	return New(Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Referer:  "http://localhost:3000",
		AppTitle: "Chatbot Platform",
		RPS:      1000,
		Burst:    1000,
	})
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		if got := r.Header.Get("X-Title"); got != "Chatbot Platform" {
			t.Errorf("unexpected X-Title header: %s", got)
		}

		var req chatCompletionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "openai/gpt-4o" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	out, err := client.Complete(context.Background(), "openai/gpt-4o", []Message{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hello!" {
		t.Errorf("expected %q, got %q", "Hello!", out)
	}
}

func TestComplete_DefaultsModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != fallbackModel {
			t.Errorf("expected fallback model %q, got %q", fallbackModel, req.Model)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if _, err := client.Complete(context.Background(), "", []Message{{Role: "user", Content: "Hi"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComplete_MissingKey(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "m", []Message{{Role: "user", Content: "Hi"}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no network call, got %d", calls)
	}
}

func TestComplete_UpstreamErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid model name"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Complete(context.Background(), "bogus", []Message{{Role: "user", Content: "Hi"}})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", upstream.Status)
	}
	if upstream.Message != "invalid model name" {
		t.Errorf("expected upstream message, got %q", upstream.Message)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"gen-1","choices":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Complete(context.Background(), "m", []Message{{Role: "user", Content: "Hi"}})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestComplete_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Complete(context.Background(), "m", []Message{{Role: "user", Content: "Hi"}})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestComplete_TransportError(t *testing.T) {
	client := testClient("http://127.0.0.1:1")
	_, err := client.Complete(context.Background(), "m", []Message{{Role: "user", Content: "Hi"}})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Unwrap() == nil {
		t.Error("expected wrapped transport error")
	}
}
