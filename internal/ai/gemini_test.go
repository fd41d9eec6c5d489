package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, status int, body string, inspect func(r *http.Request, req generateRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) GenerateConfig {
	return GenerateConfig{
		BaseURL:         baseURL,
		APIKey:          "secret",
		Model:           "gemini-test",
		Temperature:     0.4,
		MaxOutputTokens: 256,
	}
}

func TestGenerateReturnsFirstCandidateText(t *testing.T) {
	srv := newTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Tenemos camisas azules."}]},"finishReason":"STOP"}]}`,
		func(r *http.Request, req generateRequest) {
			if r.URL.Path != "/models/gemini-test:generateContent" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("x-goog-api-key") != "secret" {
				t.Errorf("api key not sent in header")
			}
			if r.URL.RawQuery != "" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			if len(req.Contents) != 2 || req.Contents[0].Role != RoleUser || req.Contents[1].Role != RoleModel {
				t.Errorf("unexpected contents: %+v", req.Contents)
			}
			if req.GenerationConfig.Temperature != 0.4 || req.GenerationConfig.MaxOutputTokens != 256 {
				t.Errorf("unexpected generation config: %+v", req.GenerationConfig)
			}
			if len(req.SafetySettings) == 0 {
				t.Errorf("safety settings missing")
			}
		})

	client := NewGeminiClient(5 * time.Second)
	reply, err := client.Generate(context.Background(), testConfig(srv.URL), []Turn{
		{Role: RoleUser, Text: "hola"},
		{Role: RoleModel, Text: "hola, ¿en qué te ayudo?"},
	})
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}
	if reply != "Tenemos camisas azules." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestGenerateWithoutKeyIsNotConfigured(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.APIKey = " "
	_, err := NewGeminiClient(time.Second).Generate(context.Background(), cfg, []Turn{{Role: RoleUser, Text: "hola"}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGenerateBlockedResponses(t *testing.T) {
	bodies := map[string]string{
		"no candidates":   `{"candidates":[]}`,
		"safety finish":   `{"candidates":[{"content":{"parts":[{"text":"x"}]},"finishReason":"SAFETY"}]}`,
		"prompt feedback": `{"promptFeedback":{"blockReason":"SAFETY"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, body, nil)
			_, err := NewGeminiClient(time.Second).Generate(context.Background(), testConfig(srv.URL), []Turn{{Role: RoleUser, Text: "hola"}})
			if !errors.Is(err, ErrBlocked) {
				t.Fatalf("expected ErrBlocked, got %v", err)
			}
		})
	}
}

func TestGenerateMalformedResponses(t *testing.T) {
	bodies := map[string]string{
		"not json":   `<html>`,
		"no parts":   `{"candidates":[{"content":{"parts":[]},"finishReason":"STOP"}]}`,
		"empty text": `{"candidates":[{"content":{"parts":[{"text":"  "}]},"finishReason":"STOP"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, body, nil)
			_, err := NewGeminiClient(time.Second).Generate(context.Background(), testConfig(srv.URL), []Turn{{Role: RoleUser, Text: "hola"}})
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, nil)
	_, err := NewGeminiClient(time.Second).Generate(context.Background(), testConfig(srv.URL), []Turn{{Role: RoleUser, Text: "hola"}})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
	if errors.Is(err, ErrBlocked) || errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("transport failures must stay generic, got %v", err)
	}
}

func TestGenerateTransportErrorDoesNotExposeKey(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	cfg := testConfig(srv.URL)
	cfg.APIKey = "SECRET-KEY-123"
	_, err := NewGeminiClient(50*time.Millisecond).Generate(context.Background(), cfg, []Turn{{Role: RoleUser, Text: "hola"}})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Fatalf("api key present in error: %v", err)
	}
}
