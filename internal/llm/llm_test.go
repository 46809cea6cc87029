package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	oaioption "github.com/openai/openai-go/option"
)

type reply struct {
	Key string `json:"key"`
	Num int    `json:"num"`
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  reply
	}{
		{"plain", `{"key": "value", "num": 42}`, reply{Key: "value", Num: 42}},
		{"fenced", "```json\n{\"key\": \"value\"}\n```", reply{Key: "value"}},
		{"surrounded", "Sure, here it is:\n{\"key\": \"v\", \"num\": 1}\nHope that helps.", reply{Key: "v", Num: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got reply
			if err := DecodeReply(tt.reply, &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestDecodeReplyErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  error
	}{
		{"empty", "", ErrEmptyReply},
		{"whitespace", "  \n ", ErrEmptyReply},
		{"empty fence", "```json\n```", ErrEmptyReply},
		{"prose", "not json at all", ErrNotJSON},
		{"broken", `{"key": `, ErrNotJSON},
		{"wrong type", `{"num": "many"}`, ErrNotJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got reply
			if err := DecodeReply(tt.reply, &got); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOllamaGenerate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"message": {"role": "assistant", "content": "hello"}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider("qwen2.5:7b", srv.URL+"/")
	out, err := p.Generate(context.Background(), "prompt", 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello" {
		t.Errorf("expected 'hello', got %q", out)
	}
	if gotBody["model"] != "qwen2.5:7b" {
		t.Errorf("expected model in request, got %v", gotBody["model"])
	}
}

func TestOllamaGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider("m", srv.URL)
	_, err := p.Generate(context.Background(), "prompt", 64)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("expected 500 error, got %v", err)
	}
}

func TestOllamaIsConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models": [{"name": "qwen2.5:7b"}]}`))
	}))
	defer srv.Close()

	if !NewOllamaProvider("qwen2.5:7b", srv.URL).IsConfigured() {
		t.Error("expected model to be found")
	}
	if NewOllamaProvider("llama3", srv.URL).IsConfigured() {
		t.Error("expected missing model to be unconfigured")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "summary"}}]
		}`))
	}))
	defer srv.Close()

	t.Setenv("FEEDPRESS_TEST_OPENAI_KEY", "test-key")
	p := NewOpenAIProvider("gpt-4o-mini", "FEEDPRESS_TEST_OPENAI_KEY", oaioption.WithBaseURL(srv.URL+"/"))
	out, err := p.Generate(context.Background(), "prompt", 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "summary" {
		t.Errorf("expected 'summary', got %q", out)
	}
}

func TestOpenAIUnconfigured(t *testing.T) {
	p := NewOpenAIProvider("gpt-4o-mini", "FEEDPRESS_TEST_UNSET_KEY")
	if p.IsConfigured() {
		t.Error("expected unconfigured provider")
	}
	if _, err := p.Generate(context.Background(), "prompt", 64); err == nil {
		t.Error("expected error without API key")
	}
}

func TestAnthropicUnconfigured(t *testing.T) {
	p := NewAnthropicProvider("claude-haiku-4-5", "FEEDPRESS_TEST_UNSET_KEY")
	if p.IsConfigured() {
		t.Error("expected unconfigured provider")
	}
	if _, err := p.Generate(context.Background(), "prompt", 64); err == nil {
		t.Error("expected error without API key")
	}
}
