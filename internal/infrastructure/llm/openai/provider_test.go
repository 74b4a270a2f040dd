package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dharti/dharti/bridge/internal/domain/service"
	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	llm "github.com/dharti/dharti/bridge/internal/infrastructure/llm"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(llm.ProviderConfig{
		Name:    "test",
		BaseURL: srv.URL,
		APIKey:  "test-key",
	}, zap.NewNop())
}

func TestGenerateTextAnswer(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama3-70b-8192" {
			t.Errorf("model = %q", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Model: "llama3-70b-8192",
			Choices: []Choice{
				{Message: Message{Role: "assistant", Content: "You have 3 products."}},
			},
			Usage: Usage{PromptTokens: 80, CompletionTokens: 10},
		})
	})

	resp, err := p.Generate(context.Background(), &service.LLMRequest{
		Model:    "llama3-70b-8192",
		Messages: []service.LLMMessage{{Role: "user", Content: "how many products?"}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "You have 3 products." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 90 {
		t.Errorf("TokensUsed = %d, want 90", resp.TokensUsed)
	}
	if len(resp.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %v, want none", resp.ToolCalls)
	}
}

func TestGenerateParsesToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "create_product" {
			t.Errorf("tools = %+v", req.Tools)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Model: "llama3-70b-8192",
			Choices: []Choice{
				{
					Message: Message{
						Role: "assistant",
						ToolCalls: []ToolCall{
							{
								ID:   "call_abc",
								Type: "function",
								Function: ToolCallFunc{
									Name:      "create_product",
									Arguments: `{"name":"Rice","price":120}`,
								},
							},
						},
					},
					FinishReason: "tool_calls",
				},
			},
			Usage: Usage{TotalTokens: 42},
		})
	})

	resp, err := p.Generate(context.Background(), &service.LLMRequest{
		Model:    "llama3-70b-8192",
		Messages: []service.LLMMessage{{Role: "user", Content: "add rice"}},
		Tools: []domaintool.Definition{
			{Name: "create_product", Description: "Create a new product.", Parameters: map[string]interface{}{"type": "object"}},
		},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %d, want 1", len(resp.ToolCalls))
	}
	tc := resp.ToolCalls[0]
	if tc.ID != "call_abc" || tc.Name != "create_product" {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.Arguments["name"] != "Rice" {
		t.Errorf("arguments = %v", tc.Arguments)
	}
}

func TestGenerateAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})

	_, err := p.Generate(context.Background(), &service.LLMRequest{Model: "llama3-70b-8192"})
	if err == nil {
		t.Fatal("Generate with 401 succeeded")
	}
}

func TestSupportsModel(t *testing.T) {
	open := New(llm.ProviderConfig{Name: "groq"}, zap.NewNop())
	if !open.SupportsModel("anything") {
		t.Error("provider with no model list should support any model")
	}

	pinned := New(llm.ProviderConfig{Name: "groq", Models: []string{"llama3-70b-8192"}}, zap.NewNop())
	if !pinned.SupportsModel("llama3-70b-8192") {
		t.Error("pinned model not supported")
	}
	if pinned.SupportsModel("gpt-4o") {
		t.Error("unlisted model supported")
	}
}

func TestConvertSchema(t *testing.T) {
	if got := ConvertSchema(nil); got["type"] != "object" {
		t.Errorf("nil schema type = %v", got["type"])
	}

	in := map[string]interface{}{"properties": map[string]interface{}{}}
	out := ConvertSchema(in)
	if out["type"] != "object" {
		t.Errorf("missing type not filled in: %v", out)
	}
	if _, ok := in["type"]; ok {
		t.Error("ConvertSchema mutated its input")
	}
}
