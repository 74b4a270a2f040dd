package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	"go.uber.org/zap"
)

// scriptedLLM replays a fixed sequence of proposals. When the script
// runs out it either repeats the last proposal or answers with plain
// text, depending on repeatLast.
type scriptedLLM struct {
	responses  []*LLMResponse
	err        error
	repeatLast bool
	calls      int
}

func (s *scriptedLLM) Generate(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	idx := s.calls
	s.calls++

	if s.err != nil {
		return nil, s.err
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	if s.repeatLast && len(s.responses) > 0 {
		return s.responses[len(s.responses)-1], nil
	}
	return &LLMResponse{Content: "done", ModelUsed: "test-model"}, nil
}

// scriptedExecutor records dispatches and returns canned results.
type scriptedExecutor struct {
	tools    map[string]domaintool.Tool
	results  map[string]*domaintool.Result
	executed []string
}

func newScriptedExecutor(tools ...domaintool.Tool) *scriptedExecutor {
	m := make(map[string]domaintool.Tool, len(tools))
	for _, t := range tools {
		m[t.Name()] = t
	}
	return &scriptedExecutor{
		tools:   m,
		results: make(map[string]*domaintool.Result),
	}
}

func (e *scriptedExecutor) Execute(ctx context.Context, name string, args map[string]interface{}) (*domaintool.Result, error) {
	e.executed = append(e.executed, name)
	if r, ok := e.results[name]; ok {
		return r, nil
	}
	return &domaintool.Result{Output: "{}", Success: true}, nil
}

func (e *scriptedExecutor) Definitions() []domaintool.Definition {
	defs := make([]domaintool.Definition, 0, len(e.tools))
	for _, t := range e.tools {
		defs = append(defs, domaintool.Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return defs
}

func (e *scriptedExecutor) Lookup(name string) (domaintool.Tool, bool) {
	t, ok := e.tools[name]
	return t, ok
}

func testLoopConfig() AgentLoopConfig {
	cfg := DefaultAgentLoopConfig()
	cfg.MaxRetries = 1
	cfg.RetryBaseWait = time.Millisecond
	cfg.ToolTimeout = time.Second
	return cfg
}

func runLoopToEnd(t *testing.T, loop *AgentLoop, prompt string) (*AgentResult, []entity.AgentEvent) {
	t.Helper()

	result, eventCh := loop.Run(context.Background(), "system", prompt)
	var events []entity.AgentEvent
	for ev := range eventCh {
		events = append(events, ev)
	}
	return result, events
}

func hasEvent(events []entity.AgentEvent, typ entity.AgentEventType) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestAgentLoopPlainAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{
		{Content: "You have no products yet.", ModelUsed: "test-model", TokensUsed: 12},
	}}
	exec := newScriptedExecutor()
	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())

	result, events := runLoopToEnd(t, loop, "what do I have?")

	if result.Outcome != OutcomeComplete {
		t.Fatalf("Outcome = %q, want %q", result.Outcome, OutcomeComplete)
	}
	if result.FinalContent != "You have no products yet." {
		t.Errorf("FinalContent = %q", result.FinalContent)
	}
	if result.TotalSteps != 1 {
		t.Errorf("TotalSteps = %d, want 1", result.TotalSteps)
	}
	if result.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d, want 12", result.TotalTokens)
	}
	if !hasEvent(events, entity.EventDone) {
		t.Error("no done event emitted")
	}
	if len(exec.executed) != 0 {
		t.Errorf("tools executed: %v, want none", exec.executed)
	}
}

func TestAgentLoopToolRoundtrip(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{
		{
			ToolCalls: []entity.ToolCallInfo{
				{ID: "call_1", Name: "get_all_catalogs", Arguments: map[string]interface{}{}},
			},
			ModelUsed: "test-model",
		},
		{Content: "You have two catalogs: Spices and Grains.", ModelUsed: "test-model"},
	}}

	exec := newScriptedExecutor(&fakeTool{name: "get_all_catalogs", kind: domaintool.KindRead})
	exec.results["get_all_catalogs"] = &domaintool.Result{
		Output:  `[{"id":1,"title":"Spices"},{"id":2,"title":"Grains"}]`,
		Success: true,
	}

	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())
	result, events := runLoopToEnd(t, loop, "show my catalogs")

	if result.Outcome != OutcomeComplete {
		t.Fatalf("Outcome = %q, want complete", result.Outcome)
	}
	if len(exec.executed) != 1 || exec.executed[0] != "get_all_catalogs" {
		t.Errorf("executed = %v, want [get_all_catalogs]", exec.executed)
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != "get_all_catalogs" {
		t.Errorf("ToolsUsed = %v", result.ToolsUsed)
	}
	if !hasEvent(events, entity.EventToolCall) || !hasEvent(events, entity.EventToolResult) {
		t.Error("tool call/result events missing")
	}
}

func TestAgentLoopEmptyListIsAnAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{
		{
			ToolCalls: []entity.ToolCallInfo{
				{ID: "call_1", Name: "get_all_products", Arguments: map[string]interface{}{}},
			},
			ModelUsed: "test-model",
		},
		{Content: "You have no products yet. Want to add one?", ModelUsed: "test-model"},
	}}

	exec := newScriptedExecutor(&fakeTool{name: "get_all_products", kind: domaintool.KindRead})
	exec.results["get_all_products"] = &domaintool.Result{Output: `[]`, Success: true}

	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())
	result, _ := runLoopToEnd(t, loop, "show my products")

	if result.Outcome != OutcomeComplete {
		t.Fatalf("Outcome = %q, want complete", result.Outcome)
	}
	if !strings.Contains(result.FinalContent, "no products") {
		t.Errorf("FinalContent = %q", result.FinalContent)
	}
}

func TestAgentLoopClarificationStopsRun(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{
		{
			ToolCalls: []entity.ToolCallInfo{
				{ID: "call_1", Name: "create_product", Arguments: map[string]interface{}{
					"name": "Basmati Rice",
					"user": 1.0,
				}},
			},
			ModelUsed: "test-model",
		},
	}}

	exec := newScriptedExecutor(&fakeTool{
		name:     "create_product",
		kind:     domaintool.KindCreate,
		required: []string{"name", "price", "stock_qty", "user"},
	})

	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())
	result, events := runLoopToEnd(t, loop, "add basmati rice")

	if result.Outcome != OutcomeAwaitingUser {
		t.Fatalf("Outcome = %q, want awaiting_user", result.Outcome)
	}
	// The mutating call must never reach dispatch with missing fields.
	if len(exec.executed) != 0 {
		t.Fatalf("executed = %v, want none", exec.executed)
	}
	for _, want := range []string{"price", "stock quantity"} {
		if !strings.Contains(result.FinalContent, want) {
			t.Errorf("clarification %q does not mention %q", result.FinalContent, want)
		}
	}
	if !hasEvent(events, entity.EventClarification) {
		t.Error("no clarification event emitted")
	}
	if llm.calls != 1 {
		t.Errorf("model called %d times, want 1 (run must stop)", llm.calls)
	}
}

func TestAgentLoopUnknownToolRecovers(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{
		{
			ToolCalls: []entity.ToolCallInfo{
				{ID: "call_1", Name: "make_tea", Arguments: map[string]interface{}{}},
			},
			ModelUsed: "test-model",
		},
		{Content: "Sorry, I can't do that.", ModelUsed: "test-model"},
	}}

	exec := newScriptedExecutor()
	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())
	result, events := runLoopToEnd(t, loop, "make me tea")

	if result.Outcome != OutcomeComplete {
		t.Fatalf("Outcome = %q, want complete (loop should recover)", result.Outcome)
	}
	if len(exec.executed) != 0 {
		t.Errorf("executed = %v, want none", exec.executed)
	}

	var observation string
	for _, ev := range events {
		if ev.Type == entity.EventToolResult && ev.ToolCall != nil {
			observation = ev.ToolCall.Output
		}
	}
	if !strings.Contains(observation, "not available") {
		t.Errorf("observation = %q, want unknown-tool notice", observation)
	}
}

func TestAgentLoopStepBudget(t *testing.T) {
	llm := &scriptedLLM{
		responses: []*LLMResponse{
			{
				ToolCalls: []entity.ToolCallInfo{
					{ID: "call_1", Name: "get_all_products", Arguments: map[string]interface{}{}},
				},
				ModelUsed: "test-model",
			},
		},
		repeatLast: true,
	}

	exec := newScriptedExecutor(&fakeTool{name: "get_all_products", kind: domaintool.KindRead})

	cfg := testLoopConfig()
	cfg.MaxSteps = 3
	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), cfg, zap.NewNop())
	result, events := runLoopToEnd(t, loop, "loop forever")

	if result.Outcome != OutcomeStepBudget {
		t.Fatalf("Outcome = %q, want step_budget", result.Outcome)
	}
	if result.TotalSteps != 3 {
		t.Errorf("TotalSteps = %d, want exactly 3", result.TotalSteps)
	}
	if llm.calls != 3 {
		t.Errorf("model called %d times, want exactly 3", llm.calls)
	}
	if result.FinalContent == "" {
		t.Error("step-budget run returned empty content")
	}
	if !hasEvent(events, entity.EventDone) {
		t.Error("no done event emitted")
	}
}

func TestAgentLoopModelFailure(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("API error 401: invalid api key")}
	exec := newScriptedExecutor()

	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())
	result, events := runLoopToEnd(t, loop, "hello")

	if result.Outcome != OutcomeError {
		t.Fatalf("Outcome = %q, want error", result.Outcome)
	}
	if result.FinalContent == "" {
		t.Error("error run returned empty content")
	}
	if !hasEvent(events, entity.EventError) {
		t.Error("no error event emitted")
	}
	// Non-retryable: exactly one attempt.
	if llm.calls != 1 {
		t.Errorf("model called %d times, want 1", llm.calls)
	}
}

func TestAgentLoopRemoteFailureSurfacedToModel(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{
		{
			ToolCalls: []entity.ToolCallInfo{
				{ID: "call_1", Name: "get_product", Arguments: map[string]interface{}{"id": 99.0}},
			},
			ModelUsed: "test-model",
		},
		{Content: "Product 99 does not exist.", ModelUsed: "test-model"},
	}}

	exec := newScriptedExecutor(&fakeTool{name: "get_product", kind: domaintool.KindRead, required: []string{"id"}})
	exec.results["get_product"] = &domaintool.Result{
		Success: false,
		Error:   "[REMOTE_OPERATION] GET /api/products/99/ returned 404: not found",
	}

	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())
	result, events := runLoopToEnd(t, loop, "show product 99")

	if result.Outcome != OutcomeComplete {
		t.Fatalf("Outcome = %q, want complete (404 is an answer, not a crash)", result.Outcome)
	}

	var failedResult *entity.ToolCallEvent
	for _, ev := range events {
		if ev.Type == entity.EventToolResult && ev.ToolCall != nil {
			failedResult = ev.ToolCall
		}
	}
	if failedResult == nil {
		t.Fatal("no tool result event")
	}
	if failedResult.Success {
		t.Error("tool result reported success for a 404")
	}
	if !strings.Contains(failedResult.Output, "404") {
		t.Errorf("observation %q does not carry the status", failedResult.Output)
	}
}

func TestAgentLoopContextCancelled(t *testing.T) {
	llm := &scriptedLLM{responses: []*LLMResponse{{Content: "hi", ModelUsed: "test-model"}}}
	exec := newScriptedExecutor()
	loop := NewAgentLoop(llm, exec, NewSlotFillPolicy(zap.NewNop()), testLoopConfig(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, eventCh := loop.Run(ctx, "system", "hello")
	for range eventCh {
	}

	if result.Outcome != OutcomeError {
		t.Fatalf("Outcome = %q, want error", result.Outcome)
	}
	if llm.calls != 0 {
		t.Errorf("model called %d times on cancelled context, want 0", llm.calls)
	}
}
