package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	"go.uber.org/zap"
)

// Run outcomes, recorded on the AgentResult and the interaction log.
const (
	OutcomeComplete     = "complete"
	OutcomeAwaitingUser = "awaiting_user"
	OutcomeStepBudget   = "step_budget"
	OutcomeError        = "error"
)

// AgentLoopConfig holds configuration for the bounded reasoning loop.
type AgentLoopConfig struct {
	Model       string  // model identifier (e.g. "llama3-70b-8192")
	Temperature float64 // sampling temperature

	// MaxSteps bounds the think/dispatch cycles per request. The loop
	// returns the best partial answer when the budget runs out — this
	// caps latency and cost against runaway tool-call chains.
	MaxSteps int

	MaxOutputChars int // per-tool output truncation before it re-enters context

	// Model-call retry
	MaxRetries    int           // retries per model call (default 3)
	RetryBaseWait time.Duration // base wait, exponential: 2s, 4s, 8s

	ToolTimeout time.Duration // per-tool dispatch timeout
}

// DefaultAgentLoopConfig returns production-ready defaults.
func DefaultAgentLoopConfig() AgentLoopConfig {
	return AgentLoopConfig{
		Model:          "llama3-70b-8192",
		Temperature:    0.7,
		MaxSteps:       30,
		MaxOutputChars: 16000,
		MaxRetries:     3,
		RetryBaseWait:  2 * time.Second,
		ToolTimeout:    30 * time.Second,
	}
}

// LLMClient is the interface the loop uses to talk to language models.
// It decouples the loop from provider implementations; tests substitute
// a scripted proposer.
type LLMClient interface {
	// Generate sends the conversation plus tool definitions and returns
	// the model's proposal: either text or tool calls.
	Generate(ctx context.Context, req *LLMRequest) (*LLMResponse, error)
}

// LLMRequest is the request sent to the language model.
type LLMRequest struct {
	Messages    []LLMMessage            `json:"messages"`
	Tools       []domaintool.Definition `json:"tools,omitempty"`
	Model       string                  `json:"model"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature float64                 `json:"temperature"`
}

// LLMMessage represents a single message in the conversation.
type LLMMessage struct {
	Role       string                `json:"role"` // "system", "user", "assistant", "tool"
	Content    string                `json:"content"`
	ToolCalls  []entity.ToolCallInfo `json:"tool_calls,omitempty"`
	ToolCallID string                `json:"tool_call_id,omitempty"`
	Name       string                `json:"name,omitempty"`
}

// LLMResponse is the model's proposal for one step.
type LLMResponse struct {
	Content    string                `json:"content"`
	ToolCalls  []entity.ToolCallInfo `json:"tool_calls,omitempty"`
	ModelUsed  string                `json:"model_used"`
	TokensUsed int                   `json:"tokens_used"`
}

// ToolExecutor dispatches gated tool calls and exposes the catalog.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]interface{}) (*domaintool.Result, error)
	Definitions() []domaintool.Definition
	Lookup(name string) (domaintool.Tool, bool)
}

// AgentLoop drives the bounded think/gate/dispatch/observe cycle.
// Each run is independent: no state is shared across requests except
// the immutable tool registry behind the executor.
type AgentLoop struct {
	llm    LLMClient
	tools  ToolExecutor
	policy *SlotFillPolicy
	config AgentLoopConfig
	logger *zap.Logger
}

// NewAgentLoop creates a reasoning loop with the given collaborators.
func NewAgentLoop(llm LLMClient, tools ToolExecutor, policy *SlotFillPolicy, config AgentLoopConfig, logger *zap.Logger) *AgentLoop {
	if config.MaxSteps <= 0 {
		config.MaxSteps = 30
	}
	if config.MaxOutputChars <= 0 {
		config.MaxOutputChars = 16000
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryBaseWait <= 0 {
		config.RetryBaseWait = 2 * time.Second
	}
	if config.ToolTimeout <= 0 {
		config.ToolTimeout = 30 * time.Second
	}

	return &AgentLoop{
		llm:    llm,
		tools:  tools,
		policy: policy,
		config: config,
		logger: logger,
	}
}

// AgentResult is the final outcome of one loop run.
type AgentResult struct {
	FinalContent string
	Outcome      string // complete, awaiting_user, step_budget, error
	TotalSteps   int
	TotalTokens  int
	ModelUsed    string
	ToolsUsed    []string
}

// Run executes the reasoning loop, emitting events to the returned
// channel. The caller must drain the channel; the result is complete
// once the channel closes.
func (a *AgentLoop) Run(ctx context.Context, systemPrompt, userMessage string) (*AgentResult, <-chan entity.AgentEvent) {
	eventCh := make(chan entity.AgentEvent, 64)
	result := &AgentResult{}

	ctx = WithTraceID(ctx, "")
	logger := a.logger.With(zap.String("trace_id", TraceIDFromContext(ctx)))

	sm := NewStateMachine(a.config.MaxSteps, logger)

	go func() {
		defer close(eventCh)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Agent loop panicked",
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				result.FinalContent = "Sorry, something went wrong on my side. Please try again."
				result.Outcome = OutcomeError
				a.emitEvent(eventCh, entity.AgentEvent{
					Type:  entity.EventError,
					Error: fmt.Sprintf("internal error: %v", r),
				})
			}
		}()
		a.runLoop(ctx, systemPrompt, userMessage, result, eventCh, sm, logger)
	}()

	return result, eventCh
}

func (a *AgentLoop) runLoop(
	ctx context.Context,
	systemPrompt string,
	userMessage string,
	result *AgentResult,
	eventCh chan<- entity.AgentEvent,
	sm *StateMachine,
	logger *zap.Logger,
) {
	messages := make([]LLMMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, LLMMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, LLMMessage{Role: "user", Content: userMessage})

	toolDefs := a.tools.Definitions()
	toolsUsedSet := make(map[string]bool)

	// Text the model produced alongside intermediate tool calls. Used
	// as the partial answer when the step budget runs out.
	var lastAssistantText string

	defer func() {
		for name := range toolsUsedSet {
			result.ToolsUsed = append(result.ToolsUsed, name)
		}
	}()

	for step := 1; step <= a.config.MaxSteps; step++ {
		sm.SetStep(step)
		result.TotalSteps = step

		if err := ctx.Err(); err != nil {
			_ = sm.Transition(StateAborted)
			result.FinalContent = "The request was cancelled before I could finish."
			result.Outcome = OutcomeError
			a.emitEvent(eventCh, entity.AgentEvent{Type: entity.EventError, Error: "context cancelled"})
			return
		}

		logger.Info("Reasoning step",
			zap.Int("step", step),
			zap.Int("messages", len(messages)),
		)

		// 1. Think — ask the model for a proposal.
		_ = sm.Transition(StateThinking)

		llmReq := &LLMRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Model:       a.config.Model,
			Temperature: a.config.Temperature,
		}

		resp, err := a.callLLMWithRetry(ctx, llmReq, step, sm, logger)
		if err != nil {
			sm.RecordError()
			_ = sm.Transition(StateError)
			result.FinalContent = "I couldn't reach the language model right now. Please try again in a moment."
			result.Outcome = OutcomeError
			a.emitEvent(eventCh, entity.AgentEvent{
				Type:  entity.EventError,
				Error: fmt.Sprintf("model call failed at step %d: %v", step, err),
			})
			return
		}

		result.TotalTokens += resp.TokensUsed
		result.ModelUsed = resp.ModelUsed
		sm.AddTokens(resp.TokensUsed)
		sm.SetModel(resp.ModelUsed)

		snap := sm.Snapshot()
		a.emitEvent(eventCh, entity.AgentEvent{
			Type: entity.EventStepDone,
			StepInfo: &entity.StepInfo{
				Step:       step,
				MaxSteps:   a.config.MaxSteps,
				TokensUsed: resp.TokensUsed,
				ModelUsed:  resp.ModelUsed,
				State:      string(snap.State),
			},
		})

		// 2. No tool calls — the proposal is the final answer.
		if len(resp.ToolCalls) == 0 {
			final := strings.TrimSpace(resp.Content)
			if final == "" {
				final = lastAssistantText
			}
			if final == "" {
				final = "I wasn't able to produce an answer for that. Could you rephrase?"
			}
			result.FinalContent = final
			result.Outcome = OutcomeComplete
			_ = sm.Transition(StateComplete)
			a.emitEvent(eventCh, entity.AgentEvent{Type: entity.EventDone, Content: final})
			return
		}

		if text := strings.TrimSpace(resp.Content); text != "" {
			lastAssistantText = text
		}

		messages = append(messages, LLMMessage{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// 3. Gate and dispatch, one call at a time.
		for _, tc := range resp.ToolCalls {
			a.emitEvent(eventCh, entity.AgentEvent{
				Type: entity.EventToolCall,
				ToolCall: &entity.ToolCallEvent{
					ID:        tc.ID,
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})

			spec, ok := a.tools.Lookup(tc.Name)
			if !ok {
				// Hallucinated tool — inject an observation instead of
				// failing the request; the model can recover.
				logger.Warn("Model requested unknown tool", zap.String("tool", tc.Name))
				obs := fmt.Sprintf("Tool %q is not available. Use one of the listed tools or answer the user directly.", tc.Name)
				messages = append(messages, LLMMessage{
					Role:       "tool",
					Content:    obs,
					ToolCallID: tc.ID,
					Name:       tc.Name,
				})
				a.emitEvent(eventCh, entity.AgentEvent{
					Type: entity.EventToolResult,
					ToolCall: &entity.ToolCallEvent{
						ID:        tc.ID,
						Name:      tc.Name,
						Arguments: tc.Arguments,
						Output:    obs,
						Success:   false,
					},
				})
				continue
			}

			// Slot-filling gate: a mutating call never reaches the
			// remote client with missing required fields. The run stops
			// here and the clarification goes back to the user.
			if check := a.policy.Check(spec, tc.Arguments); !check.Ready {
				question := a.policy.ClarificationQuestion(spec, check.Missing)
				result.FinalContent = question
				result.Outcome = OutcomeAwaitingUser
				_ = sm.Transition(StateAwaitingUser)
				a.emitEvent(eventCh, entity.AgentEvent{
					Type:    entity.EventClarification,
					Content: question,
				})
				a.emitEvent(eventCh, entity.AgentEvent{Type: entity.EventDone, Content: question})
				return
			}

			// 4. Dispatch.
			_ = sm.Transition(StateToolExec)

			toolCtx := ctx
			cancel := context.CancelFunc(func() {})
			if a.config.ToolTimeout > 0 {
				toolCtx, cancel = context.WithTimeout(ctx, a.config.ToolTimeout)
			}

			start := time.Now()
			toolResult, execErr := a.tools.Execute(toolCtx, tc.Name, tc.Arguments)
			cancel()
			duration := time.Since(start)

			var output string
			var success bool
			switch {
			case execErr != nil:
				output = fmt.Sprintf("Tool %s failed: %v", tc.Name, execErr)
				success = false
				logger.Error("Tool dispatch failed",
					zap.String("tool", tc.Name),
					zap.Duration("duration", duration),
					zap.Error(execErr),
				)
			case !toolResult.Success:
				output = toolResult.Error
				if output == "" {
					output = toolResult.Output
				}
				success = false
			default:
				output = toolResult.Output
				success = true
			}

			output = truncateOutput(output, a.config.MaxOutputChars)

			toolsUsedSet[tc.Name] = true
			sm.RecordToolExec(tc.Name)

			a.emitEvent(eventCh, entity.AgentEvent{
				Type: entity.EventToolResult,
				ToolCall: &entity.ToolCallEvent{
					ID:        tc.ID,
					Name:      tc.Name,
					Arguments: tc.Arguments,
					Output:    output,
					Success:   success,
					Duration:  duration,
				},
			})

			messages = append(messages, LLMMessage{
				Role:       "tool",
				Content:    output,
				ToolCallID: tc.ID,
				Name:       tc.Name,
			})

			_ = sm.Transition(StateThinking)
		}
		// Observation appended — loop back for the next think step.
	}

	// Step budget exhausted: return the best partial answer rather
	// than an error, flagged as incomplete.
	logger.Warn("Step budget exhausted", zap.Int("max_steps", a.config.MaxSteps))
	partial := lastAssistantText
	if partial == "" {
		partial = "I ran out of steps before finishing that request."
	} else {
		partial += "\n\n(I stopped before finishing — the request needed more steps than I'm allowed.)"
	}
	result.FinalContent = partial
	result.Outcome = OutcomeStepBudget
	_ = sm.Transition(StateComplete)
	a.emitEvent(eventCh, entity.AgentEvent{Type: entity.EventDone, Content: partial})
}

// emitEvent sends an event without blocking the loop forever: slow
// consumers get a 5s grace period before the event is dropped.
func (a *AgentLoop) emitEvent(ch chan<- entity.AgentEvent, event entity.AgentEvent) {
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	case <-time.After(5 * time.Second):
		a.logger.Warn("Event dropped, consumer too slow",
			zap.String("type", string(event.Type)),
		)
	}
}

// truncateOutput caps a tool observation before it re-enters context.
func truncateOutput(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + fmt.Sprintf("\n... (%d chars truncated)", len(s)-max)
}
