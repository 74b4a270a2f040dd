package entity

import "time"

// AgentEventType defines the type of event emitted during a reasoning
// loop run.
type AgentEventType string

const (
	EventToolCall      AgentEventType = "tool_call"
	EventToolResult    AgentEventType = "tool_result"
	EventClarification AgentEventType = "clarification" // loop paused, asking the user for missing fields
	EventStepDone      AgentEventType = "step_done"
	EventDone          AgentEventType = "done"
	EventError         AgentEventType = "error"
)

// AgentEvent is a single event in the reasoning loop. Consumers (the
// WebSocket stream, the CLI) read these from a channel while the loop
// runs.
type AgentEvent struct {
	Type      AgentEventType `json:"type"`
	Content   string         `json:"content,omitempty"`
	ToolCall  *ToolCallEvent `json:"tool_call,omitempty"`
	StepInfo  *StepInfo      `json:"step_info,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ToolCallEvent describes a tool invocation within the loop.
type ToolCallEvent struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
	Output    string                 `json:"output,omitempty"`
	Success   bool                   `json:"success"`
	Duration  time.Duration          `json:"duration,omitempty"`
}

// StepInfo provides metadata about the current reasoning step.
type StepInfo struct {
	Step       int    `json:"step"`
	MaxSteps   int    `json:"max_steps"`
	TokensUsed int    `json:"tokens_used"`
	ModelUsed  string `json:"model_used"`
	State      string `json:"state,omitempty"`
}

// ToolCallInfo is a tool call proposed by the model, before gating.
type ToolCallInfo struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}
