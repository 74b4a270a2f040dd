package service

import (
	"testing"

	"go.uber.org/zap"
)

func TestStateMachineValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []AgentState
	}{
		{
			name: "plain answer",
			path: []AgentState{StateThinking, StateComplete},
		},
		{
			name: "tool roundtrip",
			path: []AgentState{StateThinking, StateToolExec, StateThinking, StateComplete},
		},
		{
			name: "clarification stop",
			path: []AgentState{StateThinking, StateAwaitingUser},
		},
		{
			name: "retry then answer",
			path: []AgentState{StateThinking, StateRetrying, StateThinking, StateComplete},
		},
		{
			name: "abort mid-dispatch",
			path: []AgentState{StateThinking, StateToolExec, StateAborted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine(30, zap.NewNop())
			for _, next := range tt.path {
				if err := sm.Transition(next); err != nil {
					t.Fatalf("Transition(%s) failed: %v", next, err)
				}
			}
			if got := sm.State(); got != tt.path[len(tt.path)-1] {
				t.Errorf("final state = %s, want %s", got, tt.path[len(tt.path)-1])
			}
		})
	}
}

func TestStateMachineInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []AgentState
		to    AgentState
	}{
		{name: "idle to tool exec", to: StateToolExec},
		{name: "idle to complete", to: StateComplete},
		{
			name:  "complete is terminal",
			setup: []AgentState{StateThinking, StateComplete},
			to:    StateThinking,
		},
		{
			name:  "awaiting user is terminal",
			setup: []AgentState{StateThinking, StateAwaitingUser},
			to:    StateThinking,
		},
		{
			name:  "error is terminal",
			setup: []AgentState{StateThinking, StateError},
			to:    StateThinking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine(30, zap.NewNop())
			for _, s := range tt.setup {
				if err := sm.Transition(s); err != nil {
					t.Fatalf("setup Transition(%s) failed: %v", s, err)
				}
			}
			if err := sm.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s) from %s succeeded, want error", tt.to, sm.State())
			}
		})
	}
}

func TestStateMachineIsTerminal(t *testing.T) {
	sm := NewStateMachine(30, zap.NewNop())
	if sm.IsTerminal() {
		t.Error("fresh machine reports terminal")
	}

	_ = sm.Transition(StateThinking)
	if sm.IsTerminal() {
		t.Error("thinking reports terminal")
	}

	_ = sm.Transition(StateAwaitingUser)
	if !sm.IsTerminal() {
		t.Error("awaiting_user does not report terminal")
	}
}

func TestStateMachineSnapshotCounters(t *testing.T) {
	sm := NewStateMachine(30, zap.NewNop())
	_ = sm.Transition(StateThinking)

	sm.SetStep(3)
	sm.AddTokens(100)
	sm.AddTokens(50)
	sm.RecordToolExec("get_all_products")
	sm.RecordRetry()
	sm.SetModel("llama3-70b-8192")

	snap := sm.Snapshot()
	if snap.Step != 3 {
		t.Errorf("Step = %d, want 3", snap.Step)
	}
	if snap.TokensUsed != 150 {
		t.Errorf("TokensUsed = %d, want 150", snap.TokensUsed)
	}
	if snap.ToolsExecuted != 1 {
		t.Errorf("ToolsExecuted = %d, want 1", snap.ToolsExecuted)
	}
	if snap.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", snap.RetryCount)
	}
	if snap.LastTool != "get_all_products" {
		t.Errorf("LastTool = %q, want get_all_products", snap.LastTool)
	}
	if snap.ModelUsed != "llama3-70b-8192" {
		t.Errorf("ModelUsed = %q", snap.ModelUsed)
	}
}
