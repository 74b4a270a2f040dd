// Package usecase wires domain services into request-scoped operations.
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
	"github.com/dharti/dharti/bridge/internal/domain/repository"
	"github.com/dharti/dharti/bridge/internal/domain/service"
	"github.com/dharti/dharti/bridge/internal/infrastructure/prompt"
	"github.com/dharti/dharti/bridge/pkg/safego"
)

// ProcessPromptUseCase runs one user prompt through the reasoning loop
// and records the exchange. Each call builds a fresh loop: runs share
// nothing but the tool registry, and the loop config can change
// between runs via hot reload.
type ProcessPromptUseCase struct {
	llm          service.LLMClient
	tools        service.ToolExecutor
	policy       *service.SlotFillPolicy
	prompts      *prompt.Builder
	interactions repository.InteractionRepository
	logger       *zap.Logger

	mu         sync.RWMutex
	loopConfig service.AgentLoopConfig
}

// NewProcessPromptUseCase creates the use case.
func NewProcessPromptUseCase(
	llm service.LLMClient,
	tools service.ToolExecutor,
	policy *service.SlotFillPolicy,
	prompts *prompt.Builder,
	interactions repository.InteractionRepository,
	loopConfig service.AgentLoopConfig,
	logger *zap.Logger,
) *ProcessPromptUseCase {
	return &ProcessPromptUseCase{
		llm:          llm,
		tools:        tools,
		policy:       policy,
		prompts:      prompts,
		interactions: interactions,
		loopConfig:   loopConfig,
		logger:       logger,
	}
}

// SetLoopConfig swaps the loop configuration. Applied to the next run;
// in-flight runs keep the config they started with.
func (uc *ProcessPromptUseCase) SetLoopConfig(cfg service.AgentLoopConfig) {
	uc.mu.Lock()
	uc.loopConfig = cfg
	uc.mu.Unlock()
}

func (uc *ProcessPromptUseCase) currentLoopConfig() service.AgentLoopConfig {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loopConfig
}

// Run starts the loop and returns the result plus a live event stream.
// The result is complete once the stream closes; the interaction is
// recorded just before that.
func (uc *ProcessPromptUseCase) Run(ctx context.Context, channel, promptText string) (*service.AgentResult, <-chan entity.AgentEvent) {
	start := time.Now()

	loop := service.NewAgentLoop(uc.llm, uc.tools, uc.policy, uc.currentLoopConfig(), uc.logger)
	systemPrompt := uc.prompts.Build(uc.tools.Definitions())

	result, events := loop.Run(ctx, systemPrompt, promptText)

	out := make(chan entity.AgentEvent, 64)
	safego.Go(uc.logger, "prompt-run", func() {
		defer close(out)
		for ev := range events {
			out <- ev
		}
		uc.record(channel, promptText, result, time.Since(start))
	})

	return result, out
}

// Execute runs the loop to completion, discarding intermediate events.
// This is the plain HTTP path: callers only want the final text.
func (uc *ProcessPromptUseCase) Execute(ctx context.Context, channel, promptText string) *service.AgentResult {
	result, events := uc.Run(ctx, channel, promptText)
	for range events {
	}
	return result
}

// record stores the audit row. A failed save is logged, never
// propagated: the user already has their answer.
func (uc *ProcessPromptUseCase) record(channel, promptText string, result *service.AgentResult, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	in := &entity.Interaction{
		ID:        uuid.NewString(),
		Channel:   channel,
		Prompt:    promptText,
		Response:  result.FinalContent,
		Steps:     result.TotalSteps,
		ToolsUsed: result.ToolsUsed,
		Outcome:   result.Outcome,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.interactions.Save(ctx, in); err != nil {
		uc.logger.Warn("Failed to record interaction",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	uc.logger.Info("Interaction recorded",
		zap.String("id", in.ID),
		zap.String("channel", channel),
		zap.String("outcome", in.Outcome),
		zap.Int("steps", in.Steps),
		zap.Duration("duration", duration),
	)
}
