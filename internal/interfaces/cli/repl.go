package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dharti/dharti/bridge/internal/application/usecase"
	"github.com/dharti/dharti/bridge/internal/domain/entity"
)

// REPLConfig configures the interactive session.
type REPLConfig struct {
	Model      string
	ToolCount  int
	InitPrompt string // optional prompt to run before reading input
}

// RunREPL drives the interactive prompt session until EOF or /quit.
func RunREPL(ctx context.Context, uc *usecase.ProcessPromptUseCase, cfg REPLConfig) error {
	renderer := NewRenderer(100)

	headerStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(colorGray)

	fmt.Println(headerStyle.Render("RFAI — catalog assistant"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("model: %s · tools: %d · /quit to exit", cfg.Model, cfg.ToolCount)))
	fmt.Println()

	if cfg.InitPrompt != "" {
		runPrompt(ctx, uc, renderer, cfg.InitPrompt)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(headerStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		}

		runPrompt(ctx, uc, renderer, line)
	}
}

func runPrompt(ctx context.Context, uc *usecase.ProcessPromptUseCase, renderer *Renderer, prompt string) {
	result, events := uc.Run(ctx, "cli", prompt)

	for ev := range events {
		switch ev.Type {
		case entity.EventToolCall:
			fmt.Println(renderer.RenderToolCall(ev.ToolCall))
		case entity.EventToolResult:
			fmt.Println(renderer.RenderToolResult(ev.ToolCall))
		case entity.EventClarification:
			// Rendered below from the final content.
		case entity.EventError:
			fmt.Println(renderer.RenderError(ev.Error))
		}
	}

	fmt.Println()
	if result.Outcome == "awaiting_user" {
		fmt.Println(renderer.RenderClarification(result.FinalContent))
	} else {
		fmt.Println(renderer.RenderMarkdown(result.FinalContent))
	}
	fmt.Println()
}
