// Package cli is the interactive terminal client for the bridge.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dharti/dharti/bridge/internal/domain/entity"
)

var (
	colorCyan   = lipgloss.Color("#00D7D7")
	colorGreen  = lipgloss.Color("#5FD75F")
	colorRed    = lipgloss.Color("#FF5F5F")
	colorYellow = lipgloss.Color("#FFD75F")
	colorGray   = lipgloss.Color("#808080")
)

// Renderer renders loop events and answers for the terminal.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
}

// NewRenderer creates a renderer with the given terminal width.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	return &Renderer{
		glamour: r,
		width:   width,
	}
}

// RenderMarkdown renders the final answer as styled markdown.
func (r *Renderer) RenderMarkdown(md string) string {
	if r.glamour == nil {
		return md
	}
	out, err := r.glamour.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// RenderToolCall renders a dispatched tool call.
func (r *Renderer) RenderToolCall(tc *entity.ToolCallEvent) string {
	if tc == nil {
		return ""
	}

	nameStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	argStyle := lipgloss.NewStyle().Foreground(colorGray)

	return fmt.Sprintf("  %s %s %s",
		lipgloss.NewStyle().Foreground(colorYellow).Render("→"),
		nameStyle.Render(tc.Name),
		argStyle.Render(summarizeArgs(tc.Arguments)),
	)
}

// RenderToolResult renders a completed tool call.
func (r *Renderer) RenderToolResult(tc *entity.ToolCallEvent) string {
	if tc == nil {
		return ""
	}

	var icon string
	if tc.Success {
		icon = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	} else {
		icon = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	}

	nameStyle := lipgloss.NewStyle().Foreground(colorCyan)
	durStyle := lipgloss.NewStyle().Foreground(colorGray)

	dur := ""
	if tc.Duration > 0 {
		dur = durStyle.Render(fmt.Sprintf(" (%s)", formatDuration(tc.Duration)))
	}

	return fmt.Sprintf("  %s %s%s", icon, nameStyle.Render(tc.Name), dur)
}

// RenderClarification highlights a question the agent sends back when
// required details are missing.
func (r *Renderer) RenderClarification(question string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorYellow).
		Padding(0, 1).
		Width(r.width - 4)

	title := lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("? Need more details")
	return boxStyle.Render(title + "\n\n" + question)
}

// RenderError renders a loop-level failure.
func (r *Renderer) RenderError(msg string) string {
	style := lipgloss.NewStyle().Foreground(colorRed)
	return style.Render("  ✗ " + msg)
}

// RenderStep renders step progress.
func (r *Renderer) RenderStep(info *entity.StepInfo) string {
	if info == nil {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(colorGray)
	return style.Render(fmt.Sprintf("  step %d/%d", info.Step, info.MaxSteps))
}

// summarizeArgs extracts the most recognizable arguments for display.
func summarizeArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}

	priority := []string{"name", "title", "id", "username", "product", "catalog"}
	var parts []string

	for _, key := range priority {
		if v, ok := args[key]; ok {
			valStr := fmt.Sprintf("%v", v)
			if len(valStr) > 40 {
				valStr = valStr[:40] + "…"
			}
			parts = append(parts, fmt.Sprintf("%s=%s", key, valStr))
		}
	}

	if len(parts) == 0 {
		for k, v := range args {
			valStr := fmt.Sprintf("%v", v)
			if len(valStr) > 40 {
				valStr = valStr[:40] + "…"
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, valStr))
			break
		}
	}

	return strings.Join(parts, " ")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
