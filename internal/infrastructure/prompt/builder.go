// Package prompt composes the system prompt for the reasoning loop.
package prompt

import (
	"fmt"
	"strings"
	"time"

	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
)

// persona is the fixed assistant identity. RFAI fronts the catalog
// service for small sellers; answers stay short and free of jargon
// because many users read them on low-end phones or hear them spoken.
const persona = `You are RFAI, the assistant for a digital catalog service used by small sellers: kirana shop owners, artisans and farmers.

How you work:
- Use the provided tools for anything involving products, catalogs, transactions, users, restock reminders or logs. Never invent records or IDs.
- Before creating or updating anything, make sure you have every required detail. If something is missing, ask the user for it instead of guessing.
- Destructive actions (deletes) should be confirmed with the user unless they were explicit about it.
- When a lookup returns nothing, say so plainly and suggest what the user can do next.
- Keep answers short and in plain language. No technical jargon, no JSON, no internal identifiers unless the user asks.
- Answer in the language the user wrote in.`

// Builder assembles the system prompt from the persona and the current
// runtime facts.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a prompt builder.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build renders the system prompt. The tool definitions also travel in
// the request's tools field; the prompt only summarizes what exists so
// the model plans before calling.
func (b *Builder) Build(tools []domaintool.Definition) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\n")

	if len(tools) > 0 {
		sb.WriteString("Available tools:\n")
		for _, t := range tools {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", t.Name, t.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Current date: %s\n", b.now().Format("2006-01-02")))
	return sb.String()
}
