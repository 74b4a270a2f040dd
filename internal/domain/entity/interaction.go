package entity

import "time"

// Interaction is one completed /prompt exchange: the inbound prompt,
// the final answer, and what the loop did in between. Recorded locally
// as an audit trail; losing a record never fails the request.
type Interaction struct {
	ID        string
	Channel   string // "http", "ws", "cli"
	Prompt    string
	Response  string
	Steps     int
	ToolsUsed []string
	Outcome   string // "complete", "awaiting_user", "step_budget", "error"
	Duration  time.Duration
	CreatedAt time.Time
}
