package service

import (
	"fmt"
	"strings"

	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	"go.uber.org/zap"
)

// SlotCheck is the outcome of gating a proposed tool call.
// Either the call is Ready to dispatch, or Missing lists every
// required field that still has no usable value.
type SlotCheck struct {
	Ready   bool
	Missing []string
}

// SlotFillPolicy decides whether a proposed tool call has collected
// enough arguments to be dispatched. Mutating calls (create/update)
// with incomplete data corrupt remote state irreversibly — there is no
// local transaction to roll back — so this gate is a hard requirement,
// not a heuristic.
type SlotFillPolicy struct {
	logger *zap.Logger
}

// NewSlotFillPolicy creates the gate used by the agent loop.
func NewSlotFillPolicy(logger *zap.Logger) *SlotFillPolicy {
	return &SlotFillPolicy{logger: logger}
}

// Check validates args against the tool's required-parameter set.
// Every required parameter must be present with a non-empty value.
// For read/delete tools the required set is just the identifier
// parameter(s), so the same rule applies uniformly.
func (p *SlotFillPolicy) Check(t domaintool.Tool, args map[string]interface{}) SlotCheck {
	var missing []string
	for _, field := range t.Required() {
		if !hasValue(args, field) {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		p.logger.Info("Tool call blocked, required fields missing",
			zap.String("tool", t.Name()),
			zap.Strings("missing", missing),
		)
		return SlotCheck{Ready: false, Missing: missing}
	}

	return SlotCheck{Ready: true}
}

// ClarificationQuestion builds the question sent back to the user when
// a call is blocked. All missing fields are asked for in one turn to
// avoid field-by-field round trips.
func (p *SlotFillPolicy) ClarificationQuestion(t domaintool.Tool, missing []string) string {
	action := humanizeToolName(t.Name())
	fields := make([]string, 0, len(missing))
	for _, f := range missing {
		fields = append(fields, humanizeField(f))
	}

	if len(fields) == 1 {
		return fmt.Sprintf("Before I can %s, I need one more detail: the %s. Could you tell me that?", action, fields[0])
	}
	return fmt.Sprintf("Before I can %s, I need a few more details: %s. Could you tell me those?",
		action, strings.Join(fields, ", "))
}

// hasValue reports whether args carries a usable value for field.
// nil and empty/whitespace strings count as absent; zero numbers are
// accepted (a price of 0 is the user's call, not a missing field).
func hasValue(args map[string]interface{}, field string) bool {
	v, ok := args[field]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// humanizeToolName turns "create_product" into "create the product".
func humanizeToolName(name string) string {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return strings.ReplaceAll(name, "_", " ")
	}
	noun := strings.ReplaceAll(parts[1], "_", " ")
	return parts[0] + " the " + noun
}

// humanizeField turns "stock_qty" into "stock quantity" and leaves
// already-plain fields alone.
func humanizeField(field string) string {
	switch field {
	case "stock_qty":
		return "stock quantity"
	case "qr_code_url":
		return "QR code link"
	case "image_url":
		return "image link"
	case "payment_link":
		return "payment link"
	case "suggested_qty":
		return "suggested quantity"
	case "user":
		return "owner (user id)"
	case "id":
		return "id"
	}
	return strings.ReplaceAll(field, "_", " ")
}
