package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dharti/dharti/bridge/internal/application/usecase"
	"github.com/dharti/dharti/bridge/internal/domain/service"
)

// PromptHandler serves the conversation gateway.
type PromptHandler struct {
	uc     *usecase.ProcessPromptUseCase
	tools  service.ToolExecutor
	logger *zap.Logger
}

// NewPromptHandler creates the handler.
func NewPromptHandler(uc *usecase.ProcessPromptUseCase, tools service.ToolExecutor, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{uc: uc, tools: tools, logger: logger}
}

// PromptRequest is the POST /prompt body.
type PromptRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// PromptResponse is the POST /prompt answer.
type PromptResponse struct {
	Response  string   `json:"response"`
	Outcome   string   `json:"outcome"`
	Steps     int      `json:"steps"`
	ToolsUsed []string `json:"tools_used,omitempty"`
}

// HandlePrompt runs one prompt through the agent. Agent-level failures
// (model unreachable, step budget) still answer 200 with explanatory
// text: to the caller they are conversation turns, not HTTP errors.
func (h *PromptHandler) HandlePrompt(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	result := h.uc.Execute(c.Request.Context(), "http", req.Prompt)

	c.JSON(http.StatusOK, PromptResponse{
		Response:  result.FinalContent,
		Outcome:   result.Outcome,
		Steps:     result.TotalSteps,
		ToolsUsed: result.ToolsUsed,
	})
}

// ListTools answers GET /tools with the registered tool catalog.
func (h *PromptHandler) ListTools(c *gin.Context) {
	defs := h.tools.Definitions()
	c.JSON(http.StatusOK, gin.H{
		"count": len(defs),
		"tools": defs,
	})
}
