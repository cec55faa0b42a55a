package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jobpilot/internal/service"
)

// AgentHandler bridges the UI to the external agent.
type AgentHandler struct {
	agentService *service.AgentService
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(agentService *service.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

// Run handles POST /api/v1/agent/run.
func (h *AgentHandler) Run(c *gin.Context) {
	var req service.AgentRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.agentService.Run(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
