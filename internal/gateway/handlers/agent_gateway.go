package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	agent "cattleguard-system/internal/services/agent/handler"
)

type AgentHTTPHandler struct {
	agents *agent.AgentHandler
}

func NewAgentHTTPHandler(agents *agent.AgentHandler) *AgentHTTPHandler {
	return &AgentHTTPHandler{agents: agents}
}

// --- Request Structs for Binding ---

type RegisterAgentRequest struct {
	FullName          string  `json:"full_name" binding:"required"`
	Email             string  `json:"email" binding:"required,email"`
	Phone             string  `json:"phone"`
	ParentCode        *string `json:"parent_code"`
	CommissionPercent *string `json:"commission_percent"`
	BankName          *string `json:"bank_name"`
	BankAccountNo     *string `json:"bank_account_no"`
	BankHolder        *string `json:"bank_holder"`
}

// --- Handlers ---

func (h *AgentHTTPHandler) RegisterAgent(c *gin.Context) {
	var req RegisterAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	created, err := h.agents.RegisterAgent(c.Request.Context(), agent.RegisterAgentRequest{
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		ParentCode:        req.ParentCode,
		CommissionPercent: req.CommissionPercent,
		BankName:          req.BankName,
		BankAccountNo:     req.BankAccountNo,
		BankHolder:        req.BankHolder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Agent registered successfully", created))
}

func (h *AgentHTTPHandler) ActivateAgent(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid agent ID"))
		return
	}

	activated, err := h.agents.ActivateAgent(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Agent activated successfully", activated))
}

func (h *AgentHTTPHandler) GetAgent(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid agent ID"))
		return
	}

	found, err := h.agents.GetAgent(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Agent retrieved successfully", found))
}

func (h *AgentHTTPHandler) GetWalletSummary(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid agent ID"))
		return
	}

	summary, err := h.agents.GetWalletSummary(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Wallet summary retrieved successfully", summary))
}
