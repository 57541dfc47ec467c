package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	withdrawal "cattleguard-system/internal/services/withdrawal/handler"
)

type WithdrawalHTTPHandler struct {
	withdrawals *withdrawal.WithdrawalHandler
}

func NewWithdrawalHTTPHandler(withdrawals *withdrawal.WithdrawalHandler) *WithdrawalHTTPHandler {
	return &WithdrawalHTTPHandler{withdrawals: withdrawals}
}

// --- Request & Query Structs for Binding ---

type RequestWithdrawalRequest struct {
	AgentID  int64  `json:"agent_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	UserNote string `json:"user_note"`
}

type ProcessWithdrawalRequest struct {
	Action      string `json:"action" binding:"required"`
	Reason      string `json:"reason"`
	AdminNote   string `json:"admin_note"`
	ProcessedBy int64  `json:"processed_by" binding:"required"`
}

type ListWithdrawalsQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
	AgentID  *int64  `form:"agent_id"`
	Status   *string `form:"status"`
}

// --- Handlers ---

func (h *WithdrawalHTTPHandler) RequestWithdrawal(c *gin.Context) {
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	created, err := h.withdrawals.RequestWithdrawal(c.Request.Context(), withdrawal.RequestWithdrawalRequest{
		AgentID:  req.AgentID,
		Amount:   req.Amount,
		UserNote: req.UserNote,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Withdrawal requested successfully", created))
}

func (h *WithdrawalHTTPHandler) ProcessWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid withdrawal ID"))
		return
	}

	var req ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	processed, err := h.withdrawals.ProcessWithdrawal(c.Request.Context(), withdrawal.ProcessWithdrawalRequest{
		WithdrawalID: withdrawalID,
		Action:       req.Action,
		Reason:       req.Reason,
		AdminNote:    req.AdminNote,
		ProcessedBy:  req.ProcessedBy,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Withdrawal processed successfully", processed))
}

func (h *WithdrawalHTTPHandler) GetWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid withdrawal ID"))
		return
	}

	found, err := h.withdrawals.GetWithdrawal(c.Request.Context(), withdrawalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Withdrawal retrieved successfully", found))
}

func (h *WithdrawalHTTPHandler) ListWithdrawals(c *gin.Context) {
	var query ListWithdrawalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	withdrawals, totalCount, err := h.withdrawals.ListWithdrawals(c.Request.Context(), withdrawal.ListWithdrawalsFilter{
		AgentID:  query.AgentID,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Withdrawals retrieved successfully", withdrawals, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
	}))
}
