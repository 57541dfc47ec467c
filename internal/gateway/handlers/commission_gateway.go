package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	commission "cattleguard-system/internal/services/commission/handler"
)

type CommissionHTTPHandler struct {
	commissions *commission.CommissionHandler
}

func NewCommissionHTTPHandler(commissions *commission.CommissionHandler) *CommissionHTTPHandler {
	return &CommissionHTTPHandler{commissions: commissions}
}

// --- Request & Query Structs for Binding ---

type ApproveCommissionRequest struct {
	ApprovedBy int64 `json:"approved_by" binding:"required"`
}

type BulkApproveCommissionsRequest struct {
	CommissionIDs []int64 `json:"commission_ids" binding:"required"`
	ApprovedBy    int64   `json:"approved_by" binding:"required"`
}

type ListCommissionsQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
	AgentID  *int64  `form:"agent_id"`
	PolicyID *int64  `form:"policy_id"`
	Status   *string `form:"status"`
}

type UpsertSettingRequest struct {
	Level      int32   `json:"level" binding:"required"`
	Percent    string  `json:"percent" binding:"required"`
	MinPremium *string `json:"min_premium"`
	MaxPremium *string `json:"max_premium"`
	IsActive   *bool   `json:"is_active"`
}

// --- Handlers ---

func (h *CommissionHTTPHandler) ApproveCommission(c *gin.Context) {
	commissionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid commission ID"))
		return
	}

	var req ApproveCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	approved, err := h.commissions.ApproveCommission(c.Request.Context(), commissionID, req.ApprovedBy)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission approved successfully", approved))
}

func (h *CommissionHTTPHandler) BulkApproveCommissions(c *gin.Context) {
	var req BulkApproveCommissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	result, err := h.commissions.BulkApproveCommissions(c.Request.Context(), req.CommissionIDs, req.ApprovedBy)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Bulk approval processed", result))
}

func (h *CommissionHTTPHandler) GetCommission(c *gin.Context) {
	commissionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid commission ID"))
		return
	}

	found, err := h.commissions.GetCommission(c.Request.Context(), commissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission retrieved successfully", found))
}

func (h *CommissionHTTPHandler) ListCommissions(c *gin.Context) {
	var query ListCommissionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	commissions, totalCount, err := h.commissions.ListCommissions(c.Request.Context(), commission.ListCommissionsFilter{
		AgentID:  query.AgentID,
		PolicyID: query.PolicyID,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Commissions retrieved successfully", commissions, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
	}))
}

func (h *CommissionHTTPHandler) ListCommissionSettings(c *gin.Context) {
	settings, err := h.commissions.ListCommissionSettings(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission settings retrieved successfully", settings))
}

func (h *CommissionHTTPHandler) UpsertCommissionSetting(c *gin.Context) {
	var req UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	setting, err := h.commissions.UpsertCommissionSetting(c.Request.Context(), commission.UpsertSettingRequest{
		Level:      req.Level,
		Percent:    req.Percent,
		MinPremium: req.MinPremium,
		MaxPremium: req.MaxPremium,
		IsActive:   isActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Commission setting saved successfully", setting))
}
