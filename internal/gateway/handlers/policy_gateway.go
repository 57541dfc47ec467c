package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	policy "cattleguard-system/internal/services/policy/handler"
)

type PolicyHTTPHandler struct {
	policies *policy.PolicyHandler
}

func NewPolicyHTTPHandler(policies *policy.PolicyHandler) *PolicyHTTPHandler {
	return &PolicyHTTPHandler{policies: policies}
}

// --- Request & Query Structs for Binding ---

type CreateCustomerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type SubmitPolicyRequest struct {
	CustomerID     int64  `json:"customer_id" binding:"required"`
	AgentID        *int64 `json:"agent_id"`
	CattleTag      string `json:"cattle_tag" binding:"required"`
	Breed          string `json:"breed"`
	PremiumAmount  string `json:"premium_amount" binding:"required"`
	CoverageAmount string `json:"coverage_amount" binding:"required"`
}

type ApprovePolicyRequest struct {
	ApprovedBy int64  `json:"approved_by" binding:"required"`
	Notes      string `json:"notes"`
}

type RejectPolicyRequest struct {
	RejectedBy int64  `json:"rejected_by" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

type ListPoliciesQuery struct {
	Page       int     `form:"page,default=1"`
	PageSize   int     `form:"page_size,default=20"`
	CustomerID *int64  `form:"customer_id"`
	AgentID    *int64  `form:"agent_id"`
	Status     *string `form:"status"`
}

// --- Handlers ---

func (h *PolicyHTTPHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	customer, err := h.policies.CreateCustomer(c.Request.Context(), policy.CreateCustomerRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Customer created successfully", customer))
}

func (h *PolicyHTTPHandler) SubmitPolicy(c *gin.Context) {
	var req SubmitPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	created, err := h.policies.SubmitPolicy(c.Request.Context(), policy.SubmitPolicyRequest{
		CustomerID:     req.CustomerID,
		AgentID:        req.AgentID,
		CattleTag:      req.CattleTag,
		Breed:          req.Breed,
		PremiumAmount:  req.PremiumAmount,
		CoverageAmount: req.CoverageAmount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Policy submitted successfully", created))
}

func (h *PolicyHTTPHandler) ConfirmPayment(c *gin.Context) {
	policyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid policy ID"))
		return
	}

	updated, err := h.policies.ConfirmPayment(c.Request.Context(), policyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Payment confirmed successfully", updated))
}

func (h *PolicyHTTPHandler) ApprovePolicy(c *gin.Context) {
	policyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid policy ID"))
		return
	}

	var req ApprovePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	approved, err := h.policies.ApprovePolicy(c.Request.Context(), policyID, req.ApprovedBy, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Policy approved successfully", approved))
}

func (h *PolicyHTTPHandler) RejectPolicy(c *gin.Context) {
	policyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid policy ID"))
		return
	}

	var req RejectPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	rejected, err := h.policies.RejectPolicy(c.Request.Context(), policyID, req.RejectedBy, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Policy rejected successfully", rejected))
}

func (h *PolicyHTTPHandler) GetPolicy(c *gin.Context) {
	policyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid policy ID"))
		return
	}

	found, err := h.policies.GetPolicy(c.Request.Context(), policyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Policy retrieved successfully", found))
}

func (h *PolicyHTTPHandler) ListPolicies(c *gin.Context) {
	var query ListPoliciesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	policies, totalCount, err := h.policies.ListPolicies(c.Request.Context(), policy.ListPoliciesFilter{
		CustomerID: query.CustomerID,
		AgentID:    query.AgentID,
		Status:     query.Status,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Policies retrieved successfully", policies, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
	}))
}
