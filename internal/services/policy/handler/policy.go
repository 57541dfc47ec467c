package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cattleguard-system/internal/database/models"
	"cattleguard-system/internal/notify"
	commission "cattleguard-system/internal/services/commission/handler"
)

type PolicyHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
	logger   *zap.Logger
}

func NewPolicyHandler(db *gorm.DB, notifier *notify.Notifier, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

func newPolicyNumber() string {
	return "CG-" + strings.ToUpper(uuid.New().String()[:8])
}

type SubmitPolicyRequest struct {
	CustomerID     int64
	AgentID        *int64
	CattleTag      string
	Breed          string
	PremiumAmount  string
	CoverageAmount string
}

// SubmitPolicy creates a new policy in PENDING status. Payment confirmation
// moves it to PENDING_APPROVAL; both states are treated as "awaiting
// decision" by the approval state machine.
func (h *PolicyHandler) SubmitPolicy(ctx context.Context, req SubmitPolicyRequest) (*models.Policy, error) {
	if req.CattleTag == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Cattle tag is required")
	}

	premium, err := decimal.NewFromString(req.PremiumAmount)
	if err != nil || !premium.IsPositive() {
		return nil, status.Errorf(codes.InvalidArgument, "Premium amount must be a positive decimal")
	}
	coverage, err := decimal.NewFromString(req.CoverageAmount)
	if err != nil || !coverage.IsPositive() {
		return nil, status.Errorf(codes.InvalidArgument, "Coverage amount must be a positive decimal")
	}

	var customer models.Customer
	if err := h.db.WithContext(ctx).First(&customer, req.CustomerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "Customer with ID %d not found", req.CustomerID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get customer: %v", err)
	}

	if req.AgentID != nil {
		var agent models.Agent
		if err := h.db.WithContext(ctx).First(&agent, *req.AgentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, status.Errorf(codes.NotFound, "Agent with ID %d not found", *req.AgentID)
			}
			return nil, status.Errorf(codes.Internal, "Failed to get agent: %v", err)
		}
		if agent.Status != models.AgentStatusActive {
			return nil, status.Errorf(codes.FailedPrecondition, "Agent %s is not active", agent.AgentCode)
		}
	}

	policy := models.Policy{
		PolicyNumber:   newPolicyNumber(),
		CustomerID:     req.CustomerID,
		AgentID:        req.AgentID,
		CattleTag:      req.CattleTag,
		Breed:          req.Breed,
		PremiumAmount:  premium.StringFixed(2),
		CoverageAmount: coverage.StringFixed(2),
		Status:         models.PolicyStatusPending,
	}
	if err := h.db.WithContext(ctx).Create(&policy).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create policy: %v", err)
	}

	return &policy, nil
}

// ConfirmPayment moves a policy from PENDING to PENDING_APPROVAL. Owned by
// the payment collaborator; exposed here so the checkout flow has a target.
func (h *PolicyHandler) ConfirmPayment(ctx context.Context, policyID int64) (*models.Policy, error) {
	var policy models.Policy

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&policy, policyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Policy with ID %d not found", policyID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve policy: %v", err)
		}

		if policy.Status != models.PolicyStatusPending {
			return status.Errorf(codes.AlreadyExists, "Payment can only be confirmed for a PENDING policy. Current status: %s", policy.Status)
		}

		policy.Status = models.PolicyStatusPendingApproval
		if err := tx.Save(&policy).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save policy: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &policy, nil
}

// ApprovePolicy transitions an awaiting-decision policy to APPROVED and runs
// the commission engine in the same transaction. If commission creation
// fails, the status change rolls back and the policy stays awaiting
// decision. The row lock serializes concurrent approval attempts: the loser
// observes the updated status and gets a conflict.
func (h *PolicyHandler) ApprovePolicy(ctx context.Context, policyID, approvedBy int64, notes string) (*models.Policy, error) {
	var policy models.Policy
	var created []models.Commission

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&policy, policyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Policy with ID %d not found", policyID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve policy: %v", err)
		}

		if policy.IsTerminal() {
			return status.Errorf(codes.AlreadyExists, "Policy %s has already been decided. Current status: %s", policy.PolicyNumber, policy.Status)
		}

		now := time.Now()
		policy.Status = models.PolicyStatusApproved
		policy.ApprovedBy = &approvedBy
		policy.ApprovedAt = &now
		if notes != "" {
			policy.ApprovalNotes = &notes
		}

		if err := tx.Save(&policy).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save policy approval: %v", err)
		}

		commissions, err := commission.CreateForPolicy(tx, &policy)
		if err != nil {
			return status.Errorf(codes.Internal, "Failed to create commissions: %v", err)
		}
		created = commissions

		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("policy approved",
		zap.String("policy_number", policy.PolicyNumber),
		zap.Int("commissions_created", len(created)))

	h.notifier.Dispatch(notify.Event{
		Type:      notify.EventPolicyApproved,
		SubjectID: policy.CustomerID,
		Message:   fmt.Sprintf("Policy %s has been approved", policy.PolicyNumber),
	})

	return &policy, nil
}

// RejectPolicy transitions an awaiting-decision policy to REJECTED. No
// commission side effects.
func (h *PolicyHandler) RejectPolicy(ctx context.Context, policyID, rejectedBy int64, reason string) (*models.Policy, error) {
	if reason == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Rejection reason is required")
	}

	var policy models.Policy

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&policy, policyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Policy with ID %d not found", policyID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve policy: %v", err)
		}

		if policy.IsTerminal() {
			return status.Errorf(codes.AlreadyExists, "Policy %s has already been decided. Current status: %s", policy.PolicyNumber, policy.Status)
		}

		now := time.Now()
		policy.Status = models.PolicyStatusRejected
		policy.RejectedBy = &rejectedBy
		policy.RejectedAt = &now
		policy.RejectionReason = &reason

		if err := tx.Save(&policy).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save policy rejection: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.notifier.Dispatch(notify.Event{
		Type:      notify.EventPolicyRejected,
		SubjectID: policy.CustomerID,
		Message:   fmt.Sprintf("Policy %s has been rejected: %s", policy.PolicyNumber, reason),
	})

	return &policy, nil
}

func (h *PolicyHandler) GetPolicy(ctx context.Context, policyID int64) (*models.Policy, error) {
	var policy models.Policy
	if err := h.db.WithContext(ctx).Preload("Customer").Preload("Agent").First(&policy, policyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "Policy with ID %d not found", policyID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get policy: %v", err)
	}
	return &policy, nil
}

type ListPoliciesFilter struct {
	CustomerID *int64
	AgentID    *int64
	Status     *string
	Page       int
	PageSize   int
}

func (h *PolicyHandler) ListPolicies(ctx context.Context, filter ListPoliciesFilter) ([]models.Policy, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.PageSize
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.db.WithContext(ctx).Model(&models.Policy{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, status.Errorf(codes.Internal, "Failed to count policies: %v", err)
	}

	var policies []models.Policy
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&policies).Error; err != nil {
		return nil, 0, status.Errorf(codes.Internal, "Failed to retrieve policies: %v", err)
	}

	return policies, totalCount, nil
}

type CreateCustomerRequest struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

func (h *PolicyHandler) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	if req.FullName == "" || req.Email == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Full name and email are required")
	}

	customer := models.Customer{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if err := h.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create customer: %v", err)
	}
	return &customer, nil
}
