package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cattleguard-system/internal/cache"
	"cattleguard-system/internal/database/models"
	"cattleguard-system/internal/notify"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type WithdrawalHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	notifier  *notify.Notifier
	logger    *zap.Logger
	minAmount decimal.Decimal
}

func NewWithdrawalHandler(db *gorm.DB, redisClient *redis.Client, notifier *notify.Notifier, logger *zap.Logger, minAmount string) *WithdrawalHandler {
	minimum, err := decimal.NewFromString(minAmount)
	if err != nil {
		minimum = decimal.NewFromInt(50)
	}
	return &WithdrawalHandler{
		db:        db,
		redis:     redisClient,
		notifier:  notifier,
		logger:    logger,
		minAmount: minimum,
	}
}

func (h *WithdrawalHandler) invalidateWalletCache(ctx context.Context, agentID int64) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Del(ctx, cache.WalletSummaryKey(agentID)).Err(); err != nil {
		h.logger.Warn("failed to invalidate wallet cache",
			zap.Int64("agent_id", agentID), zap.Error(err))
	}
}

// validateRequestAmount checks the requested amount against basic bounds.
// Balance sufficiency is checked later, under the row lock.
func validateRequestAmount(amount, minimum decimal.Decimal) error {
	if !amount.IsPositive() {
		return status.Errorf(codes.InvalidArgument, "Withdrawal amount must be positive")
	}
	if amount.LessThan(minimum) {
		return status.Errorf(codes.InvalidArgument, "Withdrawal amount is below the minimum of %s", minimum.StringFixed(2))
	}
	return nil
}

func newReferenceNo() string {
	return "WD-" + strings.ToUpper(uuid.New().String()[:12])
}

type RequestWithdrawalRequest struct {
	AgentID  int64
	Amount   string
	UserNote string
}

// RequestWithdrawal creates a pending withdrawal for the agent. The amount
// is validated against the wallet balance under a row lock; an over-balance
// request fails with no record persisted. Bank details are snapshotted onto
// the withdrawal so a later profile change cannot redirect the payout.
func (h *WithdrawalHandler) RequestWithdrawal(ctx context.Context, req RequestWithdrawalRequest) (*models.Withdrawal, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid withdrawal amount: %v", err)
	}
	if err := validateRequestAmount(amount, h.minAmount); err != nil {
		return nil, err
	}

	var withdrawal models.Withdrawal

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agent models.Agent
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agent, req.AgentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Agent with ID %d not found", req.AgentID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
		}

		if agent.Status != models.AgentStatusActive {
			return status.Errorf(codes.FailedPrecondition, "Agent %s is not active", agent.AgentCode)
		}

		balance := parseDecimal(agent.WalletBalance)
		if amount.GreaterThan(balance) {
			return status.Errorf(codes.FailedPrecondition, "Withdrawal amount %s exceeds wallet balance %s", amount.StringFixed(2), balance.StringFixed(2))
		}

		withdrawal = models.Withdrawal{
			ReferenceNo:   newReferenceNo(),
			AgentID:       agent.ID,
			Amount:        amount.StringFixed(2),
			Status:        models.WithdrawalStatusPending,
			BankName:      agent.BankName,
			BankAccountNo: agent.BankAccountNo,
			BankHolder:    agent.BankHolder,
		}
		if req.UserNote != "" {
			withdrawal.UserNote = &req.UserNote
		}

		if err := tx.Create(&withdrawal).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to create withdrawal: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.notifier.Dispatch(notify.Event{
		Type:      notify.EventWithdrawalRequested,
		SubjectID: withdrawal.AgentID,
		Message:   fmt.Sprintf("Withdrawal %s of %s submitted", withdrawal.ReferenceNo, withdrawal.Amount),
	})

	return &withdrawal, nil
}

type ProcessWithdrawalRequest struct {
	WithdrawalID int64
	Action       string
	Reason       string
	AdminNote    string
	ProcessedBy  int64
}

// ProcessWithdrawal settles a pending withdrawal. Approval re-validates the
// balance under the agent row lock and debits wallet and withdrawal totals
// in the same transaction as the status change; rejection only records the
// reason.
func (h *WithdrawalHandler) ProcessWithdrawal(ctx context.Context, req ProcessWithdrawalRequest) (*models.Withdrawal, error) {
	if req.Action != ActionApprove && req.Action != ActionReject {
		return nil, status.Errorf(codes.InvalidArgument, "Action must be %q or %q", ActionApprove, ActionReject)
	}
	if req.Action == ActionReject && req.Reason == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Rejection reason is required")
	}

	var withdrawal models.Withdrawal

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, req.WithdrawalID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Withdrawal with ID %d not found", req.WithdrawalID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve withdrawal: %v", err)
		}

		if withdrawal.Status != models.WithdrawalStatusPending {
			return status.Errorf(codes.AlreadyExists, "Withdrawal can only be processed from pending status. Current status: %s", withdrawal.Status)
		}

		now := time.Now()
		withdrawal.ProcessedBy = &req.ProcessedBy
		withdrawal.ProcessedAt = &now
		if req.AdminNote != "" {
			withdrawal.AdminNote = &req.AdminNote
		}

		if req.Action == ActionReject {
			withdrawal.Status = models.WithdrawalStatusRejected
			withdrawal.RejectionReason = &req.Reason
			if err := tx.Save(&withdrawal).Error; err != nil {
				return status.Errorf(codes.Internal, "Failed to save withdrawal rejection: %v", err)
			}
			return nil
		}

		var agent models.Agent
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agent, withdrawal.AgentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Agent with ID %d not found", withdrawal.AgentID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
		}

		amount := parseDecimal(withdrawal.Amount)
		balance := parseDecimal(agent.WalletBalance)
		if balance.Sub(amount).IsNegative() {
			return status.Errorf(codes.FailedPrecondition, "Wallet balance %s is insufficient for withdrawal of %s", balance.StringFixed(2), amount.StringFixed(2))
		}

		agent.WalletBalance = balance.Sub(amount).StringFixed(2)
		agent.TotalWithdrawals = parseDecimal(agent.TotalWithdrawals).Add(amount).StringFixed(2)
		withdrawal.Status = models.WithdrawalStatusApproved

		if err := tx.Save(&withdrawal).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save withdrawal approval: %v", err)
		}
		if err := tx.Save(&agent).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save agent wallet: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.invalidateWalletCache(ctx, withdrawal.AgentID)
	h.notifier.Dispatch(notify.Event{
		Type:      notify.EventWithdrawalProcessed,
		SubjectID: withdrawal.AgentID,
		Message:   fmt.Sprintf("Withdrawal %s has been %s", withdrawal.ReferenceNo, withdrawal.Status),
	})

	return &withdrawal, nil
}

func (h *WithdrawalHandler) GetWithdrawal(ctx context.Context, withdrawalID int64) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := h.db.WithContext(ctx).Preload("Agent").First(&withdrawal, withdrawalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "Withdrawal with ID %d not found", withdrawalID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get withdrawal: %v", err)
	}
	return &withdrawal, nil
}

type ListWithdrawalsFilter struct {
	AgentID  *int64
	Status   *string
	Page     int
	PageSize int
}

func (h *WithdrawalHandler) ListWithdrawals(ctx context.Context, filter ListWithdrawalsFilter) ([]models.Withdrawal, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.PageSize
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.db.WithContext(ctx).Model(&models.Withdrawal{})
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, status.Errorf(codes.Internal, "Failed to count withdrawals: %v", err)
	}

	var withdrawals []models.Withdrawal
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&withdrawals).Error; err != nil {
		return nil, 0, status.Errorf(codes.Internal, "Failed to retrieve withdrawals: %v", err)
	}

	return withdrawals, totalCount, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
