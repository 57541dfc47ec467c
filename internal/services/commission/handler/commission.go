package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cattleguard-system/internal/cache"
	"cattleguard-system/internal/database/models"
	"cattleguard-system/internal/notify"
)

type CommissionHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	notifier *notify.Notifier
	logger   *zap.Logger
}

func NewCommissionHandler(db *gorm.DB, redisClient *redis.Client, notifier *notify.Notifier, logger *zap.Logger) *CommissionHandler {
	return &CommissionHandler{
		db:       db,
		redis:    redisClient,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *CommissionHandler) invalidateWalletCache(ctx context.Context, agentID int64) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Del(ctx, cache.WalletSummaryKey(agentID)).Err(); err != nil {
		h.logger.Warn("failed to invalidate wallet cache",
			zap.Int64("agent_id", agentID), zap.Error(err))
	}
}

// ApproveCommission credits a pending commission to the owning agent's
// wallet. Commission status and wallet totals commit or roll back together;
// the row locks serialize concurrent approvals of the same commission so
// exactly one caller wins.
func (h *CommissionHandler) ApproveCommission(ctx context.Context, commissionID, approvedBy int64) (*models.Commission, error) {
	commission, err := h.approveCommissionTx(ctx, commissionID, approvedBy)
	if err != nil {
		return nil, err
	}

	h.invalidateWalletCache(ctx, commission.AgentID)
	h.notifier.Dispatch(notify.Event{
		Type:      notify.EventCommissionCredited,
		SubjectID: commission.AgentID,
		Message:   fmt.Sprintf("Commission of %s credited to your wallet", commission.Amount),
	})

	return commission, nil
}

func (h *CommissionHandler) approveCommissionTx(ctx context.Context, commissionID, approvedBy int64) (*models.Commission, error) {
	var commission models.Commission

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&commission, commissionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Commission with ID %d not found", commissionID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve commission: %v", err)
		}

		if commission.Status != models.CommissionStatusPending {
			return status.Errorf(codes.AlreadyExists, "Commission can only be approved from pending status. Current status: %s", commission.Status)
		}

		var agent models.Agent
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agent, commission.AgentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Agent with ID %d not found", commission.AgentID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
		}

		amount := parseDecimal(commission.Amount)
		agent.WalletBalance = parseDecimal(agent.WalletBalance).Add(amount).StringFixed(2)
		agent.TotalEarnings = parseDecimal(agent.TotalEarnings).Add(amount).StringFixed(2)

		now := time.Now()
		commission.Status = models.CommissionStatusApproved
		commission.ApprovedBy = &approvedBy
		commission.SettledAt = &now

		if err := tx.Save(&commission).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save commission: %v", err)
		}
		if err := tx.Save(&agent).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save agent wallet: %v", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return &commission, nil
}

type BulkApproveResult struct {
	Approved     []models.Commission `json:"approved"`
	Errors       []string            `json:"errors"`
	SuccessCount int32               `json:"success_count"`
	ErrorCount   int32               `json:"error_count"`
}

// BulkApproveCommissions approves each commission in its own transaction.
// Results are independent: one failure never rolls back ids already
// committed.
func (h *CommissionHandler) BulkApproveCommissions(ctx context.Context, commissionIDs []int64, approvedBy int64) (*BulkApproveResult, error) {
	if len(commissionIDs) == 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Commission IDs are required")
	}

	var (
		approved      []models.Commission
		errorMessages []string
		wg            sync.WaitGroup
		mu            sync.Mutex
	)

	for _, commissionID := range commissionIDs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()

			commission, err := h.approveCommissionTx(ctx, id, approvedBy)
			if err != nil {
				mu.Lock()
				errorMessages = append(errorMessages, fmt.Sprintf("Commission ID %d: %v", id, err))
				mu.Unlock()
				return
			}

			h.invalidateWalletCache(ctx, commission.AgentID)

			mu.Lock()
			approved = append(approved, *commission)
			mu.Unlock()
		}(commissionID)
	}

	wg.Wait()

	return &BulkApproveResult{
		Approved:     approved,
		Errors:       errorMessages,
		SuccessCount: int32(len(approved)),
		ErrorCount:   int32(len(errorMessages)),
	}, nil
}

func (h *CommissionHandler) GetCommission(ctx context.Context, commissionID int64) (*models.Commission, error) {
	var commission models.Commission
	if err := h.db.WithContext(ctx).Preload("Agent").Preload("Policy").First(&commission, commissionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "Commission with ID %d not found", commissionID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get commission: %v", err)
	}
	return &commission, nil
}

type ListCommissionsFilter struct {
	AgentID  *int64
	PolicyID *int64
	Status   *string
	Page     int
	PageSize int
}

func (h *CommissionHandler) ListCommissions(ctx context.Context, filter ListCommissionsFilter) ([]models.Commission, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.PageSize
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.db.WithContext(ctx).Model(&models.Commission{})
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.PolicyID != nil {
		query = query.Where("policy_id = ?", *filter.PolicyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, status.Errorf(codes.Internal, "Failed to count commissions: %v", err)
	}

	var commissions []models.Commission
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&commissions).Error; err != nil {
		return nil, 0, status.Errorf(codes.Internal, "Failed to retrieve commissions: %v", err)
	}

	return commissions, totalCount, nil
}

// Commission Settings

func (h *CommissionHandler) ListCommissionSettings(ctx context.Context) ([]models.CommissionSetting, error) {
	var settings []models.CommissionSetting
	if err := h.db.WithContext(ctx).Order("level asc").Find(&settings).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve commission settings: %v", err)
	}
	return settings, nil
}

type UpsertSettingRequest struct {
	Level      int32
	Percent    string
	MinPremium *string
	MaxPremium *string
	IsActive   bool
}

func (h *CommissionHandler) UpsertCommissionSetting(ctx context.Context, req UpsertSettingRequest) (*models.CommissionSetting, error) {
	if req.Level < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "Level must be a positive integer")
	}

	percent, err := parseStrictDecimal(req.Percent)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid percentage: %v", err)
	}
	if percent.IsNegative() || percent.GreaterThan(oneHundred) {
		return nil, status.Errorf(codes.InvalidArgument, "Percentage must be between 0 and 100")
	}

	if req.MinPremium != nil && req.MaxPremium != nil {
		minP, errMin := parseStrictDecimal(*req.MinPremium)
		maxP, errMax := parseStrictDecimal(*req.MaxPremium)
		if errMin != nil || errMax != nil {
			return nil, status.Errorf(codes.InvalidArgument, "Invalid premium bounds")
		}
		if minP.GreaterThan(maxP) {
			return nil, status.Errorf(codes.InvalidArgument, "Minimum premium cannot exceed maximum premium")
		}
	}

	setting := models.CommissionSetting{
		Level:      req.Level,
		Percent:    percent.StringFixed(2),
		MinPremium: req.MinPremium,
		MaxPremium: req.MaxPremium,
		IsActive:   req.IsActive,
	}

	err = h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "level"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent", "min_premium", "max_premium", "is_active", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to save commission setting: %v", err)
	}

	return &setting, nil
}
