package handler

import (
	"context"
	"encoding/json"
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
)

const walletSummaryCacheTTL = 2 * time.Hour

type AgentHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

func NewAgentHandler(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

func newAgentCode() string {
	return "AG-" + strings.ToUpper(uuid.New().String()[:8])
}

type RegisterAgentRequest struct {
	FullName          string
	Email             string
	Phone             string
	ParentCode        *string
	CommissionPercent *string
	BankName          *string
	BankAccountNo     *string
	BankHolder        *string
}

// RegisterAgent creates a pending agent. The parent, resolved by agent code,
// is fixed at creation and never reassigned; the new agent's level is one
// below its parent's.
func (h *AgentHandler) RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*models.Agent, error) {
	if req.FullName == "" || req.Email == "" {
		return nil, status.Errorf(codes.InvalidArgument, "Full name and email are required")
	}

	if req.CommissionPercent != nil {
		percent, err := decimal.NewFromString(*req.CommissionPercent)
		if err != nil || percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, status.Errorf(codes.InvalidArgument, "Commission percentage must be between 0 and 100")
		}
	}

	agent := models.Agent{
		AgentCode:         newAgentCode(),
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Status:            models.AgentStatusPending,
		Level:             1,
		CommissionPercent: req.CommissionPercent,
		WalletBalance:     "0.00",
		TotalEarnings:     "0.00",
		TotalWithdrawals:  "0.00",
		BankName:          req.BankName,
		BankAccountNo:     req.BankAccountNo,
		BankHolder:        req.BankHolder,
	}

	if req.ParentCode != nil && *req.ParentCode != "" {
		var parent models.Agent
		if err := h.db.WithContext(ctx).Where("agent_code = ?", *req.ParentCode).First(&parent).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, status.Errorf(codes.NotFound, "Referring agent with code %s not found", *req.ParentCode)
			}
			return nil, status.Errorf(codes.Internal, "Failed to resolve referring agent: %v", err)
		}
		if parent.Status != models.AgentStatusActive {
			return nil, status.Errorf(codes.FailedPrecondition, "Referring agent %s is not active", parent.AgentCode)
		}
		agent.ParentID = &parent.ID
		agent.Level = parent.Level + 1
	}

	if err := h.db.WithContext(ctx).Create(&agent).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to create agent: %v", err)
	}

	return &agent, nil
}

// ActivateAgent moves a pending agent to active. Admin KYC approval.
func (h *AgentHandler) ActivateAgent(ctx context.Context, agentID int64) (*models.Agent, error) {
	var agent models.Agent

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agent, agentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return status.Errorf(codes.NotFound, "Agent with ID %d not found", agentID)
			}
			return status.Errorf(codes.Internal, "Failed to retrieve agent: %v", err)
		}

		if agent.Status != models.AgentStatusPending {
			return status.Errorf(codes.AlreadyExists, "Agent can only be activated from pending status. Current status: %s", agent.Status)
		}

		now := time.Now()
		agent.Status = models.AgentStatusActive
		agent.ApprovedAt = &now

		if err := tx.Save(&agent).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to save agent activation: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &agent, nil
}

func (h *AgentHandler) GetAgent(ctx context.Context, agentID int64) (*models.Agent, error) {
	var agent models.Agent
	if err := h.db.WithContext(ctx).Preload("Parent").First(&agent, agentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "Agent with ID %d not found", agentID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get agent: %v", err)
	}
	return &agent, nil
}

type WalletSummary struct {
	AgentID            int64               `json:"agent_id"`
	AgentCode          string              `json:"agent_code"`
	WalletBalance      string              `json:"wallet_balance"`
	TotalEarnings      string              `json:"total_earnings"`
	TotalWithdrawals   string              `json:"total_withdrawals"`
	PendingCommissions string              `json:"pending_commissions"`
	PendingCount       int32               `json:"pending_count"`
	RecentCommissions  []models.Commission `json:"recent_commissions"`
}

// GetWalletSummary returns the agent's wallet totals plus pending commission
// aggregates, cached in redis and invalidated on every wallet mutation.
func (h *AgentHandler) GetWalletSummary(ctx context.Context, agentID int64) (*WalletSummary, error) {
	cacheKey := cache.WalletSummaryKey(agentID)

	if h.redis != nil {
		val, err := h.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached WalletSummary
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			h.logger.Warn("redis error on wallet summary get, falling back to DB", zap.Error(err))
		}
	}

	var agent models.Agent
	if err := h.db.WithContext(ctx).First(&agent, agentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, status.Errorf(codes.NotFound, "Agent with ID %d not found", agentID)
		}
		return nil, status.Errorf(codes.Internal, "Failed to get agent: %v", err)
	}

	var aggResult struct {
		PendingTotal string
		PendingCount int32
	}
	err := h.db.WithContext(ctx).Model(&models.Commission{}).
		Select("COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) as pending_total, "+
			"COUNT(CASE WHEN status = ? THEN 1 END) as pending_count",
			models.CommissionStatusPending, models.CommissionStatusPending).
		Where("agent_id = ?", agentID).
		Scan(&aggResult).Error
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to aggregate commissions: %v", err)
	}

	var recent []models.Commission
	if err := h.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("created_at desc").Limit(5).Find(&recent).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to get recent commissions: %v", err)
	}

	pendingTotal, _ := decimal.NewFromString(aggResult.PendingTotal)

	summary := &WalletSummary{
		AgentID:            agent.ID,
		AgentCode:          agent.AgentCode,
		WalletBalance:      agent.WalletBalance,
		TotalEarnings:      agent.TotalEarnings,
		TotalWithdrawals:   agent.TotalWithdrawals,
		PendingCommissions: pendingTotal.StringFixed(2),
		PendingCount:       aggResult.PendingCount,
		RecentCommissions:  recent,
	}

	if h.redis != nil {
		if jsonData, err := json.Marshal(summary); err == nil {
			if err := h.redis.Set(ctx, cacheKey, jsonData, walletSummaryCacheTTL).Err(); err != nil {
				h.logger.Warn("failed to cache wallet summary", zap.Error(err))
			}
		}
	}

	return summary, nil
}
