package models

import (
	"time"
)

const (
	AgentStatusPending  = "pending"
	AgentStatusActive   = "active"
	AgentStatusInactive = "inactive"
	AgentStatusRejected = "rejected"
)

// Agent is a node in the referral hierarchy. ParentID is fixed at
// registration and never reassigned; wallet fields are mutated only by the
// commission and withdrawal services, inside their transactions.
type Agent struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentCode string `gorm:"uniqueIndex;not null" json:"agent_code"`
	FullName  string `gorm:"not null" json:"full_name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string `json:"phone"`
	Status    string `gorm:"index;not null;default:'pending'" json:"status"`
	ParentID  *int64 `gorm:"index" json:"parent_id,omitempty"`
	Level     int32  `gorm:"not null;default:1" json:"level"`

	// Optional override for the agent's own level-1 payout percentage.
	CommissionPercent *string `gorm:"type:decimal(5,2)" json:"commission_percent,omitempty"`

	WalletBalance    string `gorm:"type:decimal(18,2);not null;default:0" json:"wallet_balance"`
	TotalEarnings    string `gorm:"type:decimal(18,2);not null;default:0" json:"total_earnings"`
	TotalWithdrawals string `gorm:"type:decimal(18,2);not null;default:0" json:"total_withdrawals"`

	BankName      *string `json:"bank_name,omitempty"`
	BankAccountNo *string `json:"bank_account_no,omitempty"`
	BankHolder    *string `json:"bank_holder,omitempty"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  *time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Parent *Agent `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

func (Agent) TableName() string {
	return "agents"
}

type Customer struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName  string     `gorm:"not null" json:"full_name"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string     `json:"phone"`
	Address   string     `gorm:"type:text" json:"address"`
	CreatedAt *time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
