package models

import (
	"time"
)

const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusPaid     = "paid"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// CommissionSetting holds the configured percentage for one hierarchy level,
// with an optional inclusive premium eligibility range. Read-only to the
// engine; one row per level.
type CommissionSetting struct {
	ID         int32      `gorm:"primaryKey;autoIncrement" json:"id"`
	Level      int32      `gorm:"uniqueIndex;not null" json:"level"`
	Percent    string     `gorm:"type:decimal(5,2);not null" json:"percent"`
	MinPremium *string    `gorm:"type:decimal(18,2)" json:"min_premium,omitempty"`
	MaxPremium *string    `gorm:"type:decimal(18,2)" json:"max_premium,omitempty"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  *time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CommissionSetting) TableName() string {
	return "commission_settings"
}

// Commission is one payout obligation from one policy to one agent at one
// level. Immutable once created except for status; (policy, level) is unique
// so re-approval can never produce a second set.
type Commission struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PolicyID int64  `gorm:"not null;uniqueIndex:idx_commission_policy_level" json:"policy_id"`
	AgentID  int64  `gorm:"index;not null" json:"agent_id"`
	Level    int32  `gorm:"not null;uniqueIndex:idx_commission_policy_level" json:"level"`
	Percent  string `gorm:"type:decimal(5,2);not null" json:"percent"`
	Amount   string `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status   string `gorm:"index;not null;default:'pending'" json:"status"`

	ApprovedBy *int64     `json:"approved_by,omitempty"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`
	CreatedAt  *time.Time `gorm:"autoCreateTime" json:"created_at"`

	Policy *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
	Agent  *Agent  `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (Commission) TableName() string {
	return "commissions"
}

// Withdrawal is an agent request to convert wallet balance into a payout.
// Bank fields are a snapshot taken at request time.
type Withdrawal struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReferenceNo string `gorm:"uniqueIndex;not null" json:"reference_no"`
	AgentID     int64  `gorm:"index;not null" json:"agent_id"`
	Amount      string `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status      string `gorm:"index;not null;default:'pending'" json:"status"`

	BankName      *string `json:"bank_name,omitempty"`
	BankAccountNo *string `json:"bank_account_no,omitempty"`
	BankHolder    *string `json:"bank_holder,omitempty"`

	UserNote        *string    `gorm:"type:text" json:"user_note,omitempty"`
	AdminNote       *string    `gorm:"type:text" json:"admin_note,omitempty"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	ProcessedBy     *int64     `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       *time.Time `gorm:"autoCreateTime" json:"created_at"`

	Agent *Agent `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
