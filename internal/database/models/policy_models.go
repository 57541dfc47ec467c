package models

import (
	"time"
)

const (
	PolicyStatusPending         = "PENDING"
	PolicyStatusPendingApproval = "PENDING_APPROVAL"
	PolicyStatusApproved        = "APPROVED"
	PolicyStatusRejected        = "REJECTED"
)

// Policy is a single cattle-insurance sale. APPROVED and REJECTED are
// terminal; a policy never leaves a terminal state.
type Policy struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PolicyNumber string `gorm:"uniqueIndex;not null" json:"policy_number"`
	CustomerID   int64  `gorm:"index;not null" json:"customer_id"`
	AgentID      *int64 `gorm:"index" json:"agent_id,omitempty"`

	CattleTag      string `gorm:"not null" json:"cattle_tag"`
	Breed          string `json:"breed"`
	PremiumAmount  string `gorm:"type:decimal(18,2);not null" json:"premium_amount"`
	CoverageAmount string `gorm:"type:decimal(18,2);not null" json:"coverage_amount"`

	Status string `gorm:"index;not null;default:'PENDING'" json:"status"`

	ApprovedBy      *int64     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovalNotes   *string    `gorm:"type:text" json:"approval_notes,omitempty"`
	RejectedBy      *int64     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt *time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Agent    *Agent    `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (Policy) TableName() string {
	return "policies"
}

// IsTerminal reports whether the policy can no longer change status.
func (p *Policy) IsTerminal() bool {
	return p.Status == PolicyStatusApproved || p.Status == PolicyStatusRejected
}
