package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Milestone struct {
	BaseModel
	ProjectID   string          `gorm:"not null;index" json:"project_id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric" json:"amount"`
	DueDate     string          `json:"due_date"`

	Status     MilestoneStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ApprovedAt *time.Time      `json:"approved_at"`
	PaidAt     *time.Time      `json:"paid_at"`

	// Payment-gateway correlation id, set when a payment intent is opened.
	StripePaymentIntentID string `gorm:"index" json:"stripe_payment_intent_id,omitempty"`
}
