package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProposalMilestone is a milestone entry embedded in a proposal. Entries are
// materialized into Milestone rows verbatim when the proposal is accepted.
type ProposalMilestone struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     string          `json:"due_date"`
}

type Proposal struct {
	BaseModel
	ProjectID    string `gorm:"not null;index" json:"project_id"`
	FreelancerID string `gorm:"not null;index" json:"freelancer_id"`

	CoverLetter      string                                 `json:"cover_letter"`
	ProposedBudget   decimal.Decimal                        `gorm:"type:numeric" json:"proposed_budget"`
	ProposedTimeline string                                 `json:"proposed_timeline"`
	Milestones       datatypes.JSONSlice[ProposalMilestone] `gorm:"type:jsonb" json:"milestones"`
	PortfolioSamples datatypes.JSONSlice[string]            `gorm:"type:jsonb" json:"portfolio_samples"`
	Questions        string                                 `json:"questions"`

	Status ProposalStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
}
