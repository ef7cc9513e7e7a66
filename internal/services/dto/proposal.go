package dto

import (
	"freelancehub/internal/models"

	"github.com/shopspring/decimal"
)

type SubmitProposalRequest struct {
	CoverLetter      string                     `json:"cover_letter"`
	ProposedBudget   decimal.Decimal            `json:"proposed_budget" binding:"required"`
	ProposedTimeline string                     `json:"proposed_timeline"`
	Milestones       []models.ProposalMilestone `json:"milestones"`
	PortfolioSamples []string                   `json:"portfolio_samples"`
	Questions        string                     `json:"questions"`
}

type ProposalListResponse struct {
	Proposals []models.Proposal `json:"proposals"`
	Total     int64             `json:"total"`
}
