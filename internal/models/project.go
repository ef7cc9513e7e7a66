package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Project struct {
	BaseModel
	ClientID string `gorm:"not null;index" json:"client_id"`

	// Both nil until a proposal is accepted, both set afterwards.
	FreelancerID       *string `gorm:"index" json:"freelancer_id"`
	AcceptedProposalID *string `json:"accepted_proposal_id"`

	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `json:"description"`
	Category    string                      `gorm:"index" json:"category"`
	Skills      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	Budget      decimal.Decimal             `gorm:"type:numeric" json:"budget"`
	Status      ProjectStatus               `gorm:"type:varchar(20);default:'open';index" json:"status"`

	Milestones []Milestone `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
}

// IsParticipant reports whether userID is the client or the assigned
// freelancer of the project.
func (p *Project) IsParticipant(userID string) bool {
	if p.ClientID == userID {
		return true
	}
	return p.FreelancerID != nil && *p.FreelancerID == userID
}

// OtherParticipant returns the counterparty of userID, or "" when the
// project has no assigned freelancer yet.
func (p *Project) OtherParticipant(userID string) string {
	if p.ClientID != userID {
		return p.ClientID
	}
	if p.FreelancerID != nil {
		return *p.FreelancerID
	}
	return ""
}
