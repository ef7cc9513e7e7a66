package models

// Review is append-only: written once by a project participant about the
// counterparty, never edited or deleted by the observed flows.
type Review struct {
	BaseModel
	ProjectID  string `gorm:"not null;index" json:"project_id"`
	ReviewerID string `gorm:"not null;index" json:"reviewer_id"`
	RevieweeID string `gorm:"not null;index" json:"reviewee_id"`
	Rating     int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string `json:"comment"`
}
