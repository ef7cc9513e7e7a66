package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"` // immutable after creation
	Username     string   `gorm:"uniqueIndex;not null" json:"username"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`

	Skills         datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	PortfolioLinks datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"portfolio_links"`
	HourlyRate     decimal.Decimal             `gorm:"type:numeric" json:"hourly_rate"`

	// Financial counters, mutated only by the payment and project workflows.
	TotalEarnings decimal.Decimal `gorm:"type:numeric" json:"total_earnings"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric" json:"total_spent"`

	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	IsVerified  bool    `gorm:"default:false" json:"is_verified"`
}
