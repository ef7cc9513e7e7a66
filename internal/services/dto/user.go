package dto

import "freelancehub/internal/models"

// UpdateProfileRequest uses pointers so absent fields stay untouched.
// Role is deliberately not here: it is immutable after registration.
type UpdateProfileRequest struct {
	FirstName      *string  `json:"first_name,omitempty"`
	LastName       *string  `json:"last_name,omitempty"`
	Bio            *string  `json:"bio,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	PortfolioLinks []string `json:"portfolio_links,omitempty"`
	HourlyRate     *string  `json:"hourly_rate,omitempty"`
}

type FreelancerSearchQuery struct {
	Query     string  `form:"q"`
	MinRating float64 `form:"min_rating" validate:"omitempty,min=0,max=5"`
	Limit     int     `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset    int     `form:"offset" validate:"omitempty,min=0"`
}

type UserListResponse struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}
