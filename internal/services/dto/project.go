package dto

import (
	"freelancehub/internal/models"

	"github.com/shopspring/decimal"
)

type CreateProjectRequest struct {
	Title       string          `json:"title" binding:"required" validate:"required,min=3,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Skills      []string        `json:"skills"`
	Budget      decimal.Decimal `json:"budget" binding:"required"`
}

type UpdateProjectRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Skills      []string         `json:"skills,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
}

// ProjectListQuery carries the listing filters. Skills is comma-separated,
// budget bounds are decimal strings.
type ProjectListQuery struct {
	Status    string `form:"status" validate:"omitempty,is-project-status"`
	Category  string `form:"category"`
	Skills    string `form:"skills"`
	BudgetMin string `form:"budget_min"`
	BudgetMax string `form:"budget_max"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset    int    `form:"offset" validate:"omitempty,min=0"`
}

type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
}
