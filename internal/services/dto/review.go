package dto

import "freelancehub/internal/models"

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewListResponse struct {
	Reviews []models.Review `json:"reviews"`
	Total   int64           `json:"total"`
}
