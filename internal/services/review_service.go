package services

import (
	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"gorm.io/gorm"
)

type ReviewService interface {
	Create(db *gorm.DB, reviewerID, projectID string, req *dto.CreateReviewRequest) (*models.Review, error)
	ListForUser(db *gorm.DB, userID string, limit, offset int) (*dto.ReviewListResponse, error)
}

type reviewService struct {
	reviewRepo  repositories.ReviewRepository
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// Create writes a review about the project counterparty and refreshes the
// reviewee's denormalized rating, as one transaction. Append-only and one
// review per reviewer per project.
func (s *reviewService) Create(db *gorm.DB, reviewerID, projectID string, req *dto.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.NewBadRequestError("rating must be between 1 and 5")
	}

	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !project.IsParticipant(reviewerID) {
		return nil, apperrors.ErrNotProjectParticipant
	}
	if project.Status != models.ProjectStatusCompleted {
		return nil, apperrors.ErrInvalidState("review", "Reviews can only be written for completed projects")
	}

	revieweeID := project.OtherParticipant(reviewerID)
	if revieweeID == "" {
		return nil, apperrors.ErrInvalidState("review", "Project has no counterparty to review")
	}

	review := &models.Review{
		ProjectID:  projectID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.Create(tx, review); err != nil {
			return err
		}
		return s.reviewRepo.RecalculateUserRating(tx, revieweeID)
	})
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrAlreadyExists(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return review, nil
}

func (s *reviewService) ListForUser(db *gorm.DB, userID string, limit, offset int) (*dto.ReviewListResponse, error) {
	if limit == 0 {
		limit = 20
	}

	reviews, total, err := s.reviewRepo.FindByReviewee(db, userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ReviewListResponse{Reviews: reviews, Total: total}, nil
}
