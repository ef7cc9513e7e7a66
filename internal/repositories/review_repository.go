package repositories

import (
	"errors"

	"freelancehub/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this project")
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByID(db *gorm.DB, id string) (*models.Review, error)
	FindByProjectAndReviewer(db *gorm.DB, projectID, reviewerID string) (*models.Review, error)
	FindByReviewee(db *gorm.DB, revieweeID string, limit, offset int) ([]models.Review, int64, error)
	RecalculateUserRating(db *gorm.DB, userID string) error
}

type reviewRepository struct{}

func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	var existing models.Review
	err := db.Where("project_id = ? AND reviewer_id = ?", review.ProjectID, review.ReviewerID).
		First(&existing).Error
	if err == nil {
		return ErrReviewAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Create(review).Error
}

func (r *reviewRepository) FindByID(db *gorm.DB, id string) (*models.Review, error) {
	var review models.Review
	if err := db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByProjectAndReviewer(db *gorm.DB, projectID, reviewerID string) (*models.Review, error) {
	var review models.Review
	err := db.Where("project_id = ? AND reviewer_id = ?", projectID, reviewerID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByReviewee(db *gorm.DB, revieweeID string, limit, offset int) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).Where("reviewee_id = ?", revieweeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}

// RecalculateUserRating refreshes the denormalized rating and review count
// on the reviewee. Called inside the review-creation transaction.
func (r *reviewRepository) RecalculateUserRating(db *gorm.DB, userID string) error {
	type aggregate struct {
		Avg   float64
		Count int64
	}
	var agg aggregate
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("reviewee_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"review_count": agg.Count,
		}).Error
}
