package services

import (
	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserService interface {
	GetUser(db *gorm.DB, userID string) (*models.User, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*models.User, error)
	SearchFreelancers(db *gorm.DB, query *dto.FreelancerSearchQuery) (*dto.UserListResponse, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	if req.PortfolioLinks != nil {
		user.PortfolioLinks = req.PortfolioLinks
	}
	if req.HourlyRate != nil {
		rate, err := decimal.NewFromString(*req.HourlyRate)
		if err != nil {
			return nil, apperrors.NewBadRequestError("hourly_rate must be a decimal string")
		}
		user.HourlyRate = rate
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *userService) SearchFreelancers(db *gorm.DB, query *dto.FreelancerSearchQuery) (*dto.UserListResponse, error) {
	limit := query.Limit
	if limit == 0 {
		limit = 20
	}

	users, total, err := s.userRepo.SearchFreelancers(db, repositories.FreelancerSearchCriteria{
		Query:     query.Query,
		MinRating: query.MinRating,
		Limit:     limit,
		Offset:    query.Offset,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.UserListResponse{Users: users, Total: total}, nil
}
