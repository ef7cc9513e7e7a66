package repositories

import (
	"errors"
	"sort"
	"strings"

	"freelancehub/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByUsername(db *gorm.DB, username string) (*models.User, error)
	Update(db *gorm.DB, user *models.User) error
	SearchFreelancers(db *gorm.DB, criteria FreelancerSearchCriteria) ([]models.User, int64, error)
}

// FreelancerSearchCriteria filters the freelancer directory. Query matches
// case-insensitively across username, first/last name, bio and skills.
type FreelancerSearchCriteria struct {
	Query     string
	MinRating float64
	Limit     int
	Offset    int
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

// SearchFreelancers returns freelancers sorted by rating descending. On
// postgres the substring match runs as ILIKE over the profile columns and
// the jsonb skills cast to text; the sqlite test database has no ILIKE, so
// it falls back to an in-memory scan.
func (r *userRepository) SearchFreelancers(db *gorm.DB, criteria FreelancerSearchCriteria) ([]models.User, int64, error) {
	if db.Dialector.Name() == "postgres" {
		return r.searchSQL(db, criteria)
	}

	var users []models.User
	if err := db.Where("role = ?", models.UserRoleFreelancer).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	q := strings.ToLower(strings.TrimSpace(criteria.Query))
	matched := make([]models.User, 0, len(users))
	for _, u := range users {
		if criteria.MinRating > 0 && u.Rating < criteria.MinRating {
			continue
		}
		if q != "" && !freelancerMatches(&u, q) {
			continue
		}
		matched = append(matched, u)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rating > matched[j].Rating
	})

	total := int64(len(matched))
	return paginate(matched, criteria.Limit, criteria.Offset), total, nil
}

func (r *userRepository) searchSQL(db *gorm.DB, criteria FreelancerSearchCriteria) ([]models.User, int64, error) {
	query := db.Model(&models.User{}).Where("role = ?", models.UserRoleFreelancer)
	if criteria.MinRating > 0 {
		query = query.Where("rating >= ?", criteria.MinRating)
	}
	if q := strings.TrimSpace(criteria.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(
			"username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR bio ILIKE ? OR skills::text ILIKE ?",
			pattern, pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("rating DESC").Offset(criteria.Offset)
	if criteria.Limit > 0 {
		query = query.Limit(criteria.Limit)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func freelancerMatches(u *models.User, q string) bool {
	for _, field := range []string{u.Username, u.FirstName, u.LastName, u.Bio} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, skill := range u.Skills {
		if strings.Contains(strings.ToLower(skill), q) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
