package repositories

import (
	"errors"

	"freelancehub/internal/models"

	"gorm.io/gorm"
)

var ErrProposalNotFound = errors.New("proposal not found")

type ProposalRepository interface {
	Create(db *gorm.DB, proposal *models.Proposal) error
	FindByID(db *gorm.DB, id string) (*models.Proposal, error)
	FindByProject(db *gorm.DB, projectID string) ([]models.Proposal, error)
	FindByFreelancer(db *gorm.DB, freelancerID string) ([]models.Proposal, error)
	HasPendingForProject(db *gorm.DB, projectID, freelancerID string) (bool, error)
	Save(db *gorm.DB, proposal *models.Proposal) error
	FindPendingSiblings(db *gorm.DB, projectID, exceptID string) ([]models.Proposal, error)
}

type proposalRepository struct{}

func NewProposalRepository() ProposalRepository {
	return &proposalRepository{}
}

func (r *proposalRepository) Create(db *gorm.DB, proposal *models.Proposal) error {
	return db.Create(proposal).Error
}

func (r *proposalRepository) FindByID(db *gorm.DB, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := db.First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindByProject(db *gorm.DB, projectID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) FindByFreelancer(db *gorm.DB, freelancerID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := db.Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) HasPendingForProject(db *gorm.DB, projectID, freelancerID string) (bool, error) {
	var count int64
	err := db.Model(&models.Proposal{}).
		Where("project_id = ? AND freelancer_id = ? AND status = ?",
			projectID, freelancerID, models.ProposalStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *proposalRepository) Save(db *gorm.DB, proposal *models.Proposal) error {
	return db.Save(proposal).Error
}

// FindPendingSiblings returns the other pending proposals on a project,
// used by the accept cascade to reject them and notify their authors.
func (r *proposalRepository) FindPendingSiblings(db *gorm.DB, projectID, exceptID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := db.Where("project_id = ? AND id <> ? AND status = ?",
		projectID, exceptID, models.ProposalStatusPending).
		Find(&proposals).Error
	return proposals, err
}
