package repositories

import (
	"errors"
	"time"

	"freelancehub/internal/models"

	"gorm.io/gorm"
)

var ErrMilestoneNotFound = errors.New("milestone not found")

type MilestoneRepository interface {
	CreateBatch(db *gorm.DB, milestones []models.Milestone) error
	FindByID(db *gorm.DB, id string) (*models.Milestone, error)
	FindByProject(db *gorm.DB, projectID string) ([]models.Milestone, error)
	FindByPaymentIntentID(db *gorm.DB, intentID string) (*models.Milestone, error)
	FindAwaitingPayment(db *gorm.DB) ([]models.Milestone, error)
	MarkPaid(db *gorm.DB, milestoneID string, paidAt time.Time) (bool, error)
	Save(db *gorm.DB, milestone *models.Milestone) error
}

type milestoneRepository struct{}

func NewMilestoneRepository() MilestoneRepository {
	return &milestoneRepository{}
}

func (r *milestoneRepository) CreateBatch(db *gorm.DB, milestones []models.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}
	return db.Create(&milestones).Error
}

func (r *milestoneRepository) FindByID(db *gorm.DB, id string) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := db.First(&milestone, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, err
	}
	return &milestone, nil
}

func (r *milestoneRepository) FindByProject(db *gorm.DB, projectID string) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&milestones).Error
	return milestones, err
}

func (r *milestoneRepository) FindByPaymentIntentID(db *gorm.DB, intentID string) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := db.First(&milestone, "stripe_payment_intent_id = ?", intentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, err
	}
	return &milestone, nil
}

// FindAwaitingPayment returns approved milestones that have an open payment
// intent but no recorded payment; the reconciliation worker polls these.
func (r *milestoneRepository) FindAwaitingPayment(db *gorm.DB) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := db.Where("status = ? AND stripe_payment_intent_id <> '' AND paid_at IS NULL",
		models.MilestoneStatusApproved).
		Find(&milestones).Error
	return milestones, err
}

// MarkPaid conditionally records the payment. The unpaid guard lives in the
// UPDATE itself so concurrent finalizers (webhook, confirm, reconciliation)
// race on the row, not on a stale in-memory load; exactly one wins.
func (r *milestoneRepository) MarkPaid(db *gorm.DB, milestoneID string, paidAt time.Time) (bool, error) {
	result := db.Model(&models.Milestone{}).
		Where("id = ? AND paid_at IS NULL", milestoneID).
		Updates(map[string]interface{}{
			"status":  models.MilestoneStatusPaid,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *milestoneRepository) Save(db *gorm.DB, milestone *models.Milestone) error {
	return db.Save(milestone).Error
}
