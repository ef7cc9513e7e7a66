package repositories

import (
	"errors"

	"freelancehub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(db *gorm.DB, project *models.Project) error
	FindByID(db *gorm.DB, id string) (*models.Project, error)
	FindByIDWithMilestones(db *gorm.DB, id string) (*models.Project, error)
	List(db *gorm.DB, filter ProjectFilter) ([]models.Project, int64, error)
	Save(db *gorm.DB, project *models.Project) error
	Delete(db *gorm.DB, id string) (bool, error)
	MarkInProgress(db *gorm.DB, projectID, freelancerID, proposalID string) (bool, error)
}

// ProjectFilter narrows the listing. Skills matches when any requested
// skill intersects the stored skill list.
type ProjectFilter struct {
	Status    models.ProjectStatus
	Category  string
	Skills    []string
	BudgetMin *decimal.Decimal
	BudgetMax *decimal.Decimal
	Limit     int
	Offset    int
}

type projectRepository struct{}

func NewProjectRepository() ProjectRepository {
	return &projectRepository{}
}

func (r *projectRepository) Create(db *gorm.DB, project *models.Project) error {
	return db.Create(project).Error
}

func (r *projectRepository) FindByID(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByIDWithMilestones(db *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	if err := db.Preload("Milestones").First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// List filters newest first. On postgres every criterion is pushed into the
// query; on the sqlite test database skills live in a plain json column and
// decimals compare as text, so those criteria fall back to an in-memory scan.
func (r *projectRepository) List(db *gorm.DB, filter ProjectFilter) ([]models.Project, int64, error) {
	if db.Dialector.Name() == "postgres" {
		return r.listSQL(db, filter)
	}

	query := db.Model(&models.Project{}).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	matched := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if len(filter.Skills) > 0 && !skillsIntersect(p.Skills, filter.Skills) {
			continue
		}
		if filter.BudgetMin != nil && p.Budget.LessThan(*filter.BudgetMin) {
			continue
		}
		if filter.BudgetMax != nil && p.Budget.GreaterThan(*filter.BudgetMax) {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

func (r *projectRepository) listSQL(db *gorm.DB, filter ProjectFilter) ([]models.Project, int64, error) {
	query := db.Model(&models.Project{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if len(filter.Skills) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(skills) AS s(skill) WHERE s.skill IN ?)",
			filter.Skills)
	}
	if filter.BudgetMin != nil {
		query = query.Where("budget >= ?", filter.BudgetMin)
	}
	if filter.BudgetMax != nil {
		query = query.Where("budget <= ?", filter.BudgetMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func skillsIntersect(stored []string, requested []string) bool {
	for _, want := range requested {
		for _, have := range stored {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (r *projectRepository) Save(db *gorm.DB, project *models.Project) error {
	return db.Save(project).Error
}

func (r *projectRepository) Delete(db *gorm.DB, id string) (bool, error) {
	result := db.Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkInProgress flips an open project to in_progress and binds the
// freelancer and winning proposal. The status predicate makes the update
// conditional: when two accepts race, only the first one changes a row and
// the second sees false.
func (r *projectRepository) MarkInProgress(db *gorm.DB, projectID, freelancerID, proposalID string) (bool, error) {
	result := db.Model(&models.Project{}).
		Where("id = ? AND status = ?", projectID, models.ProjectStatusOpen).
		Updates(map[string]interface{}{
			"status":               models.ProjectStatusInProgress,
			"freelancer_id":        freelancerID,
			"accepted_proposal_id": proposalID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
