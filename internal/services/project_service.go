package services

import (
	"strings"

	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectService interface {
	Create(db *gorm.DB, clientID string, req *dto.CreateProjectRequest) (*models.Project, error)
	Get(db *gorm.DB, projectID string) (*models.Project, error)
	List(db *gorm.DB, query *dto.ProjectListQuery) (*dto.ProjectListResponse, error)
	Update(db *gorm.DB, userID, projectID string, req *dto.UpdateProjectRequest) (*models.Project, error)
	Delete(db *gorm.DB, userID string, role models.UserRole, projectID string) (bool, error)
	Complete(db *gorm.DB, userID, projectID string) (*models.Project, error)
	Cancel(db *gorm.DB, userID, projectID string) (*models.Project, error)
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
}

func NewProjectService(projectRepo repositories.ProjectRepository, userRepo repositories.UserRepository) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// Create opens a project and books the budget onto the client's TotalSpent
// counter, in one transaction.
func (s *projectService) Create(db *gorm.DB, clientID string, req *dto.CreateProjectRequest) (*models.Project, error) {
	if req.Budget.IsNegative() {
		return nil, apperrors.NewBadRequestError("budget must not be negative")
	}

	project := &models.Project{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Skills:      req.Skills,
		Budget:      req.Budget,
		Status:      models.ProjectStatusOpen,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.Create(tx, project); err != nil {
			return err
		}

		client, err := s.userRepo.FindByID(tx, clientID)
		if err != nil {
			return err
		}
		client.TotalSpent = client.TotalSpent.Add(req.Budget)
		return s.userRepo.Update(tx, client)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return project, nil
}

func (s *projectService) Get(db *gorm.DB, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByIDWithMilestones(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return project, nil
}

func (s *projectService) List(db *gorm.DB, query *dto.ProjectListQuery) (*dto.ProjectListResponse, error) {
	filter := repositories.ProjectFilter{
		Status:   models.ProjectStatus(query.Status),
		Category: query.Category,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if query.Skills != "" {
		for _, skill := range strings.Split(query.Skills, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				filter.Skills = append(filter.Skills, skill)
			}
		}
	}
	if query.BudgetMin != "" {
		min, err := decimal.NewFromString(query.BudgetMin)
		if err != nil {
			return nil, apperrors.NewBadRequestError("budget_min must be a decimal string")
		}
		filter.BudgetMin = &min
	}
	if query.BudgetMax != "" {
		max, err := decimal.NewFromString(query.BudgetMax)
		if err != nil {
			return nil, apperrors.NewBadRequestError("budget_max must be a decimal string")
		}
		filter.BudgetMax = &max
	}

	projects, total, err := s.projectRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ProjectListResponse{Projects: projects, Total: total}, nil
}

func (s *projectService) Update(db *gorm.DB, userID, projectID string, req *dto.UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if project.ClientID != userID {
		return nil, apperrors.NewForbiddenError("Only the project owner can edit it")
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, apperrors.ErrInvalidState("project", "Only open projects can be edited")
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.Skills != nil {
		project.Skills = req.Skills
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}

	if err := s.projectRepo.Save(db, project); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return project, nil
}

func (s *projectService) Delete(db *gorm.DB, userID string, role models.UserRole, projectID string) (bool, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return false, apperrors.ErrNotFound(err)
	}
	if project.ClientID != userID && role != models.UserRoleAdmin {
		return false, apperrors.NewForbiddenError("Only the project owner or an admin can delete it")
	}

	deleted, err := s.projectRepo.Delete(db, projectID)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return deleted, nil
}

func (s *projectService) Complete(db *gorm.DB, userID, projectID string) (*models.Project, error) {
	return s.transitionStatus(db, userID, projectID, models.ProjectStatusCompleted,
		models.ProjectStatusInProgress)
}

func (s *projectService) Cancel(db *gorm.DB, userID, projectID string) (*models.Project, error) {
	return s.transitionStatus(db, userID, projectID, models.ProjectStatusCancelled,
		models.ProjectStatusOpen, models.ProjectStatusInProgress)
}

func (s *projectService) transitionStatus(db *gorm.DB, userID, projectID string, target models.ProjectStatus, allowedFrom ...models.ProjectStatus) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if project.ClientID != userID {
		return nil, apperrors.NewForbiddenError("Only the project owner can change its status")
	}

	allowed := false
	for _, from := range allowedFrom {
		if project.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.ErrInvalidState("project", "Transition not allowed from status "+string(project.Status))
	}

	project.Status = target
	if err := s.projectRepo.Save(db, project); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return project, nil
}
