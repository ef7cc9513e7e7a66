package services

import (
	"fmt"

	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"gorm.io/gorm"
)

type ProposalService interface {
	Submit(db *gorm.DB, freelancerID, projectID string, req *dto.SubmitProposalRequest) (*models.Proposal, error)
	ListForProject(db *gorm.DB, userID, projectID string) (*dto.ProposalListResponse, error)
	ListForFreelancer(db *gorm.DB, freelancerID string) (*dto.ProposalListResponse, error)
	Accept(db *gorm.DB, clientID, proposalID string) (*models.Proposal, error)
	Reject(db *gorm.DB, clientID, proposalID string) (*models.Proposal, error)
}

type proposalService struct {
	proposalRepo     repositories.ProposalRepository
	projectRepo      repositories.ProjectRepository
	milestoneRepo    repositories.MilestoneRepository
	notificationRepo repositories.NotificationRepository
}

func NewProposalService(
	proposalRepo repositories.ProposalRepository,
	projectRepo repositories.ProjectRepository,
	milestoneRepo repositories.MilestoneRepository,
	notificationRepo repositories.NotificationRepository,
) ProposalService {
	return &proposalService{
		proposalRepo:     proposalRepo,
		projectRepo:      projectRepo,
		milestoneRepo:    milestoneRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *proposalService) Submit(db *gorm.DB, freelancerID, projectID string, req *dto.SubmitProposalRequest) (*models.Proposal, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, apperrors.ErrInvalidState("proposal", "Proposals can only be submitted to open projects")
	}

	hasPending, err := s.proposalRepo.HasPendingForProject(db, projectID, freelancerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if hasPending {
		return nil, apperrors.ErrConflict("proposal", "You already have a pending proposal for this project")
	}

	for _, m := range req.Milestones {
		if m.Amount.IsNegative() {
			return nil, apperrors.NewBadRequestError("milestone amounts must not be negative")
		}
	}

	proposal := &models.Proposal{
		ProjectID:        projectID,
		FreelancerID:     freelancerID,
		CoverLetter:      req.CoverLetter,
		ProposedBudget:   req.ProposedBudget,
		ProposedTimeline: req.ProposedTimeline,
		Milestones:       req.Milestones,
		PortfolioSamples: req.PortfolioSamples,
		Questions:        req.Questions,
		Status:           models.ProposalStatusPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.proposalRepo.Create(tx, proposal); err != nil {
			return err
		}
		return createNotification(tx, s.notificationRepo,
			project.ClientID, models.NotificationTypeProposal,
			"New proposal",
			fmt.Sprintf("A freelancer submitted a proposal for %q", project.Title),
			proposal.ID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposal, nil
}

func (s *proposalService) ListForProject(db *gorm.DB, userID, projectID string) (*dto.ProposalListResponse, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if project.ClientID != userID {
		return nil, apperrors.NewForbiddenError("Only the project owner can list its proposals")
	}

	proposals, err := s.proposalRepo.FindByProject(db, projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ProposalListResponse{Proposals: proposals, Total: int64(len(proposals))}, nil
}

func (s *proposalService) ListForFreelancer(db *gorm.DB, freelancerID string) (*dto.ProposalListResponse, error) {
	proposals, err := s.proposalRepo.FindByFreelancer(db, freelancerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.ProposalListResponse{Proposals: proposals, Total: int64(len(proposals))}, nil
}

// Accept runs the acceptance cascade as one transaction:
//
//  1. proposal -> accepted
//  2. project -> in_progress, bound to the freelancer and the proposal;
//     conditional on the project still being open, so the second of two
//     racing accepts fails with Conflict and rolls back entirely
//  3. one pending Milestone row per embedded proposal milestone, verbatim
//  4. sibling pending proposals -> rejected
//  5. notifications to the accepted freelancer and each rejected one
func (s *proposalService) Accept(db *gorm.DB, clientID, proposalID string) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(db, proposalID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	project, err := s.projectRepo.FindByID(db, proposal.ProjectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if project.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("Only the project owner can accept proposals")
	}
	if proposal.Status.Terminal() {
		return nil, apperrors.ErrInvalidState("proposal", "Proposal is already "+string(proposal.Status))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		flipped, err := s.projectRepo.MarkInProgress(tx, project.ID, proposal.FreelancerID, proposal.ID)
		if err != nil {
			return err
		}
		if !flipped {
			return apperrors.ErrConflict("proposal", "Project is no longer open")
		}

		proposal.Status = models.ProposalStatusAccepted
		if err := s.proposalRepo.Save(tx, proposal); err != nil {
			return err
		}

		milestones := make([]models.Milestone, 0, len(proposal.Milestones))
		for _, m := range proposal.Milestones {
			milestones = append(milestones, models.Milestone{
				ProjectID:   project.ID,
				Title:       m.Title,
				Description: m.Description,
				Amount:      m.Amount,
				DueDate:     m.DueDate,
				Status:      models.MilestoneStatusPending,
			})
		}
		if err := s.milestoneRepo.CreateBatch(tx, milestones); err != nil {
			return err
		}

		siblings, err := s.proposalRepo.FindPendingSiblings(tx, project.ID, proposal.ID)
		if err != nil {
			return err
		}
		for i := range siblings {
			siblings[i].Status = models.ProposalStatusRejected
			if err := s.proposalRepo.Save(tx, &siblings[i]); err != nil {
				return err
			}
			if err := createNotification(tx, s.notificationRepo,
				siblings[i].FreelancerID, models.NotificationTypeProposal,
				"Proposal rejected",
				fmt.Sprintf("Your proposal for %q was not selected", project.Title),
				siblings[i].ID); err != nil {
				return err
			}
		}

		return createNotification(tx, s.notificationRepo,
			proposal.FreelancerID, models.NotificationTypeProposal,
			"Proposal accepted",
			fmt.Sprintf("Your proposal for %q was accepted", project.Title),
			proposal.ID)
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.InternalError(err)
	}
	return proposal, nil
}

func (s *proposalService) Reject(db *gorm.DB, clientID, proposalID string) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(db, proposalID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	project, err := s.projectRepo.FindByID(db, proposal.ProjectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if project.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("Only the project owner can reject proposals")
	}
	if proposal.Status.Terminal() {
		return nil, apperrors.ErrInvalidState("proposal", "Proposal is already "+string(proposal.Status))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		proposal.Status = models.ProposalStatusRejected
		if err := s.proposalRepo.Save(tx, proposal); err != nil {
			return err
		}
		return createNotification(tx, s.notificationRepo,
			proposal.FreelancerID, models.NotificationTypeProposal,
			"Proposal rejected",
			fmt.Sprintf("Your proposal for %q was rejected", project.Title),
			proposal.ID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return proposal, nil
}
