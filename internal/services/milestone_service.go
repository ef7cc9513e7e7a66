package services

import (
	"context"
	"fmt"
	"time"

	"freelancehub/internal/metrics"
	"freelancehub/internal/models"
	"freelancehub/internal/payments"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"gorm.io/gorm"
)

// gatewayTimeout bounds every payment-gateway round trip. A timeout is an
// unknown outcome: the call fails upstream and nothing is finalized.
const gatewayTimeout = 15 * time.Second

type MilestoneService interface {
	ListForProject(db *gorm.DB, userID, projectID string) ([]models.Milestone, error)
	SubmitForReview(db *gorm.DB, freelancerID, milestoneID string) (*models.Milestone, error)
	Approve(db *gorm.DB, clientID, milestoneID string) (*models.Milestone, error)
	RejectWork(db *gorm.DB, clientID, milestoneID string) (*models.Milestone, error)
	CreatePaymentIntent(ctx context.Context, db *gorm.DB, clientID, milestoneID string) (*dto.PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, db *gorm.DB, clientID, milestoneID string) (*models.Milestone, error)
	FinalizeByIntentID(db *gorm.DB, intentID string) error
}

type milestoneService struct {
	milestoneRepo    repositories.MilestoneRepository
	projectRepo      repositories.ProjectRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	gateway          payments.Gateway
	currency         string
	clock            Clock
}

func NewMilestoneService(
	milestoneRepo repositories.MilestoneRepository,
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	gateway payments.Gateway,
	currency string,
	clock Clock,
) MilestoneService {
	return &milestoneService{
		milestoneRepo:    milestoneRepo,
		projectRepo:      projectRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		gateway:          gateway,
		currency:         currency,
		clock:            clock,
	}
}

func (s *milestoneService) ListForProject(db *gorm.DB, userID, projectID string) ([]models.Milestone, error) {
	project, err := s.projectRepo.FindByID(db, projectID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !project.IsParticipant(userID) {
		return nil, apperrors.ErrNotProjectParticipant
	}

	milestones, err := s.milestoneRepo.FindByProject(db, projectID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return milestones, nil
}

// SubmitForReview is the freelancer handing in work: pending -> in_review.
func (s *milestoneService) SubmitForReview(db *gorm.DB, freelancerID, milestoneID string) (*models.Milestone, error) {
	milestone, project, err := s.loadMilestone(db, milestoneID)
	if err != nil {
		return nil, err
	}
	if project.FreelancerID == nil || *project.FreelancerID != freelancerID {
		return nil, apperrors.NewForbiddenError("Only the assigned freelancer can submit a milestone")
	}
	if milestone.Status != models.MilestoneStatusPending && milestone.Status != models.MilestoneStatusRejected {
		return nil, apperrors.ErrInvalidState("milestone", "Milestone is not awaiting work")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		milestone.Status = models.MilestoneStatusInReview
		if err := s.milestoneRepo.Save(tx, milestone); err != nil {
			return err
		}
		return createNotification(tx, s.notificationRepo,
			project.ClientID, models.NotificationTypeMilestone,
			"Milestone submitted",
			fmt.Sprintf("Milestone %q was submitted for review", milestone.Title),
			milestone.ID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return milestone, nil
}

func (s *milestoneService) Approve(db *gorm.DB, clientID, milestoneID string) (*models.Milestone, error) {
	milestone, project, err := s.loadMilestone(db, milestoneID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("Only the project owner can approve milestones")
	}
	// The client may approve straight from pending: the review hand-in is
	// optional, not a gate.
	if milestone.Status != models.MilestoneStatusPending && milestone.Status != models.MilestoneStatusInReview {
		return nil, apperrors.ErrInvalidState("milestone", "Milestone is not awaiting approval")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		milestone.Status = models.MilestoneStatusApproved
		milestone.ApprovedAt = &now
		if err := s.milestoneRepo.Save(tx, milestone); err != nil {
			return err
		}

		freelancerID := ""
		if project.FreelancerID != nil {
			freelancerID = *project.FreelancerID
		}
		return createNotification(tx, s.notificationRepo,
			freelancerID, models.NotificationTypeMilestone,
			"Milestone approved",
			fmt.Sprintf("Milestone %q was approved", milestone.Title),
			milestone.ID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return milestone, nil
}

// RejectWork sends an in_review milestone back to the freelancer.
func (s *milestoneService) RejectWork(db *gorm.DB, clientID, milestoneID string) (*models.Milestone, error) {
	milestone, project, err := s.loadMilestone(db, milestoneID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("Only the project owner can reject milestones")
	}
	if milestone.Status != models.MilestoneStatusInReview {
		return nil, apperrors.ErrInvalidState("milestone", "Milestone is not awaiting approval")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		milestone.Status = models.MilestoneStatusRejected
		if err := s.milestoneRepo.Save(tx, milestone); err != nil {
			return err
		}

		freelancerID := ""
		if project.FreelancerID != nil {
			freelancerID = *project.FreelancerID
		}
		return createNotification(tx, s.notificationRepo,
			freelancerID, models.NotificationTypeMilestone,
			"Milestone needs changes",
			fmt.Sprintf("Milestone %q was sent back for rework", milestone.Title),
			milestone.ID)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return milestone, nil
}

// CreatePaymentIntent opens a charge at the gateway for an approved
// milestone and stores the correlation id. Milestone status does not change
// here; it changes when the gateway reports the payment.
func (s *milestoneService) CreatePaymentIntent(ctx context.Context, db *gorm.DB, clientID, milestoneID string) (*dto.PaymentIntentResponse, error) {
	milestone, project, err := s.loadMilestone(db, milestoneID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("Only the project owner can pay milestones")
	}
	if milestone.Status != models.MilestoneStatusApproved {
		return nil, apperrors.ErrInvalidState("milestone", "Only approved milestones can be paid")
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	// Reuse an already-opened intent instead of charging twice.
	if milestone.StripePaymentIntentID != "" {
		intent, err := s.gateway.GetIntent(gctx, milestone.StripePaymentIntentID)
		if err != nil {
			return nil, apperrors.ErrUpstream(err, "payment", "Payment gateway unavailable")
		}
		return &dto.PaymentIntentResponse{
			IntentID:     intent.ID,
			ClientSecret: intent.ClientSecret,
			AmountMinor:  intent.AmountMinor,
			Currency:     s.currency,
		}, nil
	}

	freelancerID := ""
	if project.FreelancerID != nil {
		freelancerID = *project.FreelancerID
	}

	intent, err := s.gateway.CreateIntent(gctx, payments.CreateIntentParams{
		AmountMinor: payments.MinorUnits(milestone.Amount),
		Currency:    s.currency,
		Metadata: map[string]string{
			"milestone_id":  milestone.ID,
			"project_id":    project.ID,
			"freelancer_id": freelancerID,
		},
	})
	if err != nil {
		return nil, apperrors.ErrUpstream(err, "payment", "Payment gateway unavailable")
	}

	milestone.StripePaymentIntentID = intent.ID
	if err := s.milestoneRepo.Save(db, milestone); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.PaymentIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountMinor:  intent.AmountMinor,
		Currency:     s.currency,
	}, nil
}

// ConfirmPayment re-polls the gateway and finalizes only when the gateway
// itself reports the charge succeeded. The caller cannot self-report a
// payment: the authoritative path is the webhook, this endpoint is a
// refresh for clients that don't want to wait for it.
func (s *milestoneService) ConfirmPayment(ctx context.Context, db *gorm.DB, clientID, milestoneID string) (*models.Milestone, error) {
	milestone, project, err := s.loadMilestone(db, milestoneID)
	if err != nil {
		return nil, err
	}
	if project.ClientID != clientID {
		return nil, apperrors.NewForbiddenError("Only the project owner can confirm milestone payments")
	}
	if milestone.PaidAt != nil {
		return milestone, nil // already finalized, idempotent
	}
	if milestone.StripePaymentIntentID == "" {
		return nil, apperrors.ErrInvalidState("payment", "No payment intent opened for this milestone")
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	intent, err := s.gateway.GetIntent(gctx, milestone.StripePaymentIntentID)
	if err != nil {
		return nil, apperrors.ErrUpstream(err, "payment", "Payment gateway unavailable")
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return nil, apperrors.ErrInvalidState("payment", "Payment has not completed at the gateway")
	}

	if err := s.finalize(db, milestone, project); err != nil {
		return nil, err
	}
	return milestone, nil
}

// FinalizeByIntentID is the webhook/reconciliation entry point: the gateway
// has attested the payment, finalize the milestone it correlates to.
func (s *milestoneService) FinalizeByIntentID(db *gorm.DB, intentID string) error {
	milestone, err := s.milestoneRepo.FindByPaymentIntentID(db, intentID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	project, err := s.projectRepo.FindByID(db, milestone.ProjectID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	return s.finalize(db, milestone, project)
}

// finalize records the payment and credits the freelancer, as one
// transaction. Idempotent: the paid_at IS NULL conditional update decides the
// winner inside the transaction, so webhook plus confirm plus reconciliation
// cannot double-credit even when they interleave.
func (s *milestoneService) finalize(db *gorm.DB, milestone *models.Milestone, project *models.Project) error {
	if milestone.PaidAt != nil {
		return nil
	}

	finalized := false
	err := db.Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		won, err := s.milestoneRepo.MarkPaid(tx, milestone.ID, now)
		if err != nil {
			return err
		}
		if !won {
			// Another finalizer got here first; reflect the settled row.
			current, err := s.milestoneRepo.FindByID(tx, milestone.ID)
			if err != nil {
				return err
			}
			*milestone = *current
			return nil
		}
		finalized = true
		milestone.Status = models.MilestoneStatusPaid
		milestone.PaidAt = &now

		if project.FreelancerID == nil {
			return fmt.Errorf("project %s has a paid milestone but no freelancer", project.ID)
		}
		freelancer, err := s.userRepo.FindByID(tx, *project.FreelancerID)
		if err != nil {
			return err
		}
		freelancer.TotalEarnings = freelancer.TotalEarnings.Add(milestone.Amount)
		if err := s.userRepo.Update(tx, freelancer); err != nil {
			return err
		}

		return createNotification(tx, s.notificationRepo,
			freelancer.ID, models.NotificationTypePayment,
			"Milestone paid",
			fmt.Sprintf("Payment for milestone %q was received", milestone.Title),
			milestone.ID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	if finalized {
		metrics.PaymentsFinalized.Inc()
	}
	return nil
}

func (s *milestoneService) loadMilestone(db *gorm.DB, milestoneID string) (*models.Milestone, *models.Project, error) {
	milestone, err := s.milestoneRepo.FindByID(db, milestoneID)
	if err != nil {
		return nil, nil, apperrors.ErrNotFound(err)
	}
	project, err := s.projectRepo.FindByID(db, milestone.ProjectID)
	if err != nil {
		return nil, nil, apperrors.ErrNotFound(err)
	}
	return milestone, project, nil
}
