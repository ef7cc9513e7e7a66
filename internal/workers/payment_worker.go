package workers

import (
	"context"
	"time"

	"freelancehub/internal/logger"
	"freelancehub/internal/payments"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services"

	"gorm.io/gorm"
)

// PaymentWorker reconciles milestones whose payment intent exists but whose
// success webhook never arrived. It polls the gateway and finalizes any
// intent that has since succeeded.
type PaymentWorker struct {
	db               *gorm.DB
	milestoneRepo    repositories.MilestoneRepository
	gateway          payments.Gateway
	milestoneService services.MilestoneService
	interval         time.Duration
}

func NewPaymentWorker(
	db *gorm.DB,
	milestoneRepo repositories.MilestoneRepository,
	gateway payments.Gateway,
	milestoneService services.MilestoneService,
	interval time.Duration,
) *PaymentWorker {
	return &PaymentWorker{
		db:               db,
		milestoneRepo:    milestoneRepo,
		gateway:          gateway,
		milestoneService: milestoneService,
		interval:         interval,
	}
}

// Run blocks until ctx is cancelled.
func (w *PaymentWorker) Run(ctx context.Context) {
	logger.Info("payment reconciliation worker started", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("payment reconciliation worker stopped")
			return
		case <-ticker.C:
			w.reconcile(ctx)
		}
	}
}

func (w *PaymentWorker) reconcile(ctx context.Context) {
	milestones, err := w.milestoneRepo.FindAwaitingPayment(w.db)
	if err != nil {
		logger.Error("reconcile: listing milestones failed", "error", err)
		return
	}

	for _, m := range milestones {
		intent, err := w.gateway.GetIntent(ctx, m.StripePaymentIntentID)
		if err != nil {
			logger.Warn("reconcile: gateway lookup failed",
				"milestone_id", m.ID, "intent_id", m.StripePaymentIntentID, "error", err)
			continue
		}
		if intent.Status != payments.IntentStatusSucceeded {
			continue
		}
		if err := w.milestoneService.FinalizeByIntentID(w.db, intent.ID); err != nil {
			logger.Error("reconcile: finalize failed",
				"milestone_id", m.ID, "intent_id", intent.ID, "error", err)
			continue
		}
		logger.Info("reconcile: milestone finalized",
			"milestone_id", m.ID, "intent_id", intent.ID)
	}
}
