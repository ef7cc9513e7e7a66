package services

import (
	"context"
	"testing"

	"freelancehub/internal/models"
	"freelancehub/internal/payments"
	"freelancehub/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMilestoneService(gateway *fakeGateway) MilestoneService {
	userRepo, projectRepo, _, milestoneRepo, notificationRepo := newRepos()
	return NewMilestoneService(milestoneRepo, projectRepo, userRepo, notificationRepo, gateway, "usd", newFixedClock())
}

func TestMilestoneReviewFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusPending, decimal.NewFromInt(300))

	submitted, err := svc.SubmitForReview(db, freelancer.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusInReview, submitted.Status)

	approved, err := svc.Approve(db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.True(t, approved.ApprovedAt.Equal(testNow))
}

func TestMilestoneRejectAndResubmit(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusInReview, decimal.NewFromInt(300))

	rejected, err := svc.RejectWork(db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusRejected, rejected.Status)

	// rejected work can be handed in again
	resubmitted, err := svc.SubmitForReview(db, freelancer.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusInReview, resubmitted.Status)
}

func TestSubmitMilestoneWrongFreelancer(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	stranger := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusPending, decimal.NewFromInt(300))

	_, err := svc.SubmitForReview(db, stranger.ID, milestone.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestApprovePendingDirectly(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusPending, decimal.NewFromInt(300))

	// no hand-in needed before the client signs off
	approved, err := svc.Approve(db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	var notifs []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", freelancer.ID, models.NotificationTypeMilestone).Find(&notifs).Error)
	require.Len(t, notifs, 1)
}

func TestApproveIllegalFromSettledStates(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)

	for _, status := range []models.MilestoneStatus{models.MilestoneStatusApproved, models.MilestoneStatusPaid} {
		milestone := createMilestone(t, db, project.ID, status, decimal.NewFromInt(300))

		_, err := svc.Approve(db, client.ID, milestone.ID)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok, "status %s", status)
		assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	db := newTestDB(t)
	gateway := newFakeGateway()
	svc := newMilestoneService(gateway)

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusApproved, decimal.NewFromFloat(123.45))

	resp, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.IntentID)
	assert.Equal(t, int64(12345), resp.AmountMinor)
	assert.Equal(t, "usd", resp.Currency)

	// correlation id persisted
	var got models.Milestone
	require.NoError(t, db.First(&got, "id = ?", milestone.ID).Error)
	assert.Equal(t, resp.IntentID, got.StripePaymentIntentID)

	// second call reuses the same intent, no double charge
	again, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.IntentID, again.IntentID)
}

func TestCreatePaymentIntentGatewayDown(t *testing.T) {
	db := newTestDB(t)
	gateway := newFakeGateway()
	gateway.failCreate = true
	svc := newMilestoneService(gateway)

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusApproved, decimal.NewFromInt(100))

	_, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeExternalServiceError, appErr.Code)

	// nothing persisted on failure
	var got models.Milestone
	require.NoError(t, db.First(&got, "id = ?", milestone.ID).Error)
	assert.Empty(t, got.StripePaymentIntentID)
}

func TestCreatePaymentIntentRequiresApproved(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusInReview, decimal.NewFromInt(100))

	_, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestConfirmPaymentRequiresGatewaySuccess(t *testing.T) {
	db := newTestDB(t)
	gateway := newFakeGateway()
	svc := newMilestoneService(gateway)

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusApproved, decimal.NewFromInt(500))

	resp, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)

	// gateway still reports pending: confirming is premature
	_, err = svc.ConfirmPayment(context.Background(), db, client.ID, milestone.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)

	gateway.succeed(resp.IntentID)

	paid, err := svc.ConfirmPayment(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// freelancer credited exactly once
	var gotFreelancer models.User
	require.NoError(t, db.First(&gotFreelancer, "id = ?", freelancer.ID).Error)
	assert.True(t, gotFreelancer.TotalEarnings.Equal(decimal.NewFromInt(500)),
		"earnings = %s", gotFreelancer.TotalEarnings)

	var notifs []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", freelancer.ID, models.NotificationTypePayment).Find(&notifs).Error)
	require.Len(t, notifs, 1)
}

func TestFinalizeIdempotent(t *testing.T) {
	db := newTestDB(t)
	gateway := newFakeGateway()
	svc := newMilestoneService(gateway)

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusApproved, decimal.NewFromInt(250))

	resp, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)
	gateway.succeed(resp.IntentID)

	// webhook, confirm and reconciliation may all fire for the same intent
	require.NoError(t, svc.FinalizeByIntentID(db, resp.IntentID))
	require.NoError(t, svc.FinalizeByIntentID(db, resp.IntentID))
	_, err = svc.ConfirmPayment(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)

	var gotFreelancer models.User
	require.NoError(t, db.First(&gotFreelancer, "id = ?", freelancer.ID).Error)
	assert.True(t, gotFreelancer.TotalEarnings.Equal(decimal.NewFromInt(250)),
		"credited more than once: %s", gotFreelancer.TotalEarnings)

	var notifs []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", freelancer.ID, models.NotificationTypePayment).Find(&notifs).Error)
	assert.Len(t, notifs, 1)
}

// interceptGateway runs a hook before answering GetIntent, to interleave a
// competing finalizer into the middle of a confirm poll.
type interceptGateway struct {
	*fakeGateway
	onGet func()
}

func (g *interceptGateway) GetIntent(ctx context.Context, id string) (*payments.Intent, error) {
	if g.onGet != nil {
		hook := g.onGet
		g.onGet = nil
		hook()
	}
	return g.fakeGateway.GetIntent(ctx, id)
}

func TestConfirmPaymentRacesWebhook(t *testing.T) {
	db := newTestDB(t)
	gateway := &interceptGateway{fakeGateway: newFakeGateway()}
	userRepo, projectRepo, _, milestoneRepo, notificationRepo := newRepos()
	svc := NewMilestoneService(milestoneRepo, projectRepo, userRepo, notificationRepo, gateway, "usd", newFixedClock())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	milestone := createMilestone(t, db, project.ID, models.MilestoneStatusApproved, decimal.NewFromInt(100))

	resp, err := svc.CreatePaymentIntent(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)
	gateway.succeed(resp.IntentID)

	// the webhook lands after confirm loaded the milestone but before it
	// writes: confirm must lose the conditional update and not credit again
	gateway.onGet = func() {
		require.NoError(t, svc.FinalizeByIntentID(db, resp.IntentID))
	}

	paid, err := svc.ConfirmPayment(context.Background(), db, client.ID, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	var gotFreelancer models.User
	require.NoError(t, db.First(&gotFreelancer, "id = ?", freelancer.ID).Error)
	assert.True(t, gotFreelancer.TotalEarnings.Equal(decimal.NewFromInt(100)),
		"credited more than once: %s", gotFreelancer.TotalEarnings)

	var notifs []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", freelancer.ID, models.NotificationTypePayment).Find(&notifs).Error)
	assert.Len(t, notifs, 1)
}

func TestFinalizeUnknownIntent(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	err := svc.FinalizeByIntentID(db, "pi_unknown")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestListMilestonesParticipantsOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newMilestoneService(newFakeGateway())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	stranger := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)
	createMilestone(t, db, project.ID, models.MilestoneStatusPending, decimal.NewFromInt(100))

	milestones, err := svc.ListForProject(db, freelancer.ID, project.ID)
	require.NoError(t, err)
	assert.Len(t, milestones, 1)

	_, err = svc.ListForProject(db, stranger.ID, project.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}
