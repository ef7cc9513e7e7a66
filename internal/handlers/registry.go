package handlers

import (
	"freelancehub/internal/services"
	"freelancehub/internal/validator"
)

// AppHandlers groups every HTTP handler for route registration.
type AppHandlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Project      *ProjectHandler
	Proposal     *ProposalHandler
	Milestone    *MilestoneHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
	Review       *ReviewHandler
	Webhook      *WebhookHandler
}

func NewAppHandlers(svcs *services.ServiceContainer, v *validator.Validator, webhookSecret string) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		Auth:         NewAuthHandler(base, svcs.AuthService),
		User:         NewUserHandler(base, svcs.UserService),
		Project:      NewProjectHandler(base, svcs.ProjectService),
		Proposal:     NewProposalHandler(base, svcs.ProposalService),
		Milestone:    NewMilestoneHandler(base, svcs.MilestoneService),
		Chat:         NewChatHandler(base, svcs.ChatService),
		Notification: NewNotificationHandler(base, svcs.NotificationService),
		Review:       NewReviewHandler(base, svcs.ReviewService),
		Webhook:      NewWebhookHandler(base, svcs.MilestoneService, webhookSecret),
	}
}
