package services

// ServiceContainer groups every service for wiring and route registration.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	ProjectService      ProjectService
	ProposalService     ProposalService
	MilestoneService    MilestoneService
	ChatService         ChatService
	NotificationService NotificationService
	ReviewService       ReviewService
}
