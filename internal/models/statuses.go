package models

type UserRole string
type ProjectStatus string
type ProposalStatus string
type MilestoneStatus string
type NotificationType string

const (
	UserRoleFreelancer UserRole = "freelancer"
	UserRoleClient     UserRole = "client"
	UserRoleAdmin      UserRole = "admin"

	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"

	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"

	MilestoneStatusPending  MilestoneStatus = "pending"
	MilestoneStatusInReview MilestoneStatus = "in_review"
	MilestoneStatusApproved MilestoneStatus = "approved"
	MilestoneStatusRejected MilestoneStatus = "rejected"
	MilestoneStatusPaid     MilestoneStatus = "paid"

	NotificationTypeMessage   NotificationType = "message"
	NotificationTypeProposal  NotificationType = "proposal"
	NotificationTypeMilestone NotificationType = "milestone"
	NotificationTypePayment   NotificationType = "payment"
	NotificationTypeSystem    NotificationType = "system"
)

// Terminal reports whether a proposal status can never change again.
func (s ProposalStatus) Terminal() bool {
	return s == ProposalStatusAccepted || s == ProposalStatusRejected
}
