package validator

import (
	"log"

	"freelancehub/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules wires the domain-specific validation tags.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Failing to register a rule means the binary is miswired.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-project-status", validateProjectStatus)
	mustRegister("is-notification-type", validateNotificationType)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // empty is the job of 'required'
	}

	switch models.UserRole(value) {
	case models.UserRoleFreelancer, models.UserRoleClient, models.UserRoleAdmin:
		return true
	}
	return false
}

func validateProjectStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	switch models.ProjectStatus(value) {
	case models.ProjectStatusOpen, models.ProjectStatusInProgress,
		models.ProjectStatusCompleted, models.ProjectStatusCancelled:
		return true
	}
	return false
}

func validateNotificationType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	switch models.NotificationType(value) {
	case models.NotificationTypeMessage, models.NotificationTypeProposal,
		models.NotificationTypeMilestone, models.NotificationTypePayment,
		models.NotificationTypeSystem:
		return true
	}
	return false
}
