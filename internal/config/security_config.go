// config/security_config.go
package config

import "rentwear-backend/internal/domain"

type SecurityLevel int

const (
	SecurityPublic          SecurityLevel = iota // No authentication
	SecurityAuthenticated                        // Any valid bearer token
	SecurityCustomer                             // Customer role required
	SecurityDeliveryPartner                      // Delivery partner role required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"Healthz":      SecurityPublic,
	"MockDownload": SecurityPublic,

	// Rentals - Customer
	"CreateRental":         SecurityCustomer,
	"ListRentals":          SecurityCustomer,
	"ListActiveRentals":    SecurityCustomer,
	"ListCompletedRentals": SecurityCustomer,
	"GetRental":            SecurityCustomer,
	"CancelRental":         SecurityCustomer,

	// Returns - Customer
	"ScheduleReturn":  SecurityCustomer,
	"ListUserReturns": SecurityCustomer,

	// Returns - Either party, checked against ownership/assignment by the service
	"GetReturn": SecurityAuthenticated,

	// Returns - Delivery Partner
	"ListPendingReturns":   SecurityDeliveryPartner,
	"ListCompletedReturns": SecurityDeliveryPartner,
	"AssignReturn":         SecurityDeliveryPartner,
	"UpdateReturnStatus":   SecurityDeliveryPartner,
	"SubmitInspection":     SecurityDeliveryPartner,
	"CompleteReturn":       SecurityDeliveryPartner,

	// Notifications
	"ListNotifications":    SecurityAuthenticated,
	"MarkNotificationRead": SecurityAuthenticated,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to authenticated for unknown routes
	return SecurityAuthenticated
}

// RequiredRole returns the role a level demands, or "" when any caller is acceptable
func (l SecurityLevel) RequiredRole() domain.Role {
	switch l {
	case SecurityCustomer:
		return domain.RoleCustomer
	case SecurityDeliveryPartner:
		return domain.RoleDeliveryPartner
	}
	return ""
}
