// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
	SecurityAdmin                        // Access token with the admin role
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to
// their required security level. Route names are set on the gorilla/mux routes
// in internal/api/http.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.signup": SecurityPublic,
	"auth.login":  SecurityPublic,

	// Auth - Refresh Protected
	"auth.refresh": SecurityRefresh,

	// Auth - Access Protected
	"auth.logout": SecurityAccess,

	// Catalogue - Public
	"items.search":       SecurityPublic,
	"items.get":          SecurityPublic,
	"items.availability": SecurityPublic,
	"items.reviews":      SecurityPublic,
	"users.reviews":      SecurityPublic,
	"plans.list":         SecurityPublic,
	"geo.reverse":        SecurityPublic,
	"health":             SecurityPublic,
	"metrics":            SecurityPublic,
	"storage.upload":     SecurityPublic,
	"storage.download":   SecurityPublic,

	// Profile - Access Protected
	"me.get":           SecurityAccess,
	"me.update":        SecurityAccess,
	"me.location":      SecurityAccess,
	"me.push_token":    SecurityAccess,
	"me.items":         SecurityAccess,
	"me.rentals":       SecurityAccess,
	"me.lendings":      SecurityAccess,
	"me.plan":          SecurityAccess,
	"me.kyc":           SecurityAccess,
	"me.conversations": SecurityAccess,

	// Items - Access Protected
	"items.create":         SecurityAccess,
	"items.update":         SecurityAccess,
	"items.delete":         SecurityAccess,
	"items.images":         SecurityAccess,
	"items.images.confirm": SecurityAccess,

	// Rentals - Access Protected
	"rentals.create":     SecurityAccess,
	"rentals.get":        SecurityAccess,
	"rentals.transition": SecurityAccess,
	"rentals.review":     SecurityAccess,

	// Messages and notifications - Access Protected
	"messages.send":         SecurityAccess,
	"messages.conversation": SecurityAccess,
	"messages.read":         SecurityAccess,
	"notifications.list":    SecurityAccess,
	"notifications.read":    SecurityAccess,
	"realtime.subscribe":    SecurityAccess,
	"uploads.request":       SecurityAccess,
	"uploads.url":           SecurityAccess,

	// gRPC
	"/grpc.health.v1.Health/Check":                                   SecurityPublic,
	"/grpc.health.v1.Health/List":                                    SecurityPublic,
	"/grpc.health.v1.Health/Watch":                                   SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityAdmin,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityAdmin,

	// Admin
	"admin.kyc.list":     SecurityAdmin,
	"admin.kyc.approve":  SecurityAdmin,
	"admin.kyc.reject":   SecurityAdmin,
	"admin.users.list":   SecurityAdmin,
	"admin.users.plan":   SecurityAdmin,
	"admin.items.delete": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest non-admin security for unknown routes
	return SecurityAccess
}
