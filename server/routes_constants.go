package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome        = "/"
	RouteSearch      = "/search"
	RouteSearchReset = "/search/reset"
	RouteAnimal      = "/animal/{id}"

	// Account
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteSignup         = "/sign-up"
	RouteForgotPassword = "/forget-my-password"
	RouteResetPassword  = "/reset-password"
	RouteProfile        = "/profile"
	RouteProfileDelete  = "/profile/delete"

	// API Routes
	RouteAPIValidatePassword = "/api/validate-password"
	RouteMetrics             = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
