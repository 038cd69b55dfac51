package server

// Route path constants
const (
	RouteIndex    = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteLogout   = "/logout"

	RouteDashboard = "/dashboard"
	RouteMaterials = "/materials"
	RouteMaterial  = "/materials/{id}"
	RouteClients   = "/clients"
	RoutePurchases = "/purchases"
	RouteReports   = "/reports"

	RouteMetrics = "/metrics"
)
