package server

import (
	"github.com/jrsteele09/materials-admin/guard"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// Guest only
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.GuestOnly))...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.GuestOnly))...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.GuestOnly))...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.GuestOnly))...))

	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Auth only
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("GET "+RouteMaterials, ChainMiddleware(s.MaterialsPageHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("POST "+RouteMaterials, ChainMiddleware(s.MaterialCreateHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("POST "+RouteMaterial, ChainMiddleware(s.MaterialUpdateHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("PUT "+RouteMaterial, ChainMiddleware(s.MaterialUpdateHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("POST "+RouteMaterial+"/delete", ChainMiddleware(s.MaterialDeleteHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("DELETE "+RouteMaterial, ChainMiddleware(s.MaterialDeleteHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("GET "+RouteClients, ChainMiddleware(s.ClientsPageHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("POST "+RouteClients, ChainMiddleware(s.ClientCreateHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("POST "+RoutePurchases, ChainMiddleware(s.PurchaseCreateHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))
	s.RegisterRouteHandler("GET "+RouteReports, ChainMiddleware(s.ReportsHandler(), s.HTMLMiddleWare(s.RequireRoute(guard.AuthOnly))...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Anything else
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
}
