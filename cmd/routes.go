package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"tamircibul/internal/models"
)

func (app *application) jwtMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.jwtMiddleware(next, requiredRole)
	}
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"status":"ok"}`))
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.jwtMiddlewareWithRole(""))
	adminMiddleware := standardMiddleware.Append(app.jwtMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	mux.Get("/api/health", standardMiddleware.ThenFunc(app.health))

	// Auth
	mux.Post("/api/auth/register", standardMiddleware.ThenFunc(app.userHandler.Register))
	mux.Post("/api/auth/login", standardMiddleware.ThenFunc(app.userHandler.Login))
	mux.Post("/api/auth/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/api/auth/logout", authMiddleware.ThenFunc(app.userHandler.Logout))
	mux.Post("/api/auth/forgot-password", standardMiddleware.ThenFunc(app.userHandler.ForgotPassword))
	mux.Post("/api/auth/verify-reset-token", standardMiddleware.ThenFunc(app.userHandler.VerifyResetToken))
	mux.Post("/api/auth/reset-password", standardMiddleware.ThenFunc(app.userHandler.ResetPassword))

	// Account
	mux.Get("/api/me", authMiddleware.ThenFunc(app.userHandler.Me))
	mux.Put("/api/me", authMiddleware.ThenFunc(app.userHandler.UpdateMe))
	mux.Post("/api/me/change-password", authMiddleware.ThenFunc(app.userHandler.ChangePassword))

	// Public directory
	mux.Get("/api/service-types", standardMiddleware.ThenFunc(app.providerHandler.ServiceTypes))
	mux.Get("/api/providers", standardMiddleware.ThenFunc(app.providerHandler.Search))
	mux.Get("/api/providers/:id", standardMiddleware.ThenFunc(app.providerHandler.Get))

	// Provider self-service
	mux.Get("/api/provider/profile", authMiddleware.ThenFunc(app.providerHandler.MyProfile))
	mux.Put("/api/provider/profile", authMiddleware.ThenFunc(app.providerHandler.UpdateMyProfile))
	mux.Get("/api/provider/dashboard", authMiddleware.ThenFunc(app.providerHandler.Dashboard))

	// Service requests. The literal routes go before the :id routes so pat
	// does not swallow them as identifiers.
	mux.Get("/api/requests/my", authMiddleware.ThenFunc(app.requestHandler.ListMine))
	mux.Get("/api/requests/assigned", authMiddleware.ThenFunc(app.requestHandler.ListAssigned))
	mux.Post("/api/requests", authMiddleware.ThenFunc(app.requestHandler.Create))
	mux.Get("/api/requests/:id", authMiddleware.ThenFunc(app.requestHandler.Get))
	mux.Del("/api/requests/:id", authMiddleware.ThenFunc(app.requestHandler.Delete))
	mux.Post("/api/requests/:id/accept", authMiddleware.ThenFunc(app.requestHandler.Accept))
	mux.Post("/api/requests/:id/reject", authMiddleware.ThenFunc(app.requestHandler.Reject))
	mux.Post("/api/requests/:id/complete", authMiddleware.ThenFunc(app.requestHandler.Complete))
	mux.Post("/api/requests/:id/cancel", authMiddleware.ThenFunc(app.requestHandler.Cancel))
	mux.Post("/api/requests/:id/rate", authMiddleware.ThenFunc(app.requestHandler.Rate))
	mux.Post("/api/requests/:id/complain", authMiddleware.ThenFunc(app.requestHandler.Complain))

	// Admin console
	mux.Get("/api/admin/dashboard", adminMiddleware.ThenFunc(app.adminHandler.Dashboard))
	mux.Get("/api/admin/users", adminMiddleware.ThenFunc(app.adminHandler.ListUsers))
	mux.Put("/api/admin/users/:id/status", adminMiddleware.ThenFunc(app.adminHandler.SetUserStatus))
	mux.Get("/api/admin/providers/pending", adminMiddleware.ThenFunc(app.adminHandler.PendingProviders))
	mux.Post("/api/admin/providers/:id/approve", adminMiddleware.ThenFunc(app.adminHandler.ApproveProvider))
	mux.Post("/api/admin/providers/:id/reject", adminMiddleware.ThenFunc(app.adminHandler.RejectProvider))
	mux.Get("/api/admin/requests", adminMiddleware.ThenFunc(app.adminHandler.ListRequests))

	return mux
}
