package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"dispatchBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	requesterMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleRequester))
	providerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleProvider))

	mux := pat.New()

	// Requests
	mux.Post("/requests", requesterMiddleware.ThenFunc(app.requestHandler.CreateRequest))
	mux.Get("/requests/mine", requesterMiddleware.ThenFunc(app.requestHandler.GetMyRequests))
	mux.Get("/requests/pending", providerMiddleware.ThenFunc(app.requestHandler.GetPendingRequests))
	mux.Get("/requests/active", providerMiddleware.ThenFunc(app.requestHandler.GetActiveRequest))
	mux.Get("/requests/history", authMiddleware.ThenFunc(app.requestHandler.GetHistory))
	mux.Post("/requests/:id/accept", providerMiddleware.ThenFunc(app.requestHandler.AcceptRequest))
	mux.Put("/requests/:id/status", providerMiddleware.ThenFunc(app.requestHandler.UpdateStatus))
	mux.Post("/requests/:id/cancel", requesterMiddleware.ThenFunc(app.requestHandler.CancelRequest))
	mux.Post("/requests/:id/feedback", requesterMiddleware.ThenFunc(app.requestHandler.RecordFeedback))

	// Live location relay
	mux.Post("/requests/:id/location", authMiddleware.ThenFunc(app.locationHandler.PushLocation))
	mux.Get("/requests/:id/locations", authMiddleware.ThenFunc(app.locationHandler.GetLocations))

	// Chat
	mux.Get("/ws", standardMiddleware.ThenFunc(app.ChatWebSocketHandler))
	mux.Get("/chat/:request_id/history", authMiddleware.ThenFunc(app.chatHandler.GetChatHistory))
	mux.Post("/chat/:request_id/message", authMiddleware.ThenFunc(app.chatHandler.PostMessage))

	// Sessions
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.sessionHandler.Refresh))

	return mux
}
