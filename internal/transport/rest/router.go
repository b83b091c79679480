package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/praekeltfoundation/healthcheckbot/internal/service"
	"github.com/praekeltfoundation/healthcheckbot/internal/transport/rest/handler"
	"github.com/praekeltfoundation/healthcheckbot/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	ActionService *service.ActionService
}

// NewRouter creates the webhook router.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	webhookHandler := handler.NewWebhookHandler(c.ActionService)
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.HandleFunc("/health", webhookHandler.Health).Methods("GET")

	webhook := r.NewRoute().Subrouter()
	webhook.Use(authMW.RequireWebhookToken)
	webhook.HandleFunc("/webhook", webhookHandler.Run).Methods("POST")

	return r
}
