package api

import (
	"net/http"
	"property-insight-service/internal/api/handlers"
	"property-insight-service/internal/services"

	"github.com/gorilla/mux"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.PropertyService, personas []string) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	distanceHandler := &handlers.DistanceHandler{Engine: svc.Engine}
	propertyHandler := &handlers.PropertyHandler{Service: svc, Personas: personas}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/distances", distanceHandler.Calculate).Methods(http.MethodPost)
	v1.HandleFunc("/initialize", propertyHandler.Initialize).Methods(http.MethodPost)
	v1.HandleFunc("/analyze", propertyHandler.Analyze).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}", propertyHandler.Session).Methods(http.MethodGet)
	v1.HandleFunc("/personas", propertyHandler.ListPersonas).Methods(http.MethodGet)

	return corsMiddleware(requestIDMiddleware(loggingMiddleware(r)))
}
