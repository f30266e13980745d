// Package api exposes the engine's reporting operations over HTTP
package api

import (
	"github.com/gorilla/mux"
)

// NewRouter builds the HTTP route table around the handler set.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/api/v1/iob", h.CurrentIOB).Methods("GET")
	r.HandleFunc("/api/v1/statistics/delivery", h.DeliveryStatistics).Methods("GET")
	r.HandleFunc("/api/v1/statistics/daily", h.DailyRatios).Methods("GET")
	r.HandleFunc("/api/v1/statistics/basal", h.BasalAnalysis).Methods("GET")

	return r
}
