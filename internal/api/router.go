package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handler and the metrics endpoint.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.Health).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc(endpointReplays, h.CreateReplay).Methods("POST")
	apiV1.HandleFunc(endpointAccounts, h.GetRunAccounts).Methods("GET")
	apiV1.HandleFunc(endpointAccount, h.GetRunAccount).Methods("GET")
	return r
}
