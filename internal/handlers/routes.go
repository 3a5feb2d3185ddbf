package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches every API endpoint to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", h.ListFiles).Methods(http.MethodGet)
	api.HandleFunc("/file", h.GetFile).Methods(http.MethodGet)
	api.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/{tag}", h.GetFilesByTag).Methods(http.MethodGet)
	api.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	api.HandleFunc("/reindex", h.Reindex).Methods(http.MethodPost)
	api.HandleFunc("/extensions", h.GetExtensions).Methods(http.MethodGet)
	api.HandleFunc("/extensions", h.UpdateExtensions).Methods(http.MethodPut)
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Ready).Methods(http.MethodGet)
}
