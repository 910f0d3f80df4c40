package streaming

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agristream/platform/pkg/common/logger"
	"github.com/agristream/platform/pkg/common/models"
	"github.com/gorilla/mux"
)

// HTTPHandler exposes the status ledger and a manual replay trigger. Replay
// feeds the exact same path as a bucket notification, duplicate check
// included.
type HTTPHandler struct {
	service *Service
	status  StatusStore
}

func NewHTTPHandler(service *Service, status StatusStore) *HTTPHandler {
	return &HTTPHandler{service: service, status: status}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/streams/replay", h.handleReplay).Methods(http.MethodPost)
	router.HandleFunc("/streams/{name}", h.handleStatus).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	record, err := h.status.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "status record not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch status record")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func (h *HTTPHandler) handleReplay(w http.ResponseWriter, r *http.Request) {
	var event models.ObjectEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if event.Bucket == "" || event.Name == "" {
		http.Error(w, "bucket and name are required", http.StatusBadRequest)
		return
	}

	if err := h.service.Handle(r.Context(), event); err != nil {
		logger.Log.WithError(err).WithField("file_name", event.Name).Error("replay failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "processed",
		"file_name": event.Name,
	})
}
