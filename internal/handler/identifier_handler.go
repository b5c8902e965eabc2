package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Siddarth2230/branchmoji/internal/models"
	"github.com/Siddarth2230/branchmoji/internal/service"
)

type IdentifierHandler struct {
	service *service.IdentifierService
	log     *zap.Logger
}

func NewIdentifierHandler(svc *service.IdentifierService, log *zap.Logger) *IdentifierHandler {
	return &IdentifierHandler{service: svc, log: log.Named("handler")}
}

// Register mounts the routes on r.
func (h *IdentifierHandler) Register(r *mux.Router) {
	r.HandleFunc("/namespaces/{namespace}/identifiers", h.Allocate).Methods(http.MethodPost)
	r.HandleFunc("/namespaces/{namespace}/identifiers", h.List).Methods(http.MethodGet)
	r.HandleFunc("/namespaces/{namespace}/identifiers/{name}", h.Lookup).Methods(http.MethodGet)
	r.HandleFunc("/namespaces/{namespace}/identifiers/{name}", h.Release).Methods(http.MethodDelete)
	r.HandleFunc("/decode/{name}", h.Decode).Methods(http.MethodGet)
}

// POST /namespaces/{namespace}/identifiers
func (h *IdentifierHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req models.AllocateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	// an empty body means a plain allocation
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.service.Allocate(r.Context(), mux.Vars(r)["namespace"], req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusCreated
	if resp.DryRun {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// GET /namespaces/{namespace}/identifiers
func (h *IdentifierHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.List(r.Context(), mux.Vars(r)["namespace"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /namespaces/{namespace}/identifiers/{name}
func (h *IdentifierHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := h.service.Lookup(r.Context(), vars["namespace"], vars["name"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// DELETE /namespaces/{namespace}/identifiers/{name}
func (h *IdentifierHandler) Release(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.Release(r.Context(), vars["namespace"], vars["name"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /decode/{name}
func (h *IdentifierHandler) Decode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Decode(mux.Vars(r)["name"]))
}

// fail maps service errors to HTTP responses.
func (h *IdentifierHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidNamespace), errors.Is(err, service.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAllocExhausted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// helper: write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// nothing left to do with an encode error once the header is out
	_ = json.NewEncoder(w).Encode(v)
}

// helper: write an error message in JSON form { "error": "msg" }
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
