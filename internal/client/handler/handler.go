package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"servicedesk/internal/client"
	"servicedesk/internal/client/service"
	"servicedesk/internal/platform/middleware"
	"servicedesk/internal/transport/http/shared"
	dErrors "servicedesk/pkg/domain-errors"
)

// Service defines the client operations the handler needs.
type Service interface {
	Create(ctx context.Context, actor string, in service.CreateInput) (*client.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*client.Client, error)
	List(ctx context.Context) ([]*client.Client, error)
}

// Handler handles client endpoints.
type Handler struct {
	clients Service
	logger  *slog.Logger
}

func New(clients Service, logger *slog.Logger) *Handler {
	return &Handler{clients: clients, logger: logger}
}

// Register mounts the client routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients", h.handleCreate)
	r.Get("/clients", h.handleList)
	r.Get("/clients/{id}", h.handleGet)
}

type createRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.clients.Create(ctx, middleware.GetUserID(ctx), service.CreateInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create client failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return
	}

	found, err := h.clients.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, clients)
}
