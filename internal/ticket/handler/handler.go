package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"servicedesk/internal/platform/middleware"
	"servicedesk/internal/ticket"
	"servicedesk/internal/ticket/service"
	"servicedesk/internal/transport/http/shared"
	dErrors "servicedesk/pkg/domain-errors"
)

// Service defines the ticket operations the handler needs.
type Service interface {
	Create(ctx context.Context, actor string, in service.CreateInput) (*ticket.Ticket, error)
	Get(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*ticket.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next ticket.Status) (*ticket.Ticket, error)
}

// Handler handles ticket endpoints.
type Handler struct {
	tickets Service
	logger  *slog.Logger
}

func New(tickets Service, logger *slog.Logger) *Handler {
	return &Handler{tickets: tickets, logger: logger}
}

// Register mounts the ticket routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tickets", h.handleCreate)
	r.Get("/tickets/{id}", h.handleGet)
	r.Post("/tickets/{id}/status", h.handleUpdateStatus)
	r.Get("/contracts/{id}/tickets", h.handleListByContract)
}

type createRequest struct {
	ContractID uuid.UUID `json:"contract_id"`
	Subject    string    `json:"subject"`
	Detail     string    `json:"detail"`
}

type statusRequest struct {
	Status ticket.Status `json:"status"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.tickets.Create(ctx, middleware.GetUserID(ctx), service.CreateInput{
		ContractID: req.ContractID,
		Subject:    req.Subject,
		Detail:     req.Detail,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create ticket failed",
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
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ticket id"))
		return
	}

	found, err := h.tickets.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ticket id"))
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.tickets.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleListByContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid contract id"))
		return
	}

	tickets, err := h.tickets.ListByContract(r.Context(), contractID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tickets)
}
