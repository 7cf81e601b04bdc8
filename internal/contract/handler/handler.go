package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"servicedesk/internal/contract"
	"servicedesk/internal/contract/service"
	"servicedesk/internal/platform/middleware"
	"servicedesk/internal/transport/http/shared"
	dErrors "servicedesk/pkg/domain-errors"
)

// Service defines the contract operations the handler needs.
type Service interface {
	Create(ctx context.Context, actor string, in service.CreateInput) (*contract.Contract, error)
	Renew(ctx context.Context, actor string, predecessorID uuid.UUID, in service.RenewInput) (*contract.Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*contract.Contract, error)
	GetByRenewCode(ctx context.Context, renewCode string) (*contract.Contract, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*contract.Contract, error)
}

// Handler handles contract endpoints.
type Handler struct {
	contracts Service
	logger    *slog.Logger
}

func New(contracts Service, logger *slog.Logger) *Handler {
	return &Handler{contracts: contracts, logger: logger}
}

// Register mounts the contract routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/contracts", h.handleCreate)
	r.Get("/contracts/{id}", h.handleGet)
	r.Post("/contracts/{id}/renew", h.handleRenew)
	r.Get("/contracts/renew-code/{code}", h.handleGetByRenewCode)
	r.Get("/clients/{id}/contracts", h.handleListByClient)
}

type createRequest struct {
	ClientID    uuid.UUID `json:"client_id"`
	Category    string    `json:"category"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description"`
}

type renewRequest struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.contracts.Create(ctx, middleware.GetUserID(ctx), service.CreateInput{
		ClientID:    req.ClientID,
		Category:    req.Category,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create contract failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid contract id"))
		return
	}

	var req renewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	successor, err := h.contracts.Renew(ctx, middleware.GetUserID(ctx), id, service.RenewInput{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "renew contract failed",
			"request_id", middleware.GetRequestID(ctx),
			"contract_id", id.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, successor)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid contract id"))
		return
	}

	found, err := h.contracts.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleGetByRenewCode(w http.ResponseWriter, r *http.Request) {
	found, err := h.contracts.GetByRenewCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return
	}

	contracts, err := h.contracts.ListByClient(r.Context(), clientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, contracts)
}
