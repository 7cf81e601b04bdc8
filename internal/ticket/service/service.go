// Package service owns maintenance ticket operations.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"servicedesk/internal/contract"
	"servicedesk/internal/platform/audit"
	"servicedesk/internal/ticket"
	dErrors "servicedesk/pkg/domain-errors"
	"servicedesk/pkg/platform/sentinel"
)

// ContractDirectory verifies the contract a ticket is raised under.
type ContractDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error)
}

// CreateInput carries the attributes of a new ticket.
type CreateInput struct {
	ContractID uuid.UUID
	Subject    string
	Detail     string
}

// Service owns ticket operations.
type Service struct {
	store     ticket.Store
	contracts ContractDirectory
	audit     audit.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store ticket.Store, contracts ContractDirectory, auditPub audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		contracts: contracts,
		audit:     auditPub,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a ticket under an existing contract.
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (*ticket.Ticket, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject is required")
	}
	if in.ContractID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "contract_id is required")
	}
	if _, err := s.contracts.FindByID(ctx, in.ContractID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown contract")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contract")
	}

	now := s.now()
	t := &ticket.Ticket{
		ID:         uuid.New(),
		ContractID: in.ContractID,
		Subject:    subject,
		Detail:     strings.TrimSpace(in.Detail),
		Status:     ticket.StatusOpen,
		ReportedBy: actor,
		OpenedAt:   now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ticket")
	}

	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionTicketCreated,
			Actor:    actor,
			Entity:   "ticket",
			EntityID: t.ID.String(),
			At:       t.OpenedAt,
		}); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", audit.ActionTicketCreated, "error", err)
		}
	}
	return t, nil
}

// Get retrieves a ticket by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ticket not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ticket")
	}
	return t, nil
}

// ListByContract returns a contract's tickets in the order they were opened.
func (s *Service) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*ticket.Ticket, error) {
	tickets, err := s.store.ListByContract(ctx, contractID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tickets")
	}
	return tickets, nil
}

// UpdateStatus transitions a ticket. Closing stamps ClosedAt; closed tickets
// reject further transitions.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next ticket.Status) (*ticket.Ticket, error) {
	if !next.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid status")
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Status.CanTransition(next); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, err.Error())
	}

	now := s.now()
	t.Status = next
	t.UpdatedAt = now
	if next == ticket.StatusClosed {
		t.ClosedAt = &now
	}
	if err := s.store.Update(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ticket not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ticket")
	}
	return t, nil
}
