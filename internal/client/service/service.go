// Package service orchestrates client lifecycle: validation, dedicated
// number allocation, persistence, and audit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"servicedesk/internal/allocation"
	"servicedesk/internal/client"
	"servicedesk/internal/platform/audit"
	dErrors "servicedesk/pkg/domain-errors"
	"servicedesk/pkg/platform/sentinel"
)

// CreateInput carries the attributes of a new client.
type CreateInput struct {
	Name         string
	ContactEmail string
	ContactPhone string
}

// Service owns client operations.
type Service struct {
	store  client.Store
	alloc  *allocation.Allocator
	audit  audit.Publisher
	logger *slog.Logger
	now    func() time.Time
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

func New(store client.Store, alloc *allocation.Allocator, auditPub audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		alloc:  alloc,
		audit:  auditPub,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates a dedicated number from the client's name and persists
// the record. The number is final: on success it is never recomputed.
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (*client.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "client name is required")
	}

	c := &client.Client{
		ID:           uuid.New(),
		Name:         name,
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
	}

	_, err := s.alloc.AllocateClientCode(ctx, s.store, name, func(ctx context.Context, number string) error {
		now := s.now()
		c.DedicatedNumber = number
		c.CreatedAt = now
		c.UpdatedAt = now
		return s.store.Insert(ctx, c)
	})
	if err != nil {
		return nil, translateAllocErr(err, "failed to create client")
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionClientCreated,
		Actor:    actor,
		Entity:   "client",
		EntityID: c.ID.String(),
		Codes:    []string{c.DedicatedNumber},
		At:       c.CreatedAt,
	})
	return c, nil
}

// Get retrieves a client by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return c, nil
}

// List returns all clients ordered by dedicated number.
func (s *Service) List(ctx context.Context) ([]*client.Client, error) {
	clients, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}

// translateAllocErr maps allocator outcomes onto domain error codes:
// exhaustion is a retryable congestion signal, everything else an internal
// failure.
func translateAllocErr(err error, message string) error {
	switch {
	case dErrors.HasCode(err, dErrors.CodeBadRequest):
		return err
	case errors.Is(err, allocation.ErrUnknownCategory):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "unknown contract category")
	case errors.Is(err, allocation.ErrExhausted):
		return dErrors.Wrap(err, dErrors.CodeCongested, "code allocation contention, try again")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}
