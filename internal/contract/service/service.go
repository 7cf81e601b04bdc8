// Package service orchestrates contract lifecycle: validation, code
// allocation, persistence, renewal, and audit.
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
	"servicedesk/internal/contract"
	"servicedesk/internal/platform/audit"
	dErrors "servicedesk/pkg/domain-errors"
	"servicedesk/pkg/platform/sentinel"
)

// ClientDirectory resolves the owning client of a contract.
type ClientDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

// CreateInput carries the attributes of a new contract.
type CreateInput struct {
	ClientID    uuid.UUID
	Category    string
	StartDate   time.Time
	EndDate     time.Time
	Description string
}

// RenewInput carries the term of a successor contract.
type RenewInput struct {
	StartDate   time.Time
	EndDate     time.Time
	Description string
}

// Service owns contract operations.
type Service struct {
	store   contract.Store
	clients ClientDirectory
	alloc   *allocation.Allocator
	audit   audit.Publisher
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source for tests. The clock's year picks the
// code prefix, so deterministic tests need a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store contract.Store, clients ClientDirectory, alloc *allocation.Allocator, auditPub audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		clients: clients,
		alloc:   alloc,
		audit:   auditPub,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates the client and renew codes for a new contract and
// persists it. Both codes are final on success.
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (*contract.Contract, error) {
	if err := validateTerm(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	// Category resolves before any store access so an unrecognized label
	// costs nothing but the lookup.
	if _, err := allocation.CategoryCode(in.Category); err != nil {
		return nil, translateAllocErr(err, "failed to create contract")
	}
	owner, err := s.resolveClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	c := &contract.Contract{
		ID:          uuid.New(),
		ClientID:    owner.ID,
		CreatedBy:   actor,
		Category:    in.Category,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.allocateAndInsert(ctx, c, owner.DedicatedNumber); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionContractCreated,
		Actor:    actor,
		Entity:   "contract",
		EntityID: c.ID.String(),
		Codes:    []string{c.ClientCode, c.RenewCode},
		At:       c.CreatedAt,
	})
	return c, nil
}

// Renew creates a successor contract linked to its predecessor. The
// successor gets freshly allocated codes under the renewal year's prefix;
// the predecessor's codes are never touched.
func (s *Service) Renew(ctx context.Context, actor string, predecessorID uuid.UUID, in RenewInput) (*contract.Contract, error) {
	if err := validateTerm(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	pred, err := s.Get(ctx, predecessorID)
	if err != nil {
		return nil, err
	}
	owner, err := s.resolveClient(ctx, pred.ClientID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = pred.Description
	}

	c := &contract.Contract{
		ID:            uuid.New(),
		ClientID:      pred.ClientID,
		CreatedBy:     actor,
		Category:      pred.Category,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Description:   description,
		RenewedFromID: &pred.ID,
	}
	if err := s.allocateAndInsert(ctx, c, owner.DedicatedNumber); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionContractRenewed,
		Actor:    actor,
		Entity:   "contract",
		EntityID: c.ID.String(),
		Codes:    []string{c.ClientCode, c.RenewCode},
		At:       c.CreatedAt,
	})
	return c, nil
}

// Get retrieves a contract by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "contract not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contract")
	}
	return c, nil
}

// GetByRenewCode finds the contract that reserved a renew code, so a caller
// holding only the code can locate the record to renew.
func (s *Service) GetByRenewCode(ctx context.Context, renewCode string) (*contract.Contract, error) {
	renewCode = strings.TrimSpace(renewCode)
	if renewCode == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "renew code is required")
	}
	c, err := s.store.FindByRenewCode(ctx, renewCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "contract not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load contract")
	}
	return c, nil
}

// ListByClient returns a client's contracts ordered by client code.
func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*contract.Contract, error) {
	contracts, err := s.store.ListByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contracts")
	}
	return contracts, nil
}

func (s *Service) allocateAndInsert(ctx context.Context, c *contract.Contract, parentNumber string) error {
	year := s.now().Year()
	_, err := s.alloc.AllocateContractCode(ctx, s.store, c.Category, parentNumber, year,
		func(ctx context.Context, codes allocation.ContractCodes) error {
			now := s.now()
			c.ClientCode = codes.ClientCode
			c.RenewCode = codes.RenewCode
			c.CreatedAt = now
			c.UpdatedAt = now
			return s.store.Insert(ctx, c)
		})
	if err != nil {
		return translateAllocErr(err, "failed to create contract")
	}
	return nil
}

func (s *Service) resolveClient(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	if id == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "client_id is required")
	}
	owner, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unknown client")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return owner, nil
}

func validateTerm(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "start_date and end_date are required")
	}
	if !end.After(start) {
		return dErrors.New(dErrors.CodeBadRequest, "end_date must be after start_date")
	}
	return nil
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

func translateAllocErr(err error, message string) error {
	switch {
	case errors.Is(err, allocation.ErrUnknownCategory):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "unknown contract category")
	case errors.Is(err, allocation.ErrExhausted):
		return dErrors.Wrap(err, dErrors.CodeCongested, "code allocation contention, try again")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}
