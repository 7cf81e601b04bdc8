package ticket

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"servicedesk/pkg/platform/sentinel"
)

// PostgresStore persists tickets in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = `id, contract_id, subject, detail, status, reported_by, opened_at, closed_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, t *Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.ContractID, t.Subject, t.Detail, t.Status, t.ReportedBy, t.OpenedAt, t.ClosedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	var t Ticket
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.ContractID, &t.Subject, &t.Detail, &t.Status, &t.ReportedBy, &t.OpenedAt, &t.ClosedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE contract_id = $1 ORDER BY opened_at`
	rows, err := s.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []*Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.ContractID, &t.Subject, &t.Detail, &t.Status, &t.ReportedBy, &t.OpenedAt, &t.ClosedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, t *Ticket) error {
	query := `
		UPDATE tickets
		SET status = $2, closed_at = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, t.ID, t.Status, t.ClosedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
