package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"servicedesk/internal/platform/postgres"
	"servicedesk/pkg/platform/sentinel"
)

// dedicatedNumberConstraint is the unique index the allocator races against.
const dedicatedNumberConstraint = "clients_dedicated_number_key"

// PostgresStore persists clients in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO clients (id, name, dedicated_number, contact_email, contact_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.DedicatedNumber, c.ContactEmail, c.ContactPhone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, dedicatedNumberConstraint) {
			return fmt.Errorf("insert client %s: %w", c.DedicatedNumber, sentinel.ErrDuplicateCode)
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByDedicatedNumber(ctx context.Context, number string) (*Client, error) {
	return s.findOne(ctx, `WHERE dedicated_number = $1`, number)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*Client, error) {
	query := `
		SELECT id, name, dedicated_number, contact_email, contact_phone, created_at, updated_at
		FROM clients ` + where
	var c Client
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.DedicatedNumber, &c.ContactEmail, &c.ContactPhone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Client, error) {
	query := `
		SELECT id, name, dedicated_number, contact_email, contact_phone, created_at, updated_at
		FROM clients
		ORDER BY dedicated_number
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []*Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.DedicatedNumber, &c.ContactEmail, &c.ContactPhone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// CountByCodePrefix reads the committed count; it deliberately takes no lock.
// The allocator treats the result as a hint and the unique index as truth.
func (s *PostgresStore) CountByCodePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE dedicated_number LIKE $1 || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count clients by prefix: %w", err)
	}
	return n, nil
}
