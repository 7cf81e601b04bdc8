package contract

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"servicedesk/internal/platform/postgres"
	"servicedesk/pkg/platform/sentinel"
)

// The constraints the allocator races against. contract_codes_pkey guards
// the combined client/renew identifier space; the per-column indexes catch
// same-column duplicates a beat earlier. Violations of any other constraint
// (the client foreign key, say) are hard failures.
const (
	clientCodeConstraint   = "contracts_client_code_key"
	renewCodeConstraint    = "contracts_renew_code_key"
	combinedCodeConstraint = "contract_codes_pkey"
)

// PostgresStore persists contracts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const contractColumns = `id, client_id, created_by, category, client_code, renew_code,
	start_date, end_date, description, renewed_from_id, created_at, updated_at`

// Insert writes the contract row and registers both codes in contract_codes
// inside one transaction. A collision on either column's index or on the
// combined code table rolls the whole insert back and reports a duplicate.
func (s *PostgresStore) Insert(ctx context.Context, c *Contract) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert contract: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.ExecContext(ctx, query,
		c.ID, c.ClientID, c.CreatedBy, c.Category, c.ClientCode, c.RenewCode,
		c.StartDate, c.EndDate, c.Description, c.RenewedFromID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, clientCodeConstraint, renewCodeConstraint) {
			return fmt.Errorf("insert contract %s: %w", c.ClientCode, sentinel.ErrDuplicateCode)
		}
		return fmt.Errorf("insert contract: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contract_codes (code, contract_id) VALUES ($1, $3), ($2, $3)`,
		c.ClientCode, c.RenewCode, c.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err, combinedCodeConstraint) {
			return fmt.Errorf("register contract codes %s/%s: %w", c.ClientCode, c.RenewCode, sentinel.ErrDuplicateCode)
		}
		return fmt.Errorf("register contract codes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert contract: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByRenewCode(ctx context.Context, renewCode string) (*Contract, error) {
	return s.findOne(ctx, `WHERE renew_code = $1`, renewCode)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts ` + where
	var c Contract
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.ClientID, &c.CreatedBy, &c.Category, &c.ClientCode, &c.RenewCode,
		&c.StartDate, &c.EndDate, &c.Description, &c.RenewedFromID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contract: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE client_id = $1 ORDER BY client_code`
	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var out []*Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(
			&c.ID, &c.ClientID, &c.CreatedBy, &c.Category, &c.ClientCode, &c.RenewCode,
			&c.StartDate, &c.EndDate, &c.Description, &c.RenewedFromID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// CountByCodePrefix counts codes under the prefix in the combined
// client/renew space, read from contract_codes. Renew codes sit under the
// following year's prefix, so a contract contributes at most once to any
// one prefix.
func (s *PostgresStore) CountByCodePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contract_codes WHERE code LIKE $1 || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count contract codes by prefix: %w", err)
	}
	return n, nil
}
