package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/accountsvc/apiserver/types"
)

// AccountRepository handles persistence for accounts.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, password, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (types.AccountRecord, error) {
	var record types.AccountRecord
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Email,
		&record.Password,
		&record.Role,
		&record.CreatedAt,
	)
	return record, err
}

func (r *AccountRepository) Insert(ctx context.Context, record types.AccountRecord) error {
	const query = `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Name,
		record.Email,
		record.Password,
		record.Role,
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (types.AccountRecord, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1`
	record, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.AccountRecord{}, ErrNotFound
		}
		return types.AccountRecord{}, err
	}
	return record, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (types.AccountRecord, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`
	record, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.AccountRecord{}, ErrNotFound
		}
		return types.AccountRecord{}, err
	}
	return record, nil
}

func (r *AccountRepository) ListAll(ctx context.Context) ([]types.AccountRecord, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]types.AccountRecord, 0)
	for rows.Next() {
		record, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *AccountRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes the role of an existing account. It backs operator
// provisioning only; no client-facing operation mutates accounts.
func (r *AccountRepository) SetRole(ctx context.Context, email string, role types.Role) error {
	if _, err := types.ParseRole(string(role)); err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	const query = `UPDATE accounts SET role = $1 WHERE email = $2`
	result, err := r.db.ExecContext(ctx, query, role, email)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
