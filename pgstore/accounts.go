package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openleads/openleads"
)

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// Store is a pgx-backed [openleads.AccountProvider].
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool. The pool's lifecycle stays with
// the caller.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetAccountByEmail looks up an account by email. Returns
// [openleads.ErrAccountNotFound] when no row matches.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (openleads.Account, error) {
	return s.get(ctx,
		`SELECT id, name, email, role, password_hash FROM accounts WHERE email = $1`,
		email)
}

// GetAccountByID looks up an account by primary key.
func (s *Store) GetAccountByID(ctx context.Context, id string) (openleads.Account, error) {
	return s.get(ctx,
		`SELECT id, name, email, role, password_hash FROM accounts WHERE id = $1`,
		id)
}

func (s *Store) get(ctx context.Context, query, arg string) (openleads.Account, error) {
	var a openleads.Account
	err := s.pool.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return openleads.Account{}, openleads.ErrAccountNotFound
	}
	if err != nil {
		return openleads.Account{}, fmt.Errorf("account lookup: %w", err)
	}
	return a, nil
}

// CreateAccount inserts a new account with a generated uuid. A duplicate
// email maps to [openleads.ErrAccountExists].
func (s *Store) CreateAccount(ctx context.Context, input openleads.CreateAccountInput) (openleads.Account, error) {
	account := openleads.Account{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Role:         input.Role,
		PasswordHash: input.PasswordHash,
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, name, email, role, password_hash) VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.Name, account.Email, account.Role, account.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return openleads.Account{}, openleads.ErrAccountExists
		}
		return openleads.Account{}, fmt.Errorf("account insert: %w", err)
	}
	return account, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2 WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("password update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return openleads.ErrAccountNotFound
	}
	return nil
}
