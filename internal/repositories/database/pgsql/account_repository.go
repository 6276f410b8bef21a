package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/fintrellis/bank-accounts/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for account and transaction data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

// Helper to convert domain.Account to models.Account for DB storage
func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:    d.AccountID,
		OwnerID:      d.OwnerID,
		AccountKind:  models.AccountKind(d.AccountKind),
		CurrencyCode: d.CurrencyCode,
		Balance:      d.Balance,
		InterestRate: d.InterestRate,
		IsFrozen:     d.IsFrozen,
		OpenedAt:     d.OpenedAt,
		ClosedAt:     d.ClosedAt,
		Version:      d.Version,
	}
}

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		OwnerID:      m.OwnerID,
		AccountKind:  domain.AccountKind(m.AccountKind),
		CurrencyCode: m.CurrencyCode,
		Balance:      m.Balance,
		InterestRate: m.InterestRate,
		IsFrozen:     m.IsFrozen,
		OpenedAt:     m.OpenedAt,
		ClosedAt:     m.ClosedAt,
		Version:      m.Version,
	}
}

const accountColumns = `account_id, owner_id, account_kind, currency_code, balance, interest_rate, is_frozen, opened_at, closed_at, version`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.OwnerID,
		&m.AccountKind,
		&m.CurrencyCode,
		&m.Balance,
		&m.InterestRate,
		&m.IsFrozen,
		&m.OpenedAt,
		&m.ClosedAt,
		&m.Version,
	)
	return m, err
}

// SaveAccountInTx inserts a new account within the caller's transaction.
func (r *PgxAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	modelAcc := toModelAccount(account)

	query := `
		INSERT INTO accounts (account_id, owner_id, account_kind, currency_code, balance, interest_rate, is_frozen, opened_at, closed_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.OwnerID,
		modelAcc.AccountKind,
		modelAcc.CurrencyCode,
		modelAcc.Balance,
		modelAcc.InterestRate,
		modelAcc.IsFrozen,
		modelAcc.OpenedAt,
		modelAcc.ClosedAt,
		modelAcc.Version,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, modelAcc.AccountID)
			}
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID without locking.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	modelAcc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	domainAcc := toDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountForUpdate retrieves an account by ID and locks the row for update.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`

	modelAcc, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %s for update: %w", accountID, err)
	}

	domainAcc := toDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountsForUpdate retrieves multiple accounts by IDs and locks the rows
// for update. Rows are locked in ascending account id order so concurrent
// transfers touching the same pair cannot deadlock on lock ordering.
func (r *PgxAccountRepository) FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	ordered := make([]string, len(accountIDs))
	copy(ordered, accountIDs)
	sort.Strings(ordered)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`

	rows, err := tx.Query(ctx, query, ordered)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		modelAcc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[modelAcc.AccountID] = toDomainAccount(modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(ordered) {
		missing := []string{}
		for _, id := range ordered {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateBalanceInTx persists the account's new balance with a version-guarded
// conditional update. The account must have been lock-read in the same
// transaction; the version check is an independent compare-and-swap so a write
// through another path between read and write still surfaces as a conflict.
func (r *PgxAccountRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2, version = version + 1
		WHERE account_id = $1 AND version = $3;
	`

	cmdTag, err := tx.Exec(ctx, query, account.AccountID, account.Balance, account.Version)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", account.AccountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s version %d", apperrors.ErrConcurrencyConflict, account.AccountID, account.Version)
	}

	return nil
}

// UpdateDetailsInTx persists interest rate and closed-at changes with the same
// version guard as UpdateBalanceInTx.
func (r *PgxAccountRepository) UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	query := `
		UPDATE accounts
		SET interest_rate = $2, closed_at = $3, version = version + 1
		WHERE account_id = $1 AND version = $4;
	`

	cmdTag, err := tx.Exec(ctx, query, account.AccountID, account.InterestRate, account.ClosedAt, account.Version)
	if err != nil {
		return fmt.Errorf("failed to update details for account %s: %w", account.AccountID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s version %d", apperrors.ErrConcurrencyConflict, account.AccountID, account.Version)
	}

	return nil
}

// SaveTransactionInTx appends an immutable transaction record.
func (r *PgxAccountRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, account_id, counterparty_account_id, amount, transaction_type, currency_code, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.AccountID,
		txn.CounterpartyAccountID,
		txn.Amount,
		models.TransactionType(txn.TransactionType),
		txn.CurrencyCode,
		txn.Description,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateIsFrozenByOwnerInTx flips the frozen flag on all accounts owned by a client.
// Zero affected rows is not an error: a blocked client may simply have no accounts here.
func (r *PgxAccountRepository) UpdateIsFrozenByOwnerInTx(ctx context.Context, tx pgx.Tx, ownerID string, frozen bool) error {
	query := `UPDATE accounts SET is_frozen = $2 WHERE owner_id = $1;`

	_, err := tx.Exec(ctx, query, ownerID, frozen)
	if err != nil {
		return fmt.Errorf("failed to update frozen flag for owner %s: %w", ownerID, err)
	}
	return nil
}

// ListTransactionsByAccountID retrieves transaction records for an account, newest first.
func (r *PgxAccountRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT transaction_id, account_id, counterparty_account_id, amount, transaction_type, currency_code, description, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var m models.Transaction
		err := rows.Scan(
			&m.TransactionID,
			&m.AccountID,
			&m.CounterpartyAccountID,
			&m.Amount,
			&m.TransactionType,
			&m.CurrencyCode,
			&m.Description,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		transactions = append(transactions, domain.Transaction{
			TransactionID:         m.TransactionID,
			AccountID:             m.AccountID,
			CounterpartyAccountID: m.CounterpartyAccountID,
			Amount:                m.Amount,
			TransactionType:       domain.TransactionType(m.TransactionType),
			CurrencyCode:          m.CurrencyCode,
			Description:           m.Description,
			CreatedAt:             m.CreatedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}

	return transactions, nil
}
