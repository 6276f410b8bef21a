package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/bank-accounts/internal/core/ports/services"
	"github.com/fintrellis/bank-accounts/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// AccountService implements the account business protocols: every mutation
// runs in one database transaction that locks the account row, applies the
// aggregate change, persists it with a version guard and appends the resulting
// domain event to the outbox. Commit is the only point where anything becomes
// visible.
type AccountService struct {
	accountRepo  portsrepo.AccountRepository
	currencyRepo portsrepo.CurrencyRepository
	outboxRepo   portsrepo.OutboxRepository
	logger       *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	accountRepo portsrepo.AccountRepository,
	currencyRepo portsrepo.CurrencyRepository,
	outboxRepo portsrepo.OutboxRepository,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// Ensure AccountService implements portssvc.AccountService
var _ portssvc.AccountService = (*AccountService)(nil)

// validateSupportedCurrency checks the currency against reference data.
func (s *AccountService) validateSupportedCurrency(ctx context.Context, currencyCode string) error {
	_, err := s.currencyRepo.FindCurrencyByCode(ctx, strings.ToUpper(currencyCode))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, currencyCode)
		}
		return fmt.Errorf("failed to validate currency %s: %w", currencyCode, err)
	}
	return nil
}

// appendEvent serializes a domain event and writes it to the outbox inside the
// caller's transaction, using the static event-route registry.
func (s *AccountService) appendEvent(ctx context.Context, tx pgx.Tx, event domain.DomainEvent) error {
	route, ok := domain.RouteFor(event.Type())
	if !ok {
		return fmt.Errorf("%w: no route registered for event type %s", apperrors.ErrInvariantViolation, event.Type())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize %s event: %w", event.Type(), err)
	}

	return s.outboxRepo.AppendInTx(ctx, tx, domain.OutboxMessage{
		MessageID:  event.ID(),
		EventType:  string(event.Type()),
		Payload:    payload,
		Exchange:   route.Exchange,
		RoutingKey: route.RoutingKey,
		OccurredAt: event.OccurredOn(),
	})
}

// OpenAccount creates a new account and emits AccountOpened.
func (s *AccountService) OpenAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	kind := domain.AccountKind(req.AccountKind)
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown account kind %q", apperrors.ErrValidation, req.AccountKind)
	}
	if req.InterestRate != nil && kind == domain.Checking {
		return nil, fmt.Errorf("%w: checking accounts do not carry an interest rate", apperrors.ErrValidation)
	}
	if err := s.validateSupportedCurrency(ctx, req.CurrencyCode); err != nil {
		return nil, err
	}

	account := domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      req.OwnerID,
		AccountKind:  kind,
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
		Balance:      decimal.Zero,
		InterestRate: req.InterestRate,
		OpenedAt:     time.Now().UTC(),
		Version:      0,
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	if err := s.accountRepo.SaveAccountInTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := domain.AccountOpened{
		EventEnvelope: domain.NewEventEnvelope(),
		AccountID:     account.AccountID,
		OwnerID:       account.OwnerID,
		AccountKind:   account.AccountKind,
		CurrencyCode:  account.CurrencyCode,
	}
	if err := s.appendEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return &account, nil
}

// GetAccountByID retrieves an account without locking.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// ListTransactions returns the account's transaction records, newest first.
func (s *AccountService) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.accountRepo.ListTransactionsByAccountID(ctx, accountID, limit, offset)
}

// RegisterTransaction runs the single-account mutation protocol: lock-read the
// account, apply the aggregate change in memory, persist balance (version
// guard) and transaction record, append the event, commit. Any failure after
// Begin rolls everything back.
func (s *AccountService) RegisterTransaction(ctx context.Context, accountID string, kind domain.TransactionType, req dto.TransactionRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if err := s.validateSupportedCurrency(ctx, req.CurrencyCode); err != nil {
		return nil, err
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsClosed() {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, accountID)
	}
	// Frozen owners may still receive money; only balance-decreasing (CREDIT)
	// mutations are rejected.
	if account.IsFrozen && kind == domain.Credit {
		return nil, fmt.Errorf("%w: owner %s", apperrors.ErrAccountFrozen, account.OwnerID)
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Amount:          req.Amount,
		TransactionType: kind,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		Description:     req.Description,
		CreatedAt:       time.Now().UTC(),
	}

	if err := account.ApplyTransaction(&txn); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateBalanceInTx(ctx, tx, *account); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	var event domain.DomainEvent
	if kind == domain.Credit {
		event = domain.MoneyCredited{
			EventEnvelope: domain.NewEventEnvelope(),
			AccountID:     account.AccountID,
			Amount:        txn.Amount,
			CurrencyCode:  txn.CurrencyCode,
		}
	} else {
		event = domain.MoneyDebited{
			EventEnvelope: domain.NewEventEnvelope(),
			AccountID:     account.AccountID,
			Amount:        txn.Amount,
			CurrencyCode:  txn.CurrencyCode,
		}
	}
	if err := s.appendEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return &txn, nil
}

// Transfer moves funds between two accounts as one atomic operation. Both rows
// are locked in deterministic id order, both legs are applied through the
// aggregate, and a conservation check runs before commit: the sum of the two
// balances must be unchanged or the whole operation rolls back as an
// invariant violation.
func (s *AccountService) Transfer(ctx context.Context, req dto.TransferRequest) error {
	if req.SourceAccountID == req.DestinationAccountID {
		return fmt.Errorf("%w: source and destination accounts must differ", apperrors.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if err := s.validateSupportedCurrency(ctx, req.CurrencyCode); err != nil {
		return err
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	accounts, err := s.accountRepo.FindAccountsForUpdate(ctx, tx, []string{req.SourceAccountID, req.DestinationAccountID})
	if err != nil {
		return err
	}
	source := accounts[req.SourceAccountID]
	destination := accounts[req.DestinationAccountID]

	if source.IsClosed() {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, source.AccountID)
	}
	if destination.IsClosed() {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, destination.AccountID)
	}
	if source.IsFrozen {
		return fmt.Errorf("%w: owner %s", apperrors.ErrAccountFrozen, source.OwnerID)
	}

	// The request currency must match both accounts, which implies the
	// accounts match each other.
	currency := strings.ToUpper(req.CurrencyCode)
	if !strings.EqualFold(currency, source.CurrencyCode) || !strings.EqualFold(currency, destination.CurrencyCode) {
		return fmt.Errorf("%w: transfer currency %s, source %s, destination %s",
			apperrors.ErrCurrencyMismatch, currency, source.CurrencyCode, destination.CurrencyCode)
	}

	balanceSumBefore := source.Balance.Add(destination.Balance)
	now := time.Now().UTC()

	sourceTxn := domain.Transaction{
		TransactionID:         uuid.NewString(),
		CounterpartyAccountID: &destination.AccountID,
		Amount:                req.Amount,
		TransactionType:       domain.Credit,
		CurrencyCode:          currency,
		Description:           req.Description,
		CreatedAt:             now,
	}
	destinationTxn := domain.Transaction{
		TransactionID:         uuid.NewString(),
		CounterpartyAccountID: &source.AccountID,
		Amount:                req.Amount,
		TransactionType:       domain.Debit,
		CurrencyCode:          currency,
		Description:           req.Description,
		CreatedAt:             now,
	}

	if err := source.ApplyTransaction(&sourceTxn); err != nil {
		return err
	}
	if err := destination.ApplyTransaction(&destinationTxn); err != nil {
		return err
	}

	if err := s.accountRepo.UpdateBalanceInTx(ctx, tx, source); err != nil {
		return err
	}
	if err := s.accountRepo.UpdateBalanceInTx(ctx, tx, destination); err != nil {
		return err
	}
	if err := s.accountRepo.SaveTransactionInTx(ctx, tx, sourceTxn); err != nil {
		return err
	}
	if err := s.accountRepo.SaveTransactionInTx(ctx, tx, destinationTxn); err != nil {
		return err
	}

	event := domain.TransferCompleted{
		EventEnvelope:        domain.NewEventEnvelope(),
		SourceAccountID:      source.AccountID,
		DestinationAccountID: destination.AccountID,
		Amount:               req.Amount,
		CurrencyCode:         currency,
	}
	if err := s.appendEvent(ctx, tx, event); err != nil {
		return err
	}

	// Conservation check before commit: no funds created or destroyed.
	balanceSumAfter := source.Balance.Add(destination.Balance)
	if !balanceSumAfter.Equal(balanceSumBefore) {
		s.logger.ErrorContext(ctx, "Transfer balance conservation violated",
			slog.String("source_account_id", source.AccountID),
			slog.String("destination_account_id", destination.AccountID),
			slog.String("sum_before", balanceSumBefore.String()),
			slog.String("sum_after", balanceSumAfter.String()),
		)
		return fmt.Errorf("%w: transfer balance sum changed from %s to %s",
			apperrors.ErrInvariantViolation, balanceSumBefore, balanceSumAfter)
	}

	return s.accountRepo.Commit(ctx, tx)
}

// CloseAccount closes an account with a zero balance and emits AccountClosed.
func (s *AccountService) CloseAccount(ctx context.Context, accountID string) error {
	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if account.IsClosed() {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, accountID)
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("%w: account %s balance must be zero before closing", apperrors.ErrValidation, accountID)
	}

	closedAt := time.Now().UTC()
	account.ClosedAt = &closedAt

	if err := s.accountRepo.UpdateDetailsInTx(ctx, tx, *account); err != nil {
		return err
	}

	event := domain.AccountClosed{
		EventEnvelope: domain.NewEventEnvelope(),
		AccountID:     account.AccountID,
		ClosedAt:      closedAt,
	}
	if err := s.appendEvent(ctx, tx, event); err != nil {
		return err
	}

	return s.accountRepo.Commit(ctx, tx)
}

// UpdateInterestRate changes the interest rate on a deposit or credit account.
func (s *AccountService) UpdateInterestRate(ctx context.Context, accountID string, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: interest rate must not be negative", apperrors.ErrValidation)
	}

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if account.IsClosed() {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, accountID)
	}
	if account.AccountKind == domain.Checking {
		return fmt.Errorf("%w: checking accounts do not carry an interest rate", apperrors.ErrValidation)
	}

	account.InterestRate = &rate

	if err := s.accountRepo.UpdateDetailsInTx(ctx, tx, *account); err != nil {
		return err
	}

	event := domain.AccountInterestUpdated{
		EventEnvelope: domain.NewEventEnvelope(),
		AccountID:     account.AccountID,
		InterestRate:  rate,
	}
	if err := s.appendEvent(ctx, tx, event); err != nil {
		return err
	}

	return s.accountRepo.Commit(ctx, tx)
}

// AccrueInterest applies one interest accrual to a deposit account. The
// accrued amount goes through the regular mutation protocol as a DEBIT
// transaction, so it shows up in the transaction history and the outbox like
// any other balance change.
func (s *AccountService) AccrueInterest(ctx context.Context, accountID string) (*domain.Transaction, error) {
	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsClosed() {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountClosed, accountID)
	}
	if account.AccountKind != domain.Deposit {
		return nil, fmt.Errorf("%w: interest accrues on deposit accounts only", apperrors.ErrValidation)
	}
	if account.InterestRate == nil {
		return nil, fmt.Errorf("%w: account %s has no interest rate", apperrors.ErrValidation, accountID)
	}

	interest := account.Balance.Mul(*account.InterestRate).Div(oneHundred).Round(4)
	if !interest.IsPositive() {
		return nil, nil // Nothing to accrue.
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Amount:          interest,
		TransactionType: domain.Debit,
		CurrencyCode:    account.CurrencyCode,
		Description:     "interest accrual",
		CreatedAt:       time.Now().UTC(),
	}

	if err := account.ApplyTransaction(&txn); err != nil {
		return nil, err
	}
	if err := s.accountRepo.UpdateBalanceInTx(ctx, tx, *account); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	event := domain.InterestAccrued{
		EventEnvelope: domain.NewEventEnvelope(),
		AccountID:     account.AccountID,
		Amount:        interest,
	}
	if err := s.appendEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return &txn, nil
}
