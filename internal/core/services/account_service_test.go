package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/fintrellis/bank-accounts/internal/core/services"
	"github.com/fintrellis/bank-accounts/internal/dto"
)

// fakeTx is a sentinel transaction handle. Embedding the interface satisfies
// pgx.Tx without implementing it; the mocks only compare it by identity.
type fakeTx struct {
	pgx.Tx
	id int
}

// MockAccountRepository is a mock type for the AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	args := m.Called(ctx, tx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateIsFrozenByOwnerInTx(ctx context.Context, tx pgx.Tx, ownerID string, frozen bool) error {
	args := m.Called(ctx, tx, ownerID, frozen)
	return args.Error(0)
}

func (m *MockAccountRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockCurrencyRepository is a mock type for the CurrencyRepository interface
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// MockOutboxRepository is a mock type for the OutboxRepository interface
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) AppendInTx(ctx context.Context, tx pgx.Tx, msg domain.OutboxMessage) error {
	args := m.Called(ctx, tx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, messageID uuid.UUID) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkDeadLetter(ctx context.Context, messageID uuid.UUID) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockOutboxRepository) PendingCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockOutboxRepo   *MockOutboxRepository
	service          *services.AccountService
	tx               *fakeTx
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockOutboxRepo = new(MockOutboxRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCurrencyRepo, suite.mockOutboxRepo, nil)
	suite.tx = &fakeTx{id: 1}
}

// expectTx wires the usual Begin/Rollback pair. Rollback always fires via
// defer, even after a successful commit.
func (suite *AccountServiceTestSuite) expectTx() {
	suite.mockAccountRepo.On("Begin", mock.Anything).Return(suite.tx, nil).Once()
	suite.mockAccountRepo.On("Rollback", mock.Anything, suite.tx).Return(nil)
}

func (suite *AccountServiceTestSuite) expectUSD() {
	usd := &domain.Currency{CurrencyCode: "USD", Name: "United States Dollar", Symbol: "$"}
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(usd, nil)
}

func outboxEventType(eventType domain.EventType) interface{} {
	return mock.MatchedBy(func(msg domain.OutboxMessage) bool {
		return msg.EventType == string(eventType)
	})
}

// --- OpenAccount ---

func (suite *AccountServiceTestSuite) TestOpenAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		OwnerID:      uuid.NewString(),
		AccountKind:  "CHECKING",
		CurrencyCode: "USD",
	}

	suite.expectUSD()
	suite.expectTx()
	suite.mockAccountRepo.On("SaveAccountInTx", mock.Anything, suite.tx, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventAccountOpened)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	account, err := suite.service.OpenAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(req.OwnerID, account.OwnerID)
	suite.Equal(domain.Checking, account.AccountKind)
	suite.True(account.Balance.IsZero())
	suite.EqualValues(0, account.Version)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestOpenAccount_UnsupportedCurrency() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.OpenAccount(ctx, dto.CreateAccountRequest{
		OwnerID:      uuid.NewString(),
		AccountKind:  "CHECKING",
		CurrencyCode: "XXX",
	})

	suite.Require().ErrorIs(err, apperrors.ErrUnsupportedCurrency)
	suite.Nil(account)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_InterestRateOnChecking() {
	ctx := context.Background()
	rate := decimal.NewFromFloat(1.5)

	account, err := suite.service.OpenAccount(ctx, dto.CreateAccountRequest{
		OwnerID:      uuid.NewString(),
		AccountKind:  "CHECKING",
		CurrencyCode: "USD",
		InterestRate: &rate,
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_UnknownKind() {
	ctx := context.Background()

	account, err := suite.service.OpenAccount(ctx, dto.CreateAccountRequest{
		OwnerID:      uuid.NewString(),
		AccountKind:  "SAVINGS",
		CurrencyCode: "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
}

// --- RegisterTransaction ---

func (suite *AccountServiceTestSuite) lockedAccount(balance int64, mutate func(*domain.Account)) *domain.Account {
	account := &domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      uuid.NewString(),
		AccountKind:  domain.Checking,
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(balance),
		Version:      3,
	}
	if mutate != nil {
		mutate(account)
	}
	suite.mockAccountRepo.On("FindAccountForUpdate", mock.Anything, suite.tx, account.AccountID).Return(account, nil).Once()
	return account
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_CreditSuccess() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(100, nil)

	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(decimal.NewFromInt(60))
	})).Return(nil).Once()
	suite.mockAccountRepo.On("SaveTransactionInTx", mock.Anything, suite.tx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventMoneyCredited)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Credit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(40),
		CurrencyCode: "USD",
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.Credit, txn.TransactionType)
	suite.Equal(account.AccountID, txn.AccountID)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_DebitSuccess() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(100, nil)

	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(decimal.NewFromInt(140))
	})).Return(nil).Once()
	suite.mockAccountRepo.On("SaveTransactionInTx", mock.Anything, suite.tx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventMoneyDebited)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Debit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(40),
		CurrencyCode: "USD",
	})

	suite.Require().NoError(err)
	suite.Equal(domain.Debit, txn.TransactionType)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_InsufficientFunds() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(30, nil)

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Credit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(40),
		CurrencyCode: "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Nil(txn)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_FrozenRejectsCredit() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(100, func(a *domain.Account) { a.IsFrozen = true })

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Credit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrAccountFrozen)
	suite.Nil(txn)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_FrozenAllowsDebit() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(100, func(a *domain.Account) { a.IsFrozen = true })

	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockAccountRepo.On("SaveTransactionInTx", mock.Anything, suite.tx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventMoneyDebited)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Debit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
	})

	suite.Require().NoError(err)
	suite.NotNil(txn)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_ClosedAccount() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(0, func(a *domain.Account) {
		closedAt := a.OpenedAt
		a.ClosedAt = &closedAt
	})

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Debit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrAccountClosed)
	suite.Nil(txn)
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_ConcurrencyConflict() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	account := suite.lockedAccount(100, nil)

	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrConcurrencyConflict).Once()

	txn, err := suite.service.RegisterTransaction(ctx, account.AccountID, domain.Debit, dto.TransactionRequest{
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrConcurrencyConflict)
	suite.Nil(txn)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRegisterTransaction_NonPositiveAmount() {
	ctx := context.Background()

	txn, err := suite.service.RegisterTransaction(ctx, uuid.NewString(), domain.Debit, dto.TransactionRequest{
		Amount:       decimal.Zero,
		CurrencyCode: "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

// --- Transfer ---

func (suite *AccountServiceTestSuite) transferPair(sourceBalance, destBalance int64) (domain.Account, domain.Account) {
	source := domain.Account{
		AccountID:    "11111111-1111-1111-1111-111111111111",
		OwnerID:      uuid.NewString(),
		AccountKind:  domain.Checking,
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(sourceBalance),
		Version:      1,
	}
	destination := domain.Account{
		AccountID:    "22222222-2222-2222-2222-222222222222",
		OwnerID:      uuid.NewString(),
		AccountKind:  domain.Checking,
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(destBalance),
		Version:      1,
	}
	suite.mockAccountRepo.On("FindAccountsForUpdate", mock.Anything, suite.tx, []string{source.AccountID, destination.AccountID}).
		Return(map[string]domain.Account{
			source.AccountID:      source,
			destination.AccountID: destination,
		}, nil).Once()
	return source, destination
}

func (suite *AccountServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	source, destination := suite.transferPair(100, 50)

	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountID == source.AccountID && a.Balance.Equal(decimal.NewFromInt(70))
	})).Return(nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountID == destination.AccountID && a.Balance.Equal(decimal.NewFromInt(80))
	})).Return(nil).Once()
	suite.mockAccountRepo.On("SaveTransactionInTx", mock.Anything, suite.tx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TransactionType == domain.Credit && txn.AccountID == source.AccountID
	})).Return(nil).Once()
	suite.mockAccountRepo.On("SaveTransactionInTx", mock.Anything, suite.tx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TransactionType == domain.Debit && txn.AccountID == destination.AccountID
	})).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventTransferCompleted)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	err := suite.service.Transfer(ctx, dto.TransferRequest{
		SourceAccountID:      source.AccountID,
		DestinationAccountID: destination.AccountID,
		Amount:               decimal.NewFromInt(30),
		CurrencyCode:         "USD",
	})

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
	// One combined event covers both legs.
	suite.mockOutboxRepo.AssertNumberOfCalls(suite.T(), "AppendInTx", 1)
}

func (suite *AccountServiceTestSuite) TestTransfer_SameAccount() {
	ctx := context.Background()
	id := uuid.NewString()

	err := suite.service.Transfer(ctx, dto.TransferRequest{
		SourceAccountID:      id,
		DestinationAccountID: id,
		Amount:               decimal.NewFromInt(10),
		CurrencyCode:         "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *AccountServiceTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()
	source, destination := suite.transferPair(20, 0)

	err := suite.service.Transfer(ctx, dto.TransferRequest{
		SourceAccountID:      source.AccountID,
		DestinationAccountID: destination.AccountID,
		Amount:               decimal.NewFromInt(30),
		CurrencyCode:         "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestTransfer_FrozenSource() {
	ctx := context.Background()
	suite.expectUSD()
	suite.expectTx()

	source := domain.Account{
		AccountID:    "11111111-1111-1111-1111-111111111111",
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(100),
		IsFrozen:     true,
	}
	destination := domain.Account{
		AccountID:    "22222222-2222-2222-2222-222222222222",
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(50),
	}
	suite.mockAccountRepo.On("FindAccountsForUpdate", mock.Anything, suite.tx, mock.Anything).
		Return(map[string]domain.Account{
			source.AccountID:      source,
			destination.AccountID: destination,
		}, nil).Once()

	err := suite.service.Transfer(ctx, dto.TransferRequest{
		SourceAccountID:      source.AccountID,
		DestinationAccountID: destination.AccountID,
		Amount:               decimal.NewFromInt(10),
		CurrencyCode:         "USD",
	})

	suite.Require().ErrorIs(err, apperrors.ErrAccountFrozen)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestTransfer_CurrencyMismatch() {
	ctx := context.Background()
	eur := &domain.Currency{CurrencyCode: "EUR", Name: "Euro", Symbol: "€"}
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "EUR").Return(eur, nil)
	suite.expectTx()
	source, destination := suite.transferPair(100, 50) // both USD

	err := suite.service.Transfer(ctx, dto.TransferRequest{
		SourceAccountID:      source.AccountID,
		DestinationAccountID: destination.AccountID,
		Amount:               decimal.NewFromInt(10),
		CurrencyCode:         "EUR",
	})

	suite.Require().ErrorIs(err, apperrors.ErrCurrencyMismatch)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// --- CloseAccount ---

func (suite *AccountServiceTestSuite) TestCloseAccount_Success() {
	ctx := context.Background()
	suite.expectTx()
	account := suite.lockedAccount(0, nil)

	suite.mockAccountRepo.On("UpdateDetailsInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.ClosedAt != nil
	})).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventAccountClosed)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	err := suite.service.CloseAccount(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_NonZeroBalance() {
	ctx := context.Background()
	suite.expectTx()
	account := suite.lockedAccount(25, nil)

	err := suite.service.CloseAccount(ctx, account.AccountID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateDetailsInTx", mock.Anything, mock.Anything, mock.Anything)
}

// --- Interest ---

func (suite *AccountServiceTestSuite) TestUpdateInterestRate_CheckingRejected() {
	ctx := context.Background()
	suite.expectTx()
	account := suite.lockedAccount(0, nil) // kind defaults to CHECKING

	err := suite.service.UpdateInterestRate(ctx, account.AccountID, decimal.NewFromFloat(2.5))

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateInterestRate_Success() {
	ctx := context.Background()
	suite.expectTx()
	rate := decimal.NewFromFloat(2.5)
	account := suite.lockedAccount(0, func(a *domain.Account) { a.AccountKind = domain.Deposit })

	suite.mockAccountRepo.On("UpdateDetailsInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.InterestRate != nil && a.InterestRate.Equal(rate)
	})).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventAccountInterestUpdated)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	err := suite.service.UpdateInterestRate(ctx, account.AccountID, rate)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestAccrueInterest_Success() {
	ctx := context.Background()
	suite.expectTx()
	rate := decimal.NewFromInt(5)
	account := suite.lockedAccount(1000, func(a *domain.Account) {
		a.AccountKind = domain.Deposit
		a.InterestRate = &rate
	})

	suite.mockAccountRepo.On("UpdateBalanceInTx", mock.Anything, suite.tx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(decimal.NewFromInt(1050))
	})).Return(nil).Once()
	suite.mockAccountRepo.On("SaveTransactionInTx", mock.Anything, suite.tx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TransactionType == domain.Debit && txn.Amount.Equal(decimal.NewFromInt(50))
	})).Return(nil).Once()
	suite.mockOutboxRepo.On("AppendInTx", mock.Anything, suite.tx, outboxEventType(domain.EventInterestAccrued)).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", mock.Anything, suite.tx).Return(nil).Once()

	txn, err := suite.service.AccrueInterest(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.True(txn.Amount.Equal(decimal.NewFromInt(50)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestAccrueInterest_NothingToAccrue() {
	ctx := context.Background()
	suite.expectTx()
	rate := decimal.NewFromInt(5)
	account := suite.lockedAccount(0, func(a *domain.Account) {
		a.AccountKind = domain.Deposit
		a.InterestRate = &rate
	})

	txn, err := suite.service.AccrueInterest(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.Nil(txn)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestAccrueInterest_NonDepositRejected() {
	ctx := context.Background()
	suite.expectTx()
	account := suite.lockedAccount(1000, nil) // CHECKING

	txn, err := suite.service.AccrueInterest(ctx, account.AccountID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
}

// --- ListTransactions ---

func (suite *AccountServiceTestSuite) TestListTransactions_UnknownAccount() {
	ctx := context.Background()
	id := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, id).Return(nil, apperrors.ErrNotFound).Once()

	txns, err := suite.service.ListTransactions(ctx, id, 20, 0)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(txns)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ListTransactionsByAccountID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestListTransactions_Success() {
	ctx := context.Background()
	account := &domain.Account{AccountID: uuid.NewString(), CurrencyCode: "USD"}
	expected := []domain.Transaction{{TransactionID: uuid.NewString(), AccountID: account.AccountID}}

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("ListTransactionsByAccountID", mock.Anything, account.AccountID, 20, 0).Return(expected, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, account.AccountID, 20, 0)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), expected, txns)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
