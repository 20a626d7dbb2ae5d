package stockservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/service/stockservice"
)

// MockLedgerTx é uma implementação mock de domain.LedgerTx
type MockLedgerTx struct {
	mock.Mock
}

func (m *MockLedgerTx) GetComponents(ctx context.Context, ids []string, forUpdate bool) (map[string]domain.Component, error) {
	args := m.Called(ctx, ids, forUpdate)
	return args.Get(0).(map[string]domain.Component), args.Error(1)
}

func (m *MockLedgerTx) InsertComponent(ctx context.Context, c domain.Component) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockLedgerTx) UpdateComponentQuantity(ctx context.Context, c domain.Component, newQuantity int) (domain.Component, error) {
	args := m.Called(ctx, c, newQuantity)
	return args.Get(0).(domain.Component), args.Error(1)
}

func (m *MockLedgerTx) GetRequest(ctx context.Context, id string, forUpdate bool) (domain.Request, error) {
	args := m.Called(ctx, id, forUpdate)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockLedgerTx) InsertRequest(ctx context.Context, r domain.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockLedgerTx) UpdateRequest(ctx context.Context, r domain.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockLedgerTx) ReplaceRequestItems(ctx context.Context, requestID string, items []domain.RequestItem) error {
	return m.Called(ctx, requestID, items).Error(0)
}

func (m *MockLedgerTx) InsertUsage(ctx context.Context, r domain.UsageRecord) error {
	return m.Called(ctx, r).Error(0)
}

// MockTxManager executa fn diretamente sobre o MockLedgerTx.
type MockTxManager struct {
	tx *MockLedgerTx
}

func (m *MockTxManager) WithinTx(_ context.Context, fn func(tx domain.LedgerTx) error) error {
	return fn(m.tx)
}

// MockUsageAppender é uma implementação mock de stockservice.UsageAppender
type MockUsageAppender struct {
	mock.Mock
}

func (m *MockUsageAppender) Append(ctx context.Context, tx domain.LedgerTx, r domain.UsageRecord) (domain.UsageRecord, error) {
	args := m.Called(ctx, tx, r)
	return args.Get(0).(domain.UsageRecord), args.Error(1)
}

// MockNotifier é uma implementação mock de domain.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RequestApproved(ctx context.Context, r domain.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockNotifier) RequestReturned(ctx context.Context, r domain.Request) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockNotifier) LowStock(ctx context.Context, c domain.Component) error {
	return m.Called(ctx, c).Error(0)
}

type fixture struct {
	tx       *MockLedgerTx
	usage    *MockUsageAppender
	notifier *MockNotifier
	ledger   *stockservice.Ledger
}

func newFixture() fixture {
	tx := new(MockLedgerTx)
	usage := new(MockUsageAppender)
	notifier := new(MockNotifier)
	ledger := stockservice.NewLedger(&MockTxManager{tx: tx}, usage, notifier, nil, nil, logger.NewLogger("debug"))
	return fixture{tx: tx, usage: usage, notifier: notifier, ledger: ledger}
}

func component(qty, minStock int) domain.Component {
	return domain.Component{ID: uuid.New().String(), Name: "Resistor 10k", Quantity: qty, MinStock: minStock, Version: 1}
}

// TestCheckAvailability_SumsDuplicateLines garante que linhas repetidas são somadas.
func TestCheckAvailability_SumsDuplicateLines(t *testing.T) {
	f := newFixture()
	c := component(5, 0)
	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, true).Return(map[string]domain.Component{c.ID: c}, nil)

	_, err := f.ledger.CheckAvailability(context.Background(), f.tx, []domain.ItemQuantity{
		{ComponentID: c.ID, Quantity: 3},
		{ComponentID: c.ID, Quantity: 3},
	}, true)

	var stockErr *apperror.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	f.tx.AssertNotCalled(t, "UpdateComponentQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// TestCheckAvailability_ZeroStockFails garante que estoque zero sempre falha.
func TestCheckAvailability_ZeroStockFails(t *testing.T) {
	f := newFixture()
	c := component(0, 0)
	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, false).Return(map[string]domain.Component{c.ID: c}, nil)

	_, err := f.ledger.CheckAvailability(context.Background(), f.tx, []domain.ItemQuantity{{ComponentID: c.ID, Quantity: 1}}, false)

	var stockErr *apperror.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, c.ID, stockErr.ComponentID)
	assert.Equal(t, 0, stockErr.Available)
}

// TestCheckAvailability_UnknownComponent testa um componente inexistente.
func TestCheckAvailability_UnknownComponent(t *testing.T) {
	f := newFixture()
	f.tx.On("GetComponents", mock.Anything, []string{"missing"}, false).Return(map[string]domain.Component{}, nil)

	_, err := f.ledger.CheckAvailability(context.Background(), f.tx, []domain.ItemQuantity{{ComponentID: "missing", Quantity: 1}}, false)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestCheckAvailability_ExactQuantityPasses testa o limite exato de estoque.
func TestCheckAvailability_ExactQuantityPasses(t *testing.T) {
	f := newFixture()
	a, b := component(4, 0), component(2, 0)
	f.tx.On("GetComponents", mock.Anything, mock.Anything, true).Return(map[string]domain.Component{a.ID: a, b.ID: b}, nil)

	components, err := f.ledger.CheckAvailability(context.Background(), f.tx, []domain.ItemQuantity{
		{ComponentID: a.ID, Quantity: 4},
		{ComponentID: b.ID, Quantity: 1},
	}, true)

	assert.NoError(t, err)
	assert.Len(t, components, 2)
}

// TestDebit_RefusesNegativeResult testa a prevenção de estoque negativo.
func TestDebit_RefusesNegativeResult(t *testing.T) {
	f := newFixture()
	c := component(2, 0)

	_, err := f.ledger.Debit(context.Background(), f.tx, c, 3)

	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	f.tx.AssertNotCalled(t, "UpdateComponentQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjustStock_Success_Removal testa uma retirada manual que deixa o componente no mínimo.
func TestAdjustStock_Success_Removal(t *testing.T) {
	f := newFixture()
	c := component(10, 5)
	updated := c
	updated.Quantity = 4
	updated.Version = 2

	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, true).Return(map[string]domain.Component{c.ID: c}, nil)
	f.tx.On("UpdateComponentQuantity", mock.Anything, c, 4).Return(updated, nil)
	f.usage.On("Append", mock.Anything, f.tx, mock.MatchedBy(func(r domain.UsageRecord) bool {
		return r.ComponentID == c.ID && r.Type == domain.UsageRemove && r.Project == "Bancada 3"
	})).Return(domain.UsageRecord{}, nil)
	f.notifier.On("LowStock", mock.Anything, updated).Return(nil)

	result, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: c.ID, Delta: -6, Project: "Bancada 3"})

	assert.NoError(t, err)
	assert.Equal(t, 4, result.Quantity)
	assert.Equal(t, 2, result.Version)
	f.tx.AssertExpectations(t)
	f.usage.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

// TestAdjustStock_Success_Addition testa uma adição manual (sem notificação).
func TestAdjustStock_Success_Addition(t *testing.T) {
	f := newFixture()
	c := component(1, 5)
	updated := c
	updated.Quantity = 3
	updated.Version = 2

	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, true).Return(map[string]domain.Component{c.ID: c}, nil)
	f.tx.On("UpdateComponentQuantity", mock.Anything, c, 3).Return(updated, nil)
	f.usage.On("Append", mock.Anything, f.tx, mock.MatchedBy(func(r domain.UsageRecord) bool {
		return r.Type == domain.UsageAdd && r.Quantity == 2
	})).Return(domain.UsageRecord{}, nil)

	result, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: c.ID, Delta: 2})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Quantity)
	f.notifier.AssertNotCalled(t, "LowStock", mock.Anything, mock.Anything)
}

// TestAdjustStock_NotificationFailureIsIgnored garante que falha de notificação não afeta o ajuste.
func TestAdjustStock_NotificationFailureIsIgnored(t *testing.T) {
	f := newFixture()
	c := component(3, 5)
	updated := c
	updated.Quantity = 2

	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, true).Return(map[string]domain.Component{c.ID: c}, nil)
	f.tx.On("UpdateComponentQuantity", mock.Anything, c, 2).Return(updated, nil)
	f.usage.On("Append", mock.Anything, f.tx, mock.Anything).Return(domain.UsageRecord{}, nil)
	f.notifier.On("LowStock", mock.Anything, updated).Return(errors.New("telegram fora do ar"))

	result, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: c.ID, Delta: -1})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Quantity)
}

// TestAdjustStock_Fail_NegativeResultingStock testa a prevenção de estoque negativo.
func TestAdjustStock_Fail_NegativeResultingStock(t *testing.T) {
	f := newFixture()
	c := component(2, 0)
	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, true).Return(map[string]domain.Component{c.ID: c}, nil)

	_, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: c.ID, Delta: -15})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	f.usage.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_OCCConflict testa um conflito de concorrência otimista.
func TestAdjustStock_Fail_OCCConflict(t *testing.T) {
	f := newFixture()
	c := component(5, 0)
	f.tx.On("GetComponents", mock.Anything, []string{c.ID}, true).Return(map[string]domain.Component{c.ID: c}, nil)
	f.tx.On("UpdateComponentQuantity", mock.Anything, c, 6).
		Return(domain.Component{}, apperror.NewConflictError("O componente foi modificado por outra operação. Tente novamente."))

	_, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: c.ID, Delta: 1})

	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "modificado")
}

// TestAdjustStock_Fail_ZeroDelta testa o caso onde o delta é zero.
func TestAdjustStock_Fail_ZeroDelta(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: uuid.New().String(), Delta: 0})

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "não pode ser zero")
	f.tx.AssertNotCalled(t, "GetComponents", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdjustStock_Fail_InternalError testa um erro genérico vindo da transação.
func TestAdjustStock_Fail_InternalError(t *testing.T) {
	f := newFixture()
	f.tx.On("GetComponents", mock.Anything, mock.Anything, true).Return(map[string]domain.Component(nil), errors.New("falha de conexão com o DB"))

	_, err := f.ledger.AdjustStock(context.Background(), domain.StockAdjustment{ComponentID: uuid.New().String(), Delta: 1})

	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, err.Error(), "Falha interna ao ajustar estoque.")
}
