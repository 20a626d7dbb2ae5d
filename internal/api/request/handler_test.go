package request_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockroom/internal/api/request"
	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) CreateRequest(ctx context.Context, draft domain.RequestDraft) (domain.Request, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockRequestService) UpdateRequest(ctx context.Context, id string, draft domain.RequestDraft) (domain.Request, error) {
	args := m.Called(ctx, id, draft)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockRequestService) SetStatus(ctx context.Context, id string, target string) (domain.Request, error) {
	args := m.Called(ctx, id, target)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockRequestService) GetRequest(ctx context.Context, id string) (domain.Request, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Request), args.Error(1)
}

func (m *MockRequestService) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Request), args.Error(1)
}

func newMux(svc *MockRequestService) *http.ServeMux {
	h := request.NewHandler(svc, logger.NewNopLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/requests", h.CreateRequestHandler)
	mux.HandleFunc("GET /v1/requests", h.ListRequestsHandler)
	mux.HandleFunc("GET /v1/requests/{id}", h.GetRequestHandler)
	mux.HandleFunc("PUT /v1/requests/{id}", h.UpdateRequestHandler)
	mux.HandleFunc("POST /v1/requests/{id}/status", h.SetStatusHandler)
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestCreateRequestHandler(t *testing.T) {
	svc := new(MockRequestService)
	draft := domain.RequestDraft{
		PersonnelName: "Ana",
		Items:         []domain.RequestItemInput{{ComponentID: "c-1", Quantity: 2}},
	}
	svc.On("CreateRequest", mock.Anything, draft).
		Return(domain.Request{ID: "r-1", PersonnelName: "Ana", Status: domain.StatusPending}, nil).Once()

	rec := serve(newMux(svc), http.MethodPost, "/v1/requests",
		`{"personnel_name":"Ana","items":[{"component_id":"c-1","quantity":2}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Request
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r-1", got.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
	svc.AssertExpectations(t)
}

func TestCreateRequestHandler_InvalidPayload(t *testing.T) {
	svc := new(MockRequestService)
	rec := serve(newMux(svc), http.MethodPost, "/v1/requests", `{"personnel_name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
}

func TestSetStatusHandler_InsufficientStockBody(t *testing.T) {
	svc := new(MockRequestService)
	svc.On("SetStatus", mock.Anything, "r-1", "APPROVED").
		Return(domain.Request{}, apperror.NewInsufficientStockError("c-9", "Osciloscópio", 1, 0)).Once()

	rec := serve(newMux(svc), http.MethodPost, "/v1/requests/r-1/status", `{"status":"APPROVED"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body response.StockErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Category)
	assert.Equal(t, "c-9", body.ComponentID)
	assert.Equal(t, 0, body.Available)
}

func TestSetStatusHandler_Conflict(t *testing.T) {
	svc := new(MockRequestService)
	svc.On("SetStatus", mock.Anything, "r-1", "RETURNED").
		Return(domain.Request{}, apperror.NewConflictError("transição não permitida")).Once()

	rec := serve(newMux(svc), http.MethodPost, "/v1/requests/r-1/status", `{"status":"RETURNED"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListRequestsHandler_Filters(t *testing.T) {
	svc := new(MockRequestService)
	svc.On("ListRequests", mock.Anything, domain.RequestFilter{Status: domain.StatusApproved, Limit: 10, Offset: 20}).
		Return([]domain.Request{{ID: "r-2"}}, nil).Once()

	rec := serve(newMux(svc), http.MethodGet, "/v1/requests?status=approved&limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	bad := serve(newMux(svc), http.MethodGet, "/v1/requests?status=LOST", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	badLimit := serve(newMux(svc), http.MethodGet, "/v1/requests?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, badLimit.Code)
}

func TestGetAndUpdateRequestHandler(t *testing.T) {
	svc := new(MockRequestService)
	svc.On("GetRequest", mock.Anything, "nope").Return(domain.Request{}, apperror.NewNotFoundError("requisição nope")).Once()
	draft := domain.RequestDraft{PersonnelName: "Bia", Items: []domain.RequestItemInput{{ComponentID: "c-1", Quantity: 1}}}
	svc.On("UpdateRequest", mock.Anything, "r-1", draft).Return(domain.Request{ID: "r-1", PersonnelName: "Bia"}, nil).Once()

	mux := newMux(svc)
	assert.Equal(t, http.StatusNotFound, serve(mux, http.MethodGet, "/v1/requests/nope", "").Code)

	rec := serve(mux, http.MethodPut, "/v1/requests/r-1", `{"personnel_name":"Bia","items":[{"component_id":"c-1","quantity":1}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
