package usage_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockroom/internal/api/usage"
	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) ListUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.UsageRecord), args.Error(1)
}

func (m *MockUsageService) ExportUsage(ctx context.Context, filter domain.UsageFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func TestListUsageHandler(t *testing.T) {
	svc := new(MockUsageService)
	svc.On("ListUsage", mock.Anything, domain.UsageFilter{ComponentID: "c-1", Limit: 20}).
		Return([]domain.UsageRecord{{ID: "u-1", Quantity: -2, Type: domain.UsageRemove}}, nil).Once()

	h := usage.NewHandler(svc, logger.NewNopLogger())
	rec := httptest.NewRecorder()
	h.ListUsageHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/usage?component_id=c-1&limit=20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":-2`)
	svc.AssertExpectations(t)
}

func TestExportUsageHandler(t *testing.T) {
	svc := new(MockUsageService)
	svc.On("ExportUsage", mock.Anything, domain.UsageFilter{}).Return([]byte("PK\x03\x04planilha"), nil).Once()

	h := usage.NewHandler(svc, logger.NewNopLogger())
	rec := httptest.NewRecorder()
	h.ExportUsageHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/usage/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"usage-")
	assert.Equal(t, "PK\x03\x04planilha", rec.Body.String())
}

func TestExportUsageHandler_Error(t *testing.T) {
	svc := new(MockUsageService)
	svc.On("ExportUsage", mock.Anything, mock.Anything).
		Return(nil, apperror.NewInternalError("falha", errors.New("disco cheio"))).Once()

	h := usage.NewHandler(svc, logger.NewNopLogger())
	rec := httptest.NewRecorder()
	h.ExportUsageHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/usage/export", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disco cheio", "detalhes internos não vazam")
}
