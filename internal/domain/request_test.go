package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockroom/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.RequestStatus
		want     bool
	}{
		{domain.StatusPending, domain.StatusApproved, true},
		{domain.StatusApproved, domain.StatusReturned, true},
		{domain.StatusApproved, domain.StatusPending, true},
		{domain.StatusReturned, domain.StatusPending, true},
		{domain.StatusPending, domain.StatusReturned, false},
		{domain.StatusPending, domain.StatusPending, false},
		{domain.StatusApproved, domain.StatusApproved, false},
		{domain.StatusReturned, domain.StatusApproved, false},
		{domain.StatusReturned, domain.StatusReturned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseRequestStatus(t *testing.T) {
	status, ok := domain.ParseRequestStatus(" approved ")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusApproved, status)

	_, ok = domain.ParseRequestStatus("REJECTED")
	assert.False(t, ok)
}

func TestComponent_IsLowStock(t *testing.T) {
	assert.True(t, domain.Component{Quantity: 3, MinStock: 5}.IsLowStock())
	assert.True(t, domain.Component{Quantity: 5, MinStock: 5}.IsLowStock())
	assert.False(t, domain.Component{Quantity: 6, MinStock: 5}.IsLowStock())
}

func TestRequest_Quantities(t *testing.T) {
	req := domain.Request{Items: []domain.RequestItem{
		{ComponentID: "a", Quantity: 2},
		{ComponentID: "b", Quantity: 7},
	}}

	assert.Equal(t, []domain.ItemQuantity{{ComponentID: "a", Quantity: 2}, {ComponentID: "b", Quantity: 7}}, req.Quantities())
}

func TestCauseLabels(t *testing.T) {
	assert.Equal(t, "Request by Ana", domain.RequestCause("Ana"))
	assert.Equal(t, "Return by Ana", domain.ReturnCause("Ana"))
	assert.Equal(t, "Approval reverted for Ana", domain.RevertCause("Ana"))
}
