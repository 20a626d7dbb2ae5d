package domain

import "context"

// Notifier recebe os eventos do ciclo de vida e de estoque baixo após o commit.
// As falhas são apenas registradas em log; nunca desfazem a operação que as originou.
type Notifier interface {
	RequestApproved(ctx context.Context, request Request) error
	RequestReturned(ctx context.Context, request Request) error
	LowStock(ctx context.Context, component Component) error
}
