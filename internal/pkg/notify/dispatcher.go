package notify

import (
	"context"
	"sync"
	"time"
)

// Dispatcher executa os envios de notificação fora da goroutine que atende a requisição HTTP.
// Cada envio recebe um contexto desligado do cancelamento do chamador e limitado a timeout.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher cria um Dispatcher com o tempo máximo de cada envio.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{timeout: timeout}
}

// Go executa fn em segundo plano. Um Dispatcher nil executa fn na própria goroutine.
func (d *Dispatcher) Go(ctx context.Context, fn func(ctx context.Context)) {
	if d == nil {
		fn(ctx)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		fn(sendCtx)
	}()
}

// Wait bloqueia até que todos os envios em andamento terminem.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
