package notify

import (
	"context"
	"sync/atomic"

	"github.com/jmehdipour/enroll-gateway/internal/model"
)

// Dispatcher spreads messages round-robin over providers whose breaker is
// ready. Each message gets exactly one attempt.
type Dispatcher struct {
	providers []Provider
	next      atomic.Uint64
}

func NewDispatcher(provs []Provider) *Dispatcher {
	return &Dispatcher{providers: provs}
}

var _ Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(d.providers))
	for _, p := range d.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}
	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.next.Add(1)
	return healthy[(x-1)%uint64(len(healthy))], nil
}

func (d *Dispatcher) Notify(ctx context.Context, sms model.SMS) Result {
	res := Result{Attempted: true, MessageID: sms.ID}

	p, err := d.selectProvider()
	if err != nil {
		res.Err = err
		return res
	}
	res.Provider = p.Name()

	if !p.Acquire() {
		res.Err = ErrNoAcquire
		return res
	}
	res.Err = p.Send(ctx, sms)
	return res
}
