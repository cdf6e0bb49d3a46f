// Package notify delivers enrollment confirmation SMS.
//
// Delivery is best effort: a Notifier never returns an error, it reports what
// happened in a Result that callers may inspect or ignore. There are no retries.
package notify

import (
	"context"
	"errors"

	"github.com/jmehdipour/enroll-gateway/internal/model"
)

var (
	ErrNoHealthy = errors.New("no healthy providers")
	ErrNoAcquire = errors.New("provider not acquired")
)

// Result describes a single delivery attempt.
type Result struct {
	Attempted bool   // false when nothing was sent (disabled, no phone)
	Provider  string // provider or transport that handled the attempt
	MessageID string
	Err       error
}

func (r Result) OK() bool { return r.Attempted && r.Err == nil }

type Notifier interface {
	Notify(ctx context.Context, sms model.SMS) Result
}

// Noop is used when SMS is disabled.
type Noop struct{}

func (Noop) Notify(context.Context, model.SMS) Result { return Result{} }
