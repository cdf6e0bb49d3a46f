package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmehdipour/enroll-gateway/internal/model"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// KafkaNotifier hands the SMS to an external gateway through a Kafka topic.
// A successful publish counts as a delivered attempt.
type KafkaNotifier struct {
	pub   Publisher
	topic string
}

func NewKafkaNotifier(pub Publisher, topic string) *KafkaNotifier {
	return &KafkaNotifier{pub: pub, topic: topic}
}

var _ Notifier = (*KafkaNotifier)(nil)

func (k *KafkaNotifier) Notify(ctx context.Context, sms model.SMS) Result {
	res := Result{Attempted: true, Provider: "kafka:" + k.topic, MessageID: sms.ID}

	payload, err := json.Marshal(model.Envelope{ID: sms.ID, EnrollmentID: enrollmentIDFrom(ctx), SMS: sms})
	if err != nil {
		res.Err = fmt.Errorf("marshal envelope: %w", err)
		return res
	}
	if err := k.pub.Publish(ctx, sms.Phone, payload); err != nil {
		res.Err = fmt.Errorf("publish sms: %w", err)
	}
	return res
}

type ctxKey int

const ctxEnrollmentID ctxKey = 1

// WithEnrollmentID attaches the enrollment the SMS belongs to, for envelopes.
func WithEnrollmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxEnrollmentID, id)
}

func enrollmentIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxEnrollmentID).(string)
	return id
}
