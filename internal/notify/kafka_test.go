package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jmehdipour/enroll-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	key   string
	value []byte
}

type fakePublisher struct {
	sent []publishedMessage
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, publishedMessage{key: key, value: value})
	return nil
}

func TestKafkaNotifier_PublishesEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	n := NewKafkaNotifier(pub, "sms.normal")

	sms := model.SMS{ID: "01J0", Phone: "+33600000000", Text: "hello"}
	res := n.Notify(WithEnrollmentID(context.Background(), "sub_123"), sms)

	require.True(t, res.OK())
	assert.Equal(t, "kafka:sms.normal", res.Provider)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "+33600000000", pub.sent[0].key)

	var env model.Envelope
	require.NoError(t, json.Unmarshal(pub.sent[0].value, &env))
	assert.Equal(t, model.Envelope{ID: "01J0", EnrollmentID: "sub_123", SMS: sms}, env)
}

func TestKafkaNotifier_PublishFailure(t *testing.T) {
	n := NewKafkaNotifier(&fakePublisher{err: errors.New("no brokers")}, "sms.normal")

	res := n.Notify(context.Background(), model.SMS{Phone: "+1"})
	assert.True(t, res.Attempted)
	assert.ErrorContains(t, res.Err, "no brokers")
}
