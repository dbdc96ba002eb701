package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tong-pos/api/internal/events"
)

type recordingPublisher struct {
	got []events.Event
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	a := &recordingPublisher{}
	boom := errors.New("boom")
	b := &recordingPublisher{err: boom}
	c := &recordingPublisher{}

	e := events.New(events.TypeOrderCreated, 1, "pending", "6.00", 3)
	err := events.Multi{a, b, c}.Publish(context.Background(), e)

	require.ErrorIs(t, err, boom)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1, "a failing sink must not starve later sinks")
}

func TestNew_AssignsUniqueIDs(t *testing.T) {
	e1 := events.New(events.TypeOrderPaymentAdded, 9, "pending", "4.00", 0)
	e2 := events.New(events.TypeOrderPaymentAdded, 9, "pending", "4.00", 0)

	assert.NotEqual(t, e1.ID, e2.ID)
	assert.False(t, e1.OccurredAt.IsZero())
}

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_DeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := events.NewAMQPPublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{events.Exchange + ":topic"}, ch.declared)
}

func TestAMQPPublisher_DeclareFailure(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := events.NewAMQPPublisher(ch)
	require.Error(t, err)
}

func TestAMQPPublisher_PublishRoutesByType(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.NewAMQPPublisher(ch)
	require.NoError(t, err)

	e := events.New(events.TypeOrderCompleted, 12, "completed", "0.00", 4)
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, events.Exchange, got.exchange)
	assert.Equal(t, events.TypeOrderCompleted, got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, e.ID.String(), got.msg.MessageId)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, int64(12), decoded.OrderID)
	assert.Equal(t, "0.00", decoded.Balance)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.NewAMQPPublisher(ch)
	require.NoError(t, err)

	ch.publishErr = amqp.ErrClosed
	err = p.Publish(context.Background(), events.New(events.TypeOrderCreated, 1, "pending", "1.00", 0))
	require.ErrorIs(t, err, amqp.ErrClosed)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.NewAMQPPublisher(ch)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_RedialsAfterChannelCloses(t *testing.T) {
	broken := &fakeChannel{}
	p, err := events.NewAMQPPublisher(broken)
	require.NoError(t, err)

	fresh := &fakeChannel{}
	dials := make(chan struct{}, 10)
	failFirst := true
	p.WithReconnect(context.Background(), func() (events.Channel, error) {
		dials <- struct{}{}
		if failFirst {
			failFirst = false
			return nil, errors.New("connection refused")
		}
		return fresh, nil
	}, 5*time.Millisecond)
	defer p.Close() //nolint:errcheck

	broken.publishErr = amqp.ErrClosed
	e := events.New(events.TypeOrderCreated, 3, "pending", "2.40", 2)
	require.ErrorIs(t, p.Publish(context.Background(), e), amqp.ErrClosed)
	assert.True(t, broken.closed)

	assert.Eventually(t, func() bool {
		return p.Publish(context.Background(), e) == nil
	}, time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, len(dials), 2, "a failed redial is retried")
	assert.Equal(t, []string{events.Exchange + ":topic"}, fresh.declared)
	require.NotEmpty(t, fresh.published)
	assert.Equal(t, events.TypeOrderCreated, fresh.published[0].key)
}

func TestAMQPPublisher_UnavailableWhileReconnecting(t *testing.T) {
	broken := &fakeChannel{}
	p, err := events.NewAMQPPublisher(broken)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.WithReconnect(ctx, func() (events.Channel, error) {
		return nil, errors.New("connection refused")
	}, time.Hour)

	broken.publishErr = amqp.ErrClosed
	e := events.New(events.TypeOrderCompleted, 4, "completed", "0.00", 3)
	require.Error(t, p.Publish(context.Background(), e))
	require.ErrorIs(t, p.Publish(context.Background(), e), events.ErrBrokerUnavailable)
	require.NoError(t, p.Close())
}
