package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "pos.orders"

// ReconnectInterval is how often a lost broker connection is redialled.
const ReconnectInterval = 5 * time.Second

// ErrBrokerUnavailable is returned while the publisher is reconnecting.
var ErrBrokerUnavailable = errors.New("rabbitmq: connection lost, reconnecting")

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
	Close() error
}

// ConnectFunc opens a fresh confirm-mode channel.
type ConnectFunc func() (Channel, error)

// AMQPPublisher writes events as persistent JSON messages to a topic exchange,
// routed by event type.
type AMQPPublisher struct {
	mu sync.Mutex
	ch Channel

	connect      ConnectFunc
	interval     time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	reconnecting bool
}

// session pairs a channel with its connection so closing one closes both.
type session struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (s *session) Close() error {
	chErr := s.Channel.Close()
	if !s.conn.IsClosed() {
		if err := s.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	if chErr != nil && !errors.Is(chErr, amqp.ErrClosed) {
		return fmt.Errorf("close rabbitmq channel: %w", chErr)
	}
	return nil
}

func dial(url string) (Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return &session{Channel: ch, conn: conn}, nil
}

// DialAMQP connects to the broker, enables publisher confirms and declares the
// exchange. A dropped connection is redialled in the background until ctx ends.
func DialAMQP(ctx context.Context, url string) (*AMQPPublisher, error) {
	connect := func() (Channel, error) { return dial(url) }

	ch, err := connect()
	if err != nil {
		return nil, err
	}

	p, err := NewAMQPPublisher(ch)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return p.WithReconnect(ctx, connect, ReconnectInterval), nil
}

func NewAMQPPublisher(ch Channel) (*AMQPPublisher, error) {
	if err := declare(ch); err != nil {
		return nil, err
	}
	return &AMQPPublisher{ch: ch}, nil
}

// WithReconnect makes a closed channel trigger a redial every interval until
// one succeeds or ctx is cancelled.
func (p *AMQPPublisher) WithReconnect(ctx context.Context, connect ConnectFunc, interval time.Duration) *AMQPPublisher {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.connect = connect
	p.interval = interval
	return p
}

func declare(ch Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return ErrBrokerUnavailable
	}

	conf, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, Exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	})
	if err != nil {
		p.dropLocked(err)
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	// nil when the channel is not in confirm mode
	if conf == nil {
		return nil
	}
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		p.dropLocked(err)
		return fmt.Errorf("wait confirm %s: %w", e.Type, err)
	}
	if !acked {
		return fmt.Errorf("publish %s: broker nacked message", e.Type)
	}
	return nil
}

// dropLocked discards a closed channel and starts the redial loop. Must be
// called with p.mu held.
func (p *AMQPPublisher) dropLocked(err error) {
	if !errors.Is(err, amqp.ErrClosed) || p.connect == nil || p.reconnecting {
		return
	}
	p.ch.Close() //nolint:errcheck
	p.ch = nil
	p.reconnecting = true
	go p.reconnect()
}

func (p *AMQPPublisher) reconnect() {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			ch, err := p.connect()
			if err == nil {
				if err = declare(ch); err != nil {
					ch.Close()
				}
			}
			if err != nil {
				log.Printf("WARN: rabbitmq reconnect failed: %v", err)
				continue
			}

			p.mu.Lock()
			if p.ctx.Err() != nil {
				p.mu.Unlock()
				ch.Close()
				return
			}
			p.ch = ch
			p.reconnecting = false
			p.mu.Unlock()
			log.Println("rabbitmq reconnected")
			return

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	if p.ch == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		return fmt.Errorf("close rabbitmq: %w", err)
	}
	p.ch = nil
	return nil
}
