// Package rabbitmq publishes the service's domain events to a durable topic
// exchange. Every publish is mandatory and waits briefly for the broker's
// confirm, so unroutable and nacked messages surface as errors.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	zlog "github.com/rs/zerolog/log"
)

const (
	DefaultExchange = "community.events"

	appID = "community-events"

	// confirmWait bounds how long a publish waits for a confirm or return
	confirmWait = 150 * time.Millisecond
)

var (
	ErrNoRoute = errors.New("rabbitmq: no queue bound for routing key")
	ErrNacked  = errors.New("rabbitmq: publish nacked by broker")
	ErrClosed  = errors.New("rabbitmq: publisher closed")
)

// Publisher holds one confirm-mode channel. A channel the broker has closed
// is replaced on the next publish.
type Publisher struct {
	url      string
	exchange string

	mu       sync.Mutex
	closed   bool
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
	returns  <-chan amqp.Return
	lost     <-chan *amqp.Error
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}
	if err := p.open(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Exchange() string { return p.exchange }

func (p *Publisher) open() (err error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq declare %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("rabbitmq confirm mode: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returns = ch.NotifyReturn(make(chan amqp.Return, 1))
	p.lost = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (p *Publisher) teardown() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// channel returns the live channel, redialing if the broker dropped it.
// Callers hold mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.ch != nil {
		select {
		case err := <-p.lost:
			zlog.Warn().Err(err).Str("exchange", p.exchange).Msg("rabbit channel lost, reconnecting")
			p.teardown()
		default:
			return p.ch, nil
		}
	}
	if err := p.open(); err != nil {
		return nil, err
	}
	return p.ch, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.teardown()
	return nil
}

// PublishEvent sends one JSON envelope under routingKey. messageID is the
// envelope's message id and lets consumers deduplicate redeliveries.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	if routingKey == "" {
		return errors.New("rabbitmq: missing routing key")
	}
	if strings.TrimSpace(messageID) == "" {
		return errors.New("rabbitmq: missing message id")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		AppId:        appID,
		Type:         routingKey,
		MessageId:    messageID,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, true, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", routingKey, err)
	}
	return p.await(ctx)
}

// await reads the broker's answer to the last publish. Silence past
// confirmWait counts as delivered.
func (p *Publisher) await(ctx context.Context) error {
	timer := time.NewTimer(confirmWait)
	defer timer.Stop()

	select {
	case ret := <-p.returns:
		// a returned message is still confirmed; drain it so it is not
		// mistaken for the next publish's answer
		select {
		case <-p.confirms:
		case <-timer.C:
		}
		return fmt.Errorf("%w: %s", ErrNoRoute, ret.RoutingKey)
	case conf := <-p.confirms:
		if !conf.Ack {
			return ErrNacked
		}
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
