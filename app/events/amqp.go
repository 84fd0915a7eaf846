package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const forwardBuffer = 64

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPForwarder relays bus messages to a topic exchange, routed by event
// name. Messages are dropped when the broker falls behind.
type AMQPForwarder struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string

	queue       chan Message
	done        chan struct{}
	unsubscribe func()
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

type envelope struct {
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAMQPForwarder(url, exchange string) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	slog.Info("Connected to AMQP broker", "exchange", exchange)

	f := newForwarder(ch, exchange)
	f.conn = conn
	return f, nil
}

func newForwarder(ch amqpChannel, exchange string) *AMQPForwarder {
	return &AMQPForwarder{
		channel:  ch,
		exchange: exchange,
		queue:    make(chan Message, forwardBuffer),
		done:     make(chan struct{}),
	}
}

// Attach subscribes the forwarder to bus and starts the publishing loop.
func (f *AMQPForwarder) Attach(bus *Bus) {
	f.wg.Add(1)
	go f.loop()

	// The queue is never closed: a publish that snapshotted observers before
	// Close may still call this handler.
	f.unsubscribe = bus.Subscribe(func(msg Message) {
		select {
		case <-f.done:
			return
		default:
		}

		select {
		case f.queue <- msg:
		case <-f.done:
		default:
			slog.Warn("Event forward queue full, dropping event", "event", msg.Event)
		}
	})
}

func (f *AMQPForwarder) loop() {
	defer f.wg.Done()

	for {
		select {
		case msg := <-f.queue:
			f.forward(msg)
		case <-f.done:
			for {
				select {
				case msg := <-f.queue:
					f.forward(msg)
				default:
					return
				}
			}
		}
	}
}

func (f *AMQPForwarder) forward(msg Message) {
	if err := f.publish(msg); err != nil {
		slog.Error("Failed to forward event", "event", msg.Event, "error", err)
	}
}

func (f *AMQPForwarder) publish(msg Message) error {
	body, err := json.Marshal(envelope{
		Event:     msg.Event,
		Data:      msg.Data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return f.channel.PublishWithContext(ctx, f.exchange, msg.Event, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

// Close detaches from the bus, drains queued events and closes the broker
// connection.
func (f *AMQPForwarder) Close() error {
	var err error
	f.closeOnce.Do(func() {
		if f.unsubscribe != nil {
			f.unsubscribe()
		}
		close(f.done)
		f.wg.Wait()

		if f.channel != nil {
			f.channel.Close()
		}
		if f.conn != nil {
			err = f.conn.Close()
		}
	})
	return err
}
