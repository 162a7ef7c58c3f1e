package remote

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ChangeExchange is the fanout exchange broadcasting change signals
	ChangeExchange = "mirrorday.changes"
)

// AMQPNotifier broadcasts and receives payload-free change signals over a
// fanout exchange, for deployments that already run a broker and prefer it
// over database LISTEN/NOTIFY. Every device binds its own exclusive queue.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	ch      chan struct{}
	done    chan struct{}
}

// NewAMQPNotifier connects to the broker and joins the change fanout
func NewAMQPNotifier(amqpURL string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ChangeExchange,
		"fanout",
		false, // durable: signals are worthless once missed
		true,  // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare change exchange: %w", err)
	}

	// Exclusive auto-named queue per device
	queue, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare device queue: %w", err)
	}
	if err := channel.QueueBind(queue.Name, "", ChangeExchange, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to bind device queue: %w", err)
	}

	deliveries, err := channel.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to consume change signals: %w", err)
	}

	n := &AMQPNotifier{
		conn:    conn,
		channel: channel,
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go n.pump(deliveries)
	return n, nil
}

func (n *AMQPNotifier) pump(deliveries <-chan amqp.Delivery) {
	defer close(n.ch)
	for {
		select {
		case <-n.done:
			return
		case _, ok := <-deliveries:
			if !ok {
				return
			}
			select {
			case n.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Broadcast announces a change to every device, including this one. The
// resulting self-refresh merges to a no-op.
func (n *AMQPNotifier) Broadcast() {
	// Best effort; a missed signal only delays convergence
	_ = n.channel.Publish(ChangeExchange, "", false, false, amqp.Publishing{})
}

// Changes implements Notifier
func (n *AMQPNotifier) Changes() <-chan struct{} { return n.ch }

// Close implements Notifier
func (n *AMQPNotifier) Close() error {
	close(n.done)
	return n.conn.Close()
}
