package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// AMQPQueue dispatches tasks through a durable RabbitMQ queue so processing
// can run in separate worker processes.
type AMQPQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	name    string
}

// DialAMQP connects to the broker at url and declares the named durable
// queue on the default exchange.
func DialAMQP(url, name string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, eris.Wrap(err, "queue: dial amqp")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, eris.Wrap(err, "queue: open channel")
	}

	if _, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, eris.Wrapf(err, "queue: declare %s", name)
	}

	return &AMQPQueue{conn: conn, channel: ch, name: name}, nil
}

// Dispatch publishes the task as a persistent JSON message.
func (q *AMQPQueue) Dispatch(task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return eris.Wrap(err, "queue: marshal task")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx,
		"",     // default exchange
		q.name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return eris.Wrapf(err, "queue: publish task for job %s", task.JobID)
	}

	zap.L().Debug("task dispatched", zap.String("job_id", task.JobID))
	return nil
}

// Consume pulls tasks off the queue and runs them until ctx is cancelled or
// the delivery channel closes. Successful tasks are acked; failed tasks are
// nacked without requeue, since the failure is already recorded on the job.
func (q *AMQPQueue) Consume(ctx context.Context, runner Runner, prefetch int) error {
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := q.channel.Qos(prefetch, 0, false); err != nil {
		return eris.Wrap(err, "queue: set qos")
	}

	deliveries, err := q.channel.Consume(
		q.name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return eris.Wrapf(err, "queue: consume %s", q.name)
	}

	zap.L().Info("worker consuming", zap.String("queue", q.name), zap.Int("prefetch", prefetch))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return eris.New("queue: delivery channel closed")
			}
			q.handle(ctx, runner, d)
		}
	}
}

func (q *AMQPQueue) handle(ctx context.Context, runner Runner, d amqp.Delivery) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil {
		zap.L().Error("worker: malformed task", zap.Error(err))
		d.Nack(false, false) //nolint:errcheck
		return
	}

	if err := runner.Process(ctx, task.JobID, task.FilePath); err != nil {
		zap.L().Error("worker: task failed",
			zap.String("job_id", task.JobID),
			zap.Error(err))
		d.Nack(false, false) //nolint:errcheck
		return
	}
	d.Ack(false) //nolint:errcheck
}

// Close shuts down the channel and connection.
func (q *AMQPQueue) Close() error {
	if err := q.channel.Close(); err != nil {
		zap.L().Warn("queue: close channel", zap.Error(err))
	}
	return q.conn.Close()
}
