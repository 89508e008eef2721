package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

const QueueName = "email_queue"

// Declare makes sure the durable mail queue exists.
func Declare(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Decode reads a queued message back, with Data decoded into the concrete
// struct of its type.
func Decode(body []byte) (domain.MailMessage, error) {
	var raw struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.MailMessage{}, err
	}

	msg := domain.MailMessage{Type: raw.Type, To: raw.To}
	switch raw.Type {
	case domain.MailTypeNewAccount:
		var data domain.NewAccountMailData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return domain.MailMessage{}, err
		}
		msg.Data = data
	case domain.MailTypeShiftsAssigned:
		var data domain.ShiftsAssignedMailData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return domain.MailMessage{}, err
		}
		msg.Data = data
	default:
		return domain.MailMessage{}, fmt.Errorf("unsupported mail type %q", raw.Type)
	}

	return msg, nil
}

type Publisher struct {
	channel *amqp.Channel
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, timeout time.Duration) *Publisher {
	return &Publisher{
		channel: ch,
		timeout: timeout,
	}
}

func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
