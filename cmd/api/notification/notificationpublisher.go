package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

const (
	ExchangeName = "balance-notifications"
	RouteKey     = "notif"
)

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Notification struct {
	TransactionID int       `json:"transactionId"`
	Type          string    `json:"type"`
	AccountID     string    `json:"accountId"`
	CounterID     string    `json:"counterId,omitempty"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
	Ack           bool      `json:"ack"`
}

func DeclareExchange(p Publisher) error {
	return p.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
}

func Publish(p Publisher, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	err = p.Publish(ExchangeName, RouteKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.New().String(),
		Timestamp:    n.CreatedAt,
		Body:         body,
		DeliveryMode: amqp.Transient,
	})

	return errors.Wrapf(err, "publish notification to %s topic", ExchangeName)
}
