package mq

import (
	"github.com/streadway/amqp"
)

const (
	PaymentsExchangeName = "payments"
	DepositRouteKey      = "dep"
	WithdrawRouteKey     = "wit"
	TransferRouteKey     = "trnsfr"

	depositQueueName  = "deposits"
	withdrawQueueName = "withdraws"
	transferQueueName = "transfers"
	kind              = "topic"
)

// Declarer is the part of *amqp.Channel needed to declare the topology.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
}

type Queues struct {
	Deposit  amqp.Queue
	Withdraw amqp.Queue
	Transfer amqp.Queue
}

func (c Conn) DeclareQueues(concurrency int) (Queues, error) {
	return DeclareQueues(c.Channel, concurrency)
}

func DeclareQueues(ch Declarer, concurrency int) (Queues, error) {
	err := ch.ExchangeDeclare(PaymentsExchangeName, kind, true, false, false, false, nil)
	if err != nil {
		return Queues{}, err
	}

	var q Queues

	if q.Deposit, err = declare(ch, depositQueueName, DepositRouteKey); err != nil {
		return Queues{}, err
	}
	if q.Withdraw, err = declare(ch, withdrawQueueName, WithdrawRouteKey); err != nil {
		return Queues{}, err
	}
	if q.Transfer, err = declare(ch, transferQueueName, TransferRouteKey); err != nil {
		return Queues{}, err
	}

	prefetchCount := concurrency * 4
	if err = ch.Qos(prefetchCount, 0, false); err != nil {
		return Queues{}, err
	}

	return q, nil
}

func declare(ch Declarer, name, routeKey string) (amqp.Queue, error) {
	queue, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, err
	}

	if err = ch.QueueBind(name, routeKey, PaymentsExchangeName, false, nil); err != nil {
		return amqp.Queue{}, err
	}

	return queue, nil
}
