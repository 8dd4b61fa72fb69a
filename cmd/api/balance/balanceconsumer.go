package balance

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/audit"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/ledger"
	"github.com/tamasbrandstadter/account-ledger/internal/mq"
)

// Consumer is satisfied by *amqp.Channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type TxRecorder interface {
	Record(ctx context.Context, rec audit.TxRecord) (audit.TxRecord, error)
}

// TransactionConsumer applies deposit, withdraw and transfer messages to
// the ledger. Audit may be nil.
type TransactionConsumer struct {
	Queues      mq.Queues
	Concurrency int
	Ledger      *ledger.Ledger
	Audit       TxRecorder

	wg sync.WaitGroup
}

// StartConsume starts Concurrency workers per queue and returns. Workers
// stop when their delivery channel is closed.
func (tc *TransactionConsumer) StartConsume(ch Consumer) error {
	deposits, err := ch.Consume(tc.Queues.Deposit.Name, "deposit-consumer", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume deposits")
	}

	withdraws, err := ch.Consume(tc.Queues.Withdraw.Name, "withdraw-consumer", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume withdraws")
	}

	transfers, err := ch.Consume(tc.Queues.Transfer.Name, "transfer-consumer", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume transfers")
	}

	concurrency := tc.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	for i := 0; i < concurrency; i++ {
		tc.work(deposits, tc.handleDeposit)
		tc.work(withdraws, tc.handleWithdraw)
		tc.work(transfers, tc.handleTransfer)
	}

	return nil
}

// Wait blocks until every worker has stopped.
func (tc *TransactionConsumer) Wait() {
	tc.wg.Wait()
}

func (tc *TransactionConsumer) work(deliveries <-chan amqp.Delivery, handle func(amqp.Delivery) error) {
	tc.wg.Add(1)
	go func() {
		defer tc.wg.Done()
		for d := range deliveries {
			if err := handle(d); err != nil {
				log.WithError(err).WithField("routingKey", d.RoutingKey).Warn("rejected balance operation")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}()
}

func (tc *TransactionConsumer) handleDeposit(d amqp.Delivery) error {
	var payload BalanceMessage
	if err := decodeMessage(d, &payload); err != nil {
		return err
	}

	id, err := uuid.Parse(payload.AccountID)
	if err != nil {
		return errors.Wrapf(err, "invalid account id %q", payload.AccountID)
	}

	acc, err := tc.Ledger.Get(id)
	if err != nil {
		return err
	}

	if err = acc.Deposit(payload.Amount); err != nil {
		return err
	}

	log.Infof("successfully deposited amount %.2f to account %s", payload.Amount, id)
	tc.record(audit.TxRecord{AccountID: id.String(), Amount: payload.Amount, Type: audit.Deposit})

	return nil
}

func (tc *TransactionConsumer) handleWithdraw(d amqp.Delivery) error {
	var payload BalanceMessage
	if err := decodeMessage(d, &payload); err != nil {
		return err
	}

	id, err := uuid.Parse(payload.AccountID)
	if err != nil {
		return errors.Wrapf(err, "invalid account id %q", payload.AccountID)
	}

	acc, err := tc.Ledger.Get(id)
	if err != nil {
		return err
	}

	if err = acc.Withdraw(payload.Amount); err != nil {
		return err
	}

	log.Infof("successfully withdrew amount %.2f from account %s", payload.Amount, id)
	tc.record(audit.TxRecord{AccountID: id.String(), Amount: payload.Amount, Type: audit.Withdraw})

	return nil
}

func (tc *TransactionConsumer) handleTransfer(d amqp.Delivery) error {
	var payload TransferMessage
	if err := decodeMessage(d, &payload); err != nil {
		return err
	}

	from, err := uuid.Parse(payload.FromID)
	if err != nil {
		return errors.Wrapf(err, "invalid account id %q", payload.FromID)
	}
	to, err := uuid.Parse(payload.ToID)
	if err != nil {
		return errors.Wrapf(err, "invalid account id %q", payload.ToID)
	}

	if err = tc.Ledger.Transfer(from, to, payload.Amount); err != nil {
		return err
	}

	log.Infof("successfully transferred amount %.2f from account %s to %s", payload.Amount, from, to)
	tc.record(audit.TxRecord{
		AccountID: from.String(),
		CounterID: sql.NullString{String: to.String(), Valid: true},
		Amount:    payload.Amount,
		Type:      audit.Transfer,
	})

	return nil
}

// record audits an operation that has already been applied. A failure is
// logged only, redelivering the message would apply it twice.
func (tc *TransactionConsumer) record(rec audit.TxRecord) {
	if tc.Audit == nil {
		return
	}
	if _, err := tc.Audit.Record(context.Background(), rec); err != nil {
		log.WithError(err).Errorf("failed to audit %s on account %s", rec.Type, rec.AccountID)
	}
}

func decodeMessage(d amqp.Delivery, v interface{}) error {
	if err := json.NewDecoder(bytes.NewReader(d.Body)).Decode(v); err != nil {
		return errors.New("invalid message payload, unable to parse")
	}
	return nil
}
