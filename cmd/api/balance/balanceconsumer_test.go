package balance

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/account"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/audit"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/ledger"
	"github.com/tamasbrandstadter/account-ledger/internal/mq"
)

type acknowledger struct {
	mu    sync.Mutex
	acked map[uint64]bool
}

func (a *acknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked[tag] = true
	return nil
}

func (a *acknowledger) Nack(tag uint64, _ bool, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked[tag] = false
	return nil
}

func (a *acknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeChannel struct {
	queues map[string]chan amqp.Delivery
	err    error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{queues: map[string]chan amqp.Delivery{
		"deposits":  make(chan amqp.Delivery, 10),
		"withdraws": make(chan amqp.Delivery, 10),
		"transfers": make(chan amqp.Delivery, 10),
	}}
}

func (f *fakeChannel) Consume(queue, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queues[queue], nil
}

func (f *fakeChannel) closeAll() {
	for _, q := range f.queues {
		close(q)
	}
}

type recorder struct {
	mu      sync.Mutex
	records []audit.TxRecord
}

func (r *recorder) Record(_ context.Context, rec audit.TxRecord) (audit.TxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return rec, nil
}

type testApp struct {
	ch     *fakeChannel
	ack    *acknowledger
	ledger *ledger.Ledger
	audit  *recorder
	tc     *TransactionConsumer
}

func newTestApp(t *testing.T) *testApp {
	a := &testApp{
		ch:     newFakeChannel(),
		ack:    &acknowledger{acked: map[uint64]bool{}},
		ledger: ledger.New("EUR", nil),
		audit:  &recorder{},
	}
	a.tc = &TransactionConsumer{
		Queues: mq.Queues{
			Deposit:  amqp.Queue{Name: "deposits"},
			Withdraw: amqp.Queue{Name: "withdraws"},
			Transfer: amqp.Queue{Name: "transfers"},
		},
		Concurrency: 2,
		Ledger:      a.ledger,
		Audit:       a.audit,
	}

	if err := a.tc.StartConsume(a.ch); err != nil {
		t.Fatalf("expected err nil starting consumers, got: %v", err)
	}

	return a
}

func (a *testApp) publish(queue string, tag uint64, body string) {
	a.ch.queues[queue] <- amqp.Delivery{
		Acknowledger: a.ack,
		DeliveryTag:  tag,
		Body:         []byte(body),
	}
}

func (a *testApp) drain() {
	a.ch.closeAll()
	a.tc.Wait()
}

func (a *testApp) open(t *testing.T, balance float64) *account.Account {
	acc, err := a.ledger.Open(balance)
	if err != nil {
		t.Fatalf("expected err nil opening account, got: %v", err)
	}
	return acc
}

func TestDeposit(t *testing.T) {
	a := newTestApp(t)
	acc := a.open(t, 999)

	a.publish("deposits", 1, fmt.Sprintf(`{"id":%q,"amount":1}`, acc.ID))
	a.drain()

	assert.Equal(t, 1000.0, acc.Balance())
	assert.True(t, a.ack.acked[1])
	assert.Len(t, a.audit.records, 1)
	assert.Equal(t, audit.Deposit, a.audit.records[0].Type)
}

func TestWithdraw(t *testing.T) {
	a := newTestApp(t)
	acc := a.open(t, 1000)

	a.publish("withdraws", 1, fmt.Sprintf(`{"id":%q,"amount":2}`, acc.ID))
	a.drain()

	assert.Equal(t, 998.0, acc.Balance())
	assert.True(t, a.ack.acked[1])
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	a := newTestApp(t)
	acc := a.open(t, 400)

	a.publish("withdraws", 1, fmt.Sprintf(`{"id":%q,"amount":401}`, acc.ID))
	a.drain()

	assert.Equal(t, 400.0, acc.Balance())
	assert.False(t, a.ack.acked[1])
	assert.Empty(t, a.audit.records)
}

func TestTransfer(t *testing.T) {
	a := newTestApp(t)
	from := a.open(t, 400)
	to := a.open(t, 0)

	a.publish("transfers", 1, fmt.Sprintf(`{"from":%q,"to":%q,"amount":100}`, from.ID, to.ID))
	a.drain()

	assert.Equal(t, 300.0, from.Balance())
	assert.Equal(t, 100.0, to.Balance())
	assert.True(t, a.ack.acked[1])
	assert.Len(t, a.audit.records, 1)
	assert.Equal(t, to.ID.String(), a.audit.records[0].CounterID.String)
}

func TestTransferToSameAccount(t *testing.T) {
	a := newTestApp(t)
	acc := a.open(t, 400)

	a.publish("transfers", 1, fmt.Sprintf(`{"from":%q,"to":%q,"amount":50}`, acc.ID, acc.ID))
	a.drain()

	assert.Equal(t, 400.0, acc.Balance())
	assert.False(t, a.ack.acked[1])
}

func TestRejectedMessages(t *testing.T) {
	a := newTestApp(t)
	acc := a.open(t, 10)

	a.publish("deposits", 1, `{"id":`)
	a.publish("deposits", 2, `{"id":"not-a-uuid","amount":1}`)
	a.publish("deposits", 3, `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","amount":1}`)
	a.publish("deposits", 4, fmt.Sprintf(`{"id":%q,"amount":-1}`, acc.ID))
	a.drain()

	for tag := uint64(1); tag <= 4; tag++ {
		acked, seen := a.ack.acked[tag]
		assert.True(t, seen, "delivery %d", tag)
		assert.False(t, acked, "delivery %d", tag)
	}
	assert.Equal(t, 10.0, acc.Balance())
}

func TestStartConsumeError(t *testing.T) {
	tc := &TransactionConsumer{Ledger: ledger.New("EUR", nil)}

	err := tc.StartConsume(&fakeChannel{err: amqp.ErrClosed})

	assert.Equal(t, amqp.ErrClosed, errors.Cause(err))
}
