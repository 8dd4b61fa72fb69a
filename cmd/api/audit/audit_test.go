package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/account-ledger/internal/testdb"
)

const query = "INSERT INTO transactions\\(account_id, counter_id, amount, transaction_type, ack, created_at\\) VALUES\\(\\$1,\\$2,\\$3,\\$4,\\$5,\\$6\\) RETURNING id;"

type countingPublisher struct {
	published int
}

func (c *countingPublisher) ExchangeDeclare(_, _ string, _, _, _, _ bool, _ amqp.Table) error {
	return nil
}

func (c *countingPublisher) Publish(_, _ string, _, _ bool, _ amqp.Publishing) error {
	c.published++
	return nil
}

func TestRecord(t *testing.T) {
	db, mock := testdb.NewMockDb()
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(11)

	mock.ExpectBegin()
	mock.ExpectPrepare(query).ExpectQuery().
		WithArgs("acc-1", sql.NullString{String: "acc-2", Valid: true}, 100.0, "transfer", true, sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectCommit()

	p := &countingPublisher{}
	rec, err := Recorder{DB: db, Publisher: p}.Record(context.Background(), TxRecord{
		AccountID: "acc-1",
		CounterID: sql.NullString{String: "acc-2", Valid: true},
		Amount:    100,
		Type:      Transfer,
	})

	assert.NoError(t, err)
	assert.Equal(t, 11, rec.ID)
	assert.True(t, rec.Ack)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, 1, p.published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWithoutPublisher(t *testing.T) {
	db, mock := testdb.NewMockDb()
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(3)

	mock.ExpectBegin()
	mock.ExpectPrepare(query).ExpectQuery().
		WithArgs("acc-1", sql.NullString{}, 5.0, "deposit", true, sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectCommit()

	rec, err := Recorder{DB: db}.Record(context.Background(), TxRecord{AccountID: "acc-1", Amount: 5, Type: Deposit})

	assert.NoError(t, err)
	assert.Equal(t, 3, rec.ID)
}

func TestRecordError(t *testing.T) {
	db, mock := testdb.NewMockDb()
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(query).ExpectQuery().WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	p := &countingPublisher{}
	_, err := Recorder{DB: db, Publisher: p}.Record(context.Background(), TxRecord{AccountID: "acc-1", Amount: 5, Type: Withdraw})

	assert.Equal(t, sql.ErrConnDone, errors.Cause(err))
	assert.Equal(t, 0, p.published)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionTypeString(t *testing.T) {
	assert.Equal(t, "deposit", Deposit.String())
	assert.Equal(t, "withdraw", Withdraw.String())
	assert.Equal(t, "transfer", Transfer.String())
	assert.Equal(t, "synchronize", Synchronize.String())
}
