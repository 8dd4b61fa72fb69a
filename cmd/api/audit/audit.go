package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/notification"
)

const insert = "INSERT INTO transactions(account_id, counter_id, amount, transaction_type, ack, created_at) VALUES($1,$2,$3,$4,$5,$6) RETURNING id;"

type TransactionType int

const (
	Deposit TransactionType = iota
	Withdraw
	Transfer
	Synchronize
)

func (tt TransactionType) String() string {
	return [...]string{"deposit", "withdraw", "transfer", "synchronize"}[tt]
}

type TxRecord struct {
	ID        int             `db:"id"`
	AccountID string          `db:"account_id"`
	CounterID sql.NullString  `db:"counter_id"`
	Amount    float64         `db:"amount"`
	Type      TransactionType `db:"transaction_type"`
	Ack       bool            `db:"ack"`
	CreatedAt time.Time       `db:"created_at"`
}

// Recorder stores successful ledger operations and announces them on the
// notification exchange. Publisher may be nil.
type Recorder struct {
	DB        *sqlx.DB
	Publisher notification.Publisher
}

func (r Recorder) Record(ctx context.Context, rec TxRecord) (TxRecord, error) {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return TxRecord{}, errors.Wrap(err, "begin audit tx")
	}

	rec.Ack = true
	rec.CreatedAt = time.Now().UTC()

	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return TxRecord{}, errors.Wrap(err, "prepare audit record insertion")
	}

	row := stmt.QueryRowxContext(ctx, rec.AccountID, rec.CounterID, rec.Amount, rec.Type.String(), rec.Ack, rec.CreatedAt)

	if err = row.Scan(&rec.ID); err != nil {
		_ = tx.Rollback()
		log.Warnf("audit tx record creation was rolled back, error: %v", err)
		return TxRecord{}, errors.Wrap(err, "insert audit record")
	}
	if err = tx.Commit(); err != nil {
		log.Errorf("failed to commit audit tx record creation, error: %v", err)
		return TxRecord{}, errors.Wrap(err, "commit audit record")
	}

	log.Infof("successfully saved audit record with tx id %d", rec.ID)

	if r.Publisher != nil {
		n := notification.Notification{
			TransactionID: rec.ID,
			Type:          rec.Type.String(),
			AccountID:     rec.AccountID,
			CounterID:     rec.CounterID.String,
			Amount:        rec.Amount,
			CreatedAt:     rec.CreatedAt,
			Ack:           rec.Ack,
		}
		if err := notification.Publish(r.Publisher, n); err != nil {
			log.WithError(err).Warnf("failed to publish notification for tx id %d", rec.ID)
		}
	}

	return rec, nil
}
