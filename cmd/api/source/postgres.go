package source

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Postgres reads authoritative balances from the accounts table of the
// account service database.
type Postgres struct {
	DB *sqlx.DB
}

func (p Postgres) FetchBalance(ctx context.Context, id uuid.UUID) (float64, bool, error) {
	pStmt, err := p.DB.PreparexContext(ctx, selectBalanceById)
	if err != nil {
		return 0, false, errors.Wrap(err, "prepare select balance query")
	}

	defer func() {
		if err := pStmt.Close(); err != nil {
			log.WithError(errors.Wrap(err, "close psql statement")).Info("select balance")
		}
	}()

	var balance float64
	if err := pStmt.QueryRowxContext(ctx, id.String()).Scan(&balance); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "select balance from accounts table")
	}

	return balance, true, nil
}
