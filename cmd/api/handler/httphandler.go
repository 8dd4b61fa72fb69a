package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/audit"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/ledger"
)

const (
	accounts           = "/accounts"
	accountById        = "/accounts/:id"
	balanceByAccountId = "/accounts/:id/balance"
	depositToAccount   = "/accounts/:id/deposit"
	withdrawFromAcc    = "/accounts/:id/withdraw"
	transferFromAcc    = "/accounts/:id/transfer"
	syncAccount        = "/accounts/:id/sync"
	calculate          = "/calculate"

	defaultSyncTimeout = 3 * time.Second
)

type TxRecorder interface {
	Record(ctx context.Context, rec audit.TxRecord) (audit.TxRecord, error)
}

type Application struct {
	Ledger      *ledger.Ledger
	Audit       TxRecorder
	SyncTimeout time.Duration
	handler     http.Handler
}

func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// NewApplication wires the routes. rec may be nil to skip auditing.
func NewApplication(l *ledger.Ledger, rec TxRecorder) *Application {
	app := Application{
		Ledger:      l,
		Audit:       rec,
		SyncTimeout: defaultSyncTimeout,
	}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, accounts, app.FindAllAccounts)
	router.HandlerFunc(http.MethodPost, accounts, app.CreateAccount)
	router.HandlerFunc(http.MethodGet, accountById, app.GetAccountById)
	router.HandlerFunc(http.MethodGet, balanceByAccountId, app.GetBalance)
	router.HandlerFunc(http.MethodPost, depositToAccount, app.Deposit)
	router.HandlerFunc(http.MethodPost, withdrawFromAcc, app.Withdraw)
	router.HandlerFunc(http.MethodPost, transferFromAcc, app.Transfer)
	router.HandlerFunc(http.MethodPost, syncAccount, app.Synchronize)
	router.HandlerFunc(http.MethodPost, calculate, app.Calculate)

	app.handler = router
	return &app
}
