package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/account"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/audit"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/ledger"
	"github.com/tamasbrandstadter/account-ledger/internal/web"
)

func (a *Application) FindAllAccounts(w http.ResponseWriter, _ *http.Request) {
	web.Respond(w, http.StatusOK, a.Ledger.List())
}

func (a *Application) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload account.CreationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.RespondError(w, http.StatusBadRequest, "invalid request payload, unable to parse")
		return
	}
	defer r.Body.Close()

	acc, err := a.Ledger.Open(payload.InitialBalance)
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, "initial balance can't be negative")
		return
	}

	web.Respond(w, http.StatusCreated, a.Ledger.Snapshot(acc))
}

func (a *Application) GetAccountById(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.findAccount(w, r)
	if !ok {
		return
	}

	web.Respond(w, http.StatusOK, a.Ledger.Snapshot(acc))
}

func (a *Application) GetBalance(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.findAccount(w, r)
	if !ok {
		return
	}

	web.Respond(w, http.StatusOK, map[string]string{"balance": a.Ledger.Display(acc.Balance())})
}

func (a *Application) Deposit(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.findAccount(w, r)
	if !ok {
		return
	}

	var payload account.BalanceOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.RespondError(w, http.StatusBadRequest, "invalid request payload, unable to parse")
		return
	}
	defer r.Body.Close()

	if err := acc.Deposit(payload.Amount); err != nil {
		respondLedgerError(w, err)
		return
	}

	a.record(r.Context(), audit.TxRecord{AccountID: acc.ID.String(), Amount: payload.Amount, Type: audit.Deposit})
	web.Respond(w, http.StatusOK, a.Ledger.Snapshot(acc))
}

func (a *Application) Withdraw(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.findAccount(w, r)
	if !ok {
		return
	}

	var payload account.BalanceOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.RespondError(w, http.StatusBadRequest, "invalid request payload, unable to parse")
		return
	}
	defer r.Body.Close()

	if err := acc.Withdraw(payload.Amount); err != nil {
		respondLedgerError(w, err)
		return
	}

	a.record(r.Context(), audit.TxRecord{AccountID: acc.ID.String(), Amount: payload.Amount, Type: audit.Withdraw})
	web.Respond(w, http.StatusOK, a.Ledger.Snapshot(acc))
}

func (a *Application) Transfer(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.findAccount(w, r)
	if !ok {
		return
	}

	var payload account.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.RespondError(w, http.StatusBadRequest, "invalid request payload, unable to parse")
		return
	}
	defer r.Body.Close()

	toId, err := uuid.Parse(payload.To)
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, "unable to parse target account id")
		return
	}
	target, err := a.Ledger.Get(toId)
	if err != nil {
		web.RespondError(w, http.StatusNotFound, fmt.Sprintf("account id %s is not found", toId))
		return
	}

	if err = acc.Transfer(payload.Amount, target); err != nil {
		respondLedgerError(w, err)
		return
	}

	a.record(r.Context(), audit.TxRecord{
		AccountID: acc.ID.String(),
		CounterID: sql.NullString{String: target.ID.String(), Valid: true},
		Amount:    payload.Amount,
		Type:      audit.Transfer,
	})
	web.Respond(w, http.StatusOK, a.Ledger.Snapshot(acc))
}

func (a *Application) Synchronize(w http.ResponseWriter, r *http.Request) {
	acc, ok := a.findAccount(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.SyncTimeout)
	defer cancel()

	if err := acc.SynchronizeBalance(ctx); err != nil {
		respondLedgerError(w, err)
		return
	}

	balance := acc.Balance()
	a.record(r.Context(), audit.TxRecord{AccountID: acc.ID.String(), Amount: balance, Type: audit.Synchronize})
	web.Respond(w, http.StatusOK, a.Ledger.Snapshot(acc))
}

func (a *Application) findAccount(w http.ResponseWriter, r *http.Request) (*account.Account, bool) {
	id, err := uuid.Parse(httprouter.ParamsFromContext(r.Context()).ByName("id"))
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, "unable to parse account id")
		return nil, false
	}

	acc, err := a.Ledger.Get(id)
	if err != nil {
		web.RespondError(w, http.StatusNotFound, fmt.Sprintf("account id %s is not found", id))
		return nil, false
	}

	return acc, true
}

func (a *Application) record(ctx context.Context, rec audit.TxRecord) {
	if a.Audit == nil {
		return
	}
	if _, err := a.Audit.Record(ctx, rec); err != nil {
		log.WithError(err).Errorf("failed to audit %s on account %s", rec.Type, rec.AccountID)
	}
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidAmount):
		web.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrInsufficientFunds), errors.Is(err, account.ErrTransferFailed):
		web.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		web.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrSynchronizationFailed):
		web.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		web.RespondError(w, http.StatusBadGateway, fmt.Sprintf("unable to synchronize balance: %s", err.Error()))
	}
}
