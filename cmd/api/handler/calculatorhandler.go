package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tamasbrandstadter/account-ledger/cmd/api/calculator"
	"github.com/tamasbrandstadter/account-ledger/internal/web"
)

func (a *Application) Calculate(w http.ResponseWriter, r *http.Request) {
	var payload calculator.Input
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		web.RespondError(w, http.StatusBadRequest, "invalid request payload, unable to parse")
		return
	}
	defer r.Body.Close()

	res, err := calculator.Calculate(payload)
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	web.Respond(w, http.StatusOK, map[string]float64{"result": res})
}
