package account

type CreationRequest struct {
	InitialBalance float64 `json:"balance"`
}

type BalanceOperationRequest struct {
	Amount float64 `json:"amount"`
}

type TransferRequest struct {
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}
