package balance

type BalanceMessage struct {
	AccountID string  `json:"id"`
	Amount    float64 `json:"amount"`
}

type TransferMessage struct {
	FromID string  `json:"from"`
	ToID   string  `json:"to"`
	Amount float64 `json:"amount"`
}
