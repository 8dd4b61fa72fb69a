package ledger

import (
	"math"
	"sort"
	"sync"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/account"
)

var ErrAccountNotFound = errors.New("account not found")

type Snapshot struct {
	ID       uuid.UUID `json:"id"`
	Balance  float64   `json:"balance"`
	Currency string    `json:"currency"`
}

// Ledger keeps the open accounts of the service. Accounts share the
// ledger's balance source and display currency.
type Ledger struct {
	Currency string

	mu       sync.RWMutex
	accounts map[uuid.UUID]*account.Account
	source   account.BalanceSource
}

func New(currency string, source account.BalanceSource) *Ledger {
	return &Ledger{
		Currency: currency,
		accounts: make(map[uuid.UUID]*account.Account),
		source:   source,
	}
}

func (l *Ledger) Open(initial float64) (*account.Account, error) {
	acc, err := account.New(initial, l.source)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.accounts[acc.ID] = acc
	l.mu.Unlock()

	return acc, nil
}

func (l *Ledger) Get(id uuid.UUID) (*account.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[id]
	if !ok {
		return nil, errors.Wrapf(ErrAccountNotFound, "account id %s", id)
	}

	return acc, nil
}

// Transfer moves amount between two accounts of the ledger.
func (l *Ledger) Transfer(fromId, toId uuid.UUID, amount float64) error {
	from, err := l.Get(fromId)
	if err != nil {
		return err
	}
	to, err := l.Get(toId)
	if err != nil {
		return err
	}

	return from.Transfer(amount, to)
}

// List returns the accounts ordered by id.
func (l *Ledger) List() []Snapshot {
	l.mu.RLock()
	out := make([]Snapshot, 0, len(l.accounts))
	for _, acc := range l.accounts {
		out = append(out, l.Snapshot(acc))
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

func (l *Ledger) Snapshot(acc *account.Account) Snapshot {
	return Snapshot{
		ID:       acc.ID,
		Balance:  acc.Balance(),
		Currency: l.Currency,
	}
}

// Display formats a balance in the ledger currency, e.g. "€400.00".
// Supported currencies all have two fractional digits.
func (l *Ledger) Display(balance float64) string {
	return money.New(int64(math.Round(balance*100)), l.Currency).Display()
}

func Supported(currency string) bool {
	return currency == "EUR" || currency == "GBP" || currency == "USD"
}
