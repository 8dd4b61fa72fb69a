package account

import (
	"bytes"
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// BalanceSource supplies the authoritative balance of an account.
// ok is false when no balance is available for id.
type BalanceSource interface {
	FetchBalance(ctx context.Context, id uuid.UUID) (balance float64, ok bool, err error)
}

type Account struct {
	ID uuid.UUID

	mu      sync.Mutex
	balance float64
	source  BalanceSource
}

// New opens an account holding initial. source may be nil, in which case
// the account can never be synchronized.
func New(initial float64, source BalanceSource) (*Account, error) {
	return NewWithID(uuid.New(), initial, source)
}

func NewWithID(id uuid.UUID, initial float64, source BalanceSource) (*Account, error) {
	if !isFinite(initial) || initial < 0 {
		return nil, ErrInvalidAmount
	}

	return &Account{
		ID:      id,
		balance: initial,
		source:  source,
	}, nil
}

func (a *Account) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balance
}

func (a *Account) Deposit(amount float64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.balance += amount

	return nil
}

func (a *Account) Withdraw(amount float64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amount > a.balance {
		return &FundsError{Balance: a.balance}
	}
	a.balance -= amount

	return nil
}

// Transfer moves amount from a to target. Both balances change while both
// accounts are locked.
func (a *Account) Transfer(amount float64, target *Account) error {
	if target == nil || target == a {
		return errors.WithMessage(ErrTransferFailed, "target must be a different account")
	}
	if err := validateAmount(amount); err != nil {
		return err
	}

	first, second := a, target
	if bytes.Compare(a.ID[:], target.ID[:]) > 0 {
		first, second = target, a
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if amount > a.balance {
		return &FundsError{Balance: a.balance}
	}
	a.balance -= amount
	target.balance += amount

	return nil
}

func (a *Account) FetchBalance(ctx context.Context) (float64, bool, error) {
	if a.source == nil {
		return 0, false, nil
	}

	return a.source.FetchBalance(ctx, a.ID)
}

// SynchronizeBalance overwrites the balance with the one reported by the
// balance source.
func (a *Account) SynchronizeBalance(ctx context.Context) error {
	balance, ok, err := a.FetchBalance(ctx)
	if err != nil {
		return errors.Wrapf(err, "fetch balance of account %s", a.ID)
	}
	if !ok {
		return errors.WithMessagef(ErrSynchronizationFailed, "no balance available for account %s", a.ID)
	}
	if !isFinite(balance) || balance < 0 {
		return errors.WithMessagef(ErrSynchronizationFailed, "source reported invalid balance %.2f", balance)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	log.WithFields(log.Fields{
		"account": a.ID,
		"from":    a.balance,
		"to":      balance,
	}).Debug("synchronized balance")
	a.balance = balance

	return nil
}

func validateAmount(amount float64) error {
	if !isFinite(amount) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
