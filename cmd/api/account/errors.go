package account

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidAmount         = errors.New("amount must be a positive number")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrTransferFailed        = errors.New("transfer failed")
	ErrSynchronizationFailed = errors.New("synchronization failed")
)

// FundsError is returned when a withdraw or transfer exceeds the balance.
// It matches ErrInsufficientFunds with errors.Is.
type FundsError struct {
	Balance float64
}

func (fe *FundsError) Error() string {
	return fmt.Sprintf("insufficient funds, balance: %.2f", fe.Balance)
}

func (fe *FundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
