package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/account"
)

func TestOpenAndGet(t *testing.T) {
	l := New("EUR", nil)

	acc, err := l.Open(400)
	if err != nil {
		t.Fatalf("expected err nil, got: %v", err)
	}

	found, err := l.Get(acc.ID)

	assert.NoError(t, err)
	assert.Same(t, acc, found)
	assert.Equal(t, 400.0, found.Balance())
}

func TestOpenNegativeBalance(t *testing.T) {
	l := New("EUR", nil)

	acc, err := l.Open(-1)

	assert.Nil(t, acc)
	assert.True(t, errors.Is(err, account.ErrInvalidAmount))
	assert.Empty(t, l.List())
}

func TestGetNotFound(t *testing.T) {
	l := New("EUR", nil)

	_, err := l.Get(uuid.New())

	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestTransfer(t *testing.T) {
	l := New("EUR", nil)
	from, _ := l.Open(400)
	to, _ := l.Open(0)

	err := l.Transfer(from.ID, to.ID, 100)

	assert.NoError(t, err)
	assert.Equal(t, 300.0, from.Balance())
	assert.Equal(t, 100.0, to.Balance())
}

func TestTransferSameId(t *testing.T) {
	l := New("EUR", nil)
	acc, _ := l.Open(400)

	err := l.Transfer(acc.ID, acc.ID, 50)

	assert.True(t, errors.Is(err, account.ErrTransferFailed))
	assert.Equal(t, 400.0, acc.Balance())
}

func TestTransferUnknownTarget(t *testing.T) {
	l := New("EUR", nil)
	acc, _ := l.Open(400)

	err := l.Transfer(acc.ID, uuid.New(), 50)

	assert.True(t, errors.Is(err, ErrAccountNotFound))
	assert.Equal(t, 400.0, acc.Balance())
}

func TestList(t *testing.T) {
	l := New("GBP", nil)
	a1, _ := l.Open(1)
	a2, _ := l.Open(2)

	expected := []Snapshot{
		{ID: a1.ID, Balance: 1, Currency: "GBP"},
		{ID: a2.ID, Balance: 2, Currency: "GBP"},
	}
	if a2.ID.String() < a1.ID.String() {
		expected[0], expected[1] = expected[1], expected[0]
	}

	if diff := cmp.Diff(expected, l.List()); diff != "" {
		t.Errorf("unexpected difference in snapshots:\n%v", diff)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "€400.00", New("EUR", nil).Display(400))
	assert.Equal(t, "$12.34", New("USD", nil).Display(12.34))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("EUR"))
	assert.False(t, Supported("HUF"))
}
