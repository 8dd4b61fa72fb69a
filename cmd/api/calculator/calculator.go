package calculator

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrDivisionByZero   = errors.New("division by zero")
)

type Action string

const (
	Add          Action = "+"
	Subtract     Action = "-"
	Multiply     Action = "*"
	Divide       Action = "/"
	Exponentiate Action = "^"
)

type Input struct {
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Action Action  `json:"action"`
}

func Calculate(in Input) (float64, error) {
	if !finite(in.A) || !finite(in.B) {
		return 0, ErrInvalidArguments
	}

	var res float64
	switch in.Action {
	case Add:
		res = in.A + in.B
	case Subtract:
		res = in.A - in.B
	case Multiply:
		res = in.A * in.B
	case Divide:
		if in.B == 0 {
			return 0, ErrDivisionByZero
		}
		res = in.A / in.B
	case Exponentiate:
		res = math.Pow(in.A, in.B)
	default:
		return 0, errors.Wrapf(ErrInvalidAction, "action %q", in.Action)
	}

	// overflow, or a fractional power of a negative base
	if !finite(res) {
		return 0, ErrInvalidArguments
	}

	return res, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
