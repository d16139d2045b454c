package payment

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// Amount is a sum of money in minor units (paisa). It is stored as an integer and
// rendered on the wire as a decimal number.
type Amount int64

// MaxMajor bounds a single amount in taka. Its paisa value stays well inside the
// range a float64 represents exactly.
const MaxMajor = 1e13

var ErrInvalidAmount = errors.New("invalid amount")

func FromMajor(v float64) (Amount, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxMajor {
		return 0, ErrInvalidAmount
	}
	return Amount(math.Round(v * 100)), nil
}

func (a Amount) Major() float64 {
	return float64(a) / 100
}

func (a Amount) String() string {
	return strconv.FormatFloat(a.Major(), 'f', 2, 64)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Major(), 'f', -1, 64)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return ErrInvalidAmount
	}
	parsed, err := FromMajor(v)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sum totals the payments, saturating at the int64 bounds instead of wrapping.
func Sum(payments []Payment) Amount {
	var total Amount
	for _, p := range payments {
		total = total.add(p.Amount)
	}
	return total
}

func (a Amount) add(b Amount) Amount {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}
