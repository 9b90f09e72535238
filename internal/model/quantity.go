package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lengthToMeters is the only conversion table Quantity knows about.
var lengthToMeters = map[string]float64{
	"m":  1.0,
	"cm": 0.01,
	"mm": 0.001,
	"ft": 0.3048,
	"in": 0.0254,
}

// Quantity is a numeric value with a unit, e.g. a cable length or an
// accessory count.
type Quantity struct {
	Value float64
	Unit  string
}

// NewQuantity coerces value (int, float or numeric string) into a Quantity.
func NewQuantity(value any, unit string) (Quantity, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return Quantity{}, fmt.Errorf("%w: unit cannot be empty", ErrInvalidQuantity)
	}
	f, err := toFloat(value)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: f, Unit: unit}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot convert %q to a number", ErrInvalidQuantity, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: unsupported value type %T", ErrInvalidQuantity, v)
	}
}

// String prints integral values without a decimal part: "2 m", "2.5 m".
func (q Quantity) String() string {
	return FormatNumber(q.Value) + " " + q.Unit
}

// ToBaseUnit converts q into target. Only the length table (m, cm, mm, ft,
// in) and identity conversions are supported.
func (q Quantity) ToBaseUnit(target string) (Quantity, error) {
	from := strings.ToLower(q.Unit)
	to := strings.ToLower(strings.TrimSpace(target))

	fromFactor, fromLen := lengthToMeters[from]
	toFactor, toLen := lengthToMeters[to]
	if fromLen && toLen {
		return Quantity{Value: q.Value * fromFactor / toFactor, Unit: target}, nil
	}
	if from == to {
		return Quantity{Value: q.Value, Unit: target}, nil
	}
	return Quantity{}, fmt.Errorf("%w: cannot convert from %q to %q", ErrUnsupportedConversion, q.Unit, target)
}

// FormatNumber renders integral floats without decimals and everything else
// with the shortest representation.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
