// Package quantity parses the free-text magnitude+unit strings that food
// quantities and weights arrive as ("2 pieces", "250g", "1.5 cups").
//
// Grammar: an optional leading decimal number, optional whitespace, then an
// optional unit made of the remaining text. Parsing never fails; unparseable
// input yields the caller-supplied default.
package quantity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Value is a parsed magnitude with its unit text.
type Value struct {
	Amount float64
	Unit   string
}

var (
	magnitudeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(.*)$`)
	weightRe    = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-zA-Z]+)?$`)
)

// DefaultQuantity is the fallback for an unparseable quantity string.
var DefaultQuantity = Value{Amount: 1, Unit: "serving"}

// DefaultWeight is the fallback for an unparseable weight string.
var DefaultWeight = Value{Amount: 100, Unit: "g"}

// Parse extracts a magnitude and unit from text. A missing magnitude falls
// back to def.Amount, a missing unit to def.Unit.
func Parse(text string, def Value) Value {
	m := magnitudeRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return def
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return def
	}
	unit := strings.TrimSpace(m[2])
	if unit == "" {
		unit = def.Unit
	}
	return Value{Amount: amount, Unit: unit}
}

// ParseQuantity parses a human quantity string like "2 pieces", defaulting
// to 1 serving.
func ParseQuantity(text string) Value {
	return Parse(text, DefaultQuantity)
}

// ParseWeight parses a provider weight string like "250g". Unlike
// quantities, the unit must be a single word; anything else falls back to
// 100 g.
func ParseWeight(text string) Value {
	m := weightRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return DefaultWeight
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return DefaultWeight
	}
	unit := m[2]
	if unit == "" {
		unit = DefaultWeight.Unit
	}
	return Value{Amount: amount, Unit: unit}
}

// Format renders the value back to "amount unit" form with one decimal
// place, the shape the review screen shows.
func (v Value) Format() string {
	return fmt.Sprintf("%.1f %s", v.Amount, v.Unit)
}
