package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidColor is returned when a wire color token is empty or not a string.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidQuantity is returned when a quantity value is not numeric or has no unit.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrUnsupportedConversion is returned by Quantity.ToBaseUnit for units
	// outside the length table.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrReferentialIntegrity matches every *ReferentialIntegrityError via errors.Is.
	ErrReferentialIntegrity = errors.New("referential integrity violated")
)

// ValidationError collects every field-level problem found while constructing
// a single entity.
type ValidationError struct {
	Entity   string // e.g. `connector "J1"`
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, strings.Join(e.Problems, "; "))
}

// Details returns one line per problem, prefixed with the entity name.
func (e *ValidationError) Details() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = e.Entity + ": " + p
	}
	return out
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferentialIntegrityError lists every dangling reference found in a
// document, not just the first.
type ReferentialIntegrityError struct {
	Violations []string
}

func (e *ReferentialIntegrityError) Error() string {
	var b strings.Builder
	b.WriteString("invalid connection references:")
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v)
	}
	return b.String()
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }

// problems accumulates validation failures for one entity.
type problems struct {
	entity string
	list   []string
}

func (p *problems) add(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) addErr(field string, err error) {
	if err != nil {
		p.list = append(p.list, field+": "+err.Error())
	}
}

func (p *problems) required(field, value string) {
	if value == "" {
		p.add("%s cannot be empty", field)
	}
}

func (p *problems) err() error {
	if len(p.list) == 0 {
		return nil
	}
	return &ValidationError{Entity: p.entity, Problems: p.list}
}
