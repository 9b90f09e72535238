package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Pin identifies a connector contact either by 1-based number or by label.
type Pin struct {
	Number int    // >= 1 when the pin is numbered
	Label  string // set when the pin is named
}

// ParsePin normalizes a decoded YAML value into a Pin. Numeric strings are
// coerced to numbers; other strings become labels.
func ParsePin(v any) (Pin, error) {
	switch n := v.(type) {
	case int:
		return pinNumber(n)
	case int64:
		return pinNumber(int(n))
	case uint64:
		return pinNumber(int(n))
	case float64:
		if n != math.Trunc(n) {
			return Pin{}, fmt.Errorf("pin %v is not a whole number", n)
		}
		return pinNumber(int(n))
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return Pin{}, fmt.Errorf("pin cannot be empty")
		}
		if i, err := strconv.Atoi(s); err == nil {
			return pinNumber(i)
		}
		return Pin{Label: s}, nil
	case Pin:
		return n, nil
	default:
		return Pin{}, fmt.Errorf("pin %v has unsupported type %T", v, v)
	}
}

func pinNumber(n int) (Pin, error) {
	if n < 1 {
		return Pin{}, fmt.Errorf("pin number must be >= 1, got %d", n)
	}
	return Pin{Number: n}, nil
}

// NumberPin builds a numbered pin without validation, for use in literals.
func NumberPin(n int) Pin { return Pin{Number: n} }

// IsNumber reports whether the pin is numbered rather than named.
func (p Pin) IsNumber() bool { return p.Label == "" }

// IsZero reports whether p was never set.
func (p Pin) IsZero() bool { return p.Number == 0 && p.Label == "" }

func (p Pin) String() string {
	if p.IsNumber() {
		return strconv.Itoa(p.Number)
	}
	return p.Label
}

// Less orders numbered pins before named pins, numbers ascending and labels
// lexically.
func (p Pin) Less(o Pin) bool {
	if p.IsNumber() != o.IsNumber() {
		return p.IsNumber()
	}
	if p.IsNumber() {
		return p.Number < o.Number
	}
	return p.Label < o.Label
}

// Connection is one wire: a cable core joining a pin on one connector to a
// pin on another.
type Connection struct {
	FromConnector string
	FromPin       Pin
	Cable         string
	Core          int // zero-based
	ToConnector   string
	ToPin         Pin
	Notes         string
	SignalName    string
	WireLabel     string
	PairGroup     string
}

// NewConnection trims and validates a connection's own fields. References
// to connectors and cables are checked by NewHarnessDocument.
func NewConnection(c Connection) (Connection, error) {
	c.FromConnector = strings.TrimSpace(c.FromConnector)
	c.ToConnector = strings.TrimSpace(c.ToConnector)
	c.Cable = strings.TrimSpace(c.Cable)
	c.Notes = strings.TrimSpace(c.Notes)
	c.SignalName = strings.TrimSpace(c.SignalName)
	c.WireLabel = strings.TrimSpace(c.WireLabel)
	c.PairGroup = strings.TrimSpace(c.PairGroup)

	p := problems{entity: "connection " + c.String()}
	p.required("from_connector", c.FromConnector)
	p.required("to_connector", c.ToConnector)
	p.required("cable", c.Cable)
	if c.FromPin.IsZero() {
		p.add("from_pin is required")
	}
	if c.ToPin.IsZero() {
		p.add("to_pin is required")
	}
	if c.Core < 0 {
		p.add("core must be >= 0, got %d", c.Core)
	}
	if err := p.err(); err != nil {
		return Connection{}, err
	}
	return c, nil
}

// String renders the connection as "J1:1 -> [W1:0] -> J2:1".
func (c Connection) String() string {
	return fmt.Sprintf("%s:%s -> [%s:%d] -> %s:%s",
		c.FromConnector, c.FromPin, c.Cable, c.Core, c.ToConnector, c.ToPin)
}

// ConnectionGroup is a named set of related connections, such as a bus.
type ConnectionGroup struct {
	Name        string
	Description string
	Connections []Connection
	ColorCode   string
}

// ForConnector returns the group's connections touching connectorID.
func (g ConnectionGroup) ForConnector(connectorID string) []Connection {
	var out []Connection
	for _, c := range g.Connections {
		if c.FromConnector == connectorID || c.ToConnector == connectorID {
			out = append(out, c)
		}
	}
	return out
}

// ForCable returns the group's connections running through cableID.
func (g ConnectionGroup) ForCable(cableID string) []Connection {
	var out []Connection
	for _, c := range g.Connections {
		if c.Cable == cableID {
			out = append(out, c)
		}
	}
	return out
}

// SpliceConnection joins several incoming wires to several outgoing wires
// at one point.
type SpliceConnection struct {
	ID         string
	Incoming   []Connection
	Outgoing   []Connection
	SpliceType string // e.g. "solder", "crimp"
	Notes      string
}

// NewSpliceConnection validates that the splice has an id and at least one
// incoming or outgoing wire.
func NewSpliceConnection(s SpliceConnection) (*SpliceConnection, error) {
	s.ID = strings.TrimSpace(s.ID)
	p := problems{entity: `splice "` + s.ID + `"`}
	p.required("id", s.ID)
	if len(s.Incoming)+len(s.Outgoing) == 0 {
		p.add("splice must join at least one connection")
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ConnectionSource records which input dialect produced a document's
// connections.
type ConnectionSource string

const (
	SourceNone           ConnectionSource = ""
	SourceConnectionInfo ConnectionSource = "connection_info"
	SourceConnections    ConnectionSource = "connections"
)
