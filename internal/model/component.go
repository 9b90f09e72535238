// Package model defines the harness document: parts, connectors, cables,
// connections and the cross-entity rules that tie them together.
package model

import (
	"strconv"
	"strings"
)

// ConnectorType is the physical connector category.
type ConnectorType string

const (
	ConnectorRectangular   ConnectorType = "rectangular"
	ConnectorCircular      ConnectorType = "circular"
	ConnectorModular       ConnectorType = "modular"
	ConnectorTerminalBlock ConnectorType = "terminal_block"
	ConnectorSplice        ConnectorType = "splice"
	ConnectorBlade         ConnectorType = "blade"
	ConnectorRing          ConnectorType = "ring"
	ConnectorSpade         ConnectorType = "spade"
	ConnectorBullet        ConnectorType = "bullet"
	ConnectorPinHeader     ConnectorType = "pin_header"
	ConnectorUSB           ConnectorType = "usb"
	ConnectorDSub          ConnectorType = "d_sub"
	ConnectorAutomotive    ConnectorType = "automotive"
	ConnectorWireToBoard   ConnectorType = "wire_to_board"
	ConnectorWireToWire    ConnectorType = "wire_to_wire"
	ConnectorOther         ConnectorType = "other"
)

var connectorTypes = []ConnectorType{
	ConnectorRectangular, ConnectorCircular, ConnectorModular, ConnectorTerminalBlock,
	ConnectorSplice, ConnectorBlade, ConnectorRing, ConnectorSpade,
	ConnectorBullet, ConnectorPinHeader, ConnectorUSB, ConnectorDSub,
	ConnectorAutomotive, ConnectorWireToBoard, ConnectorWireToWire, ConnectorOther,
}

// ParseConnectorType maps a case-insensitive name to a ConnectorType.
// Unknown names map to ConnectorOther.
func ParseConnectorType(s string) ConnectorType {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range connectorTypes {
		if string(t) == s {
			return t
		}
	}
	return ConnectorOther
}

// ShieldType is the construction of a cable shield.
type ShieldType string

const (
	ShieldBraided     ShieldType = "braided"
	ShieldFoil        ShieldType = "foil"
	ShieldSpiral      ShieldType = "spiral"
	ShieldBraidedFoil ShieldType = "braided_foil"
	ShieldNone        ShieldType = "none"
)

// ParseShieldType maps a name to a ShieldType; unknown or empty names
// default to braided.
func ParseShieldType(s string) ShieldType {
	switch t := ShieldType(strings.ToLower(strings.TrimSpace(s))); t {
	case ShieldBraided, ShieldFoil, ShieldSpiral, ShieldBraidedFoil, ShieldNone:
		return t
	default:
		return ShieldBraided
	}
}

// ShieldSpec describes cable shielding.
type ShieldSpec struct {
	Type      ShieldType
	Coverage  *float64 // percent, 0-100
	DrainWire bool
	Color     *ColorSpec // drain wire color
}

// NewShieldSpec validates coverage bounds.
func NewShieldSpec(s ShieldSpec) (*ShieldSpec, error) {
	if s.Type == "" {
		s.Type = ShieldBraided
	}
	p := problems{entity: "shield"}
	if s.Coverage != nil && (*s.Coverage < 0 || *s.Coverage > 100) {
		p.add("coverage %v must be between 0 and 100", *s.Coverage)
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// PairGroupSource records where a core's pair group came from.
type PairGroupSource string

const (
	PairGroupNone      PairGroupSource = ""
	PairGroupExplicit  PairGroupSource = "explicit"
	PairGroupHeuristic PairGroupSource = "heuristic"
)

// Core is a single conductor inside a cable.
type Core struct {
	Index           int // zero-based
	Color           ColorSpec
	Label           string
	PairGroup       string
	PairGroupSource PairGroupSource
	TwistSpec       string
	Gauge           string
}

// HeuristicPairGroup numbers adjacent cores as pairs: cores 0 and 1 are
// pair "1", cores 2 and 3 are pair "2", and so on. It is a guess and
// callers must tag it with PairGroupHeuristic.
func HeuristicPairGroup(index int) string {
	return strconv.Itoa(index/2 + 1)
}

// PinDefinition is a detailed description of one connector pin.
type PinDefinition struct {
	Number Pin
	Label  string
	Type   string // signal, power, ground, nc
	Color  *ColorSpec
	Notes  string
}

// Connector is a harness connector instance.
type Connector struct {
	ID                   string
	PrimaryPN            string
	Manufacturer         string
	MPN                  string
	Description          string
	Type                 ConnectorType
	Subtype              string
	PinCount             int
	PinLabels            []string
	Pins                 []PinDefinition
	Alternates           []AlternatePart
	Fields               map[string]any
	Image                *ImageSpec
	AdditionalComponents []Accessory
	Notes                string
}

// NewConnector trims and validates a connector. Every problem found is
// reported in a single *ValidationError.
func NewConnector(c Connector) (*Connector, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.PrimaryPN = strings.TrimSpace(c.PrimaryPN)
	c.Manufacturer = strings.TrimSpace(c.Manufacturer)
	c.MPN = strings.TrimSpace(c.MPN)
	c.Description = strings.TrimSpace(c.Description)
	c.Subtype = strings.TrimSpace(c.Subtype)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Type == "" {
		c.Type = ConnectorOther
	}

	p := problems{entity: `connector "` + c.ID + `"`}
	p.required("id", c.ID)
	p.required("primary_pn", c.PrimaryPN)
	p.required("manufacturer", c.Manufacturer)
	p.required("description", c.Description)
	if c.PinCount < 1 {
		p.add("pincount must be >= 1, got %d", c.PinCount)
	}
	if len(c.PinLabels) > 0 && len(c.PinLabels) != c.PinCount {
		p.add("pinlabels count (%d) must match pincount (%d)", len(c.PinLabels), c.PinCount)
	}
	if len(c.Pins) > 0 && len(c.Pins) != c.PinCount {
		p.add("pins count (%d) must match pincount (%d)", len(c.Pins), c.PinCount)
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	if c.Fields == nil {
		c.Fields = map[string]any{}
	}
	return &c, nil
}

// PinLabel returns the label of a 1-based pin number, or "" when the
// connector has no label for it.
func (c *Connector) PinLabel(number int) string {
	if number >= 1 && number <= len(c.PinLabels) {
		return c.PinLabels[number-1]
	}
	return ""
}

// HasPin reports whether pin exists on the connector: numbered pins must be
// within pincount, named pins must appear in pinlabels or pin definitions.
func (c *Connector) HasPin(pin Pin) bool {
	if pin.IsNumber() {
		return pin.Number >= 1 && pin.Number <= c.PinCount
	}
	for _, l := range c.PinLabels {
		if l == pin.Label {
			return true
		}
	}
	for _, d := range c.Pins {
		if d.Label == pin.Label || d.Number.Label == pin.Label {
			return true
		}
	}
	return false
}

// Cable is a multi-conductor cable instance.
type Cable struct {
	ID                   string
	PrimaryPN            string
	Manufacturer         string
	MPN                  string
	Description          string
	WireCount            int
	Cores                []Core
	Gauge                string
	Length               *Quantity // nil when the document gives no length
	Shield               *ShieldSpec
	Alternates           []AlternatePart
	Fields               map[string]any
	Image                *ImageSpec
	AdditionalComponents []Accessory
	Notes                string
	OuterDiameter        string
	JacketColor          *ColorSpec
}

// NewCable trims and validates a cable, including its core list.
func NewCable(c Cable) (*Cable, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.PrimaryPN = strings.TrimSpace(c.PrimaryPN)
	c.Manufacturer = strings.TrimSpace(c.Manufacturer)
	c.MPN = strings.TrimSpace(c.MPN)
	c.Description = strings.TrimSpace(c.Description)
	c.Gauge = strings.TrimSpace(c.Gauge)
	c.Notes = strings.TrimSpace(c.Notes)
	c.OuterDiameter = strings.TrimSpace(c.OuterDiameter)

	p := problems{entity: `cable "` + c.ID + `"`}
	p.required("id", c.ID)
	p.required("primary_pn", c.PrimaryPN)
	p.required("manufacturer", c.Manufacturer)
	p.required("description", c.Description)
	p.required("gauge", c.Gauge)
	if c.WireCount < 1 {
		p.add("wirecount must be >= 1, got %d", c.WireCount)
	}
	if len(c.Cores) > 0 {
		if len(c.Cores) != c.WireCount {
			p.add("cores count (%d) must match wirecount (%d)", len(c.Cores), c.WireCount)
		}
		seen := make(map[int]bool, len(c.Cores))
		for _, core := range c.Cores {
			if seen[core.Index] {
				p.add("core indices must be unique, %d repeats", core.Index)
			}
			seen[core.Index] = true
			if core.Index < 0 || core.Index >= c.WireCount {
				p.add("core index %d out of range [0, %d)", core.Index, c.WireCount)
			}
		}
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	if c.Fields == nil {
		c.Fields = map[string]any{}
	}
	return &c, nil
}

// CoreByIndex returns the core with the given zero-based index.
func (c *Cable) CoreByIndex(index int) (Core, bool) {
	for _, core := range c.Cores {
		if core.Index == index {
			return core, true
		}
	}
	return Core{}, false
}

// CoreByLabel returns the first core carrying label.
func (c *Cable) CoreByLabel(label string) (Core, bool) {
	for _, core := range c.Cores {
		if core.Label != "" && core.Label == label {
			return core, true
		}
	}
	return Core{}, false
}
