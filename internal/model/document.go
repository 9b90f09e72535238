package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order; the first one that parses wins.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2-1-2006",
	"2/1/2006",
	"1/2/2006",
}

// Date is a document date. Strings that match none of the known layouts are
// kept verbatim in Raw.
type Date struct {
	Time time.Time
	Raw  string
}

// ParseDate parses s with the known layouts. Only empty input is rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("date cannot be empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{Raw: s}, nil
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool { return d.Time.IsZero() && d.Raw == "" }

// Parsed reports whether the date matched a known layout.
func (d Date) Parsed() bool { return !d.Time.IsZero() }

// Format renders a parsed date with layout, or the raw token otherwise.
func (d Date) Format(layout string) string {
	if d.Parsed() {
		return d.Time.Format(layout)
	}
	return d.Raw
}

func (d Date) String() string { return d.Format("2006-01-02") }

// DocumentMeta is the title block of a harness document.
type DocumentMeta struct {
	ID       string
	Title    string
	Revision string
	Date     Date

	Author   string
	Checker  string
	Approver string

	Company     string
	Department  string
	Client      string
	Project     string
	Description string

	Scale       string
	Units       string
	Sheet       int
	TotalSheets int

	CustomFields map[string]any
	// Extra holds unrecognized metadata keys, retained as written.
	Extra map[string]any
}

// NewDocumentMeta trims, applies drawing defaults and validates the required
// identity fields.
func NewDocumentMeta(m DocumentMeta) (*DocumentMeta, error) {
	for _, s := range []*string{
		&m.ID, &m.Title, &m.Revision, &m.Author, &m.Checker, &m.Approver,
		&m.Company, &m.Department, &m.Client, &m.Project, &m.Description,
		&m.Scale, &m.Units,
	} {
		*s = strings.TrimSpace(*s)
	}
	if m.Scale == "" {
		m.Scale = "NTS"
	}
	if m.Units == "" {
		m.Units = "mm"
	}
	if m.Sheet == 0 {
		m.Sheet = 1
	}
	if m.TotalSheets == 0 {
		m.TotalSheets = 1
	}

	p := problems{entity: "metadata"}
	p.required("id", m.ID)
	p.required("title", m.Title)
	p.required("revision", m.Revision)
	if m.Date.IsZero() {
		p.add("date cannot be empty")
	}
	if m.Sheet < 1 {
		p.add("sheet must be >= 1, got %d", m.Sheet)
	}
	if m.TotalSheets < m.Sheet {
		p.add("total_sheets (%d) must be >= sheet (%d)", m.TotalSheets, m.Sheet)
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	if m.CustomFields == nil {
		m.CustomFields = map[string]any{}
	}
	if m.Extra == nil {
		m.Extra = map[string]any{}
	}
	return &m, nil
}

// TemplateFields flattens the title block into a string map for drawing
// templates. Custom fields are added under their own names unless they
// collide with a standard field.
func (m *DocumentMeta) TemplateFields() map[string]string {
	out := map[string]string{
		"id":           m.ID,
		"title":        m.Title,
		"revision":     m.Revision,
		"date":         m.Date.String(),
		"author":       m.Author,
		"checker":      m.Checker,
		"approver":     m.Approver,
		"company":      m.Company,
		"department":   m.Department,
		"client":       m.Client,
		"project":      m.Project,
		"description":  m.Description,
		"scale":        m.Scale,
		"units":        m.Units,
		"sheet":        strconv.Itoa(m.Sheet),
		"total_sheets": strconv.Itoa(m.TotalSheets),
	}
	for k, v := range m.CustomFields {
		if _, ok := out[k]; !ok {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// HarnessDocument is a complete, validated harness. Slices keep document
// order; lookups go through the accessor methods.
type HarnessDocument struct {
	Metadata         DocumentMeta
	Parts            []*Part
	Connectors       []*Connector
	Cables           []*Cable
	Connections      []Connection
	Accessories      []Accessory
	ConnectionGroups []ConnectionGroup
	Splices          []SpliceConnection
	Notes            string
	BOMExtra         []map[string]any
	ConnectionSource ConnectionSource

	parts      map[string]*Part
	connectors map[string]*Connector
	cables     map[string]*Cable
}

// NewHarnessDocument indexes the entities of doc and checks every
// connection against them. All dangling references are collected into one
// *ReferentialIntegrityError.
func NewHarnessDocument(doc HarnessDocument) (*HarnessDocument, error) {
	var violations []string

	doc.parts = make(map[string]*Part, len(doc.Parts))
	for _, p := range doc.Parts {
		if _, dup := doc.parts[p.ID]; dup {
			violations = append(violations, fmt.Sprintf("duplicate part id '%s'", p.ID))
		}
		doc.parts[p.ID] = p
	}
	doc.connectors = make(map[string]*Connector, len(doc.Connectors))
	for _, c := range doc.Connectors {
		if _, dup := doc.connectors[c.ID]; dup {
			violations = append(violations, fmt.Sprintf("duplicate connector id '%s'", c.ID))
		}
		doc.connectors[c.ID] = c
	}
	doc.cables = make(map[string]*Cable, len(doc.Cables))
	for _, c := range doc.Cables {
		if _, dup := doc.cables[c.ID]; dup {
			violations = append(violations, fmt.Sprintf("duplicate cable id '%s'", c.ID))
		}
		doc.cables[c.ID] = c
	}

	for i, conn := range doc.Connections {
		if _, ok := doc.connectors[conn.FromConnector]; !ok {
			violations = append(violations, fmt.Sprintf("Connection %d: from_connector '%s' not found", i, conn.FromConnector))
		}
		if _, ok := doc.connectors[conn.ToConnector]; !ok {
			violations = append(violations, fmt.Sprintf("Connection %d: to_connector '%s' not found", i, conn.ToConnector))
		}
		cable, ok := doc.cables[conn.Cable]
		if !ok {
			violations = append(violations, fmt.Sprintf("Connection %d: cable '%s' not found", i, conn.Cable))
			continue
		}
		if conn.Core >= cable.WireCount {
			violations = append(violations, fmt.Sprintf(
				"Connection %d: core index %d out of range for cable '%s' with %d wires",
				i, conn.Core, conn.Cable, cable.WireCount))
		}
	}

	if len(violations) > 0 {
		return nil, &ReferentialIntegrityError{Violations: violations}
	}
	return &doc, nil
}

// Part looks up a library part by id.
func (d *HarnessDocument) Part(id string) (*Part, bool) {
	p, ok := d.parts[id]
	return p, ok
}

// Connector looks up a connector by id.
func (d *HarnessDocument) Connector(id string) (*Connector, bool) {
	c, ok := d.connectors[id]
	return c, ok
}

// Cable looks up a cable by id.
func (d *HarnessDocument) Cable(id string) (*Cable, bool) {
	c, ok := d.cables[id]
	return c, ok
}

// ConnectionsForConnector returns every connection touching connectorID on
// either end.
func (d *HarnessDocument) ConnectionsForConnector(connectorID string) []Connection {
	var out []Connection
	for _, c := range d.Connections {
		if c.FromConnector == connectorID || c.ToConnector == connectorID {
			out = append(out, c)
		}
	}
	return out
}

// ConnectionsForCable returns every connection routed through cableID.
func (d *HarnessDocument) ConnectionsForCable(cableID string) []Connection {
	var out []Connection
	for _, c := range d.Connections {
		if c.Cable == cableID {
			out = append(out, c)
		}
	}
	return out
}

// ComponentIDs lists connector, cable and part ids in document order, keyed
// by "connectors", "cables" and "parts".
func (d *HarnessDocument) ComponentIDs() map[string][]string {
	ids := map[string][]string{
		"connectors": make([]string, 0, len(d.Connectors)),
		"cables":     make([]string, 0, len(d.Cables)),
		"parts":      make([]string, 0, len(d.Parts)),
	}
	for _, c := range d.Connectors {
		ids["connectors"] = append(ids["connectors"], c.ID)
	}
	for _, c := range d.Cables {
		ids["cables"] = append(ids["cables"], c.ID)
	}
	for _, p := range d.Parts {
		ids["parts"] = append(ids["parts"], p.ID)
	}
	return ids
}

// ValidateComplete reports advisory problems that do not make the document
// invalid: unconnected cables and connectors, unused cores and pins that do
// not exist on their connector.
func (d *HarnessDocument) ValidateComplete() []string {
	var issues []string

	usedCables := make(map[string]bool)
	usedConnectors := make(map[string]bool)
	usedCores := make(map[string]map[int]bool, len(d.Cables))
	for _, c := range d.Connections {
		usedCables[c.Cable] = true
		usedConnectors[c.FromConnector] = true
		usedConnectors[c.ToConnector] = true
		if usedCores[c.Cable] == nil {
			usedCores[c.Cable] = make(map[int]bool)
		}
		usedCores[c.Cable][c.Core] = true
	}

	for _, cable := range d.Cables {
		if !usedCables[cable.ID] {
			issues = append(issues, fmt.Sprintf("Cable '%s' has no connections", cable.ID))
		}
	}
	for _, conn := range d.Connectors {
		if !usedConnectors[conn.ID] {
			issues = append(issues, fmt.Sprintf("Connector '%s' has no connections", conn.ID))
		}
	}
	for _, cable := range d.Cables {
		var unused []string
		for i := 0; i < cable.WireCount; i++ {
			if !usedCores[cable.ID][i] {
				unused = append(unused, strconv.Itoa(i))
			}
		}
		if len(unused) > 0 {
			issues = append(issues, fmt.Sprintf("Cable '%s' has unused cores: [%s]", cable.ID, strings.Join(unused, ", ")))
		}
	}

	for i, c := range d.Connections {
		issues = append(issues, d.checkPin(i, c.FromConnector, c.FromPin)...)
		issues = append(issues, d.checkPin(i, c.ToConnector, c.ToPin)...)
	}

	if d.ConnectionSource == SourceConnectionInfo {
		issues = append(issues, d.asymmetricPinCounts()...)
	}
	return issues
}

func (d *HarnessDocument) checkPin(i int, connectorID string, pin Pin) []string {
	conn, ok := d.connectors[connectorID]
	if !ok || !pin.IsNumber() || conn.HasPin(pin) {
		return nil
	}
	return []string{fmt.Sprintf("Connection %d: pin %s exceeds pincount %d of connector '%s'",
		i, pin, conn.PinCount, connectorID)}
}

// asymmetricPinCounts flags connector pairs joined through connection_info
// whose pin counts differ. That format reuses one pin number for both ends.
func (d *HarnessDocument) asymmetricPinCounts() []string {
	seen := make(map[string]bool)
	var issues []string
	for _, c := range d.Connections {
		key := c.FromConnector + "\x00" + c.ToConnector
		if seen[key] {
			continue
		}
		seen[key] = true
		from, ok1 := d.connectors[c.FromConnector]
		to, ok2 := d.connectors[c.ToConnector]
		if ok1 && ok2 && from.PinCount != to.PinCount {
			issues = append(issues, fmt.Sprintf(
				"connection_info assumes identical pin numbering on '%s' (%d pins) and '%s' (%d pins); use nested connections for asymmetric wiring",
				from.ID, from.PinCount, to.ID, to.PinCount))
		}
	}
	sort.Strings(issues)
	return issues
}
