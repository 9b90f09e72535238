package parser

import (
	"fmt"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// connectionSource derives the flat connection list from one of the two
// input dialects. Exactly one source is chosen per document.
type connectionSource interface {
	kind() model.ConnectionSource
	derive(cables map[string]*model.Cable) ([]model.Connection, error)
}

// selectConnectionSource picks connection_info when present, then the
// WireViz connections list, else an empty source.
func selectConnectionSource(root *Map) connectionSource {
	if v, ok := root.Get("connection_info"); ok {
		return connectionInfo{rows: asList(v)}
	}
	if v, ok := root.Get("connections"); ok {
		return wirevizGroups{groups: asList(v)}
	}
	return noConnections{}
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

type noConnections struct{}

func (noConnections) kind() model.ConnectionSource { return model.SourceNone }

func (noConnections) derive(map[string]*model.Cable) ([]model.Connection, error) {
	return nil, nil
}

// connectionInfo rows carry one pin number used on both ends and a 1-based
// core number.
type connectionInfo struct {
	rows []any
}

func (connectionInfo) kind() model.ConnectionSource { return model.SourceConnectionInfo }

func (c connectionInfo) derive(map[string]*model.Cable) ([]model.Connection, error) {
	var out []model.Connection
	for i, v := range c.rows {
		row, ok := v.(*Map)
		if !ok {
			continue
		}
		conn, err := parseConnectionRow(row)
		if err != nil {
			return nil, fmt.Errorf("connection_info[%d]: %w", i, err)
		}
		out = append(out, conn)
	}
	return out, nil
}

// parseConnectionRow reads a connection_info style row. to_pin is optional
// and defaults to pin.
func parseConnectionRow(row *Map) (model.Connection, error) {
	pinValue, ok := row.Get("pin")
	if !ok || pinValue == nil {
		pinValue = 1
	}
	fromPin, err := model.ParsePin(pinValue)
	if err != nil {
		return model.Connection{}, fmt.Errorf("pin: %w", err)
	}
	toPin := fromPin
	if v, ok := row.Get("to_pin"); ok && v != nil {
		if toPin, err = model.ParsePin(v); err != nil {
			return model.Connection{}, fmt.Errorf("to_pin: %w", err)
		}
	}

	core, err := getInt(row, "core", 1)
	if err != nil {
		return model.Connection{}, err
	}
	if core < 1 {
		return model.Connection{}, fmt.Errorf("core must be >= 1, got %d", core)
	}

	label := getStringOr(row, "label", "")
	return model.NewConnection(model.Connection{
		FromConnector: getStringOr(row, "from", ""),
		FromPin:       fromPin,
		Cable:         getStringOr(row, "cable", ""),
		Core:          core - 1,
		ToConnector:   getStringOr(row, "to", ""),
		ToPin:         toPin,
		Notes:         getStringOr(row, "notes", ""),
		SignalName:    label,
		WireLabel:     label,
		PairGroup:     getStringOr(row, "pair", ""),
	})
}

// wirevizGroups is the native WireViz form:
//
//	- - J1: [1, 2]
//	  - W1: [1, 2]
//	  - J2: [1, 2]
type wirevizGroups struct {
	groups []any
}

func (wirevizGroups) kind() model.ConnectionSource { return model.SourceConnections }

type groupElement struct {
	key    string
	values []any
}

func (w wirevizGroups) derive(cables map[string]*model.Cable) ([]model.Connection, error) {
	var out []model.Connection
	for gi, g := range w.groups {
		group, ok := g.([]any)
		if !ok || len(group) < 2 {
			continue
		}

		var elems []groupElement
		for _, e := range group {
			m, ok := e.(*Map)
			if !ok {
				continue
			}
			for _, k := range m.Keys() {
				v, _ := m.Get(k)
				vals, ok := v.([]any)
				if !ok {
					vals = []any{v}
				}
				elems = append(elems, groupElement{key: k, values: vals})
			}
		}
		if len(elems) < 2 {
			continue
		}

		from := &elems[0]
		var cable, to *groupElement
		for i := range elems[1:] {
			e := &elems[i+1]
			if _, ok := cables[e.key]; ok {
				cable = e
			} else {
				to = e
			}
		}
		if cable == nil || to == nil {
			continue
		}
		cab := cables[cable.key]

		n := min(len(from.values), len(cable.values), len(to.values))
		for i := 0; i < n; i++ {
			conn, err := wirevizConnection(from, cable, to, cab, i)
			if err != nil {
				return nil, fmt.Errorf("connections[%d][%d]: %w", gi, i, err)
			}
			out = append(out, conn)
		}
	}
	return out, nil
}

func wirevizConnection(from, cable, to *groupElement, cab *model.Cable, i int) (model.Connection, error) {
	fromPin, err := model.ParsePin(from.values[i])
	if err != nil {
		return model.Connection{}, fmt.Errorf("%s: %w", from.key, err)
	}
	toPin, err := model.ParsePin(to.values[i])
	if err != nil {
		return model.Connection{}, fmt.Errorf("%s: %w", to.key, err)
	}
	coreNum, err := toInt(cable.values[i])
	if err != nil {
		return model.Connection{}, fmt.Errorf("%s: core %w", cable.key, err)
	}
	if coreNum < 1 {
		return model.Connection{}, fmt.Errorf("%s: core must be >= 1, got %d", cable.key, coreNum)
	}

	conn := model.Connection{
		FromConnector: from.key,
		FromPin:       fromPin,
		Cable:         cable.key,
		Core:          coreNum - 1,
		ToConnector:   to.key,
		ToPin:         toPin,
	}
	if core, ok := cab.CoreByIndex(conn.Core); ok {
		conn.WireLabel = core.Label
		conn.PairGroup = core.PairGroup
	}
	return model.NewConnection(conn)
}

// parseConnectionGroups reads named groups of connection_info style rows.
func (p *Parser) parseConnectionGroups(root *Map) ([]model.ConnectionGroup, error) {
	var out []model.ConnectionGroup
	for i, v := range getList(root, "connection_groups") {
		m, ok := v.(*Map)
		if !ok {
			continue
		}
		name, ok := getString(m, "name")
		if !ok {
			return nil, fmt.Errorf("connection_groups[%d]: name cannot be empty", i)
		}
		conns, err := parseRows(getList(m, "connections"))
		if err != nil {
			return nil, fmt.Errorf("connection group %q: %w", name, err)
		}
		out = append(out, model.ConnectionGroup{
			Name:        name,
			Description: getStringOr(m, "description", ""),
			Connections: conns,
			ColorCode:   getStringOr(m, "color_code", ""),
		})
	}
	return out, nil
}

func (p *Parser) parseSplices(root *Map) ([]model.SpliceConnection, error) {
	var out []model.SpliceConnection
	for i, v := range getList(root, "splices") {
		m, ok := v.(*Map)
		if !ok {
			continue
		}
		incoming, err := parseRows(getList(m, "incoming"))
		if err != nil {
			return nil, fmt.Errorf("splices[%d] incoming: %w", i, err)
		}
		outgoing, err := parseRows(getList(m, "outgoing"))
		if err != nil {
			return nil, fmt.Errorf("splices[%d] outgoing: %w", i, err)
		}
		s, err := model.NewSpliceConnection(model.SpliceConnection{
			ID:         getStringOr(m, "id", ""),
			Incoming:   incoming,
			Outgoing:   outgoing,
			SpliceType: getStringOr(m, "splice_type", ""),
			Notes:      getStringOr(m, "notes", ""),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func parseRows(values []any) ([]model.Connection, error) {
	var out []model.Connection
	for i, v := range values {
		row, ok := v.(*Map)
		if !ok {
			continue
		}
		c, err := parseConnectionRow(row)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
