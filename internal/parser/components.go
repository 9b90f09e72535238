package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/StinkyLord/wiredoc/internal/model"
)

func (p *Parser) parseConnectors(root *Map) ([]*model.Connector, error) {
	section, err := sectionMap(root, "connectors")
	if err != nil || section == nil {
		return nil, err
	}

	var out []*model.Connector
	for _, id := range section.Keys() {
		entry, ok := entryMap(section, id)
		if !ok {
			p.logger.Warn("skipping connector that is not a mapping", zap.String("connector", id))
			continue
		}
		c, err := p.parseConnector(id, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	p.logger.Debug("parsed connectors", zap.Int("count", len(out)))
	return out, nil
}

func (p *Parser) parseConnector(id string, entry *Map) (*model.Connector, error) {
	src, err := p.resolveSourcing(entry, "connector", id)
	if err != nil {
		return nil, err
	}

	typeName := getStringOr(entry, "type", "other")
	pinLabels := stringList(getList(entry, "pinlabels"))

	pins, err := parsePinDefinitions(getList(entry, "pins"), pinLabels)
	if err != nil {
		return nil, fmt.Errorf("connector %q: %w", id, err)
	}

	defaultCount := 1
	switch {
	case len(pinLabels) > 0:
		defaultCount = len(pinLabels)
	case len(pins) > 0:
		defaultCount = len(pins)
	}
	pinCount, err := getInt(entry, "pincount", defaultCount)
	if err != nil {
		return nil, fmt.Errorf("connector %q: %w", id, err)
	}

	extras, err := p.parseAccessoryList(getList(entry, "additional_components"))
	if err != nil {
		return nil, fmt.Errorf("connector %q: %w", id, err)
	}

	return model.NewConnector(model.Connector{
		ID:                   id,
		PrimaryPN:            src.PrimaryPN,
		Manufacturer:         src.Manufacturer,
		MPN:                  src.MPN,
		Description:          src.Description,
		Type:                 model.ParseConnectorType(typeName),
		Subtype:              getStringOr(entry, "subtype", typeName),
		PinCount:             pinCount,
		PinLabels:            pinLabels,
		Pins:                 pins,
		Alternates:           src.Alternates,
		Fields:               src.Fields,
		Image:                src.Image,
		AdditionalComponents: extras,
		Notes:                getStringOr(entry, "notes", ""),
	})
}

// parsePinDefinitions accepts both WireViz pin lists ([1, 2, 3]) and
// detailed mappings ({number, label, type, color, notes}).
func parsePinDefinitions(values []any, labels []string) ([]model.PinDefinition, error) {
	var out []model.PinDefinition
	for i, v := range values {
		def := model.PinDefinition{}
		if m, ok := v.(*Map); ok {
			num, err := model.ParsePin(mustGet(m, "number"))
			if err != nil {
				return nil, fmt.Errorf("pins[%d]: %w", i, err)
			}
			color, err := optionalColor(m, "color")
			if err != nil {
				return nil, fmt.Errorf("pins[%d]: %w", i, err)
			}
			def = model.PinDefinition{
				Number: num,
				Label:  getStringOr(m, "label", ""),
				Type:   getStringOr(m, "type", ""),
				Color:  color,
				Notes:  getStringOr(m, "notes", ""),
			}
		} else {
			num, err := model.ParsePin(v)
			if err != nil {
				return nil, fmt.Errorf("pins[%d]: %w", i, err)
			}
			def.Number = num
		}
		if def.Label == "" && i < len(labels) {
			def.Label = labels[i]
		}
		out = append(out, def)
	}
	return out, nil
}

func (p *Parser) parseCables(root *Map) ([]*model.Cable, error) {
	section, err := sectionMap(root, "cables")
	if err != nil || section == nil {
		return nil, err
	}

	var out []*model.Cable
	for _, id := range section.Keys() {
		entry, ok := entryMap(section, id)
		if !ok {
			p.logger.Warn("skipping cable that is not a mapping", zap.String("cable", id))
			continue
		}
		c, err := p.parseCable(id, entry)
		if err != nil {
			return nil, err
		}
		p.cables[c.ID] = c
		out = append(out, c)
	}
	p.logger.Debug("parsed cables", zap.Int("count", len(out)))
	return out, nil
}

func (p *Parser) parseCable(id string, entry *Map) (*model.Cable, error) {
	src, err := p.resolveSourcing(entry, "cable", id)
	if err != nil {
		return nil, err
	}

	cores, err := parseCores(getList(entry, "colors"), getList(entry, "wirelabels"), getList(entry, "pair_groups"))
	if err != nil {
		return nil, fmt.Errorf("cable %q: %w", id, err)
	}
	defaultCount := 1
	if len(cores) > 0 {
		defaultCount = len(cores)
	}
	wireCount, err := getInt(entry, "wirecount", defaultCount)
	if err != nil {
		return nil, fmt.Errorf("cable %q: %w", id, err)
	}

	gauge, err := parseGauge(entry, src.Fields)
	if err != nil {
		return nil, fmt.Errorf("cable %q: %w", id, err)
	}

	var length *model.Quantity
	if v, ok := entry.Get("length"); ok && v != nil {
		q, err := parseQuantity(v, getStringOr(entry, "length_unit", "m"))
		if err != nil {
			return nil, fmt.Errorf("cable %q: length: %w", id, err)
		}
		length = &q
	}

	shield, err := parseShield(mustGet(entry, "shield"))
	if err != nil {
		return nil, fmt.Errorf("cable %q: %w", id, err)
	}
	jacket, err := optionalColor(entry, "jacket_color")
	if err != nil {
		return nil, fmt.Errorf("cable %q: %w", id, err)
	}
	extras, err := p.parseAccessoryList(getList(entry, "additional_components"))
	if err != nil {
		return nil, fmt.Errorf("cable %q: %w", id, err)
	}

	return model.NewCable(model.Cable{
		ID:                   id,
		PrimaryPN:            src.PrimaryPN,
		Manufacturer:         src.Manufacturer,
		MPN:                  src.MPN,
		Description:          src.Description,
		WireCount:            wireCount,
		Cores:                cores,
		Gauge:                gauge,
		Length:               length,
		Shield:               shield,
		Alternates:           src.Alternates,
		Fields:               src.Fields,
		Image:                src.Image,
		AdditionalComponents: extras,
		Notes:                getStringOr(entry, "notes", ""),
		OuterDiameter:        getStringOr(entry, "outer_diameter", ""),
		JacketColor:          jacket,
	})
}

// parseCores turns the parallel colors/wirelabels lists into cores. An
// explicit pair_groups list wins over the adjacent-pair guess, which only
// tags even indices that have an odd partner.
func parseCores(colors, labels, pairs []any) ([]model.Core, error) {
	labelText := stringList(labels)
	pairText := stringList(pairs)

	cores := make([]model.Core, 0, len(colors))
	for i, v := range colors {
		color, err := model.ParseColorValue(v)
		if err != nil {
			return nil, fmt.Errorf("colors[%d]: %w", i, err)
		}
		core := model.Core{Index: i, Color: color}
		if i < len(labelText) {
			core.Label = labelText[i]
		}
		switch {
		case i < len(pairText) && pairText[i] != "":
			core.PairGroup = pairText[i]
			core.PairGroupSource = model.PairGroupExplicit
		case i%2 == 0 && i+1 < len(colors):
			core.PairGroup = model.HeuristicPairGroup(i)
			core.PairGroupSource = model.PairGroupHeuristic
		}
		cores = append(cores, core)
	}
	return cores, nil
}

// parseGauge renders integer gauges as AWG and decimal gauges in mm2 unless
// gauge_unit says otherwise. Without a gauge the gauge_awg custom field, then
// 22 AWG, is used.
func parseGauge(entry *Map, fields map[string]any) (string, error) {
	v, ok := entry.Get("gauge")
	if !ok || v == nil {
		v, ok = fields["gauge_awg"]
		if !ok || v == nil {
			return "22 AWG", nil
		}
	}
	unit, hasUnit := getString(entry, "gauge_unit")
	switch t := v.(type) {
	case int, int64, uint64:
		if !hasUnit {
			unit = "AWG"
		}
		return fmt.Sprintf("%v %s", t, unit), nil
	case float64:
		if !hasUnit {
			unit = "mm2"
		}
		return model.FormatNumber(t) + " " + unit, nil
	}
	s, ok := scalarString(v)
	if !ok {
		return "", fmt.Errorf("gauge: invalid value %v", v)
	}
	return s, nil
}

// parseShield reads "shield: true", a shield type name, or a mapping.
// false and null mean unshielded.
func parseShield(v any) (*model.ShieldSpec, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !t {
			return nil, nil
		}
		return model.NewShieldSpec(model.ShieldSpec{Type: model.ShieldBraided})
	case string:
		return model.NewShieldSpec(model.ShieldSpec{Type: model.ParseShieldType(t)})
	case *Map:
		spec := model.ShieldSpec{
			Type:      model.ParseShieldType(getStringOr(t, "type", "")),
			DrainWire: getBool(t, "drain_wire"),
		}
		if cv, ok := t.Get("coverage"); ok && cv != nil {
			q, err := model.NewQuantity(cv, "%")
			if err != nil {
				return nil, fmt.Errorf("shield coverage: %w", err)
			}
			spec.Coverage = &q.Value
		}
		color, err := optionalColor(t, "color")
		if err != nil {
			return nil, fmt.Errorf("shield: %w", err)
		}
		spec.Color = color
		return model.NewShieldSpec(spec)
	default:
		return nil, fmt.Errorf("shield: invalid value %v", v)
	}
}
