package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// parseAccessories reads the harness-level accessories section, given
// either as a mapping keyed by id or as a list of entries.
func (p *Parser) parseAccessories(root *Map) ([]model.Accessory, error) {
	v, ok := root.Get("accessories")
	if !ok || v == nil {
		return nil, nil
	}
	var items []any
	switch t := v.(type) {
	case *Map:
		for _, id := range t.Keys() {
			entry, ok := entryMap(t, id)
			if !ok {
				p.logger.Warn("skipping accessory that is not a mapping", zap.String("accessory", id))
				continue
			}
			if !entry.Has("id") {
				entry.set("id", id)
			}
			items = append(items, entry)
		}
	case []any:
		items = t
	default:
		return nil, fmt.Errorf("'accessories' must be a mapping or a list")
	}
	out, err := p.parseAccessoryList(items)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("parsed accessories", zap.Int("count", len(out)))
	return out, nil
}

func (p *Parser) parseAccessoryList(items []any) ([]model.Accessory, error) {
	var out []model.Accessory
	for _, v := range items {
		entry, ok := v.(*Map)
		if !ok {
			continue
		}
		a, err := p.parseAccessory(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (p *Parser) parseAccessory(entry *Map) (*model.Accessory, error) {
	p.accessoryN++
	typ := model.ParseAccessoryType(getStringOr(entry, "type", ""))
	id := getStringOr(entry, "id", fmt.Sprintf("ACC-%d", p.accessoryN))

	part := p.accessoryPart(entry, id, typ)

	qtyValue, ok := entry.Get("qty")
	if !ok {
		qtyValue, ok = entry.Get("quantity")
	}
	if !ok || qtyValue == nil {
		qtyValue = 1
	}
	qty, err := parseQuantity(qtyValue, "pcs")
	if err != nil {
		return nil, fmt.Errorf("accessory %q: quantity: %w", id, err)
	}
	if unit, ok := getString(entry, "qty_unit"); ok {
		qty.Unit = unit
	}

	return model.NewAccessory(model.Accessory{
		Type:     typ,
		Part:     part,
		Quantity: qty,
		Location: getStringOr(entry, "location", ""),
		Notes:    getStringOr(entry, "notes", ""),
	})
}

// accessoryPart resolves the accessory's part: a library reference, an
// inline part mapping, or a part synthesized from the entry itself.
func (p *Parser) accessoryPart(entry *Map, id string, typ model.AccessoryType) model.Part {
	ref, _ := entry.Get("part")
	if name, ok := ref.(string); ok {
		if part, found := p.parts[name]; found {
			return *part
		}
	}

	description := getStringOr(entry, "description", string(typ)+" "+id)
	if inline, ok := ref.(*Map); ok {
		pn := getStringOr(inline, "pn", getStringOr(inline, "primary_pn", "PN-"+id))
		return model.Part{
			ID:           getStringOr(inline, "id", id),
			PrimaryPN:    pn,
			Manufacturer: getStringOr(inline, "manufacturer", "Unknown"),
			MPN:          getStringOr(inline, "mpn", pn),
			Description:  getStringOr(inline, "description", description),
			Fields:       parseFields(mustGet(inline, "fields")),
		}
	}

	pn := getStringOr(entry, "pn", "PN-"+id)
	if name, ok := scalarString(ref); ok && name != "" {
		p.logger.Debug("accessory part not in library, using it as part number",
			zap.String("accessory", id), zap.String("part", name))
		pn = name
	}
	return model.Part{
		ID:           id,
		PrimaryPN:    pn,
		Manufacturer: getStringOr(entry, "manufacturer", "Unknown"),
		MPN:          getStringOr(entry, "mpn", pn),
		Description:  description,
	}
}
