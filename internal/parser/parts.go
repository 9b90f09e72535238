package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/StinkyLord/wiredoc/internal/model"
)

func (p *Parser) parseParts(root *Map) ([]*model.Part, error) {
	section, err := sectionMap(root, "parts")
	if err != nil || section == nil {
		return nil, err
	}

	var out []*model.Part
	for _, id := range section.Keys() {
		entry, ok := entryMap(section, id)
		if !ok {
			p.logger.Warn("skipping part that is not a mapping", zap.String("part", id))
			continue
		}
		alternates, err := parseAlternates(getList(entry, "alternates"))
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", id, err)
		}
		image, err := parseImage(mustGet(entry, "image"))
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", id, err)
		}
		part, err := model.NewPart(model.Part{
			ID:           id,
			PrimaryPN:    getStringOr(entry, "primary_pn", getStringOr(entry, "pn", id)),
			Manufacturer: getStringOr(entry, "manufacturer", ""),
			MPN:          getStringOr(entry, "mpn", ""),
			Description:  getStringOr(entry, "description", ""),
			Alternates:   alternates,
			Fields:       parseFields(mustGet(entry, "fields")),
			Image:        image,
		})
		if err != nil {
			return nil, err
		}
		p.parts[part.ID] = part
		out = append(out, part)
	}
	p.logger.Debug("parsed parts", zap.Int("count", len(out)))
	return out, nil
}

// sourcing is the part-identity block that connectors and cables either
// inherit from a library part or declare inline.
type sourcing struct {
	PrimaryPN    string
	Manufacturer string
	MPN          string
	Description  string
	Alternates   []model.AlternatePart
	Image        *model.ImageSpec
	Fields       map[string]any
}

func sourcingFromPart(part *model.Part) sourcing {
	fields := make(map[string]any, len(part.Fields))
	for k, v := range part.Fields {
		fields[k] = v
	}
	return sourcing{
		PrimaryPN:    part.PrimaryPN,
		Manufacturer: part.Manufacturer,
		MPN:          part.MPN,
		Description:  part.Description,
		Alternates:   append([]model.AlternatePart(nil), part.Alternates...),
		Image:        part.Image,
		Fields:       fields,
	}
}

// resolveSourcing looks up the entry's part reference and overlays every
// sourcing key present on the entry itself. A "pn" that names a library part
// is consumed as the reference; any other "pn" is the primary part number.
func (p *Parser) resolveSourcing(entry *Map, kind, id string) (sourcing, error) {
	pn, hasPN := getString(entry, "pn")
	partRef, hasPartRef := getString(entry, "part")

	var part *model.Part
	pnIsRef := false
	if hasPN {
		part, pnIsRef = p.parts[pn]
	}
	if part == nil && hasPartRef {
		part = p.parts[partRef]
		if part == nil {
			p.logger.Warn("unresolved part reference",
				zap.String(kind, id), zap.String("part", partRef))
		}
	}

	var s sourcing
	if part != nil {
		s = sourcingFromPart(part)
		p.logger.Debug("inherited part", zap.String(kind, id), zap.String("part", part.ID))
	} else {
		s = sourcing{
			PrimaryPN:    "PN-" + id,
			Manufacturer: "Unknown",
			Description:  strings.ToUpper(kind[:1]) + kind[1:] + " " + id,
			Fields:       map[string]any{},
		}
	}

	if hasPN && !pnIsRef {
		s.PrimaryPN = pn
	}
	if v, ok := getString(entry, "primary_pn"); ok {
		s.PrimaryPN = v
	}
	if v, ok := getString(entry, "manufacturer"); ok {
		s.Manufacturer = v
	}
	if v, ok := getString(entry, "mpn"); ok {
		s.MPN = v
	}
	if v, ok := getString(entry, "description"); ok {
		s.Description = v
	}
	if entry.Has("alternates") {
		alts, err := parseAlternates(getList(entry, "alternates"))
		if err != nil {
			return sourcing{}, fmt.Errorf("%s %q: %w", kind, id, err)
		}
		s.Alternates = alts
	}
	if entry.Has("image") {
		img, err := parseImage(mustGet(entry, "image"))
		if err != nil {
			return sourcing{}, fmt.Errorf("%s %q: %w", kind, id, err)
		}
		if img != nil {
			s.Image = img
		}
	}
	for k, v := range parseFields(mustGet(entry, "fields")) {
		s.Fields[k] = v
	}
	return s, nil
}

// sectionMap returns a top-level mapping section, nil when absent or null.
func sectionMap(root *Map, key string) (*Map, error) {
	v, ok := root.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(*Map)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a mapping", key)
	}
	return m, nil
}

// entryMap returns the mapping stored under id. A null entry reads as an
// empty mapping, as in "J1:" with no body.
func entryMap(section *Map, id string) (*Map, bool) {
	v, _ := section.Get(id)
	if v == nil {
		return newMap(), true
	}
	m, ok := v.(*Map)
	return m, ok
}
