// Package bom folds a harness document into bill-of-materials lines, one
// per distinct primary part number.
package bom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// Category is the kind of component a BOM line was first seen as.
type Category string

const (
	CategoryConnector Category = "connector"
	CategoryCable     Category = "cable"
	CategoryAccessory Category = "accessory"
	CategoryPart      Category = "part"
	CategoryExtra     Category = "extra"
)

// Item is one BOM line.
type Item struct {
	Number       int
	Quantity     float64
	Unit         string
	References   []string // first-seen order
	PartNumber   string
	Manufacturer string
	MPN          string
	Description  string
	Alternates   []model.AlternatePart
	Category     Category

	// MixedUnits is set when a quantity whose unit could not be converted
	// to Unit was summed as is.
	MixedUnits bool
}

// Reference joins the reference designators with ", ".
func (it Item) Reference() string { return strings.Join(it.References, ", ") }

// AlternateLabels renders each alternate as "Manufacturer MPN".
func (it Item) AlternateLabels() []string {
	out := make([]string, len(it.Alternates))
	for i, a := range it.Alternates {
		out[i] = a.Label()
	}
	return out
}

type collector struct {
	byPN map[string]*Item
}

// first registers pn unless it is already known and returns its line.
func (c *collector) first(pn string, cat Category, unit, manufacturer, mpn, description string, alts []model.AlternatePart) *Item {
	if it, ok := c.byPN[pn]; ok {
		return it
	}
	it := &Item{
		PartNumber:   pn,
		Unit:         unit,
		Manufacturer: manufacturer,
		MPN:          mpn,
		Description:  description,
		Alternates:   alts,
		Category:     cat,
	}
	c.byPN[pn] = it
	return it
}

// add sums q into the line, converting length units to the line's unit when
// both are lengths. Other units are summed by value and flag the line.
func (it *Item) add(q model.Quantity) {
	if !strings.EqualFold(q.Unit, it.Unit) {
		if conv, err := q.ToBaseUnit(it.Unit); err == nil {
			q = conv
		} else {
			it.MixedUnits = true
		}
	}
	it.Quantity += q.Value
}

func (it *Item) reference(ref string) {
	if ref != "" {
		it.References = append(it.References, ref)
	}
}

// Extract builds the BOM of doc. Connectors count one each, cables count
// their length (or one when no length is given), accessories count their
// quantity. Library parts not already listed are added once. Lines are
// sorted by part number and numbered from 1.
func Extract(doc *model.HarnessDocument) []Item {
	c := &collector{byPN: make(map[string]*Item)}

	for _, conn := range doc.Connectors {
		it := c.first(conn.PrimaryPN, CategoryConnector, "pcs", conn.Manufacturer, conn.MPN, conn.Description, conn.Alternates)
		it.add(model.Quantity{Value: 1, Unit: "pcs"})
		it.reference(conn.ID)
	}

	for _, cable := range doc.Cables {
		qty := model.Quantity{Value: 1, Unit: "pcs"}
		if cable.Length != nil {
			qty = *cable.Length
		}
		it := c.first(cable.PrimaryPN, CategoryCable, qty.Unit, cable.Manufacturer, cable.MPN, cable.Description, cable.Alternates)
		it.add(qty)
		it.reference(cable.ID)
	}

	for _, acc := range doc.Accessories {
		c.accessory(acc, "")
	}
	for _, conn := range doc.Connectors {
		for _, acc := range conn.AdditionalComponents {
			c.accessory(acc, conn.ID)
		}
	}
	for _, cable := range doc.Cables {
		for _, acc := range cable.AdditionalComponents {
			c.accessory(acc, cable.ID)
		}
	}

	for _, extra := range doc.BOMExtra {
		c.extra(extra)
	}

	for _, part := range doc.Parts {
		if _, ok := c.byPN[part.PrimaryPN]; ok {
			continue
		}
		it := c.first(part.PrimaryPN, CategoryPart, "pcs", part.Manufacturer, part.MPN, part.Description, part.Alternates)
		it.Quantity = 1
		it.reference(part.ID)
	}

	items := make([]Item, 0, len(c.byPN))
	for _, it := range c.byPN {
		items = append(items, *it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PartNumber < items[j].PartNumber })
	for i := range items {
		items[i].Number = i + 1
	}
	return items
}

func (c *collector) accessory(acc model.Accessory, owner string) {
	p := acc.Part
	it := c.first(p.PrimaryPN, CategoryAccessory, acc.Quantity.Unit, p.Manufacturer, p.MPN, p.Description, p.Alternates)
	it.add(acc.Quantity)
	it.reference(owner)
}

// extra adds a free-form bom_extra row. Rows without a part number are
// ignored.
func (c *collector) extra(row map[string]any) {
	pn := text(row["pn"])
	if pn == "" {
		pn = text(row["primary_pn"])
	}
	if pn == "" {
		return
	}
	unit := text(row["unit"])
	if unit == "" {
		unit = "pcs"
	}
	qty := model.Quantity{Value: 1, Unit: unit}
	if v, ok := row["qty"]; ok {
		if q, err := model.NewQuantity(v, unit); err == nil {
			qty = q
		}
	}
	it := c.first(pn, CategoryExtra, unit, text(row["manufacturer"]), text(row["mpn"]), text(row["description"]), nil)
	it.add(qty)
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
