// Package wiring flattens harness connections into wiring-table rows.
package wiring

import (
	"github.com/StinkyLord/wiredoc/internal/model"
)

// Row is one wire in the wiring table.
type Row struct {
	FromConnector string
	FromPin       string
	ToConnector   string
	ToPin         string
	Cable         string
	Core          int // 1-based, as printed
	Label         string
	Color         string
	PairGroup     string
	Notes         string
}

// Extract returns one row per connection, in document order. Labels come
// from the connection's wire label, then the core label, then the signal
// name. An explicit pair on the connection wins over the core's.
func Extract(doc *model.HarnessDocument) []Row {
	rows := make([]Row, 0, len(doc.Connections))
	for _, c := range doc.Connections {
		row := Row{
			FromConnector: c.FromConnector,
			FromPin:       c.FromPin.String(),
			ToConnector:   c.ToConnector,
			ToPin:         c.ToPin.String(),
			Cable:         c.Cable,
			Core:          c.Core + 1,
			Notes:         c.Notes,
		}

		var core model.Core
		if cable, ok := doc.Cable(c.Cable); ok {
			core, _ = cable.CoreByIndex(c.Core)
		}
		row.Label = core.Label
		row.Color = core.Color.Display
		row.PairGroup = core.PairGroup

		if c.WireLabel != "" {
			row.Label = c.WireLabel
		}
		if row.Label == "" {
			row.Label = c.SignalName
		}
		if c.PairGroup != "" {
			row.PairGroup = c.PairGroup
		}
		rows = append(rows, row)
	}
	return rows
}
