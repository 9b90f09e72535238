package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/StinkyLord/wiredoc/internal/bom"
	"github.com/StinkyLord/wiredoc/internal/wiring"
)

// BOMHeaders are the columns of bom.tsv.
var BOMHeaders = []string{"Item", "Qty", "Unit", "Reference", "PN", "Manufacturer", "MPN", "Description", "Alternates"}

// WiringHeaders are the columns of wiring_table.tsv.
var WiringHeaders = []string{"From", "From Pin", "To", "To Pin", "Cable", "Core", "Label", "Color", "Pair Group", "Notes"}

// FormatQuantity prints whole quantities without decimals and everything
// else with two.
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	return fmt.Sprintf("%.2f", q)
}

// WriteBOM writes items as tab-separated values with a header row.
func WriteBOM(w io.Writer, items []bom.Item) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.Number),
			FormatQuantity(it.Quantity),
			it.Unit,
			it.Reference(),
			it.PartNumber,
			it.Manufacturer,
			it.MPN,
			it.Description,
			strings.Join(it.AlternateLabels(), "; "),
		})
	}
	return writeTSV(w, BOMHeaders, rows)
}

// WriteWiringTable writes rows as tab-separated values with a header row.
func WriteWiringTable(w io.Writer, rows []wiring.Row) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.FromConnector,
			r.FromPin,
			r.ToConnector,
			r.ToPin,
			r.Cable,
			strconv.Itoa(r.Core),
			r.Label,
			r.Color,
			r.PairGroup,
			r.Notes,
		})
	}
	return writeTSV(w, WiringHeaders, out)
}

// WriteBOMFile writes the BOM to outputPath, or stdout if "-".
func WriteBOMFile(outputPath string, items []bom.Item) error {
	return writeTo(outputPath, func(w io.Writer) error { return WriteBOM(w, items) })
}

// WriteWiringTableFile writes the wiring table to outputPath, or stdout if "-".
func WriteWiringTableFile(outputPath string, rows []wiring.Row) error {
	return writeTo(outputPath, func(w io.Writer) error { return WriteWiringTable(w, rows) })
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func writeTSV(w io.Writer, headers []string, rows [][]string) error {
	if _, err := io.WriteString(w, strings.Join(headers, "\t")+"\n"); err != nil {
		return err
	}
	for _, row := range rows {
		for i, cell := range row {
			row[i] = tsvEscaper.Replace(cell)
		}
		if _, err := io.WriteString(w, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
