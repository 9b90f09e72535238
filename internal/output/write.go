// Package output serializes harness documents: TSV tables, WireViz YAML,
// a CycloneDX hardware BOM and the connector topology.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// writeTo hands write a buffered writer for outputPath. If outputPath is
// "-", it writes to stdout.
func writeTo(outputPath string, write func(io.Writer) error) error {
	if outputPath == "-" {
		w := bufio.NewWriter(os.Stdout)
		if err := write(w); err != nil {
			return err
		}
		return w.Flush()
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeJSON marshals v as indented JSON and writes it to outputPath (or
// stdout if "-").
func writeJSON(outputPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeTo(outputPath, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}
