package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StinkyLord/wiredoc/internal/bom"
	"github.com/StinkyLord/wiredoc/internal/model"
)

func readCycloneDX(t *testing.T, doc *model.HarnessDocument) cdxBOM {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "bom.cdx.json")
	if err := WriteCycloneDX(doc, tmp, "1.0.0-test"); err != nil {
		t.Fatalf("WriteCycloneDX failed: %v", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}
	var out cdxBOM
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("cannot unmarshal CycloneDX BOM: %v", err)
	}
	return out
}

// TestCycloneDXSchema verifies that the output is valid JSON and contains the
// required CycloneDX 1.4 top-level fields.
func TestCycloneDXSchema(t *testing.T) {
	doc := makeTestDoc(t)

	tmp := filepath.Join(t.TempDir(), "bom.cdx.json")
	if err := WriteCycloneDX(doc, tmp, "1.0.0-test"); err != nil {
		t.Fatalf("WriteCycloneDX failed: %v", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}

	// Must be valid JSON
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v\nContent:\n%s", err, string(data))
	}

	requiredFields := []string{"bomFormat", "specVersion", "version", "serialNumber", "metadata", "components"}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing required field %q in CycloneDX output", field)
		}
	}

	var bomFormat string
	if err := json.Unmarshal(raw["bomFormat"], &bomFormat); err != nil || bomFormat != "CycloneDX" {
		t.Errorf("bomFormat = %q, want %q", bomFormat, "CycloneDX")
	}

	var specVersion string
	if err := json.Unmarshal(raw["specVersion"], &specVersion); err != nil || specVersion != "1.4" {
		t.Errorf("specVersion = %q, want %q", specVersion, "1.4")
	}

	var serialNumber string
	if err := json.Unmarshal(raw["serialNumber"], &serialNumber); err != nil || !strings.HasPrefix(serialNumber, "urn:uuid:") {
		t.Errorf("serialNumber = %q, want prefix %q", serialNumber, "urn:uuid:")
	}
}

// TestCycloneDXComponents verifies that every BOM line becomes one device
// component carrying its sourcing data as properties.
func TestCycloneDXComponents(t *testing.T) {
	doc := makeTestDoc(t)
	out := readCycloneDX(t, doc)

	if len(out.Components) != len(bom.Extract(doc)) {
		t.Fatalf("component count = %d, want %d", len(out.Components), len(bom.Extract(doc)))
	}

	var molex *cdxComponent
	for i := range out.Components {
		c := &out.Components[i]
		if c.Type != "device" {
			t.Errorf("component %s type = %q, want device", c.Name, c.Type)
		}
		if c.BOMRef != "part:"+c.Name {
			t.Errorf("component %s bom-ref = %q", c.Name, c.BOMRef)
		}
		if c.Name == "100-004" {
			molex = c
		}
	}
	if molex == nil {
		t.Fatal("100-004 not found in components")
	}
	if molex.Supplier == nil || molex.Supplier.Name != "Molex" {
		t.Errorf("100-004 supplier = %+v, want Molex", molex.Supplier)
	}

	props := map[string][]string{}
	for _, p := range molex.Properties {
		props[p.Name] = append(props[p.Name], p.Value)
	}
	if got := props["harness:quantity"]; len(got) != 1 || got[0] != "2" {
		t.Errorf("harness:quantity = %v, want [2]", got)
	}
	if got := props["harness:reference"]; len(got) != 2 || got[0] != "J1" || got[1] != "J2" {
		t.Errorf("harness:reference = %v, want [J1 J2]", got)
	}
	if got := props["harness:mpn"]; len(got) != 1 || got[0] != "43025-0400" {
		t.Errorf("harness:mpn = %v", got)
	}
	if got := props["harness:alternate"]; len(got) != 1 || got[0] != "Amphenol MF-04" {
		t.Errorf("harness:alternate = %v", got)
	}
}

// TestCycloneDXDependencies verifies the harness depends on every part.
func TestCycloneDXDependencies(t *testing.T) {
	out := readCycloneDX(t, makeTestDoc(t))

	if len(out.Dependencies) != 1 {
		t.Fatalf("dependencies count = %d, want 1", len(out.Dependencies))
	}
	root := out.Dependencies[0]
	if root.Ref != "harness:WH-7" {
		t.Errorf("root ref = %q, want harness:WH-7", root.Ref)
	}
	if len(root.DependsOn) != len(out.Components) {
		t.Errorf("dependsOn count = %d, want %d", len(root.DependsOn), len(out.Components))
	}
}

// TestTopologyInOutput verifies that x-harnessTopology appears in the JSON
// output and has the correct recursive structure.
func TestTopologyInOutput(t *testing.T) {
	out := readCycloneDX(t, makeTestDoc(t))

	if len(out.Topology) != 1 {
		t.Fatalf("x-harnessTopology root count = %d, want 1", len(out.Topology))
	}
	j1 := out.Topology[0]
	if j1.Connector != "J1" {
		t.Fatalf("root = %q, want J1", j1.Connector)
	}
	if j1.Ref != "part:100-004" {
		t.Errorf("J1 ref = %q, want part:100-004", j1.Ref)
	}
	if len(j1.Children) != 1 || j1.Children[0].Connector != "J2" {
		t.Fatalf("J1 children = %+v, want [J2]", j1.Children)
	}
	j2 := j1.Children[0]
	if len(j2.Via) != 1 || j2.Via[0] != "W1" {
		t.Errorf("J2 via = %v, want [W1]", j2.Via)
	}
	if len(j2.Children) != 1 || j2.Children[0].Connector != "J3" {
		t.Fatalf("J2 children = %+v, want [J3]", j2.Children)
	}
	if len(j2.Children[0].Children) != 0 {
		t.Errorf("J3 children count = %d, want 0", len(j2.Children[0].Children))
	}
}

// TestCycloneDXStdout verifies that writing to "-" does not error.
func TestCycloneDXStdout(t *testing.T) {
	doc := makeTestDoc(t)
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := WriteCycloneDX(doc, "-", "1.0.0-test")

	w.Close()
	os.Stdout = old

	buf := make([]byte, 1<<20)
	n, _ := r.Read(buf)
	r.Close()

	if err != nil {
		t.Errorf("WriteCycloneDX to stdout failed: %v", err)
	}
	if n == 0 {
		t.Error("no output written to stdout")
	}
}

// TestCycloneDXMetadata verifies the metadata block.
func TestCycloneDXMetadata(t *testing.T) {
	out := readCycloneDX(t, makeTestDoc(t))

	if out.Metadata.Timestamp == "" {
		t.Error("metadata.timestamp is empty")
	}
	if len(out.Metadata.Tools) == 0 {
		t.Fatal("metadata.tools is empty")
	}
	tool := out.Metadata.Tools[0]
	if tool.Name != "wiredoc" {
		t.Errorf("tool name = %q, want %q", tool.Name, "wiredoc")
	}
	if tool.Version != "1.0.0-test" {
		t.Errorf("tool version = %q, want %q", tool.Version, "1.0.0-test")
	}

	h := out.Metadata.Component
	if h.Name != "Sensor Loom" || h.Version != "B" || h.BOMRef != "harness:WH-7" {
		t.Errorf("harness component = %+v", h)
	}
	if h.Supplier == nil || h.Supplier.Name != "Acme" {
		t.Errorf("harness supplier = %+v, want Acme", h.Supplier)
	}
}
