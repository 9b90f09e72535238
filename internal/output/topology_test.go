package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/StinkyLord/wiredoc/internal/model"
)

func TestWriteTopology(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	if err := WriteTopology(model.BuildTopology(makeTestDoc(t)), path); err != nil {
		t.Fatalf("WriteTopology failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}

	var topo model.Topology
	if err := json.Unmarshal(data, &topo); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(topo.Roots) != 1 || topo.Roots[0].Connector != "J1" {
		t.Fatalf("roots = %+v, want [J1]", topo.Roots)
	}
	if topo.Roots[0].PartNumber != "100-004" {
		t.Errorf("J1 partNumber = %q", topo.Roots[0].PartNumber)
	}
	if len(topo.Isolated) != 1 || topo.Isolated[0] != "J9" {
		t.Errorf("isolated = %v, want [J9]", topo.Isolated)
	}
}

// TestWriteTopologyEmpty verifies an unwired harness still emits a roots array.
func TestWriteTopologyEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	if err := WriteTopology(&model.Topology{}, path); err != nil {
		t.Fatalf("WriteTopology failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if string(raw["roots"]) != "[]" {
		t.Errorf("roots = %s, want []", raw["roots"])
	}
}
