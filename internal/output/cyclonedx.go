package output

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/StinkyLord/wiredoc/internal/bom"
	"github.com/StinkyLord/wiredoc/internal/model"
)

// ---- CycloneDX 1.4 JSON schema types ----

type cdxBOM struct {
	BOMFormat    string          `json:"bomFormat"`
	SpecVersion  string          `json:"specVersion"`
	Version      int             `json:"version"`
	SerialNumber string          `json:"serialNumber"`
	Metadata     cdxMetadata     `json:"metadata"`
	Components   []cdxComponent  `json:"components"`
	Dependencies []cdxDependency `json:"dependencies,omitempty"`
	Topology     []*cdxTreeNode  `json:"x-harnessTopology,omitempty"`
}

// cdxTreeNode is a recursive node of the x-harnessTopology extension: the
// connector tree, each node carrying its subtree inline.
//
// Example:
//
//	[
//	  { "connector":"J1", "children": [
//	      { "connector":"J2", "via":["W1"], "children": [
//	          { "connector":"J3", "via":["W2"] }
//	      ]}
//	  ]}
//	]
type cdxTreeNode struct {
	Connector string         `json:"connector"`
	Ref       string         `json:"ref,omitempty"`
	Via       []string       `json:"via,omitempty"`
	Children  []*cdxTreeNode `json:"children,omitempty"`
}

type cdxMetadata struct {
	Timestamp string       `json:"timestamp"`
	Tools     []cdxTool    `json:"tools"`
	Component cdxComponent `json:"component"`
}

type cdxTool struct {
	Vendor  string `json:"vendor"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type cdxComponent struct {
	Type        string        `json:"type"`
	BOMRef      string        `json:"bom-ref,omitempty"`
	Supplier    *cdxSupplier  `json:"supplier,omitempty"`
	Name        string        `json:"name"`
	Version     string        `json:"version,omitempty"`
	Description string        `json:"description,omitempty"`
	Properties  []cdxProperty `json:"properties,omitempty"`
}

type cdxSupplier struct {
	Name string `json:"name"`
}

type cdxProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// cdxDependency represents one node in the CycloneDX dependency graph.
// "ref" is the bom-ref of the harness; "dependsOn" lists its parts.
type cdxDependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn"`
}

// WriteCycloneDX serialises the harness BOM as a CycloneDX 1.4 JSON document
// and writes it to the given output path. If outputPath is "-", it writes to
// stdout.
func WriteCycloneDX(doc *model.HarnessDocument, outputPath string, toolVersion string) error {
	return writeJSON(outputPath, buildCycloneDX(doc, bom.Extract(doc), model.BuildTopology(doc), toolVersion))
}

func partRef(pn string) string { return "part:" + pn }

func buildCycloneDX(doc *model.HarnessDocument, items []bom.Item, topo *model.Topology, toolVersion string) cdxBOM {
	harnessRef := "harness:" + doc.Metadata.ID

	cdxComps := make([]cdxComponent, 0, len(items))
	root := cdxDependency{Ref: harnessRef, DependsOn: []string{}}

	for _, it := range items {
		comp := cdxComponent{
			Type:        "device",
			BOMRef:      partRef(it.PartNumber),
			Name:        it.PartNumber,
			Description: it.Description,
		}
		if it.Manufacturer != "" {
			comp.Supplier = &cdxSupplier{Name: it.Manufacturer}
		}

		comp.Properties = append(comp.Properties,
			cdxProperty{Name: "harness:category", Value: string(it.Category)},
			cdxProperty{Name: "harness:quantity", Value: FormatQuantity(it.Quantity)},
			cdxProperty{Name: "harness:unit", Value: it.Unit},
		)
		if it.MPN != "" {
			comp.Properties = append(comp.Properties, cdxProperty{Name: "harness:mpn", Value: it.MPN})
		}
		for _, ref := range it.References {
			comp.Properties = append(comp.Properties, cdxProperty{Name: "harness:reference", Value: ref})
		}
		for _, alt := range it.AlternateLabels() {
			comp.Properties = append(comp.Properties, cdxProperty{Name: "harness:alternate", Value: alt})
		}

		cdxComps = append(cdxComps, comp)
		root.DependsOn = append(root.DependsOn, comp.BOMRef)
	}
	sort.Strings(root.DependsOn)

	var tree []*cdxTreeNode
	if topo != nil {
		for _, n := range topo.Roots {
			tree = append(tree, topologyNodeToCDX(n))
		}
	}

	meta := doc.Metadata
	harness := cdxComponent{
		Type:        "device",
		BOMRef:      harnessRef,
		Name:        meta.Title,
		Version:     meta.Revision,
		Description: meta.Description,
	}
	if meta.Company != "" {
		harness.Supplier = &cdxSupplier{Name: meta.Company}
	}
	for _, k := range []struct{ name, value string }{
		{"harness:id", meta.ID},
		{"harness:date", meta.Date.String()},
		{"harness:author", meta.Author},
		{"harness:project", meta.Project},
	} {
		if k.value != "" {
			harness.Properties = append(harness.Properties, cdxProperty{Name: k.name, Value: k.value})
		}
	}

	return cdxBOM{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.4",
		Version:      1,
		SerialNumber: uuid.New().URN(),
		Metadata: cdxMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Tools: []cdxTool{
				{
					Vendor:  "StinkyLord",
					Name:    "wiredoc",
					Version: toolVersion,
				},
			},
			Component: harness,
		},
		Components:   cdxComps,
		Dependencies: []cdxDependency{root},
		Topology:     tree,
	}
}

// topologyNodeToCDX converts a model.TopologyNode to a cdxTreeNode recursively.
func topologyNodeToCDX(n *model.TopologyNode) *cdxTreeNode {
	node := &cdxTreeNode{
		Connector: n.Connector,
		Via:       n.Via,
	}
	if n.PartNumber != "" {
		node.Ref = partRef(n.PartNumber)
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, topologyNodeToCDX(child))
	}
	return node
}
