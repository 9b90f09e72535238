package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// WriteWireViz renders doc as a WireViz input file at outputPath, or stdout
// if "-". images maps connector and cable ids to resolved image paths and
// takes precedence over the src written in the document.
func WriteWireViz(doc *model.HarnessDocument, images map[string]string, outputPath string) error {
	return writeTo(outputPath, func(w io.Writer) error { return EncodeWireViz(w, doc, images) })
}

// EncodeWireViz writes the WireViz YAML for doc to w.
func EncodeWireViz(w io.Writer, doc *model.HarnessDocument, images map[string]string) error {
	root := mappingNode()
	appendPair(root, "metadata", wirevizMetadata(&doc.Metadata))

	connectors := mappingNode()
	for _, c := range doc.Connectors {
		appendPair(connectors, c.ID, wirevizConnector(c, images[c.ID]))
	}
	appendPair(root, "connectors", connectors)

	cables := mappingNode()
	for _, c := range doc.Cables {
		appendPair(cables, c.ID, wirevizCable(c, images[c.ID]))
	}
	appendPair(root, "cables", cables)

	appendPair(root, "connections", wirevizConnections(doc.Connections))

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode WireViz YAML: %w", err)
	}
	return enc.Close()
}

func wirevizMetadata(m *model.DocumentMeta) *yaml.Node {
	n := mappingNode()
	appendString(n, "title", m.Title)
	appendString(n, "pn", m.ID)
	appendString(n, "revision", m.Revision)
	appendString(n, "date", m.Date.String())
	appendString(n, "company", m.Company)
	appendString(n, "description", m.Description)
	return n
}

func wirevizConnector(c *model.Connector, image string) *yaml.Node {
	n := mappingNode()
	appendString(n, "type", string(c.Type))
	appendString(n, "subtype", c.Subtype)
	appendPair(n, "pincount", intNode(c.PinCount))
	if len(c.PinLabels) > 0 {
		labels := flowSeqNode()
		for _, l := range c.PinLabels {
			labels.Content = append(labels.Content, stringNode(l))
		}
		appendPair(n, "pinlabels", labels)
	}
	appendSourcing(n, c.PrimaryPN, c.Manufacturer, c.MPN)
	appendImage(n, c.Image, image)
	appendString(n, "notes", c.Notes)
	return n
}

func wirevizCable(c *model.Cable, image string) *yaml.Node {
	n := mappingNode()
	appendPair(n, "wirecount", intNode(c.WireCount))
	appendString(n, "gauge", c.Gauge)
	if c.Length != nil {
		appendString(n, "length", c.Length.String())
	}
	if c.JacketColor != nil {
		appendString(n, "color", wirevizColor(*c.JacketColor))
	}

	if len(c.Cores) > 0 {
		cores := append([]model.Core(nil), c.Cores...)
		sort.Slice(cores, func(i, j int) bool { return cores[i].Index < cores[j].Index })

		colors := flowSeqNode()
		labels := flowSeqNode()
		labelled := false
		for _, core := range cores {
			colors.Content = append(colors.Content, stringNode(wirevizColor(core.Color)))
			labels.Content = append(labels.Content, stringNode(core.Label))
			labelled = labelled || core.Label != ""
		}
		appendPair(n, "colors", colors)
		if labelled {
			appendPair(n, "wirelabels", labels)
		}
	}
	if c.Shield != nil {
		appendPair(n, "shield", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
	}
	appendSourcing(n, c.PrimaryPN, c.Manufacturer, c.MPN)
	appendImage(n, c.Image, image)
	appendString(n, "notes", c.Notes)
	return n
}

// wirevizColor joins base and stripe the way WireViz expects ("WHBU").
func wirevizColor(c model.ColorSpec) string {
	return c.Base + c.Stripe
}

// wirevizGroup is a run of connections sharing the same connectors and cable.
type wirevizGroup struct {
	from, cable, to string
	conns           []model.Connection
}

func wirevizConnections(conns []model.Connection) *yaml.Node {
	var groups []*wirevizGroup
	index := make(map[[3]string]*wirevizGroup)
	for _, c := range conns {
		key := [3]string{c.FromConnector, c.Cable, c.ToConnector}
		g := index[key]
		if g == nil {
			g = &wirevizGroup{from: c.FromConnector, cable: c.Cable, to: c.ToConnector}
			index[key] = g
			groups = append(groups, g)
		}
		g.conns = append(g.conns, c)
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, g := range groups {
		sort.SliceStable(g.conns, func(i, j int) bool { return g.conns[i].FromPin.Less(g.conns[j].FromPin) })

		from, cores, to := flowSeqNode(), flowSeqNode(), flowSeqNode()
		for _, c := range g.conns {
			from.Content = append(from.Content, pinNode(c.FromPin))
			cores.Content = append(cores.Content, intNode(c.Core+1))
			to.Content = append(to.Content, pinNode(c.ToPin))
		}

		set := &yaml.Node{Kind: yaml.SequenceNode}
		for _, hop := range []struct {
			id   string
			pins *yaml.Node
		}{{g.from, from}, {g.cable, cores}, {g.to, to}} {
			m := mappingNode()
			appendPair(m, hop.id, hop.pins)
			set.Content = append(set.Content, m)
		}
		seq.Content = append(seq.Content, set)
	}
	return seq
}

func appendSourcing(n *yaml.Node, pn, manufacturer, mpn string) {
	appendString(n, "pn", pn)
	appendString(n, "manufacturer", manufacturer)
	appendString(n, "mpn", mpn)
}

func appendImage(n *yaml.Node, img *model.ImageSpec, resolved string) {
	if img == nil && resolved == "" {
		return
	}
	m := mappingNode()
	m.Style = yaml.FlowStyle
	src := resolved
	if src == "" {
		src = img.Src
	}
	appendString(m, "src", src)
	if img != nil {
		appendString(m, "caption", img.Caption)
		appendString(m, "height", img.Height)
	}
	appendPair(n, "image", m)
}

func mappingNode() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode} }

func flowSeqNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func pinNode(p model.Pin) *yaml.Node {
	if p.IsNumber() {
		return intNode(p.Number)
	}
	return stringNode(p.Label)
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, stringNode(key), value)
}

// appendString adds key only when value is set.
func appendString(m *yaml.Node, key, value string) {
	if value != "" {
		appendPair(m, key, stringNode(value))
	}
}
