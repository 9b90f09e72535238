package model

import "sort"

// TopologyNode is one connector in the harness tree. Each node carries its
// full subtree inline so the tree can be rendered at any depth.
//
// Example:
//
//	J1 -> children: [J2 via W1 -> children: [J3 via W2]]
type TopologyNode struct {
	Connector   string          `json:"connector"`
	PartNumber  string          `json:"partNumber,omitempty"`
	Description string          `json:"description,omitempty"`
	Via         []string        `json:"via,omitempty"` // cables joining this node to its parent
	Wires       int             `json:"wires,omitempty"`
	Cycle       bool            `json:"cycle,omitempty"`
	Children    []*TopologyNode `json:"children,omitempty"`
}

// Topology is the connector-to-connector graph of a harness.
type Topology struct {
	// Roots holds connectors that no connection leads into, each carrying
	// its full subtree.
	Roots []*TopologyNode `json:"roots"`

	// Isolated lists connectors that take part in no connection.
	Isolated []string `json:"isolated,omitempty"`

	// edges maps a connector id to its downstream neighbours.
	edges map[string]map[string]*topologyEdge
}

type topologyEdge struct {
	cables map[string]bool
	wires  int
}

func (e *topologyEdge) via() []string {
	out := make([]string, 0, len(e.cables))
	for c := range e.cables {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// BuildTopology derives the connector tree of doc. Connections are followed
// from their from side to their to side.
func BuildTopology(doc *HarnessDocument) *Topology {
	t := &Topology{edges: make(map[string]map[string]*topologyEdge)}
	incoming := make(map[string]bool)

	for _, c := range doc.Connections {
		if t.edges[c.FromConnector] == nil {
			t.edges[c.FromConnector] = make(map[string]*topologyEdge)
		}
		e := t.edges[c.FromConnector][c.ToConnector]
		if e == nil {
			e = &topologyEdge{cables: make(map[string]bool)}
			t.edges[c.FromConnector][c.ToConnector] = e
		}
		e.cables[c.Cable] = true
		e.wires++
		if c.FromConnector != c.ToConnector {
			incoming[c.ToConnector] = true
		}
	}

	var rootIDs []string
	for _, c := range doc.Connectors {
		_, out := t.edges[c.ID]
		switch {
		case !out && !incoming[c.ID]:
			t.Isolated = append(t.Isolated, c.ID)
		case !incoming[c.ID]:
			rootIDs = append(rootIDs, c.ID)
		}
	}
	sort.Strings(rootIDs)

	visited := make(map[string]bool)
	t.Roots = t.buildTree(doc, rootIDs, visited)

	// Closed loops have no connector without an incoming wire; start each
	// unreached loop at its first connector in document order.
	for _, c := range doc.Connectors {
		if _, out := t.edges[c.ID]; out && !visited[c.ID] {
			t.Roots = append(t.Roots, t.buildTree(doc, []string{c.ID}, visited)...)
		}
	}
	return t
}

// topologyItem holds a pending node along with the connector ids on the path
// from its root, used to break cycles.
type topologyItem struct {
	id        string
	node      *TopologyNode
	ancestors map[string]bool
}

// buildTree expands the tree breadth-first with a queue instead of
// recursion. A child that already appears among its ancestors is emitted as
// a leaf marked Cycle.
func (t *Topology) buildTree(doc *HarnessDocument, rootIDs []string, visited map[string]bool) []*TopologyNode {
	roots := make([]*TopologyNode, 0, len(rootIDs))
	queue := make([]topologyItem, 0, len(rootIDs))

	for _, id := range rootIDs {
		node := newTopologyNode(doc, id)
		roots = append(roots, node)
		queue = append(queue, topologyItem{id: id, node: node, ancestors: map[string]bool{id: true}})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		visited[item.id] = true

		next := t.edges[item.id]
		childIDs := make([]string, 0, len(next))
		for id := range next {
			childIDs = append(childIDs, id)
		}
		sort.Strings(childIDs)

		for _, childID := range childIDs {
			edge := next[childID]
			child := newTopologyNode(doc, childID)
			child.Via = edge.via()
			child.Wires = edge.wires
			item.node.Children = append(item.node.Children, child)

			if item.ancestors[childID] {
				child.Cycle = true
				continue
			}

			ancestors := make(map[string]bool, len(item.ancestors)+1)
			for k := range item.ancestors {
				ancestors[k] = true
			}
			ancestors[childID] = true
			queue = append(queue, topologyItem{id: childID, node: child, ancestors: ancestors})
		}
	}
	return roots
}

func newTopologyNode(doc *HarnessDocument, id string) *TopologyNode {
	node := &TopologyNode{Connector: id}
	if c, ok := doc.Connector(id); ok {
		node.PartNumber = c.PrimaryPN
		node.Description = c.Description
	}
	return node
}
