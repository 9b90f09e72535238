package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/wiredoc/internal/model"
)

const dialectHeader = `
metadata: {id: X, title: T, revision: A, date: 2024-01-01}
connectors:
  J1: {pincount: 3}
  J2: {pincount: 3}
cables:
  W1: {colors: [RD, BK, BU-WH], wirelabels: [PWR, GND, SIG]}
`

type wireKey struct {
	from, to, cable string
	fromPin, toPin  model.Pin
	core            int
}

func wireKeys(conns []model.Connection) []wireKey {
	out := make([]wireKey, len(conns))
	for i, c := range conns {
		out[i] = wireKey{c.FromConnector, c.ToConnector, c.Cable, c.FromPin, c.ToPin, c.Core}
	}
	return out
}

func TestDialectsProduceSameConnections(t *testing.T) {
	info, err := ParseBytes([]byte(dialectHeader + `
connection_info:
  - {from: J1, pin: 1, cable: W1, core: 1, to: J2}
  - {from: J1, pin: 2, cable: W1, core: 2, to: J2}
  - {from: J1, pin: 3, cable: W1, core: 3, to: J2}
`))
	require.NoError(t, err)

	native, err := ParseBytes([]byte(dialectHeader + `
connections:
  - - J1: [1, 2, 3]
    - W1: [1, 2, 3]
    - J2: [1, 2, 3]
`))
	require.NoError(t, err)

	assert.Equal(t, model.SourceConnectionInfo, info.ConnectionSource)
	assert.Equal(t, model.SourceConnections, native.ConnectionSource)
	assert.ElementsMatch(t, wireKeys(info.Connections), wireKeys(native.Connections))
}

func TestNativeConnectionsTakeCoreLabels(t *testing.T) {
	doc, err := ParseBytes([]byte(dialectHeader + `
connections:
  - - J1: [1, 2]
    - W1: [1, 2]
    - J2: [2, 1]
`))
	require.NoError(t, err)
	require.Len(t, doc.Connections, 2)

	first := doc.Connections[0]
	assert.Equal(t, "PWR", first.WireLabel)
	assert.Equal(t, "1", first.PairGroup)
	assert.Equal(t, model.NumberPin(2), first.ToPin)

	second := doc.Connections[1]
	assert.Equal(t, "GND", second.WireLabel)
	assert.Empty(t, second.PairGroup)
	assert.Equal(t, model.NumberPin(1), second.ToPin)
}

func TestNativeConnectionsSkipIncompleteGroups(t *testing.T) {
	doc, err := ParseBytes([]byte(dialectHeader + `
connections:
  - - J1: [1]
  - - J1: [1]
    - J2: [1]
  - not-a-group
  - - J1: [1, 2, 3]
    - W1: [1, 2]
    - J2: [1, 2, 3]
`))
	require.NoError(t, err)
	// zip stops at the shortest list
	assert.Len(t, doc.Connections, 2)
}

func TestNativeConnectionsScalarAndLabelPins(t *testing.T) {
	doc, err := ParseBytes([]byte(`
metadata: {id: X, title: T, revision: A, date: 2024-01-01}
connectors:
  J1: {pinlabels: [GND, VCC]}
  J2: {pincount: 2}
cables:
  W1: {wirecount: 1}
connections:
  - - J1: VCC
    - W1: 1
    - J2: "2"
`))
	require.NoError(t, err)
	require.Len(t, doc.Connections, 1)
	assert.Equal(t, model.Pin{Label: "VCC"}, doc.Connections[0].FromPin)
	assert.Equal(t, model.NumberPin(2), doc.Connections[0].ToPin)
}

func TestConnectionInfoWinsOverConnections(t *testing.T) {
	doc, err := ParseBytes([]byte(dialectHeader + `
connection_info:
  - {from: J1, pin: 1, cable: W1, core: 1, to: J2, label: +12V, pair: P1, notes: fused}
connections:
  - - J1: [1, 2, 3]
    - W1: [1, 2, 3]
    - J2: [1, 2, 3]
`))
	require.NoError(t, err)
	require.Len(t, doc.Connections, 1)

	c := doc.Connections[0]
	assert.Equal(t, "+12V", c.SignalName)
	assert.Equal(t, "+12V", c.WireLabel)
	assert.Equal(t, "P1", c.PairGroup)
	assert.Equal(t, "fused", c.Notes)
	assert.Equal(t, c.FromPin, c.ToPin)
}

func TestConnectionInfoRejectsZeroCore(t *testing.T) {
	_, err := ParseBytes([]byte(dialectHeader + `
connection_info:
  - {from: J1, pin: 1, cable: W1, core: 0, to: J2}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "core must be >= 1")
}

func TestNoConnections(t *testing.T) {
	doc, err := ParseBytes([]byte(dialectHeader))
	require.NoError(t, err)
	assert.Empty(t, doc.Connections)
	assert.Equal(t, model.SourceNone, doc.ConnectionSource)
}

func TestParseGroupsAndSplices(t *testing.T) {
	doc, err := ParseBytes([]byte(dialectHeader + `
connection_groups:
  - name: power
    description: supply rails
    connections:
      - {from: J1, pin: 1, cable: W1, core: 1, to: J2}
splices:
  - id: S1
    splice_type: solder
    incoming:
      - {from: J1, pin: 2, cable: W1, core: 2, to: J2, to_pin: 3}
notes: Route away from exhaust.
bom_extra:
  - {pn: LOCTITE-243, qty: 1, description: Threadlocker}
`))
	require.NoError(t, err)

	require.Len(t, doc.ConnectionGroups, 1)
	assert.Equal(t, "power", doc.ConnectionGroups[0].Name)
	assert.Len(t, doc.ConnectionGroups[0].Connections, 1)

	require.Len(t, doc.Splices, 1)
	assert.Equal(t, "solder", doc.Splices[0].SpliceType)
	assert.Equal(t, model.NumberPin(3), doc.Splices[0].Incoming[0].ToPin)

	assert.Equal(t, "Route away from exhaust.", doc.Notes)
	require.Len(t, doc.BOMExtra, 1)
	assert.Equal(t, "LOCTITE-243", doc.BOMExtra[0]["pn"])
}

func TestEmptySpliceFails(t *testing.T) {
	_, err := ParseBytes([]byte(dialectHeader + `
splices:
  - {id: S1}
`))
	assert.ErrorIs(t, err, model.ErrValidation)
}
