package output

import (
	"testing"

	"github.com/StinkyLord/wiredoc/internal/model"
	"github.com/StinkyLord/wiredoc/internal/parser"
)

// fixture is a three-connector harness: J1 feeds J2 over W1, and J2 feeds
// J3 over W2. J9 is not wired.
const fixture = `
metadata:
  id: WH-7
  title: Sensor Loom
  revision: B
  date: 2024-03-05
  company: Acme
parts:
  MF4:
    pn: 100-004
    manufacturer: Molex
    mpn: 43025-0400
    description: Micro-Fit 4 pin
    alternates: [{manufacturer: Amphenol, mpn: MF-04}]
connectors:
  J1: {pn: MF4, pincount: 4, pinlabels: [VCC, GND, TX, RX], image: {src: j1.png, caption: Host}}
  J2: {pn: MF4, pincount: 4}
  J3: {pincount: 2, type: terminal_block, subtype: screw}
  J9: {pincount: 1}
cables:
  W1:
    pn: 200-001
    manufacturer: Alpha
    mpn: 5154C
    description: 4C 22AWG
    colors: [RD, BK, WHBU, BU]
    wirelabels: [PWR, GND, "", ""]
    gauge: 22
    length: 1.5
    shield: true
  W2: {colors: [RD, BK], length: 300, length_unit: mm}
connections:
  - - J1: [1, 2, 3, 4]
    - W1: [1, 2, 3, 4]
    - J2: [1, 2, 4, 3]
  - - J2: [1, 2]
    - W2: [1, 2]
    - J3: [1, 2]
`

func makeTestDoc(t *testing.T) *model.HarnessDocument {
	t.Helper()
	doc, err := parser.ParseBytes([]byte(fixture))
	if err != nil {
		t.Fatalf("fixture does not parse: %v", err)
	}
	return doc
}
