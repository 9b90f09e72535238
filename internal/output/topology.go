package output

import (
	"github.com/StinkyLord/wiredoc/internal/model"
)

// WriteTopology serialises the connector tree as JSON and writes it to the
// given output path. If outputPath is "-", it writes to stdout.
//
// Example output:
//
//	{
//	  "roots": [
//	    {
//	      "connector": "J1",
//	      "partNumber": "100-004",
//	      "children": [
//	        { "connector": "J2", "via": ["W1"], "wires": 4 }
//	      ]
//	    }
//	  ],
//	  "isolated": ["J9"]
//	}
func WriteTopology(topo *model.Topology, outputPath string) error {
	if topo.Roots == nil {
		// Emit an empty array rather than null
		topo.Roots = []*model.TopologyNode{}
	}
	return writeJSON(outputPath, topo)
}
