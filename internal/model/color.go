package model

import (
	"fmt"
	"regexp"
	"strings"
)

// StandardColorCodes are the two-letter wire color codes (IEC 60757 plus
// common variants) recognized when splitting concatenated tokens like "BUWH".
var StandardColorCodes = map[string]string{
	"BK": "black",
	"BN": "brown",
	"RD": "red",
	"OG": "orange",
	"YE": "yellow",
	"GN": "green",
	"BU": "blue",
	"BL": "blue",
	"VT": "violet",
	"PK": "pink",
	"GY": "grey",
	"WH": "white",
	"TQ": "turquoise",
	"SR": "silver",
	"GD": "gold",
	"CL": "clear",
	"OL": "olive",
	"CR": "cream",
	"TN": "tan",
	"SL": "slate",
}

var numberedColor = regexp.MustCompile(`^([A-Z]{2})\d+$`)

// ColorSpec is a parsed wire color: a base color with an optional stripe.
type ColorSpec struct {
	Display string // trimmed input as written
	Base    string
	Stripe  string // empty when the wire has no stripe
}

// ParseColor normalizes a free-form color token. Rules are applied in order
// and the first match wins:
//
//	"BU-WH"  hyphenated      base=BU stripe=WH
//	"BU12"   numbered        base=BU (digits are a circuit number)
//	"BUWH"   concatenated    base=BU stripe=WH, both must be standard codes
//	"BK"     2-3 letters     base=BK
//	other    fallback        base=whole token
func ParseColor(s string) (ColorSpec, error) {
	display := strings.TrimSpace(s)
	if display == "" {
		return ColorSpec{}, fmt.Errorf("%w: empty color specification", ErrInvalidColor)
	}
	up := strings.ToUpper(display)

	if strings.Contains(up, "-") {
		parts := strings.Split(up, "-")
		return ColorSpec{Display: display, Base: parts[0], Stripe: parts[1]}, nil
	}

	if m := numberedColor.FindStringSubmatch(up); m != nil {
		return ColorSpec{Display: display, Base: m[1]}, nil
	}

	if len(up) == 4 {
		_, baseOK := StandardColorCodes[up[:2]]
		_, stripeOK := StandardColorCodes[up[2:]]
		if baseOK && stripeOK {
			return ColorSpec{Display: display, Base: up[:2], Stripe: up[2:]}, nil
		}
	}

	return ColorSpec{Display: display, Base: up}, nil
}

// ParseColorValue accepts a decoded YAML value and rejects anything that is
// not a string.
func ParseColorValue(v any) (ColorSpec, error) {
	s, ok := v.(string)
	if !ok {
		return ColorSpec{}, fmt.Errorf("%w: %v is not a string", ErrInvalidColor, v)
	}
	return ParseColor(s)
}

func (c ColorSpec) String() string { return c.Display }

// HasStripe reports whether the color carries a stripe.
func (c ColorSpec) HasStripe() bool { return c.Stripe != "" }

// IsZero reports whether c was never parsed.
func (c ColorSpec) IsZero() bool { return c.Display == "" }
