package model

import (
	"regexp"
	"strings"
)

var (
	imageHeight = regexp.MustCompile(`(?i)^\d+(\.\d+)?\s*(px|pt|in|cm|mm|em|rem|%)?$`)
	partID      = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// ImageSpec points at a picture of a part, rendered next to it in diagrams.
type ImageSpec struct {
	Src     string
	Caption string
	Height  string // e.g. "80", "80px", "2.5cm"
}

// NewImageSpec validates an image reference.
func NewImageSpec(img ImageSpec) (*ImageSpec, error) {
	img.Src = strings.TrimSpace(img.Src)
	img.Caption = strings.TrimSpace(img.Caption)
	img.Height = strings.TrimSpace(img.Height)

	p := problems{entity: "image"}
	p.required("src", img.Src)
	if img.Height != "" && !imageHeight.MatchString(img.Height) {
		p.add("height %q must be a number with an optional unit (px, pt, in, cm, mm, em, rem or %%)", img.Height)
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return &img, nil
}

// AlternatePart is a substitute source for a part.
type AlternatePart struct {
	Manufacturer string
	MPN          string
	VendorSKU    string
	URL          string
}

// NewAlternatePart trims and validates an alternate source.
func NewAlternatePart(a AlternatePart) (AlternatePart, error) {
	a.Manufacturer = strings.TrimSpace(a.Manufacturer)
	a.MPN = strings.TrimSpace(a.MPN)
	a.VendorSKU = strings.TrimSpace(a.VendorSKU)
	a.URL = strings.TrimSpace(a.URL)

	p := problems{entity: "alternate"}
	p.required("manufacturer", a.Manufacturer)
	p.required("mpn", a.MPN)
	if a.URL != "" && !strings.HasPrefix(a.URL, "http://") && !strings.HasPrefix(a.URL, "https://") {
		p.add("url %q must start with http:// or https://", a.URL)
	}
	if err := p.err(); err != nil {
		return AlternatePart{}, err
	}
	return a, nil
}

// Label renders an alternate as "Manufacturer MPN".
func (a AlternatePart) Label() string {
	return a.Manufacturer + " " + a.MPN
}

// Part is a purchasable item from the library. Connectors, cables and
// accessories may inherit their sourcing fields from one.
type Part struct {
	ID           string
	PrimaryPN    string
	Manufacturer string
	MPN          string
	Description  string
	Alternates   []AlternatePart
	Fields       map[string]any
	Image        *ImageSpec
}

// NewPart trims and validates a part. The returned value must be treated as
// read-only.
func NewPart(part Part) (*Part, error) {
	part.ID = strings.TrimSpace(part.ID)
	part.PrimaryPN = strings.TrimSpace(part.PrimaryPN)
	part.Manufacturer = strings.TrimSpace(part.Manufacturer)
	part.MPN = strings.TrimSpace(part.MPN)
	part.Description = strings.TrimSpace(part.Description)

	p := problems{entity: `part "` + part.ID + `"`}
	p.required("id", part.ID)
	if part.ID != "" && !partID.MatchString(part.ID) {
		p.add("id %q may only contain letters, digits, '_', '.' and '-'", part.ID)
	}
	p.required("primary_pn", part.PrimaryPN)
	p.required("manufacturer", part.Manufacturer)
	p.required("mpn", part.MPN)
	p.required("description", part.Description)
	if err := p.err(); err != nil {
		return nil, err
	}
	if part.Fields == nil {
		part.Fields = map[string]any{}
	}
	return &part, nil
}

// AccessoryType classifies harness accessories.
type AccessoryType string

const (
	AccessoryHeatshrink  AccessoryType = "heatshrink"
	AccessoryLabelSleeve AccessoryType = "label_sleeve"
	AccessoryConduit     AccessoryType = "conduit"
	AccessoryBraid       AccessoryType = "braid"
	AccessoryTape        AccessoryType = "tape"
	AccessoryGrommet     AccessoryType = "grommet"
	AccessoryClamp       AccessoryType = "clamp"
	AccessoryTieWrap     AccessoryType = "tie_wrap"
	AccessoryFerrule     AccessoryType = "ferrule"
	AccessoryBoot        AccessoryType = "boot"
	AccessoryOther       AccessoryType = "other"
)

var accessoryTypes = []AccessoryType{
	AccessoryHeatshrink, AccessoryLabelSleeve, AccessoryConduit, AccessoryBraid,
	AccessoryTape, AccessoryGrommet, AccessoryClamp, AccessoryTieWrap,
	AccessoryFerrule, AccessoryBoot, AccessoryOther,
}

// ParseAccessoryType maps a case-insensitive name to an AccessoryType,
// falling back to AccessoryOther.
func ParseAccessoryType(s string) AccessoryType {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range accessoryTypes {
		if string(t) == s {
			return t
		}
	}
	return AccessoryOther
}

// Accessory is a consumable attached to the harness or to one of its
// connectors (heatshrink, labels, ties...).
type Accessory struct {
	Type     AccessoryType
	Part     Part
	Quantity Quantity
	Location string
	Notes    string
}

// NewAccessory validates the accessory and its embedded part.
func NewAccessory(a Accessory) (*Accessory, error) {
	if a.Type == "" {
		a.Type = AccessoryOther
	}
	part, err := NewPart(a.Part)
	if err != nil {
		return nil, err
	}
	a.Part = *part
	a.Location = strings.TrimSpace(a.Location)
	a.Notes = strings.TrimSpace(a.Notes)

	p := problems{entity: `accessory "` + a.Part.ID + `"`}
	if a.Quantity.Unit == "" {
		p.add("quantity unit cannot be empty")
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return &a, nil
}
