package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// scalarString renders a decoded scalar as text. Mappings, lists and null
// report false.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case int, int64, uint64, bool:
		return fmt.Sprint(t), true
	case float64:
		return model.FormatNumber(t), true
	case time.Time:
		return t.Format("2006-01-02"), true
	default:
		return "", false
	}
}

// getString returns the trimmed scalar under key; absent, null and empty
// values report false.
func getString(m *Map, key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := scalarString(v)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

func getStringOr(m *Map, key, def string) string {
	if s, ok := getString(m, key); ok {
		return s
	}
	return def
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%q is not a whole number", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%v is not a whole number", v)
	}
}

// getInt returns the integer under key, or def when the key is absent or
// null.
func getInt(m *Map, key string, def int) (int, error) {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return def, nil
	}
	i, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getBool(m *Map, key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func getMap(m *Map, key string) (*Map, bool) {
	v, _ := m.Get(key)
	sub, ok := v.(*Map)
	return sub, ok
}

// getList returns the list under key. A lone scalar is treated as a
// one-element list.
func getList(m *Map, key string) []any {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return nil
	}
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}

func stringList(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		s, _ := scalarString(v)
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// parseQuantity accepts a bare number (defaultUnit), a string like "2.5 m"
// or "10" (defaultUnit), or a mapping with value and unit keys.
func parseQuantity(v any, defaultUnit string) (model.Quantity, error) {
	switch t := v.(type) {
	case int, int64, uint64, float64:
		return model.NewQuantity(t, defaultUnit)
	case string:
		s := strings.TrimSpace(t)
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 {
			return model.NewQuantity(1, s)
		}
		unit := strings.TrimSpace(s[i:])
		if unit == "" {
			unit = defaultUnit
		}
		return model.NewQuantity(s[:i], unit)
	case *Map:
		value, ok := t.Get("value")
		if !ok || value == nil {
			value = 0
		}
		return model.NewQuantity(value, getStringOr(t, "unit", defaultUnit))
	default:
		return model.Quantity{}, fmt.Errorf("%w: unsupported quantity %v", model.ErrInvalidQuantity, v)
	}
}

func parseAlternates(values []any) ([]model.AlternatePart, error) {
	var out []model.AlternatePart
	for i, v := range values {
		m, ok := v.(*Map)
		if !ok {
			return nil, fmt.Errorf("alternates[%d]: must be a mapping", i)
		}
		alt, err := model.NewAlternatePart(model.AlternatePart{
			Manufacturer: getStringOr(m, "manufacturer", ""),
			MPN:          getStringOr(m, "mpn", ""),
			VendorSKU:    getStringOr(m, "spn", getStringOr(m, "vendor_sku", "")),
			URL:          getStringOr(m, "url", ""),
		})
		if err != nil {
			return nil, fmt.Errorf("alternates[%d]: %w", i, err)
		}
		out = append(out, alt)
	}
	return out, nil
}

// parseImage accepts a bare path or a mapping with src, caption and height.
func parseImage(v any) (*model.ImageSpec, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return model.NewImageSpec(model.ImageSpec{Src: t})
	case *Map:
		return model.NewImageSpec(model.ImageSpec{
			Src:     getStringOr(t, "src", ""),
			Caption: getStringOr(t, "caption", ""),
			Height:  getStringOr(t, "height", ""),
		})
	default:
		return nil, fmt.Errorf("image must be a path or a mapping")
	}
}

func parseFields(v any) map[string]any {
	m, ok := v.(*Map)
	if !ok {
		return map[string]any{}
	}
	return m.plain()
}

func optionalColor(m *Map, key string) (*model.ColorSpec, error) {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	c, err := model.ParseColorValue(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &c, nil
}
