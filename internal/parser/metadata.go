package parser

import (
	"fmt"
	"time"

	"github.com/StinkyLord/wiredoc/internal/model"
)

var metadataKeys = map[string]bool{
	"id": true, "title": true, "revision": true, "date": true,
	"author": true, "checker": true, "approver": true,
	"company": true, "department": true, "client": true, "project": true, "description": true,
	"scale": true, "units": true, "sheet": true, "total_sheets": true,
	"custom_fields": true,
}

func parseMetadata(v any) (*model.DocumentMeta, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, fmt.Errorf("metadata must be a mapping")
	}

	date, err := parseMetaDate(m)
	if err != nil {
		return nil, err
	}
	sheet, err := getInt(m, "sheet", 1)
	if err != nil {
		return nil, err
	}
	total, err := getInt(m, "total_sheets", 1)
	if err != nil {
		return nil, err
	}

	meta := model.DocumentMeta{
		ID:           getStringOr(m, "id", "UNKNOWN"),
		Title:        getStringOr(m, "title", "Untitled Harness"),
		Revision:     getStringOr(m, "revision", "A"),
		Date:         date,
		Author:       getStringOr(m, "author", ""),
		Checker:      getStringOr(m, "checker", ""),
		Approver:     getStringOr(m, "approver", ""),
		Company:      getStringOr(m, "company", ""),
		Department:   getStringOr(m, "department", ""),
		Client:       getStringOr(m, "client", ""),
		Project:      getStringOr(m, "project", ""),
		Description:  getStringOr(m, "description", ""),
		Scale:        getStringOr(m, "scale", "NTS"),
		Units:        getStringOr(m, "units", "mm"),
		Sheet:        sheet,
		TotalSheets:  total,
		CustomFields: parseFields(mustGet(m, "custom_fields")),
		Extra:        map[string]any{},
	}
	for _, k := range m.Keys() {
		if !metadataKeys[k] {
			v, _ := m.Get(k)
			meta.Extra[k] = plainValue(v)
		}
	}
	return model.NewDocumentMeta(meta)
}

// parseMetaDate leaves the date zero when it is missing so the model
// reports it alongside any other missing field.
func parseMetaDate(m *Map) (model.Date, error) {
	v, ok := m.Get("date")
	if !ok || v == nil {
		return model.Date{}, nil
	}
	if t, ok := v.(time.Time); ok {
		return model.Date{Time: t}, nil
	}
	s, ok := scalarString(v)
	if !ok {
		return model.Date{}, fmt.Errorf("date: invalid value %v", v)
	}
	if s == "" {
		return model.Date{}, nil
	}
	return model.ParseDate(s)
}

func mustGet(m *Map, key string) any {
	v, _ := m.Get(key)
	return v
}
