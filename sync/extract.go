package sync

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// MultiSelectMode selects how multi-choice values are flattened for
// comparison. Earlier mapping-table generations compared only the first
// entry, later ones compare the comma-joined list. Both remain available
// so the comparison stays consistent with how the destination records
// were originally written.
type MultiSelectMode string

const (
	MultiSelectJoined MultiSelectMode = "joined"
	MultiSelectFirst  MultiSelectMode = "first"
)

// Extractor reads a single comparable scalar out of a Notion property,
// in either its API response shape (tagged with "type") or its payload
// shape (identified by its single populated key). Malformed or missing
// structure resolves to "", never an error.
type Extractor struct {
	MultiSelect MultiSelectMode
}

// FromAPIProperty extracts a scalar from a type-tagged property object
// as returned by the Notion API.
func (e Extractor) FromAPIProperty(prop gjson.Result) string {
	if !prop.Exists() {
		return ""
	}
	switch prop.Get("type").String() {
	case "title":
		return prop.Get("title.0.text.content").String()
	case "rich_text":
		return prop.Get("rich_text.0.text.content").String()
	case "number":
		return e.numberValue(prop.Get("number"))
	case "select":
		return prop.Get("select.name").String()
	case "multi_select":
		return e.multiSelectValue(prop.Get("multi_select"))
	case "date":
		return prop.Get("date.start").String()
	case "phone_number":
		return prop.Get("phone_number").String()
	}
	return ""
}

// FromPayloadProperty extracts a scalar from an outgoing payload property,
// which carries no type tag. The populated key implies the type.
func (e Extractor) FromPayloadProperty(prop gjson.Result) string {
	if !prop.Exists() || !prop.IsObject() {
		return ""
	}
	if v := prop.Get("title"); v.Exists() {
		return v.Get("0.text.content").String()
	}
	if v := prop.Get("rich_text"); v.Exists() {
		return v.Get("0.text.content").String()
	}
	if v := prop.Get("select"); v.Exists() {
		return v.Get("name").String()
	}
	if v := prop.Get("multi_select"); v.Exists() {
		return e.multiSelectValue(v)
	}
	if v := prop.Get("number"); v.Exists() {
		return e.numberValue(v)
	}
	if v := prop.Get("phone_number"); v.Exists() {
		return v.String()
	}
	if v := prop.Get("date"); v.Exists() {
		return v.Get("start").String()
	}
	return ""
}

func (e Extractor) numberValue(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strconv.FormatFloat(v.Float(), 'f', -1, 64)
}

func (e Extractor) multiSelectValue(v gjson.Result) string {
	items := v.Array()
	if len(items) == 0 {
		return ""
	}
	if e.MultiSelect == MultiSelectFirst {
		return items[0].Get("name").String()
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Get("name").String())
	}
	return strings.Join(names, ", ")
}
