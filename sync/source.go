package sync

import (
	"github.com/tidwall/gjson"
)

// Source wraps a vendor JSON document and exposes path based reads.
type Source struct {
	data gjson.Result
}

// ParseSource wraps a raw JSON document.
func ParseSource(json string) Source {
	return Source{data: gjson.Parse(json)}
}

// SourceFromResult wraps an already parsed gjson result.
func SourceFromResult(r gjson.Result) Source {
	return Source{data: r}
}

func (s Source) StringForPath(path string) (string, bool) {
	result := s.data.Get(path)
	return result.String(), result.Exists() && (result.Value() != nil)
}

func (s Source) Get(path string) gjson.Result {
	return s.data.Get(path)
}

func (s Source) Raw() string {
	return s.data.Raw
}

// Deal is one CRM opportunity as returned by the RD Station deals API.
// Deals are read fresh on every run and never mutated.
type Deal struct {
	Source Source
}

// ParseDeal wraps a raw deal JSON document.
func ParseDeal(json string) Deal {
	return Deal{Source: ParseSource(json)}
}

// ID returns the deal's stable external identifier.
func (d Deal) ID() string {
	id, _ := d.Source.StringForPath("id")
	return id
}

// Name returns the deal's display name, or "" when absent.
func (d Deal) Name() string {
	name, _ := d.Source.StringForPath("name")
	return name
}

// RawPhone resolves the deal's phone: the first contact's first phone,
// falling back to the designated custom field when configured.
func (d Deal) RawPhone(containers []string, fallbackFieldID string) string {
	if phone, ok := d.Source.StringForPath("contacts.0.phones.0.phone"); ok && phone != "" {
		return phone
	}
	if fallbackFieldID != "" {
		if v, ok := d.CustomFields(containers)[fallbackFieldID]; ok {
			return v.String()
		}
	}
	return ""
}

// CustomFields builds a {custom field id: value} map. The deals API has
// exposed the custom field list under several container names across
// versions, so each candidate container is tried in order and the first
// non-empty list wins. Entries identify their field as "_id", "id" or
// "uuid" depending on the API generation.
func (d Deal) CustomFields(containers []string) map[string]gjson.Result {
	out := map[string]gjson.Result{}
	for _, container := range containers {
		list := d.Source.Get(container)
		if !list.IsArray() || len(list.Array()) == 0 {
			continue
		}
		for _, item := range list.Array() {
			cf := item.Get("custom_field")
			id := cf.Get("_id").String()
			if id == "" {
				id = cf.Get("id").String()
			}
			if id == "" {
				id = cf.Get("uuid").String()
			}
			if id == "" {
				continue
			}
			value := item.Get("value")
			if !value.Exists() || value.Type == gjson.Null {
				continue
			}
			out[id] = value
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}
