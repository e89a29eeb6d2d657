package sync

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Properties is a candidate Notion property payload under construction.
// It is held as a JSON document so the same gjson extraction used on API
// responses also works on payloads about to be sent.
type Properties struct {
	json string
}

// NewProperties returns an empty property set.
func NewProperties() Properties {
	return Properties{json: "{}"}
}

// ParseProperties wraps an existing properties JSON object.
func ParseProperties(json string) Properties {
	return Properties{json: json}
}

// JSON returns the payload as a JSON object.
func (p Properties) JSON() string {
	if p.json == "" {
		return "{}"
	}
	return p.json
}

// SetRaw sets a property to a raw JSON value.
func (p *Properties) SetRaw(name string, raw string) {
	updated, err := sjson.SetRaw(p.JSON(), escapePath(name), raw)
	if err != nil {
		return
	}
	p.json = updated
}

// Delete removes a property from the payload.
func (p *Properties) Delete(name string) {
	updated, err := sjson.Delete(p.JSON(), escapePath(name))
	if err != nil {
		return
	}
	p.json = updated
}

// Has reports whether the payload contains the named property.
func (p Properties) Has(name string) bool {
	return p.Get(name).Exists()
}

// Get returns the named property value.
func (p Properties) Get(name string) gjson.Result {
	return gjson.Get(p.JSON(), escapePath(name))
}

// Names returns the property names in document order.
func (p Properties) Names() []string {
	var names []string
	gjson.Parse(p.JSON()).ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// Len returns the number of properties in the payload.
func (p Properties) Len() int {
	return len(p.Names())
}

// escapePath escapes gjson/sjson path metacharacters so Notion property
// names like "Recebe Bolsa Família?" address a single literal key.
func escapePath(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// jsonString encodes s as a JSON string literal.
func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
