package sync

import (
	"testing"

	"github.com/tidwall/gjson"
)

func apiProp(json string) gjson.Result {
	return gjson.Parse(json)
}

func TestExtractor_FromAPIProperty(t *testing.T) {
	e := Extractor{MultiSelect: MultiSelectJoined}
	cases := []struct {
		name     string
		json     string
		expected string
	}{
		{"title", `{"type":"title","title":[{"text":{"content":"João"}}]}`, "João"},
		{"rich text", `{"type":"rich_text","rich_text":[{"text":{"content":"A1"}}]}`, "A1"},
		{"empty rich text", `{"type":"rich_text","rich_text":[]}`, ""},
		{"number", `{"type":"number","number":30}`, "30"},
		{"decimal number", `{"type":"number","number":1234.56}`, "1234.56"},
		{"null number", `{"type":"number","number":null}`, ""},
		{"select", `{"type":"select","select":{"name":"Sim"}}`, "Sim"},
		{"null select", `{"type":"select","select":null}`, ""},
		{"multi select", `{"type":"multi_select","multi_select":[{"name":"Avaliando"},{"name":"Aprovado"}]}`, "Avaliando, Aprovado"},
		{"empty multi select", `{"type":"multi_select","multi_select":[]}`, ""},
		{"date", `{"type":"date","date":{"start":"2025-09-17"}}`, "2025-09-17"},
		{"phone", `{"type":"phone_number","phone_number":"+5579999998888"}`, "+5579999998888"},
		{"null phone", `{"type":"phone_number","phone_number":null}`, ""},
		{"unknown type", `{"type":"files","files":[]}`, ""},
		{"malformed", `{"title":"oops"}`, ""},
	}
	for _, c := range cases {
		if have := e.FromAPIProperty(apiProp(c.json)); have != c.expected {
			t.Errorf("%s: expected %q but have %q", c.name, c.expected, have)
		}
	}
}

func TestExtractor_FromPayloadProperty(t *testing.T) {
	e := Extractor{MultiSelect: MultiSelectJoined}
	cases := []struct {
		name     string
		json     string
		expected string
	}{
		{"title", `{"title":[{"text":{"content":"João"}}]}`, "João"},
		{"rich text", `{"rich_text":[{"text":{"content":"A1"}}]}`, "A1"},
		{"number", `{"number":25}`, "25"},
		{"select", `{"select":{"name":"Sim"}}`, "Sim"},
		{"multi select", `{"multi_select":[{"name":"Avaliando"}]}`, "Avaliando"},
		{"phone", `{"phone_number":"+5579999998888"}`, "+5579999998888"},
		{"null phone", `{"phone_number":null}`, ""},
		{"date", `{"date":{"start":"2025-09-17"}}`, "2025-09-17"},
		{"empty object", `{}`, ""},
		{"not an object", `"just a string"`, ""},
	}
	for _, c := range cases {
		if have := e.FromPayloadProperty(apiProp(c.json)); have != c.expected {
			t.Errorf("%s: expected %q but have %q", c.name, c.expected, have)
		}
	}
}

// Both shapes of the same value must extract identically, otherwise the
// differ would report phantom changes on every run.
func TestExtractor_ShapesAgree(t *testing.T) {
	e := Extractor{MultiSelect: MultiSelectJoined}
	pairs := []struct {
		name    string
		api     string
		payload string
	}{
		{"text", `{"type":"rich_text","rich_text":[{"text":{"content":"Aracaju"}}]}`, `{"rich_text":[{"text":{"content":"Aracaju"}}]}`},
		{"number", `{"type":"number","number":1234.56}`, `{"number":1234.56}`},
		{"select", `{"type":"select","select":{"name":"Sim"}}`, `{"select":{"name":"Sim"}}`},
		{"multi select", `{"type":"multi_select","multi_select":[{"name":"A"},{"name":"B"}]}`, `{"multi_select":[{"name":"A"},{"name":"B"}]}`},
		{"missing phone", `{"type":"phone_number","phone_number":null}`, `{"phone_number":null}`},
	}
	for _, p := range pairs {
		apiValue := e.FromAPIProperty(apiProp(p.api))
		payloadValue := e.FromPayloadProperty(apiProp(p.payload))
		if apiValue != payloadValue {
			t.Errorf("%s: api shape %q != payload shape %q", p.name, apiValue, payloadValue)
		}
	}
}

func TestExtractor_MultiSelectFirst(t *testing.T) {
	e := Extractor{MultiSelect: MultiSelectFirst}
	prop := apiProp(`{"type":"multi_select","multi_select":[{"name":"Avaliando"},{"name":"Aprovado"}]}`)
	if have := e.FromAPIProperty(prop); have != "Avaliando" {
		t.Errorf("expected first entry only but have %q", have)
	}
}

func TestProperties_EscapedNames(t *testing.T) {
	props := NewProperties()
	props.SetRaw("Recebe Bolsa Família?", `{"select":{"name":"Sim"}}`)
	props.SetRaw("OBS: entrada? FGTS? FGTS Futuro? Limite Cartão?", `{"rich_text":[{"text":{"content":"ok"}}]}`)

	if have := props.Get("Recebe Bolsa Família?").Get("select.name").String(); have != "Sim" {
		t.Errorf("expected escaped name round trip but have %q", have)
	}
	if !props.Has("OBS: entrada? FGTS? FGTS Futuro? Limite Cartão?") {
		t.Error("expected long punctuated name to be addressable")
	}

	names := props.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names but have %d: %v", len(names), names)
	}
	if names[0] != "Recebe Bolsa Família?" {
		t.Errorf("expected literal name preserved but have %q", names[0])
	}

	props.Delete("Recebe Bolsa Família?")
	if props.Has("Recebe Bolsa Família?") {
		t.Error("expected property to be deleted")
	}
}
