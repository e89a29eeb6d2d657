package sync

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultDealName is the placeholder name for deals without one.
const DefaultDealName = "Negociação sem nome"

// MultiSelectSeparator is the split convention for values that carry
// several choices in one string. Kept for round-trip compatibility with
// the joined form the extractor produces.
const MultiSelectSeparator = ", "

// PropertyMapper translates a deal plus a target status label into the
// full candidate Notion property payload. Empty or blank source values
// are omitted entirely so existing destination values are never
// overwritten with nothing.
type PropertyMapper struct {
	Fields        map[string]FieldMapping
	Containers    []string
	Properties    PropertyNames
	StatusType    string
	FallbackField string
	Phones        PhoneNormalizer
}

// NewPropertyMapper builds a mapper from the run configuration.
func NewPropertyMapper(cfg Config) PropertyMapper {
	return PropertyMapper{
		Fields:        cfg.Fields,
		Containers:    cfg.Containers,
		Properties:    cfg.Properties,
		StatusType:    cfg.StatusType,
		FallbackField: cfg.Phone.FallbackField,
		Phones:        NewPhoneNormalizer(PhoneStrategy(cfg.Phone.Strategy), cfg.Phone.Country),
	}
}

// Build produces the candidate property payload for one deal.
func (m PropertyMapper) Build(deal Deal, status string) Properties {
	props := NewProperties()

	name := deal.Name()
	if strings.TrimSpace(name) == "" {
		name = DefaultDealName
	}
	props.SetRaw(m.Properties.Name, textProperty("title", name))
	props.SetRaw(m.Properties.ExternalID, textProperty("rich_text", deal.ID()))

	if m.StatusType == "select" {
		props.SetRaw(m.Properties.Status, `{"select":{"name":`+jsonString(status)+`}}`)
	} else {
		props.SetRaw(m.Properties.Status, `{"multi_select":[{"name":`+jsonString(status)+`}]}`)
	}

	// phone is always present, explicitly null when nothing resolves
	raw := deal.RawPhone(m.Containers, m.FallbackField)
	if raw == "" {
		props.SetRaw(m.Properties.Phone, `{"phone_number":null}`)
	} else {
		normalized := m.Phones.Normalize(raw)
		if !m.Phones.Plausible(normalized) {
			log.Printf("Warning: phone %q for deal %q normalized to %q which does not look valid", raw, deal.ID(), normalized)
		}
		props.SetRaw(m.Properties.Phone, `{"phone_number":`+jsonString(normalized)+`}`)
	}

	customFields := deal.CustomFields(m.Containers)
	for fieldID, mapping := range m.Fields {
		if mapping.Name == m.Properties.ExternalID {
			continue // already set from the deal id
		}
		value, ok := customFields[fieldID]
		if !ok {
			continue
		}
		if strings.TrimSpace(value.String()) == "" {
			continue
		}
		formatted, ok := FormatProperty(value, mapping.Type)
		if !ok {
			log.Printf("Warning: could not format %q as %q for property %q, field skipped", value.String(), mapping.Type, mapping.Name)
			continue
		}
		props.SetRaw(mapping.Name, formatted)
	}

	return props
}

// FormatProperty renders a source value as a raw Notion property JSON
// value of the declared type. The second return is false when the value
// cannot be represented, in which case the field must be omitted.
func FormatProperty(value gjson.Result, propertyType string) (string, bool) {
	switch propertyType {
	case "text", "rich_text":
		return textProperty("rich_text", value.String()), true
	case "title":
		return textProperty("title", value.String()), true
	case "number":
		f, ok := ParseDecimal(value.String())
		if !ok {
			return "", false
		}
		return `{"number":` + strconv.FormatFloat(f, 'f', -1, 64) + `}`, true
	case "select":
		return `{"select":{"name":` + jsonString(value.String()) + `}}`, true
	case "multi_select":
		parts := strings.Split(value.String(), MultiSelectSeparator)
		names := make([]string, 0, len(parts))
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			names = append(names, `{"name":`+jsonString(part)+`}`)
		}
		if len(names) == 0 {
			return "", false
		}
		return `{"multi_select":[` + strings.Join(names, ",") + `]}`, true
	case "date":
		return `{"date":{"start":` + jsonString(value.String()) + `}}`, true
	case "phone_number":
		return `{"phone_number":` + jsonString(value.String()) + `}`, true
	}
	return "", false
}

func textProperty(kind string, content string) string {
	return `{"` + kind + `":[{"text":{"content":` + jsonString(content) + `}}]}`
}

var (
	nonNumericPattern = regexp.MustCompile(`[^\d.\-]`)
	decimalPattern    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	thousandsPattern  = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

var emptyDecimalSentinels = map[string]bool{
	"": true, "-": true, "–": true, "—": true,
	"N/A": true, "n/a": true, "NA": true, "null": true, "None": true,
}

// ParseDecimal parses a Brazilian-formatted number string. When both "."
// and "," occur, "." is the thousands separator and "," the decimal
// separator; a lone "," is the decimal separator. Currency markers and
// spaces are stripped. Returns false for anything that does not reduce
// to an optionally signed decimal.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if emptyDecimalSentinels[s] {
		return 0, false
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	case thousandsPattern.MatchString(s):
		// a lone "." in grouped triples is a thousands separator
		s = strings.ReplaceAll(s, ".", "")
	}
	cleaned := nonNumericPattern.ReplaceAllString(s, "")
	if !decimalPattern.MatchString(cleaned) {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
