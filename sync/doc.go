package sync

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// FieldDocRow represents a single row in the field mapping documentation.
type FieldDocRow struct {
	PropertyName string // Destination property (e.g. "Idade")
	PropertyType string // Destination type (e.g. "number")
	RDFieldID    string // RD custom field id, empty for built-in rows
	IsBuiltin    bool   // Whether the pipeline always writes this property
	Anchor       string // Stable kebab-case anchor for markdown links
}

// FieldDocumentation contains all mapping documentation for one configuration.
type FieldDocumentation struct {
	DatabaseID string
	Rows       []FieldDocRow
}

// GenerateFieldDocumentation builds documentation rows from a configuration.
// Built-in properties come first, then custom mappings sorted by property name.
func GenerateFieldDocumentation(cfg Config) FieldDocumentation {
	doc := FieldDocumentation{
		DatabaseID: cfg.API.Ids.NotionDatabase,
		Rows:       []FieldDocRow{},
	}

	builtin := []struct {
		name string
		typ  string
	}{
		{cfg.Properties.Name, "title"},
		{cfg.Properties.ExternalID, "rich_text"},
		{cfg.Properties.Phone, "phone_number"},
		{cfg.Properties.Status, cfg.StatusType},
	}
	for _, b := range builtin {
		doc.Rows = append(doc.Rows, FieldDocRow{
			PropertyName: b.name,
			PropertyType: b.typ,
			IsBuiltin:    true,
			Anchor:       strcase.ToKebab(b.name),
		})
	}

	for fieldID, mapping := range cfg.Fields {
		doc.Rows = append(doc.Rows, FieldDocRow{
			PropertyName: mapping.Name,
			PropertyType: mapping.Type,
			RDFieldID:    fieldID,
			Anchor:       strcase.ToKebab(mapping.Name),
		})
	}

	sort.SliceStable(doc.Rows, func(i, j int) bool {
		if doc.Rows[i].IsBuiltin != doc.Rows[j].IsBuiltin {
			return doc.Rows[i].IsBuiltin
		}
		return doc.Rows[i].PropertyName < doc.Rows[j].PropertyName
	})

	return doc
}

// CSV renders the documentation as a CSV document.
func (d FieldDocumentation) CSV() (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Property", "Type", "RD Field ID", "Builtin"}); err != nil {
		return "", err
	}
	for _, row := range d.Rows {
		builtin := ""
		if row.IsBuiltin {
			builtin = "yes"
		}
		if err := writer.Write([]string{row.PropertyName, row.PropertyType, row.RDFieldID, builtin}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Markdown renders the documentation as a markdown table.
func (d FieldDocumentation) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Field mappings for database %s\n\n", d.DatabaseID)
	b.WriteString("| Property | Type | RD Field ID | Builtin |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, row := range d.Rows {
		builtin := ""
		if row.IsBuiltin {
			builtin = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.PropertyName, row.PropertyType, row.RDFieldID, builtin)
	}
	return b.String()
}
