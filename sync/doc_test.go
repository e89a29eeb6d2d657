package sync

import (
	"strings"
	"testing"
)

func TestGenerateFieldDocumentation(t *testing.T) {
	cfg := testConfig()
	cfg.API.Ids.NotionDatabase = "db-1"
	doc := GenerateFieldDocumentation(cfg)

	if doc.DatabaseID != "db-1" {
		t.Errorf("Expected database 'db-1' but have %q", doc.DatabaseID)
	}
	if len(doc.Rows) != 4+len(cfg.Fields) {
		t.Fatalf("Expected the builtin rows plus one per mapping but have %d", len(doc.Rows))
	}

	for i, row := range doc.Rows {
		if i < 4 && !row.IsBuiltin {
			t.Errorf("Expected builtin rows first but row %d is %+v", i, row)
		}
		if i >= 4 && row.IsBuiltin {
			t.Errorf("Expected custom rows last but row %d is %+v", i, row)
		}
	}

	custom := doc.Rows[4:]
	for i := 1; i < len(custom); i++ {
		if custom[i-1].PropertyName > custom[i].PropertyName {
			t.Errorf("Expected custom rows sorted by name but have %q before %q",
				custom[i-1].PropertyName, custom[i].PropertyName)
		}
	}

	var idade FieldDocRow
	for _, row := range doc.Rows {
		if row.PropertyName == "Idade" {
			idade = row
		}
	}
	if idade.RDFieldID != "field-idade" || idade.Anchor != "idade" {
		t.Errorf("Expected the Idade mapping row but have %+v", idade)
	}
}

func TestFieldDocumentationRenderers(t *testing.T) {
	doc := GenerateFieldDocumentation(testConfig())

	csvOut, err := doc.CSV()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(csvOut, "Property,Type,RD Field ID,Builtin\n") {
		t.Errorf("Expected the CSV header but have %q", csvOut)
	}
	if !strings.Contains(csvOut, "Telefone,phone_number,,yes") {
		t.Errorf("Expected the builtin phone row but have %q", csvOut)
	}

	markdown := doc.Markdown()
	if !strings.Contains(markdown, "| Property | Type | RD Field ID | Builtin |") {
		t.Errorf("Expected the markdown table header but have %q", markdown)
	}
	if !strings.Contains(markdown, "| Idade | number | field-idade |  |") {
		t.Errorf("Expected the Idade row but have %q", markdown)
	}
}
