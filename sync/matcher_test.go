package sync

import (
	"testing"
)

func testPage(id string, rdID string, phone string, status string) NotionPage {
	props := NewProperties()
	if rdID != "" {
		props.SetRaw("ID (RD Station)", `{"type":"rich_text","rich_text":[{"text":{"content":`+jsonString(rdID)+`}}]}`)
	}
	if phone != "" {
		props.SetRaw("Telefone", `{"type":"phone_number","phone_number":`+jsonString(phone)+`}`)
	}
	if status != "" {
		props.SetRaw("Status", `{"type":"multi_select","multi_select":[{"name":`+jsonString(status)+`}]}`)
	}
	return ParseNotionPage(`{"id":` + jsonString(id) + `,"properties":` + props.JSON() + `}`)
}

func testIndex(pages ...NotionPage) MatchIndex {
	cfg := testConfig()
	return BuildMatchIndex(pages,
		Extractor{MultiSelect: MultiSelectJoined},
		NewPhoneNormalizer(PhoneStrategyE164, "Brazil"),
		cfg.Properties)
}

func TestMatchIndex_ByDealID(t *testing.T) {
	index := testIndex(
		testPage("page-1", "A1", "+5579999998888", "Avaliando"),
		testPage("page-2", "A2", "", "Aprovado"),
	)
	match := index.Match("A2", "")
	if match == nil || match.ID() != "page-2" {
		t.Fatalf("expected page-2 by deal id but have %+v", match)
	}
}

func TestMatchIndex_IDTakesPriorityOverPhone(t *testing.T) {
	index := testIndex(
		testPage("page-1", "A1", "+5579999998888", "Avaliando"),
		testPage("page-2", "A2", "+5579111112222", "Aprovado"),
	)
	// deal id wins even when the phone points at another page
	match := index.Match("A1", "+5579111112222")
	if match == nil || match.ID() != "page-1" {
		t.Fatalf("expected page-1 by deal id but have %+v", match)
	}
}

func TestMatchIndex_PhoneFallback(t *testing.T) {
	index := testIndex(testPage("page-1", "A1", "(79) 99999-8888", "Avaliando"))
	// indexed phones are normalized, so a normalized lookup key matches
	match := index.Match("unknown-id", "+5579999998888")
	if match == nil || match.ID() != "page-1" {
		t.Fatalf("expected page-1 by phone but have %+v", match)
	}
}

func TestMatchIndex_SamePhoneDifferentDealIDs(t *testing.T) {
	index := testIndex(testPage("page-1", "A1", "+5579999998888", "Avaliando"))
	first := index.Match("B1", "+5579999998888")
	second := index.Match("B2", "+5579999998888")
	if first == nil || second == nil {
		t.Fatal("expected both deals to match by phone")
	}
	if first.ID() != second.ID() {
		t.Errorf("expected both deals to resolve to the same page but have %s and %s", first.ID(), second.ID())
	}
}

func TestMatchIndex_EmptyKeysNeverMatch(t *testing.T) {
	index := testIndex(testPage("page-1", "", "", "Avaliando"))
	if match := index.Match("", ""); match != nil {
		t.Fatalf("expected no match for empty keys but have %s", match.ID())
	}
	byID, byPhone := index.Size()
	if byID != 0 || byPhone != 0 {
		t.Errorf("expected empty index but have %d by id and %d by phone", byID, byPhone)
	}
}

func TestMatchIndex_NoMatchMeansCreate(t *testing.T) {
	index := testIndex(testPage("page-1", "A1", "+5579999998888", "Avaliando"))
	if match := index.Match("Z9", "+5579000000000"); match != nil {
		t.Fatalf("expected no match but have %s", match.ID())
	}
}
