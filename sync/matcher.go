package sync

// MatchIndex holds the two per-run lookup tables over the destination
// snapshot: by external deal id and by normalized phone. It is rebuilt
// from scratch every run and never persisted.
type MatchIndex struct {
	byDealID map[string]NotionPage
	byPhone  map[string]NotionPage
}

// BuildMatchIndex indexes the snapshot. Pages without a deal id are not
// reachable by id, pages whose phone normalizes to "" are not reachable
// by phone.
func BuildMatchIndex(pages []NotionPage, extract Extractor, phones PhoneNormalizer, props PropertyNames) MatchIndex {
	index := MatchIndex{
		byDealID: make(map[string]NotionPage, len(pages)),
		byPhone:  make(map[string]NotionPage, len(pages)),
	}
	for _, page := range pages {
		if id := extract.FromAPIProperty(page.Property(props.ExternalID)); id != "" {
			index.byDealID[id] = page
		}
		rawPhone := extract.FromAPIProperty(page.Property(props.Phone))
		if normalized := phones.Normalize(rawPhone); normalized != "" {
			index.byPhone[normalized] = page
		}
	}
	return index
}

// Size returns how many pages are reachable by id and by phone.
func (ix MatchIndex) Size() (byID int, byPhone int) {
	return len(ix.byDealID), len(ix.byPhone)
}

// Match resolves an incoming deal to an existing page: external id
// first, normalized phone second. A nil return means no existing page
// represents this deal and a create is required.
func (ix MatchIndex) Match(dealID string, normalizedPhone string) *NotionPage {
	if dealID != "" {
		if page, ok := ix.byDealID[dealID]; ok {
			return &page
		}
	}
	if normalizedPhone != "" {
		if page, ok := ix.byPhone[normalizedPhone]; ok {
			return &page
		}
	}
	return nil
}
