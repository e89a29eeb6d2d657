package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// NotionVersion is the pinned Notion API version header value.
const NotionVersion = "2022-06-28"

// NotionPage is one row of the destination database, kept as the raw
// page JSON so typed property reads stay path based.
type NotionPage struct {
	Source Source
}

// ParseNotionPage wraps a raw page JSON document.
func ParseNotionPage(json string) NotionPage {
	return NotionPage{Source: ParseSource(json)}
}

// ID returns the stable page identifier.
func (p NotionPage) ID() string {
	id, _ := p.Source.StringForPath("id")
	return id
}

// LastEditedTime returns the page's last edited timestamp, used for
// backup auditing only.
func (p NotionPage) LastEditedTime() string {
	t, _ := p.Source.StringForPath("last_edited_time")
	return t
}

// Property returns the named property object, or a non-existent result.
func (p NotionPage) Property(name string) gjson.Result {
	return p.Source.Get("properties." + escapePath(name))
}

// PropertyNamesInOrder returns all property names in document order.
func (p NotionPage) PropertyNamesInOrder() []string {
	var names []string
	p.Source.Get("properties").ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// NotionError is the error body returned by the Notion API.
type NotionError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NotionClient talks to the Notion database API: paginated query, page
// create and page patch.
type NotionClient struct {
	Token      string
	DatabaseID string
	Endpoint   string
	Transport  http.RoundTripper
}

// NewNotionClient builds a client with the shared retry transport.
func NewNotionClient(cfg Config) *NotionClient {
	return &NotionClient{
		Token:      cfg.API.Keys.Notion,
		DatabaseID: cfg.API.Ids.NotionDatabase,
		Endpoint:   cfg.API.Endpoints.Notion,
		Transport:  NewRetryTransport(nil),
	}
}

func (c *NotionClient) builder() *requests.Builder {
	result := requests.
		URL(c.Endpoint).
		Client(&http.Client{Timeout: HTTPRequestTimeout}).
		Bearer(c.Token).
		Header("Notion-Version", NotionVersion)
	if c.Transport != nil {
		result = result.Transport(c.Transport)
	}
	return result
}

// QueryAllPages fetches the full database snapshot, following pagination
// cursors until the store reports no further pages.
func (c *NotionClient) QueryAllPages(ctx context.Context) ([]NotionPage, error) {
	var pages []NotionPage
	cursor := ""
	for {
		body := "{}"
		if cursor != "" {
			body, _ = sjson.Set(body, "start_cursor", cursor)
		}

		notionError := NotionError{}
		var raw string
		err := c.builder().
			Pathf("/v1/databases/%s/query", c.DatabaseID).
			Post().
			BodyBytes([]byte(body)).
			ContentType("application/json").
			ToString(&raw).
			ErrorJSON(&notionError).
			Fetch(ctx)
		if err != nil {
			log.Printf("Notion Error: %+v", notionError)
			return nil, fmt.Errorf("failed to query notion database %w", err)
		}
		if !gjson.Valid(raw) {
			log.Printf("Invalid Notion Response:\n%s", raw)
			return nil, fmt.Errorf("invalid json response from notion query")
		}

		data := gjson.Parse(raw)
		for _, result := range data.Get("results").Array() {
			pages = append(pages, NotionPage{Source: SourceFromResult(result)})
		}
		if !data.Get("has_more").Bool() {
			return pages, nil
		}
		cursor = data.Get("next_cursor").String()
		if cursor == "" {
			return pages, nil
		}
	}
}

// CreatePage creates a database row with the given properties.
func (c *NotionClient) CreatePage(ctx context.Context, props Properties) error {
	body, _ := sjson.SetRaw("{}", "parent.database_id", jsonString(c.DatabaseID))
	body, _ = sjson.SetRaw(body, "properties", props.JSON())

	notionError := NotionError{}
	err := c.builder().
		Path("/v1/pages").
		Post().
		BodyBytes([]byte(body)).
		ContentType("application/json").
		ErrorJSON(&notionError).
		Fetch(ctx)
	if err != nil {
		log.Printf("Notion Error: %+v", notionError)
		return fmt.Errorf("failed to create notion page %w", err)
	}
	return nil
}

// PatchPage updates the given properties on an existing page.
func (c *NotionClient) PatchPage(ctx context.Context, pageID string, props Properties) error {
	body, _ := sjson.SetRaw("{}", "properties", props.JSON())

	notionError := NotionError{}
	err := c.builder().
		Pathf("/v1/pages/%s", pageID).
		Patch().
		BodyBytes([]byte(body)).
		ContentType("application/json").
		ErrorJSON(&notionError).
		Fetch(ctx)
	if err != nil {
		log.Printf("Notion Error: %+v", notionError)
		return fmt.Errorf("failed to update notion page %s %w", pageID, err)
	}
	return nil
}
