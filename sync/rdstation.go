package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
)

// RDStationClient fetches deals from the RD Station CRM API.
type RDStationClient struct {
	Token     string
	Endpoint  string
	Transport http.RoundTripper
}

// NewRDStationClient builds a client with the shared retry transport.
func NewRDStationClient(cfg Config) *RDStationClient {
	return &RDStationClient{
		Token:     cfg.API.Keys.RDStation,
		Endpoint:  cfg.API.Endpoints.RDStation,
		Transport: NewRetryTransport(nil),
	}
}

// FetchDealsByStage returns all deals currently in the given pipeline
// stage. The returned order is the API's own.
func (c *RDStationClient) FetchDealsByStage(ctx context.Context, stageID string) ([]Deal, error) {
	builder := requests.
		URL(c.Endpoint).
		Client(&http.Client{Timeout: HTTPRequestTimeout})
	if c.Transport != nil {
		builder = builder.Transport(c.Transport)
	}

	var raw string
	err := builder.
		Path("/api/v1/deals").
		Param("token", c.Token).
		Param("deal_stage_id", stageID).
		ToString(&raw).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals for stage %s %w", stageID, err)
	}
	if !gjson.Valid(raw) {
		log.Printf("Invalid RD Station Response:\n%s", raw)
		return nil, fmt.Errorf("invalid json response from rd station")
	}

	var deals []Deal
	for _, result := range gjson.Parse(raw).Get("deals").Array() {
		deals = append(deals, Deal{Source: SourceFromResult(result)})
	}
	return deals, nil
}
