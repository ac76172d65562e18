package rcsb

import (
	"context"
	"fmt"
)

// IdentifierPage is one page of full-text search hits.
type IdentifierPage struct {
	IDs        []string
	TotalCount int
}

type searchRequest struct {
	Query          searchQuery    `json:"query"`
	ReturnType     string         `json:"return_type"`
	RequestOptions requestOptions `json:"request_options"`
}

type searchQuery struct {
	Type       string       `json:"type"`
	Service    string       `json:"service"`
	Parameters searchParams `json:"parameters"`
}

type searchParams struct {
	Value string `json:"value"`
}

type requestOptions struct {
	Paginate paginate `json:"paginate"`
}

type paginate struct {
	Start int `json:"start"`
	Rows  int `json:"rows"`
}

type searchResponse struct {
	TotalCount int `json:"total_count"`
	ResultSet  []struct {
		Identifier string  `json:"identifier"`
		Score      float64 `json:"score"`
	} `json:"result_set"`
}

func newSearchRequest(query string, offset int) searchRequest {
	return searchRequest{
		Query: searchQuery{
			Type:       "terminal",
			Service:    "full_text",
			Parameters: searchParams{Value: query},
		},
		ReturnType: "entry",
		RequestOptions: requestOptions{
			Paginate: paginate{Start: offset, Rows: PageSize},
		},
	}
}

// SearchIdentifiers runs a full-text query and returns up to PageSize entry
// identifiers starting at offset, in relevance order.
func (c *Client) SearchIdentifiers(ctx context.Context, query string, offset int) (IdentifierPage, error) {
	if offset < 0 {
		offset = 0
	}

	var resp searchResponse
	found, err := c.postJSON(ctx, c.searchURL, newSearchRequest(query, offset), &resp)
	if err != nil {
		return IdentifierPage{}, fmt.Errorf("searching %q: %w", query, err)
	}
	if !found {
		return IdentifierPage{IDs: []string{}}, nil
	}

	ids := make([]string, 0, len(resp.ResultSet))
	for _, r := range resp.ResultSet {
		if r.Identifier != "" {
			ids = append(ids, r.Identifier)
		}
	}
	return IdentifierPage{IDs: ids, TotalCount: resp.TotalCount}, nil
}
