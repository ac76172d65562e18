package rcsb

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UnknownTitle stands in for an entry without a polymer description.
const UnknownTitle = "Unknown"

// Title is the short display label of an entry.
type Title struct {
	ID    string
	Title string
}

// EntryDetail is the richer metadata used by the explore surface.
type EntryDetail struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Resolution          Nullable[float64] `json:"resolution"`
	MolecularWeight     Nullable[float64] `json:"molecular_weight"`
	ExperimentalMethod  Nullable[string]  `json:"experimental_method"`
	PolymerMonomerCount Nullable[int]     `json:"polymer_monomer_count"`
}

const titlesQuery = `query ($ids: [String!]!) {
  entries(entry_ids: $ids) {
    rcsb_id
    polymer_entities {
      rcsb_polymer_entity {
        pdbx_description
      }
    }
  }
}`

const detailsQuery = `query ($ids: [String!]!) {
  entries(entry_ids: $ids) {
    rcsb_id
    rcsb_entry_info {
      resolution_combined
      molecular_weight
      experimental_method
      deposited_polymer_monomer_count
    }
    polymer_entities {
      rcsb_polymer_entity {
        pdbx_description
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Entries []graphqlEntry `json:"entries"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type graphqlEntry struct {
	RcsbID        string `json:"rcsb_id"`
	RcsbEntryInfo *struct {
		ResolutionCombined           []float64         `json:"resolution_combined"`
		MolecularWeight              Nullable[float64] `json:"molecular_weight"`
		ExperimentalMethod           Nullable[string]  `json:"experimental_method"`
		DepositedPolymerMonomerCount Nullable[int]     `json:"deposited_polymer_monomer_count"`
	} `json:"rcsb_entry_info"`
	PolymerEntities []struct {
		RcsbPolymerEntity *struct {
			PdbxDescription *string `json:"pdbx_description"`
		} `json:"rcsb_polymer_entity"`
	} `json:"polymer_entities"`
}

func (e graphqlEntry) title() string {
	if len(e.PolymerEntities) == 0 {
		return UnknownTitle
	}
	ent := e.PolymerEntities[0].RcsbPolymerEntity
	if ent == nil || ent.PdbxDescription == nil || strings.TrimSpace(*ent.PdbxDescription) == "" {
		return UnknownTitle
	}
	return *ent.PdbxDescription
}

func (e graphqlEntry) detail() EntryDetail {
	d := EntryDetail{ID: e.RcsbID, Title: e.title()}
	if info := e.RcsbEntryInfo; info != nil {
		if len(info.ResolutionCombined) > 0 {
			d.Resolution = Some(info.ResolutionCombined[0])
		}
		d.MolecularWeight = info.MolecularWeight
		d.ExperimentalMethod = info.ExperimentalMethod
		d.PolymerMonomerCount = info.DepositedPolymerMonomerCount
	}
	return d
}

func (c *Client) entries(ctx context.Context, query string, ids []string) ([]graphqlEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var resp graphqlResponse
	req := graphqlRequest{Query: query, Variables: map[string]any{"ids": ids}}
	if _, err := c.postJSON(ctx, c.graphqlURL, req, &resp); err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}

	if len(resp.Errors) > 0 && len(resp.Data.Entries) == 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errors.New("graphql: " + strings.Join(msgs, "; "))
	}
	if len(resp.Errors) > 0 {
		c.log.Warnf("graphql returned partial data: %s", resp.Errors[0].Message)
	}
	return resp.Data.Entries, nil
}

// FetchTitles resolves display titles for ids in one batched query. Entries
// are returned in response order; callers align them by ID.
func (c *Client) FetchTitles(ctx context.Context, ids []string) ([]Title, error) {
	entries, err := c.entries(ctx, titlesQuery, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Title, 0, len(entries))
	for _, e := range entries {
		out = append(out, Title{ID: e.RcsbID, Title: e.title()})
	}
	return out, nil
}

// FetchDetails resolves resolution, weight, method and monomer count for ids.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]EntryDetail, error) {
	entries, err := c.entries(ctx, detailsQuery, ids)
	if err != nil {
		return nil, err
	}
	out := make([]EntryDetail, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.detail())
	}
	return out, nil
}
