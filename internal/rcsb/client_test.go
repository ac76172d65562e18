package rcsb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pdbscope/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.TestConfig().API
	cfg.SearchURL = srv.URL + "/query"
	cfg.GraphQLURL = srv.URL + "/graphql"
	cfg.FilesURL = srv.URL + "/download"
	return NewClient(cfg)
}

func TestSearchIdentifiers(t *testing.T) {
	var got searchRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "pdbscope-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"total_count": 42, "result_set": [
			{"identifier": "4HHB", "score": 1.0},
			{"identifier": "2HHB", "score": 0.9},
			{"identifier": "1A3N", "score": 0.8}
		]}`)
	})

	page, err := c.SearchIdentifiers(context.Background(), "hemoglobin", 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"4HHB", "2HHB", "1A3N"}, page.IDs)
	assert.Equal(t, 42, page.TotalCount)

	want := newSearchRequest("hemoglobin", 20)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "terminal", got.Query.Type)
	assert.Equal(t, "full_text", got.Query.Service)
	assert.Equal(t, "entry", got.ReturnType)
	assert.Equal(t, PageSize, got.RequestOptions.Paginate.Rows)
}

func TestSearchIdentifiers_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	page, err := c.SearchIdentifiers(context.Background(), "zzzz", 0)
	require.NoError(t, err)
	assert.Empty(t, page.IDs)
	assert.Zero(t, page.TotalCount)
}

func TestSearchIdentifiers_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.SearchIdentifiers(context.Background(), "x", 0)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestSearchIdentifiers_Malformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"total_count": "many"`)
	})

	_, err := c.SearchIdentifiers(context.Background(), "x", 0)
	assert.Error(t, err)
}

func TestSearchIdentifiers_Cancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.SearchIdentifiers(ctx, "x", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchTitles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "entries(entry_ids: $ids)")
		assert.ElementsMatch(t, []any{"1CRN", "9XYZ"}, req.Variables["ids"])

		io.WriteString(w, `{"data": {"entries": [
			{"rcsb_id": "1CRN", "polymer_entities": [{"rcsb_polymer_entity": {"pdbx_description": "CRAMBIN"}}]},
			{"rcsb_id": "9XYZ", "polymer_entities": null}
		]}}`)
	})

	titles, err := c.FetchTitles(context.Background(), []string{"1CRN", "9XYZ"})
	require.NoError(t, err)
	assert.Equal(t, []Title{
		{ID: "1CRN", Title: "CRAMBIN"},
		{ID: "9XYZ", Title: UnknownTitle},
	}, titles)
}

func TestFetchTitles_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty id list")
	})

	titles, err := c.FetchTitles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestFetchDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": {"entries": [
			{"rcsb_id": "4HHB",
			 "rcsb_entry_info": {"resolution_combined": [1.74, 2.1], "molecular_weight": 64.74,
			   "experimental_method": "X-ray", "deposited_polymer_monomer_count": 574},
			 "polymer_entities": [{"rcsb_polymer_entity": {"pdbx_description": "Hemoglobin subunit alpha"}}]},
			{"rcsb_id": "2K6D",
			 "rcsb_entry_info": {"resolution_combined": null, "molecular_weight": null,
			   "experimental_method": "NMR", "deposited_polymer_monomer_count": 0},
			 "polymer_entities": [{"rcsb_polymer_entity": null}]}
		]}}`)
	})

	details, err := c.FetchDetails(context.Background(), []string{"4HHB", "2K6D"})
	require.NoError(t, err)

	want := []EntryDetail{
		{
			ID:                  "4HHB",
			Title:               "Hemoglobin subunit alpha",
			Resolution:          Some(1.74),
			MolecularWeight:     Some(64.74),
			ExperimentalMethod:  Some("X-ray"),
			PolymerMonomerCount: Some(574),
		},
		{
			ID:                  "2K6D",
			Title:               UnknownTitle,
			ExperimentalMethod:  Some("NMR"),
			PolymerMonomerCount: Some(0),
		},
	}
	if diff := cmp.Diff(want, details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}

	// A present zero is not the same as absent.
	assert.True(t, details[1].PolymerMonomerCount.Valid)
	assert.False(t, details[1].Resolution.Valid)
}

func TestFetchDetails_GraphQLErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors": [{"message": "bad entry id"}], "data": {"entries": []}}`)
	})

	_, err := c.FetchDetails(context.Background(), []string{"????"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad entry id")
}

func TestDownloadStructure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/1CRN.pdb", r.URL.Path)
		io.WriteString(w, "HEADER    PLANT PROTEIN\nEND\n")
	})

	data, err := c.DownloadStructure(context.Background(), "1crn")
	require.NoError(t, err)
	assert.Contains(t, string(data), "PLANT PROTEIN")
}

func TestDownloadStructure_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.DownloadStructure(context.Background(), "0000")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := config.TestConfig().API
	cfg.SearchURL = srv.URL
	cfg.RequestsPerSecond = 20
	c := NewClient(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.SearchIdentifiers(context.Background(), "x", 0)
		require.NoError(t, err)
	}
	// First request uses the burst, the next two wait ~50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
