package storage

import (
	"time"

	"github.com/pders01/pdbscope/internal/rcsb"
)

type cachedDetail struct {
	Detail    rcsb.EntryDetail `json:"detail"`
	FetchedAt time.Time        `json:"fetched_at"`
}

type cachedTitle struct {
	Title     string    `json:"title"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Details int
	Titles  int
	Expired int
}
