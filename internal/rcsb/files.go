package rcsb

import (
	"context"
	"fmt"
)

// DownloadStructure fetches the PDB-format coordinate file for id.
func (c *Client) DownloadStructure(ctx context.Context, id string) ([]byte, error) {
	data, err := c.get(ctx, c.StructureURL(id))
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", id, err)
	}
	return data, nil
}
