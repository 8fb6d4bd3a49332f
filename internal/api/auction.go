package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetTransactions fetches one page of historical sales. Pages start at 1 and
// are served newest first.
func (c *Client) GetTransactions(ctx context.Context, page int) ([]RawTransaction, error) {
	var resp TransactionsResponse
	if err := c.get(ctx, "/auction/transactions/"+strconv.Itoa(page), &resp); err != nil {
		return nil, fmt.Errorf("get transactions page %d: %w", page, err)
	}
	return resp.Result, nil
}

// GetListings fetches one page of live auction listings.
func (c *Client) GetListings(ctx context.Context, page int) ([]RawListing, error) {
	var resp ListingsResponse
	if err := c.get(ctx, "/auction/list/"+strconv.Itoa(page), &resp); err != nil {
		return nil, fmt.Errorf("get listings page %d: %w", page, err)
	}
	return resp.Result, nil
}

// GetPlayerStats fetches display statistics for a player. A 404 is not an
// error: unknown players resolve to a stats value of "Unknown", matching
// how the auction UI treats Bedrock and renamed accounts.
func (c *Client) GetPlayerStats(ctx context.Context, player string) (*PlayerStats, error) {
	// Player names can contain characters that need escaping (Bedrock
	// accounts are prefixed with a dot).
	escaped := url.PathEscape(player)

	var resp StatsResponse
	if err := c.get(ctx, "/stats/"+escaped, &resp); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == 404 {
			return &PlayerStats{Money: "Unknown"}, nil
		}
		return nil, fmt.Errorf("get stats for %s: %w", player, err)
	}
	return &resp.Result, nil
}
