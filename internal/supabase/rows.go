package supabase

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Query narrows a row selection. Eq values become "col=eq.value" filters.
type Query struct {
	Eq    map[string]string
	Order string // e.g. "fecha.desc"
}

// SelectRows fetches rows of table visible to the access token into out,
// which must be a pointer to a slice.
func (c *Client) SelectRows(ctx context.Context, table, accessToken string, q Query, out any) error {
	req := c.newRequest(ctx, accessToken).
		SetQueryParam("select", "*").
		SetResult(out)
	for col, val := range q.Eq {
		req.SetQueryParam(col, "eq."+val)
	}
	if q.Order != "" {
		req.SetQueryParam("order", q.Order)
	}

	if _, err := c.doRequest(ctx, http.MethodGet, "/rest/v1/"+table, req, true); err != nil {
		return fmt.Errorf("failed to select rows from %s: %w", table, err)
	}
	return nil
}

// InsertRow appends one row to table. It is never retried so a lost response
// cannot produce a duplicate row.
func (c *Client) InsertRow(ctx context.Context, table, accessToken string, row any) error {
	req := c.newRequest(ctx, accessToken).
		SetHeader("Prefer", "return=minimal").
		SetBody([]any{row})

	if _, err := c.doRequest(ctx, http.MethodPost, "/rest/v1/"+table, req, false); err != nil {
		c.logger.Error("Failed to insert row", zap.String("table", table), zap.Error(err))
		return fmt.Errorf("failed to insert row into %s: %w", table, err)
	}
	return nil
}
