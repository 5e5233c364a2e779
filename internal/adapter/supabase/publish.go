package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

var _ domain.Dispatcher = (*Client)(nil)

// PublishSnapshots posts each snapshot to the ingest edge function, one request per fund.
func (c *Client) PublishSnapshots(ctx context.Context, snapshots []domain.Snapshot) error {
	header := http.Header{}
	header.Set("x-api-key", c.ingestAPIKey)

	for i, s := range snapshots {
		body, err := json.Marshal(toSnapshotEnvelope(s))
		if err != nil {
			return fmt.Errorf("failed to encode snapshot for %s: %w", s.EntityID, err)
		}
		if _, err := c.doWithRetry(ctx, request{
			method: http.MethodPost,
			path:   c.paths.Snapshot,
			header: header,
			body:   body,
		}); err != nil {
			return fmt.Errorf("failed to publish snapshot %d/%d (%s): %w", i+1, len(snapshots), s.EntityID, err)
		}
	}

	c.logger.Info("published snapshots", zap.Int("count", len(snapshots)))
	return nil
}

// PublishValuations upserts the book value history.
func (c *Client) PublishValuations(ctx context.Context, valuations []domain.Valuation) error {
	rows := toValuationRows(valuations)
	if err := publishRows(ctx, c, c.paths.Valuation, rows); err != nil {
		return fmt.Errorf("failed to publish valuations: %w", err)
	}
	c.logger.Info("published valuations", zap.Int("count", len(rows)))
	return nil
}

// PublishDividends upserts the distribution history.
func (c *Client) PublishDividends(ctx context.Context, dividends []domain.Dividend) error {
	rows := toDividendRows(dividends)
	if err := publishRows(ctx, c, c.paths.Dividend, rows); err != nil {
		return fmt.Errorf("failed to publish dividends: %w", err)
	}
	c.logger.Info("published dividends", zap.Int("count", len(rows)))
	return nil
}

// publishRows posts rows to a REST table in batches, merging on the table's
// unique key. Empty input sends nothing.
func publishRows[T any](ctx context.Context, c *Client, path string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	header := c.restHeader()
	header.Set("Prefer", "resolution=merge-duplicates")

	for start := 0; start < len(rows); start += c.batchSize {
		end := min(start+c.batchSize, len(rows))

		body, err := json.Marshal(rows[start:end])
		if err != nil {
			return fmt.Errorf("encode rows %d-%d: %w", start, end, err)
		}
		if _, err := c.doWithRetry(ctx, request{
			method: http.MethodPost,
			path:   path,
			header: header,
			body:   body,
		}); err != nil {
			return fmt.Errorf("rows %d-%d of %d: %w", start, end, len(rows), err)
		}
		c.logger.Debug("posted batch", zap.String("path", path), zap.Int("from", start), zap.Int("to", end))
	}
	return nil
}

func (c *Client) restHeader() http.Header {
	header := http.Header{}
	header.Set("apikey", c.anonKey)
	header.Set("Authorization", "Bearer "+c.anonKey)
	return header
}
