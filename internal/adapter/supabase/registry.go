package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/simaogato/fundreport-ingest/internal/domain"
)

var _ domain.RegistryRepository = (*Client)(nil)

// Tickers reads the fund registry table. Rows without a CNPJ or ticker are ignored.
func (c *Client) Tickers(ctx context.Context) (map[string]string, error) {
	query := url.Values{}
	query.Set("select", "cnpj,ticker")

	body, err := c.doWithRetry(ctx, request{
		method: http.MethodGet,
		path:   c.paths.Registry,
		query:  query,
		header: c.restHeader(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fund registry: %w", err)
	}

	var rows []registryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal fund registry: %w", err)
	}

	tickers := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.CNPJ == "" || row.Ticker == "" {
			continue
		}
		tickers[row.CNPJ] = row.Ticker
	}

	c.logger.Info("loaded fund registry", zap.Int("rows", len(rows)), zap.Int("mapped", len(tickers)))
	return tickers, nil
}
