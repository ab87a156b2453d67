package sii

import (
	"bytes"
	"context"
	"fmt"
	"indicadores-backend/internal/assert"
	"indicadores-backend/internal/locator"
	"indicadores-backend/internal/telemetry"
	"indicadores-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is where the SII publishes its "valores y fechas" pages.
const DefaultBaseURL = "https://www.sii.cl"

const (
	report_client_fetch = "client.fetch"
)

// Client fetches and parses the yearly SII pages.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

// NewClient creates a Client, `opts.BaseURL` defaults to DefaultBaseURL.
func NewClient(opts restyutil.Options, output restyutil.InstrumentOutput, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("sii", tel)
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	httpClient, err := restyutil.New(opts)
	if err != nil {
		return nil, fmt.Errorf("sii client: %w", err)
	}
	restyutil.InstrumentClient(httpClient, nil, output)
	telemetry.InstrumentResty(httpClient, tel)

	return &Client{http: httpClient, tel: tel}, nil
}

func (c *Client) fetch(ctx context.Context, path string) (locator.Document, error) {
	body, err := restyutil.Body(c.http.R().SetContext(ctx).Get(path))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, path)
		return locator.Document{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	doc, err := locator.FromReader(bytes.NewReader(body))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, path)
		return locator.Document{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	return doc, nil
}

// DailyUFPage fetches the daily UF grid of `year`.
func (c *Client) DailyUFPage(ctx context.Context, year int) (locator.Document, error) {
	return c.fetch(ctx, fmt.Sprintf("/valores_y_fechas/uf/uf%d.htm", year))
}

// MonthlyUnitsPage fetches the UTM / UTA / IPC table of `year`.
func (c *Client) MonthlyUnitsPage(ctx context.Context, year int) (locator.Document, error) {
	return c.fetch(ctx, fmt.Sprintf("/valores_y_fechas/utm/utm%d.htm", year))
}
