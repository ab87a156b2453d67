package previred

import (
	"bytes"
	"context"
	"fmt"
	"indicadores-backend/internal/assert"
	"indicadores-backend/internal/locator"
	"indicadores-backend/internal/telemetry"
	"indicadores-backend/lib/restyutil"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// DefaultURL is the page Previred publishes the monthly indicators on.
const DefaultURL = "https://www.previred.com/indicadores-previsionales/"

// DefaultUserAgent is sent when no other is configured, the page rejects clients that do not
// look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const (
	report_client_fetch = "client.fetch"
)

// Client fetches the indicators page.
type Client struct {
	http *resty.Client
	path string
	tel  telemetry.API
}

// NewClient creates a client for the page at `pageUrl` (DefaultURL when empty), `opts.BaseURL`
// is ignored in favour of the scheme and host of `pageUrl`.
func NewClient(pageUrl string, opts restyutil.Options, output restyutil.InstrumentOutput, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("previred", tel)

	if pageUrl == "" {
		pageUrl = DefaultURL
	}
	parsed, err := url.Parse(pageUrl)
	if err != nil {
		return nil, fmt.Errorf("previred client: parse page url: %w", err)
	}
	opts.BaseURL = fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	httpClient, err := restyutil.New(opts)
	if err != nil {
		return nil, fmt.Errorf("previred client: %w", err)
	}
	restyutil.InstrumentClient(httpClient, nil, output)
	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		http: httpClient,
		path: parsed.RequestURI(),
		tel:  tel,
	}, nil
}

// Page fetches and parses the indicators page.
func (c *Client) Page(ctx context.Context) (locator.Document, error) {
	body, err := restyutil.Body(c.http.R().SetContext(ctx).Get(c.path))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err)
		return locator.Document{}, fmt.Errorf("fetch %s: %w", c.path, err)
	}
	doc, err := locator.FromReader(bytes.NewReader(body))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err)
		return locator.Document{}, fmt.Errorf("fetch %s: %w", c.path, err)
	}
	return doc, nil
}
