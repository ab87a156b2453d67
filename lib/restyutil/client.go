package restyutil

import (
	"fmt"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Options configures a client for a single upstream site.
type Options struct {
	BaseURL   string
	UserAgent string
	// zero means no timeout
	Timeout time.Duration
	// zero means no rate limit
	RequestsPerSecond float64
	// BypassCloudflare wraps the transport with a browser-like tls fingerprint.
	BypassCloudflare bool
}

// New creates a resty client that stays on the host of `opts.BaseURL`.
func New(opts Options) (*resty.Client, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("base url %q has no host", opts.BaseURL)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	if opts.BypassCloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsed.Hostname()))
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		// burst >= 1 just means that no requests will be dropped
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return client, nil
}

// Body returns the body of a successful response, any non 2xx status is an error.
func Body(res *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("%s %s: unexpected status %s", res.Request.Method, res.Request.URL, res.Status())
	}
	return res.Body(), nil
}
