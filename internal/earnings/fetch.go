package earnings

import (
	"context"
	"earningsdump/internal/components/assert"
	"earningsdump/internal/components/telemetry"
	"fmt"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_fetcher_fetch  = "fetcher.fetch"
	report_fetcher_exists = "fetcher.exists"
)

const (
	DefaultAttempts  = 2
	DefaultTimeout   = 30 * time.Second
	DefaultCookie    = "foo=bar"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

// DocumentFetcher retrieves the raw markup of an earnings page.
type DocumentFetcher interface {
	// Fetch returns the page body, or a *FetchError once every attempt failed.
	Fetch(ctx context.Context, url string) (string, error)
	// Exists probes whether a page has been published.
	Exists(ctx context.Context, url string) bool
}

// ExistencePolicy decides from the result of a HEAD probe whether a page exists.
// `err` is the transport error, if any, in which case `status` is 0.
type ExistencePolicy func(status int, err error) bool

// CoarseExistence only treats an explicit 404 as "does not exist". Redirects,
// server errors and transport failures all count as existing, so a day with
// a broken server is attempted (and fails in Fetch) instead of being skipped.
func CoarseExistence(status int, err error) bool {
	if err != nil {
		return true
	}
	return status != http.StatusNotFound
}

// StrictExistence only treats a 2xx response as "exists".
func StrictExistence(status int, err error) bool {
	if err != nil {
		return false
	}
	return status >= 200 && status < 300
}

type FetcherOptions struct {
	// Attempts is the maximum number of downloads per page, defaults to DefaultAttempts.
	Attempts int
	// Timeout bounds every single request, defaults to DefaultTimeout.
	Timeout time.Duration
	// Cookie is sent on every request, defaults to DefaultCookie.
	Cookie string
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// CloudflareBypass wraps the transport to get past cloudflare's browser check.
	CloudflareBypass bool
	// Existence defaults to CoarseExistence.
	Existence ExistencePolicy
	// Output, if set, receives a dump of every request/response pair.
	Output telemetry.MessageOutput
}

// Fetcher is the resty backed DocumentFetcher. It keeps no state between calls.
type Fetcher struct {
	http      *resty.Client
	attempts  int
	existence ExistencePolicy
	tel       telemetry.API
}

func NewFetcher(tel telemetry.API, opts FetcherOptions) *Fetcher {
	assert.NotNil(tel)

	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cookie == "" {
		opts.Cookie = DefaultCookie
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Existence == nil {
		opts.Existence = CoarseExistence
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("accept-language", "en")
	httpClient.SetHeader("cookie", opts.Cookie)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &Fetcher{
		http:      httpClient,
		attempts:  opts.Attempts,
		existence: opts.Existence,
		tel:       tel,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	attempt := 0
	for attempt < f.attempts {
		attempt++

		res, err := f.http.R().
			SetContext(ctx).
			Get(url)
		if err == nil && res.IsSuccess() {
			return res.String(), nil
		}
		if err == nil {
			err = fmt.Errorf("unexpected status %s", res.Status())
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt < f.attempts {
			f.tel.ReportWarning(
				report_fetcher_fetch,
				fmt.Errorf("attempt %d failed, retrying: %w", attempt, err),
				url,
			)
		}
	}

	return "", &FetchError{
		URL:      url,
		Attempts: attempt,
		Err:      lastErr,
	}
}

func (f *Fetcher) Exists(ctx context.Context, url string) bool {
	res, err := f.http.R().
		SetContext(ctx).
		Head(url)
	if err != nil {
		f.tel.ReportWarning(report_fetcher_exists, err, url)
		return f.existence(0, err)
	}
	return f.existence(res.StatusCode(), nil)
}
