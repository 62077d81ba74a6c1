// Package session provides the HTTP session used to fetch catalog pages and
// guide PDFs.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"degreescraper/pkg/config"
	errs "degreescraper/pkg/errors"
	"degreescraper/pkg/logger"
	"degreescraper/pkg/ratelimit"
	"degreescraper/pkg/retry"
)

const (
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptPDF  = "application/pdf,*/*;q=0.8"
)

// Client is an HTTP session that keeps cookies across requests
type Client struct {
	http    *resty.Client
	retry   *retry.Config
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// New creates a session from the HTTP and retry settings
func New(cfg *config.Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "session")

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("User-Agent", cfg.HTTP.UserAgent)
	httpClient.SetHeader("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	httpClient.SetTimeout(cfg.HTTP.Timeout)
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	limiter := ratelimit.NewRateCap(cfg.HTTP.RequestsPerSecond, 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Client{
		http:    httpClient,
		retry:   retry.FromConfig(cfg.Retry, log),
		limiter: limiter,
		logger:  log,
	}, nil
}

// FetchPage retrieves an HTML page and returns its raw body
func (c *Client) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, acceptHTML)
}

// Download retrieves a binary resource such as a guide PDF
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, acceptPDF)
}

func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	return retry.DoWithResult(ctx, func() ([]byte, error) {
		return c.doRequest(ctx, rawURL, accept)
	}, c.retry)
}

func (c *Client) doRequest(ctx context.Context, rawURL, accept string) ([]byte, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": http.MethodGet,
		"url":    rawURL,
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", accept).
		Get(rawURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      rawURL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.New(errs.ErrorTypeNetwork, 0, rawURL, "network error: %v", err)
	}

	logger.LogRequest(c.logger, http.MethodGet, rawURL, resp.StatusCode(), time.Since(start).Milliseconds())

	if err := checkResponseStatus(resp.StatusCode(), rawURL); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// checkResponseStatus maps non-success statuses to typed errors
func checkResponseStatus(statusCode int, rawURL string) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return errs.FromStatusCode(statusCode, rawURL)
}

// BaseURL returns the scheme://host root of a catalog URL. Relative guide
// links are resolved against it.
func BaseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("URL %q is not absolute", rawURL)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}
