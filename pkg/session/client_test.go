package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degreescraper/pkg/config"
	errs "degreescraper/pkg/errors"
	"degreescraper/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.HTTP.Timeout = 2 * time.Second
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	c, err := New(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestFetchPageSendsUserAgent(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html><h1 id=\"nombreTitulacion\">Grado</h1></html>"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.UserAgent = "degreescraper-test/1.0"
	c := newTestClient(t, cfg)

	body, err := c.FetchPage(context.Background(), srv.URL+"/grado.html")
	require.NoError(t, err)
	assert.Contains(t, string(body), "Grado")
	assert.Equal(t, "degreescraper-test/1.0", gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())

	body, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchPageGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 2
	c := newTestClient(t, cfg)

	_, err := c.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)

	var scrapeErr *errs.Error
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, errs.ErrorTypeServerError, scrapeErr.Type)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDownloadDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())

	_, err := c.Download(context.Background(), srv.URL+"/PDFGuiaPublica/missing.pdf")
	require.Error(t, err)

	var scrapeErr *errs.Error
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, errs.ErrorTypeNotFound, scrapeErr.Type)
	assert.Equal(t, 404, scrapeErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPageTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.HTTP.Timeout = 50 * time.Millisecond
	cfg.Retry.MaxAttempts = 1
	c := newTestClient(t, cfg)

	_, err := c.FetchPage(context.Background(), srv.URL)
	require.Error(t, err)

	var scrapeErr *errs.Error
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, errs.ErrorTypeNetwork, scrapeErr.Type)
}

func TestSessionKeepsCookies(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/grado.html", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/PDFGuiaPublica/guide.pdf", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("JSESSIONID"); err == nil && c.Value == "abc" {
			sawCookie = true
		}
		w.Write([]byte("%PDF-1.4"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, testConfig())

	_, err := c.FetchPage(context.Background(), srv.URL+"/grado.html")
	require.NoError(t, err)
	data, err := c.Download(context.Background(), srv.URL+"/PDFGuiaPublica/guide.pdf")
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.4", string(data))
	assert.True(t, sawCookie, "expected the session cookie to be sent with the download")
}

func TestFetchPageCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPage(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBaseURL(t *testing.T) {
	base, err := BaseURL("https://www.uned.es/universidad/inicio/estudios/grados/grado.html?idTitulacion=6101")
	require.NoError(t, err)
	assert.Equal(t, "https://www.uned.es", base.String())

	_, err = BaseURL("/relative/path")
	assert.Error(t, err)
}
