// Package scrape fetches conjugation tables from remote sites.
//
// Each Source targets one fixed host and page layout. The Resolver chains
// sources and returns the first non-empty result.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Source extracts ordered "pronoun verb" lines for one (mode, tense) of a verb.
type Source interface {
	Name() string
	Fetch(ctx context.Context, verb, mode, tense string) ([]string, error)
}

// Config is shared by every adapter.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// NewClient builds the HTTP client an adapter owns.
func NewClient(cfg Config) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
}

// normalizeVerb lower-cases and trims the verb for URL building.
func normalizeVerb(verb string) string {
	return strings.ToLower(strings.TrimSpace(verb))
}

func fetchDocument(ctx context.Context, client *resty.Client, source, url string) (*goquery.Document, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, networkErr(source, err)
	}
	if !res.IsSuccess() {
		return nil, networkErr(source, fmt.Errorf("GET %s: status %d", url, res.StatusCode()))
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, notFound(source, "parse %s: %v", url, err)
	}
	return doc, nil
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
