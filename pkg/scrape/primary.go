package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

const DefaultPrimaryBaseURL = "https://www.conjugacao.com.br/"

// Primary scrapes conjugacao.com.br. Modes are h3 headings; each tense is an
// h4 inside the mode's container followed by a paragraph with one
// "pronoun verb" run per line break.
type Primary struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewPrimary(client *resty.Client, baseURL string, logger *slog.Logger) *Primary {
	if baseURL == "" {
		baseURL = DefaultPrimaryBaseURL
	}
	return &Primary{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		logger:  loggerOrDiscard(logger).With("source", "primary"),
	}
}

func (p *Primary) Name() string { return "primary" }

func (p *Primary) URL(verb string) string {
	return p.baseURL + "verbo-" + url.PathEscape(normalizeVerb(verb)) + "/"
}

func (p *Primary) Fetch(ctx context.Context, verb, mode, tense string) (forms []string, err error) {
	u := p.URL(verb)
	p.logger.InfoContext(ctx, "scraping", "url", u, "mode", mode, "tense", tense)

	doc, err := fetchDocument(ctx, p.client, p.Name(), u)
	if err != nil {
		p.logger.ErrorContext(ctx, "fetch failed", "url", u, "err", err)
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "unexpected parsing error", "url", u, "panic", r)
			forms, err = nil, notFound(p.Name(), "malformed markup: %v", r)
		}
	}()

	forms, err = p.parse(doc, mode, tense)
	if err != nil {
		p.logger.WarnContext(ctx, "conjugation not found", "url", u, "mode", mode, "tense", tense, "err", err)
		return nil, err
	}
	return forms, nil
}

func (p *Primary) parse(doc *goquery.Document, mode, tense string) ([]string, error) {
	modeHeaders := doc.Find("h3").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == mode
	})
	if modeHeaders.Length() == 0 {
		return nil, notFound(p.Name(), "mode %q", mode)
	}

	var para *goquery.Selection
	modeHeaders.EachWithBreak(func(_ int, h3 *goquery.Selection) bool {
		tenseHeader := h3.Parent().Find("h4").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) == tense
		}).First()
		if tenseHeader.Length() == 0 {
			return true
		}
		next := tenseHeader.NextAllFiltered("p").First()
		if next.Length() == 0 {
			return true
		}
		para = next
		return false
	})
	if para == nil {
		return nil, notFound(p.Name(), "tense %q under %q", tense, mode)
	}

	lines := splitOnBreaks(para.Nodes[0])
	if len(lines) == 0 {
		return nil, notFound(p.Name(), "empty conjugation block for %q/%q", mode, tense)
	}
	return lines, nil
}

// splitOnBreaks returns the normalized text between <br> elements anywhere
// under n. Text from sibling elements within a line is joined by a space.
func splitOnBreaks(n *html.Node) []string {
	var (
		lines []string
		cur   []string
	)
	flush := func() {
		if line := collapseSpace(strings.Join(cur, " ")); line != "" {
			lines = append(lines, line)
		}
		cur = cur[:0]
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				cur = append(cur, c.Data)
			case html.ElementNode:
				if c.Data == "br" {
					flush()
					continue
				}
				walk(c)
			}
		}
	}
	walk(n)
	flush()
	return lines
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
