package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/japaniel/conjugador/pkg/grammar"
)

const DefaultBackupBaseURL = "https://cooljugator.com/pt/"

type modeTense struct{ mode, tense string }

// backupCellPrefix maps a (mode, tense) to the id prefix of its table cells,
// which are numbered 1..6 in person order.
var backupCellPrefix = map[modeTense]string{
	{"Indicativo", "Presente"}:                    "present",
	{"Indicativo", "Pretérito Imperfeito"}:        "imperfect",
	{"Indicativo", "Pretérito Perfeito"}:          "preterite",
	{"Indicativo", "Pretérito Mais-que-perfeito"}: "past_perfect",
	{"Indicativo", "Futuro do Presente"}:          "future",
	{"Indicativo", "Futuro do Pretérito"}:         "conditional",
	{"Subjuntivo", "Presente"}:                    "subj_present",
	{"Subjuntivo", "Futuro"}:                      "subj_future",
}

// Backup scrapes cooljugator.com. The site renders only the verb form per
// cell, so each line is rebuilt as the canonical pronoun plus the form.
type Backup struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewBackup(client *resty.Client, baseURL string, logger *slog.Logger) *Backup {
	if baseURL == "" {
		baseURL = DefaultBackupBaseURL
	}
	return &Backup{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		logger:  loggerOrDiscard(logger).With("source", "backup"),
	}
}

func (b *Backup) Name() string { return "backup" }

func (b *Backup) URL(verb string) string {
	return b.baseURL + url.PathEscape(normalizeVerb(verb))
}

// Supports reports whether the site has a table for mode and tense.
func (b *Backup) Supports(mode, tense string) bool {
	_, ok := backupCellPrefix[modeTense{mode, tense}]
	return ok
}

func (b *Backup) Fetch(ctx context.Context, verb, mode, tense string) (forms []string, err error) {
	u := b.URL(verb)
	prefix, ok := backupCellPrefix[modeTense{mode, tense}]
	if !ok {
		b.logger.WarnContext(ctx, "no cell mapping", "mode", mode, "tense", tense)
		return nil, notFound(b.Name(), "no table for %q/%q", mode, tense)
	}
	b.logger.InfoContext(ctx, "scraping", "url", u, "mode", mode, "tense", tense)

	doc, err := fetchDocument(ctx, b.client, b.Name(), u)
	if err != nil {
		b.logger.ErrorContext(ctx, "fetch failed", "url", u, "err", err)
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "unexpected parsing error", "url", u, "panic", r)
			forms, err = nil, notFound(b.Name(), "malformed markup: %v", r)
		}
	}()

	for i, pronoun := range grammar.Persons {
		cell := doc.Find(fmt.Sprintf("#%s%d", prefix, i+1)).First()
		if cell.Length() == 0 {
			continue
		}
		form := cell.Find(".meta-form").First()
		if form.Length() == 0 {
			continue
		}
		value := collapseSpace(form.Text())
		if value == "" {
			continue
		}
		forms = append(forms, pronoun+" "+value)
	}
	if len(forms) == 0 {
		b.logger.WarnContext(ctx, "found 0 forms", "url", u, "prefix", prefix)
		return nil, notFound(b.Name(), "no cells with prefix %q", prefix)
	}
	b.logger.InfoContext(ctx, "extracted forms", "count", len(forms))
	return forms, nil
}

var _ Source = (*Backup)(nil)
var _ Source = (*Primary)(nil)
