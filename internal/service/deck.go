package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/coastaloak/livedeck/internal/markdown"
	"github.com/coastaloak/livedeck/internal/model"
)

// DeckService assembles the living document: markdown sections interpolated
// with the current rate snapshot and stamped with a per-recipient watermark.
type DeckService struct {
	parser      *markdown.Parser
	market      *MarketService
	appName     string
	contentPath string
}

func NewDeckService(market *MarketService, appName, contentPath string) *DeckService {
	return &DeckService{
		parser:      markdown.NewParser(),
		market:      market,
		appName:     appName,
		contentPath: contentPath,
	}
}

// Sections loads and renders every deck section, ordered by frontmatter.
func (s *DeckService) Sections() ([]*model.DeckSection, error) {
	pattern := filepath.Join(s.contentPath, "deck", "*.md")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var sections []*model.DeckSection
	for _, file := range files {
		section, err := s.section(strings.TrimSuffix(filepath.Base(file), ".md"))
		if err != nil {
			continue
		}
		sections = append(sections, section)
	}

	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	return sections, nil
}

func (s *DeckService) section(slug string) (*model.DeckSection, error) {
	path := filepath.Join(s.contentPath, "deck", slug+".md")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck section not found: %s", slug)
	}

	htmlContent, meta, err := s.parser.ParseWithFrontmatter(content)
	if err != nil {
		return nil, err
	}

	section := &model.DeckSection{
		Slug: slug,
		HTML: string(htmlContent),
	}

	title, ok := meta["title"].(string)
	if ok {
		section.Title = title
	}

	order, ok := meta["order"].(int)
	if ok {
		section.Order = order
	}

	footnotes, ok := meta["footnotes"].([]any)
	if ok {
		for _, fn := range footnotes {
			id, ok := fn.(string)
			if ok {
				section.Footnotes = append(section.Footnotes, id)
			}
		}
	}

	return section, nil
}

// Export renders the watermarked document for one redeemed credential.
func (s *DeckService) Export(ctx context.Context, subject string) (*model.DeckExport, error) {
	now := time.Now().UTC()
	watermark := fmt.Sprintf("%s | %s", subject, now.Format("2006-01-02T15:04:05"))

	html, asOf, err := s.render(ctx, watermark)
	if err != nil {
		return nil, err
	}

	return &model.DeckExport{
		Filename:  fmt.Sprintf("CoastalOak_Deck_%s.html", asOf),
		Watermark: watermark,
		AsOf:      asOf,
		HTML:      html,
	}, nil
}

// ExecSummary renders the public preview of the document. Same body as the
// export; the watermark identifies the viewer, not a credential.
func (s *DeckService) ExecSummary(ctx context.Context, email string) (*model.DeckExport, error) {
	return s.Export(ctx, email)
}

func (s *DeckService) render(ctx context.Context, watermark string) (html, asOf string, err error) {
	snapshot, err := s.market.Rates(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch rate snapshot: %w", err)
	}

	sections, err := s.Sections()
	if err != nil {
		return "", "", fmt.Errorf("failed to load deck sections: %w", err)
	}

	var body strings.Builder
	for _, section := range sections {
		body.WriteString("<section>\n")
		if section.Title != "" {
			fmt.Fprintf(&body, "<h2>%s</h2>\n", section.Title)
		}
		body.WriteString(section.HTML)
		if len(section.Footnotes) > 0 {
			fmt.Fprintf(&body, "<p class=\"footnotes\">Sources: %s</p>\n", strings.Join(section.Footnotes, ", "))
		}
		body.WriteString("</section>\n")
	}

	doc := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s — Executive Summary</title></head>
<body>
<div class="watermark">{{ watermark }}</div>
<h1>%s — Living Pitch Deck</h1>
<p class="asof">As of {{ asOf }}</p>
%s
</body>
</html>
`, s.appName, s.appName, body.String())

	replacer := strings.NewReplacer(
		"{{ watermark }}", watermark,
		"{{ asOf }}", snapshot.AsOf,
		"{{ ffr }}", fmt.Sprintf("%.2f", snapshot.FFR),
		"{{ t5 }}", fmt.Sprintf("%.2f", snapshot.T5),
		"{{ t10 }}", fmt.Sprintf("%.2f", snapshot.T10),
		"{{ t30 }}", fmt.Sprintf("%.2f", snapshot.T30),
	)

	return replacer.Replace(doc), snapshot.AsOf, nil
}
