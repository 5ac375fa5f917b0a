package model

// DeckSection is one templated block of the living document, authored as
// markdown with YAML frontmatter under the content directory.
type DeckSection struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Order     int      `json:"order"`
	Footnotes []string `json:"footnotes,omitempty"`
	HTML      string   `json:"html"`
}

// DeckExport is a rendered, watermarked copy of the document, produced for
// exactly one successful token redemption.
type DeckExport struct {
	Filename  string
	Watermark string
	AsOf      string
	HTML      string
}
