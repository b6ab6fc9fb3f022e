package notion

import (
	"strings"

	"github.com/google/uuid"
)

// RichText is a single rich-text span.
type RichText struct {
	PlainText string       `json:"plain_text"`
	Text      *TextContent `json:"text,omitempty"`
}

// TextContent is the literal text payload of a rich-text span.
type TextContent struct {
	Content string `json:"content"`
}

// plainText concatenates the plain-text runs of spans, in order, with no
// separator.
func plainText(spans []RichText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

// Property is a named typed field on a page. Only the variants this tool
// reads are modeled; access is best-effort.
type Property struct {
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
}

// Page is one record in the remote database (a "card").
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Title returns the concatenated plain text of the page's title-typed
// property. ok is false when no title property exists.
func (p *Page) Title() (string, bool) {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return plainText(prop.Title), true
		}
	}
	return "", false
}

// PropertyText returns the concatenated plain text of a named rich-text
// property, or "" when the property is absent or empty.
func (p *Page) PropertyText(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	return plainText(prop.RichText)
}

// HasText reports whether the named property holds non-empty rich text.
func (p *Page) HasText(name string) bool {
	prop, ok := p.Properties[name]
	return ok && len(prop.RichText) > 0
}

// BlockText holds the rich text of a block variant.
type BlockText struct {
	RichText []RichText `json:"rich_text"`
}

// Block is one unit of rich text content attached to a page. Variants that
// carry no rich text are ignored.
type Block struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Paragraph *BlockText `json:"paragraph,omitempty"`
	Heading1  *BlockText `json:"heading_1,omitempty"`
	Heading2  *BlockText `json:"heading_2,omitempty"`
	Heading3  *BlockText `json:"heading_3,omitempty"`
	Bulleted  *BlockText `json:"bulleted_list_item,omitempty"`
	Numbered  *BlockText `json:"numbered_list_item,omitempty"`
	ToDo      *BlockText `json:"to_do,omitempty"`
	Toggle    *BlockText `json:"toggle,omitempty"`
	Callout   *BlockText `json:"callout,omitempty"`
	Quote     *BlockText `json:"quote,omitempty"`
}

// PlainText returns the block's concatenated plain text. ok is false for
// block variants that are not inspected (images, dividers, tables, ...).
func (b *Block) PlainText() (string, bool) {
	var content *BlockText
	switch b.Type {
	case "paragraph":
		content = b.Paragraph
	case "heading_1":
		content = b.Heading1
	case "heading_2":
		content = b.Heading2
	case "heading_3":
		content = b.Heading3
	case "bulleted_list_item":
		content = b.Bulleted
	case "numbered_list_item":
		content = b.Numbered
	case "to_do":
		content = b.ToDo
	case "toggle":
		content = b.Toggle
	case "callout":
		content = b.Callout
	case "quote":
		content = b.Quote
	default:
		return "", false
	}
	if content == nil {
		return "", true
	}
	return plainText(content.RichText), true
}

// QueryResult is one page of database query results.
type QueryResult struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
	// Total is a best-effort entry count supplied on the cursor-less first
	// call; used only to size the progress indicator.
	Total int `json:"total"`
}

// BlockList is the child-block listing of a page.
type BlockList struct {
	Results []Block `json:"results"`
}

// PageURL builds the card link for a page ID (hyphen-less form).
func PageURL(pageID string) string {
	return "https://www.notion.so/" + strings.ReplaceAll(pageID, "-", "")
}

// NormalizeID canonicalizes a page ID to its hyphen-less lowercase form so
// IDs from links and API responses compare equal.
func NormalizeID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return strings.ReplaceAll(u.String(), "-", "")
	}
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}
