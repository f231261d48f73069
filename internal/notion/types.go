package notion

import "time"

// Page represents a Notion page object, trimmed to the fields this
// program reads.
type Page struct {
	Object      string              `json:"object"`
	ID          string              `json:"id"`
	CreatedTime time.Time           `json:"created_time"`
	URL         string              `json:"url"`
	Properties  map[string]Property `json:"properties"`
}

// Property represents a page property. Only title properties carry
// content we care about; the type tag tells the two apart.
type Property struct {
	Type  string     `json:"type"`
	Title []RichText `json:"title,omitempty"`
}

// UntitledFallback is the display title for pages whose title property is
// absent, malformed or empty. An explicit branch, not crash recovery.
const UntitledFallback = "(Sem título)"

// Title extracts the page's display title.
// Returns UntitledFallback when no usable title property exists.
func (p Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type != "title" || len(prop.Title) == 0 {
			continue
		}
		var title string
		for _, rt := range prop.Title {
			title += rt.Content()
		}
		if title != "" {
			return title
		}
	}
	return UntitledFallback
}

// RichText represents a rich text object.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text,omitempty"`
	Text      *Text  `json:"text,omitempty"`
}

// Content returns the textual content of a rich text item, preferring the
// API-computed plain_text and falling back to the raw text payload.
func (rt RichText) Content() string {
	if rt.PlainText != "" {
		return rt.PlainText
	}
	if rt.Text != nil {
		return rt.Text.Content
	}
	return ""
}

// Text represents the text payload of a rich text item.
type Text struct {
	Content string `json:"content"`
}

// Block represents a Notion block object. Only paragraph blocks carry
// script content; every other type is ignored on read-back.
type Block struct {
	Object      string     `json:"object"`
	ID          string     `json:"id,omitempty"`
	Type        string     `json:"type"`
	HasChildren bool       `json:"has_children,omitempty"`
	Paragraph   *Paragraph `json:"paragraph,omitempty"`
}

// Paragraph represents a paragraph block's content.
type Paragraph struct {
	RichText []RichText `json:"rich_text"`
}

// Parent identifies the database a created page belongs to.
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id"`
}

// pageProperties is the fixed property schema of a script page. The JSON
// keys match the database's Portuguese property names.
type pageProperties struct {
	Title  titleProperty  `json:"Título"`
	Status statusProperty `json:"Status"`
	Date   dateProperty   `json:"Data da Ideia"`
}

type titleProperty struct {
	Title []RichText `json:"title"`
}

type statusProperty struct {
	Status statusName `json:"status"`
}

type statusName struct {
	Name string `json:"name"`
}

type dateProperty struct {
	Date dateStart `json:"date"`
}

type dateStart struct {
	Start string `json:"start"`
}

// createPageRequest is the request body for page creation.
type createPageRequest struct {
	Parent     Parent         `json:"parent"`
	Properties pageProperties `json:"properties"`
}

// createPageResponse is the subset of the page-creation response we read.
type createPageResponse struct {
	ID string `json:"id"`
}

// appendChildrenRequest is the request body for block appends.
type appendChildrenRequest struct {
	Children []Block `json:"children"`
}

// queryRequest is the request body for a database query.
type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// queryResponse represents the response from a database query.
type queryResponse struct {
	Object     string `json:"object"`
	Results    []Page `json:"results"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// blockChildrenResponse represents the response from the block children
// endpoint.
type blockChildrenResponse struct {
	Object     string  `json:"object"`
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}
