// Package notion stores and retrieves script pages in a Notion database.
//
// The client speaks the raw Notion HTTP API: a script is one page in the
// configured database (title/status/date properties) whose body is an
// ordered sequence of paragraph blocks of at most MaxBlockLen bytes each.
// Reads concatenate paragraph blocks in storage order; other block types
// are ignored.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roteirista/roteirista/internal/chunk"
	"github.com/roteirista/roteirista/internal/log"
)

const (
	// DefaultBaseURL is the base URL for the Notion API.
	DefaultBaseURL = "https://api.notion.com"

	// APIVersion is the Notion-Version header value.
	APIVersion = "2022-06-28"

	// MaxBlockLen is the byte limit for one paragraph block's content.
	MaxBlockLen = 1999

	// StatusNew is the fixed status assigned to newly created pages.
	StatusNew = "Não iniciada"

	// pageSize is the page_size used for paginated reads.
	pageSize = 100

	// requestTimeout bounds one API call.
	requestTimeout = 30 * time.Second
)

// Client is a lightweight Notion API client bound to one database.
type Client struct {
	token      string
	databaseID string
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// New creates a Notion client.
//
// Parameters:
//   - token: Notion integration token (format: "ntn_***")
//   - databaseID: the database that holds script pages
func New(token, databaseID string, logger log.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if databaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}, nil
}

// CreatePage creates one script page in the database with the fixed
// property schema (title, initial status, creation date) and returns the
// new page's id. The page body starts empty; AppendParagraphs fills it.
func (c *Client) CreatePage(ctx context.Context, title string, createdAt time.Time) (string, error) {
	req := createPageRequest{
		Parent: Parent{Type: "database_id", DatabaseID: c.databaseID},
		Properties: pageProperties{
			Title: titleProperty{
				Title: []RichText{{Type: "text", Text: &Text{Content: title}}},
			},
			Status: statusProperty{Status: statusName{Name: StatusNew}},
			Date:   dateProperty{Date: dateStart{Start: createdAt.Format(time.RFC3339)}},
		},
	}

	var resp createPageResponse
	if err := c.makeRequest(ctx, http.MethodPost, c.baseURL+"/v1/pages", req, &resp); err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}

	c.logger.Info("created notion page", "page_id", resp.ID, "title", title)
	return resp.ID, nil
}

// AppendParagraphs splits text into paragraph blocks of at most
// MaxBlockLen bytes and appends them to the page one call at a time, in
// order. Line endings are normalized to LF before splitting.
//
// A failure mid-sequence returns the first error; blocks already appended
// stay on the page. The caller reports the failure and does not retry.
func (c *Client) AppendParagraphs(ctx context.Context, pageID, text string) error {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	chunks := chunk.Split(normalized, MaxBlockLen)

	url := fmt.Sprintf("%s/v1/blocks/%s/children", c.baseURL, pageID)
	for i, content := range chunks {
		req := appendChildrenRequest{
			Children: []Block{{
				Object: "block",
				Type:   "paragraph",
				Paragraph: &Paragraph{
					RichText: []RichText{{Type: "text", Text: &Text{Content: content}}},
				},
			}},
		}
		if err := c.makeRequest(ctx, http.MethodPatch, url, req, nil); err != nil {
			return fmt.Errorf("appending block %d/%d: %w", i+1, len(chunks), err)
		}
	}

	c.logger.Debug("appended script blocks", "page_id", pageID, "block_count", len(chunks))
	return nil
}

// Query lists every page in the database, in the database's query order.
// An empty database yields an empty, non-error result.
//
// This method automatically handles cursor pagination and retrieves all
// results.
func (c *Client) Query(ctx context.Context) ([]Page, error) {
	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)

	var allPages []Page
	startCursor := ""

	for {
		req := queryRequest{PageSize: pageSize}
		if startCursor != "" {
			req.StartCursor = startCursor
		}

		var resp queryResponse
		if err := c.makeRequest(ctx, http.MethodPost, url, req, &resp); err != nil {
			return nil, fmt.Errorf("querying database: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		startCursor = resp.NextCursor
	}

	c.logger.Debug("notion query completed", "page_count", len(allPages))
	return allPages, nil
}

// PageContent reads back a page's script text: the content of every
// paragraph block, concatenated in storage order, one line per block.
// Blocks of any other type are skipped.
func (c *Client) PageContent(ctx context.Context, pageID string) (string, error) {
	var lines []string
	startCursor := ""

	for {
		url := fmt.Sprintf("%s/v1/blocks/%s/children?page_size=%d", c.baseURL, pageID, pageSize)
		if startCursor != "" {
			url += "&start_cursor=" + startCursor
		}

		var resp blockChildrenResponse
		if err := c.makeRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
			return "", fmt.Errorf("reading page blocks: %w", err)
		}

		for _, block := range resp.Results {
			if block.Type != "paragraph" || block.Paragraph == nil {
				continue
			}
			var line string
			for _, rt := range block.Paragraph.RichText {
				line += rt.Content()
			}
			if line != "" {
				lines = append(lines, line)
			}
		}

		if !resp.HasMore {
			break
		}
		startCursor = resp.NextCursor
	}

	return strings.Join(lines, "\n"), nil
}

// makeRequest is a helper method to make HTTP requests to the Notion API.
func (c *Client) makeRequest(ctx context.Context, method, url string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notion API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
