package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// queryPageSize is the largest page the database query endpoint returns.
const queryPageSize = 100

// Client is the NotesDatabase backed by the Notion REST API.
type Client struct {
	api *notionapi.Client
}

// NewClient creates a Client authenticated with an integration token.
// Rate-limited requests are retried by the SDK.
func NewClient(token string) *Client {
	return &Client{api: notionapi.NewClient(notionapi.Token(token), notionapi.WithRetry(3))}
}

func (c *Client) NotePages(ctx context.Context, databaseID string) ([]NotePage, error) {
	pages, err := collectPages(ctx, func(ctx context.Context, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
		return c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	})
	if err != nil {
		return nil, fmt.Errorf("NotePages: database %s: %w", databaseID, err)
	}
	return pages, nil
}

func (c *Client) CreateNotePage(ctx context.Context, databaseID string, properties notionapi.Properties) (string, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return "", fmt.Errorf("CreateNotePage: database %s: %w", databaseID, err)
	}
	return string(page.ID), nil
}

func (c *Client) UpdateNotePage(ctx context.Context, pageID string, properties notionapi.Properties) error {
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: properties,
	}); err != nil {
		return fmt.Errorf("UpdateNotePage: page %s: %w", pageID, err)
	}
	return nil
}

// ArchivePage archives the page; Notion has no hard delete through the API.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Archived: true,
	}); err != nil {
		return fmt.Errorf("ArchivePage: page %s: %w", pageID, err)
	}
	return nil
}

type queryFunc func(ctx context.Context, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

// collectPages follows the query cursor until every page is listed. Archived
// pages are skipped.
func collectPages(ctx context.Context, query queryFunc) ([]NotePage, error) {
	var out []NotePage
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: queryPageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := query(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			out = append(out, NotePage{PageID: string(page.ID), NoteID: extractNoteID(page)})
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		cursor = resp.NextCursor
	}
}

var _ NotesDatabase = (*Client)(nil)
