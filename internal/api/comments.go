package api

import (
	"context"
	"fmt"
	"net/http"
)

type commentCreate struct {
	Body string `json:"body"`
}

// ListComments returns the comments of an issue, oldest first
func (c *Client) ListComments(ctx context.Context, issueID int64, page Page) ([]Comment, error) {
	var comments []Comment
	if err := c.Do(ctx, http.MethodGet, commentsPath(issueID), nil, &comments, Query(page.Values())); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment on an issue
func (c *Client) AddComment(ctx context.Context, issueID int64, body string) (*Comment, error) {
	var comment Comment
	if err := c.Do(ctx, http.MethodPost, commentsPath(issueID), commentCreate{Body: body}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func commentsPath(issueID int64) string {
	return fmt.Sprintf("/comments/issue/%d", issueID)
}
