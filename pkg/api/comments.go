package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// CommentsAPI はコメントのエンドポイント。
type CommentsAPI struct {
	hc *httpclient.Client
}

// ListByProject はGET /comments/project/:id を呼び出す。
func (c *CommentsAPI) ListByProject(ctx context.Context, projectID string) ([]Comment, error) {
	var out []Comment
	err := c.hc.GetJSON(ctx, "/comments/project/"+seg(projectID), nil, &out)
	return out, err
}

// Create はPOST /comments/project/:id を呼び出す。
func (c *CommentsAPI) Create(ctx context.Context, projectID, content string) (Comment, error) {
	var out Comment
	err := c.hc.PostJSON(ctx, "/comments/project/"+seg(projectID), map[string]string{"content": content}, &out)
	return out, err
}

// Update はPUT /comments/:id を呼び出す。
func (c *CommentsAPI) Update(ctx context.Context, id, content string) (Comment, error) {
	var out Comment
	err := c.hc.PutJSON(ctx, "/comments/"+seg(id), map[string]string{"content": content}, &out)
	return out, err
}

// Delete はDELETE /comments/:id を呼び出す。
func (c *CommentsAPI) Delete(ctx context.Context, id string) (Message, error) {
	var out Message
	err := c.hc.DeleteJSON(ctx, "/comments/"+seg(id), &out)
	return out, err
}
