package api

import (
	"context"
	"fmt"

	"blogclient/domain/model"
	"blogclient/infrastructure/transport"
)

// CommentService talks to the /api/comentarios endpoints.
type CommentService struct {
	client *transport.Client
}

// NewCommentService creates a CommentService.
func NewCommentService(client *transport.Client) *CommentService {
	return &CommentService{client: client}
}

// List fetches all comments.
func (s *CommentService) List(ctx context.Context) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.client.Get(ctx, "/api/comentarios", &comments)
	return comments, err
}

// ListByPost fetches the comments of one post.
func (s *CommentService) ListByPost(ctx context.Context, postID int) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.client.Get(ctx, fmt.Sprintf("/api/comentarios?publicacaoId=%d", postID), &comments)
	return comments, err
}

// Create adds a comment to a post.
func (s *CommentService) Create(ctx context.Context, postID int, text string) (model.Comment, error) {
	body := map[string]interface{}{
		"publicacao_id": postID,
		"texto":         text,
	}

	var comment model.Comment
	if err := s.client.Post(ctx, "/api/comentarios", body, &comment); err != nil {
		return model.Comment{}, err
	}
	return comment, nil
}

// Update edits a comment's text.
func (s *CommentService) Update(ctx context.Context, id int, text string) (model.Comment, error) {
	body := map[string]string{"texto": text}

	var comment model.Comment
	if err := s.client.Put(ctx, fmt.Sprintf("/api/comentarios/%d", id), body, &comment); err != nil {
		return model.Comment{}, err
	}
	if comment.ID == 0 {
		comment.ID = id
		comment.Text = text
	}
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/comentarios/%d", id), nil)
}
