package api

import (
	"context"
	"fmt"

	"blogclient/application/ports"
	"blogclient/domain/model"
	"blogclient/infrastructure/transport"
)

// PostService talks to the /api/publicacoes endpoints.
type PostService struct {
	client *transport.Client
}

// NewPostService creates a PostService.
func NewPostService(client *transport.Client) *PostService {
	return &PostService{client: client}
}

// List fetches all posts.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := s.client.Get(ctx, "/api/publicacoes", &posts)
	return posts, err
}

// Get fetches one post.
func (s *PostService) Get(ctx context.Context, id int) (model.Post, error) {
	var post model.Post
	err := s.client.Get(ctx, fmt.Sprintf("/api/publicacoes/%d", id), &post)
	return post, err
}

// Create submits the multipart payload: titulo, descricao, foto.
func (s *PostService) Create(ctx context.Context, title, body string, image ports.ImageUpload) (model.Post, error) {
	fields := map[string]string{
		"titulo":    title,
		"descricao": body,
	}
	file := transport.FileField{
		Field:    "foto",
		Filename: image.Filename,
		Reader:   image.Reader,
	}

	var post model.Post
	if err := s.client.PostMultipart(ctx, "/api/publicacoes", fields, file, &post); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

// Update replaces a post's title and body.
func (s *PostService) Update(ctx context.Context, id int, title, body string) (model.Post, error) {
	payload := map[string]interface{}{
		"id":        id,
		"titulo":    title,
		"descricao": body,
	}

	var post model.Post
	if err := s.client.Put(ctx, fmt.Sprintf("/api/publicacoes/%d", id), payload, &post); err != nil {
		return model.Post{}, err
	}
	if post.ID == 0 {
		// Empty body: reflect the request.
		post.ID = id
		post.Title = title
		post.Body = body
	}
	return post, nil
}

// Delete removes a post. The server cascades to comments and favorites.
func (s *PostService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/publicacoes/%d", id), nil)
}
