package api

import (
	"context"
	"fmt"

	"blogclient/domain/model"
	"blogclient/infrastructure/transport"
)

// FavoriteService talks to the /api/favoritos endpoints.
type FavoriteService struct {
	client *transport.Client
}

// NewFavoriteService creates a FavoriteService.
func NewFavoriteService(client *transport.Client) *FavoriteService {
	return &FavoriteService{client: client}
}

// List fetches all favorites.
func (s *FavoriteService) List(ctx context.Context) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := s.client.Get(ctx, "/api/favoritos", &favorites)
	return favorites, err
}

// Create favorites a post for the authenticated user.
func (s *FavoriteService) Create(ctx context.Context, postID int) (model.Favorite, error) {
	body := map[string]interface{}{"publicacao_id": postID}

	var favorite model.Favorite
	if err := s.client.Post(ctx, "/api/favoritos", body, &favorite); err != nil {
		return model.Favorite{}, err
	}
	return favorite, nil
}

// Delete removes a favorite record.
func (s *FavoriteService) Delete(ctx context.Context, id int) error {
	return s.client.Delete(ctx, fmt.Sprintf("/api/favoritos/%d", id), nil)
}
