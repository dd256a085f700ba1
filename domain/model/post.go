package model

import (
	"encoding/json"
)

// Post is a user-authored article with title, body and image. Owned by
// exactly one user; the server cascades deletion to comments and
// favorites.
type Post struct {
	ID            int        `json:"id"`
	Title         string     `json:"titulo"`
	Body          string     `json:"descricao"`
	ImageURL      string     `json:"foto"`
	UserID        int        `json:"usuario_id"`
	User          *User      `json:"usuario,omitempty"`
	CreatedAt     string     `json:"created_at"`
	FavoriteCount int        `json:"favoritos_count"`
	Favorites     []Favorite `json:"favoritos,omitempty"`
	// Comments is populated only on the wire; the content cache moves
	// them into the normalized comment store and leaves this nil.
	Comments []Comment `json:"comentarios,omitempty"`
}

// postWire tolerates the field-naming variants the server is known to
// emit: the owner id arrives as usuario_id or usuarioId (sometimes as a
// string), the image as foto or foto_url. Decoding is the single place
// where the variants exist; everything downstream sees canonical names.
type postWire struct {
	ID            int         `json:"id"`
	Title         string      `json:"titulo"`
	Body          string      `json:"descricao"`
	Image         string      `json:"foto"`
	ImageURL      string      `json:"foto_url"`
	UserID        json.Number `json:"usuario_id"`
	UserIDCamel   json.Number `json:"usuarioId"`
	User          *User       `json:"usuario"`
	CreatedAt     string      `json:"created_at"`
	FavoriteCount int         `json:"favoritos_count"`
	Favorites     []Favorite  `json:"favoritos"`
	Comments      []Comment   `json:"comentarios"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var w postWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.ID = w.ID
	p.Title = w.Title
	p.Body = w.Body
	p.User = w.User
	p.CreatedAt = w.CreatedAt
	p.FavoriteCount = w.FavoriteCount
	p.Favorites = w.Favorites
	p.Comments = w.Comments

	p.ImageURL = w.Image
	if w.ImageURL != "" {
		p.ImageURL = w.ImageURL
	}

	p.UserID = numberToInt(w.UserID)
	if p.UserID == 0 {
		p.UserID = numberToInt(w.UserIDCamel)
	}
	if p.UserID == 0 && w.User != nil {
		p.UserID = w.User.ID
	}

	return nil
}

// numberToInt converts a json.Number that may have arrived as either a
// JSON number or a numeric string. Zero on absence or garbage.
func numberToInt(n json.Number) int {
	if n == "" {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}
