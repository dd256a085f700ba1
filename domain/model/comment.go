package model

import "encoding/json"

// Comment belongs to exactly one post. Editable only by its author;
// deletable by its author or the parent post's owner.
type Comment struct {
	ID        int    `json:"id"`
	PostID    int    `json:"publicacao_id"`
	UserID    int    `json:"usuario_id"`
	Text      string `json:"texto"`
	CreatedAt string `json:"created_at"`
	User      *User  `json:"usuario,omitempty"`
}

type commentWire struct {
	ID          int         `json:"id"`
	PostID      json.Number `json:"publicacao_id"`
	PostIDCamel json.Number `json:"publicacaoId"`
	UserID      json.Number `json:"usuario_id"`
	UserIDCamel json.Number `json:"usuarioId"`
	Text        string      `json:"texto"`
	CreatedAt   string      `json:"created_at"`
	User        *User       `json:"usuario"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var w commentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.ID = w.ID
	c.Text = w.Text
	c.CreatedAt = w.CreatedAt
	c.User = w.User

	c.PostID = numberToInt(w.PostID)
	if c.PostID == 0 {
		c.PostID = numberToInt(w.PostIDCamel)
	}
	c.UserID = numberToInt(w.UserID)
	if c.UserID == 0 {
		c.UserID = numberToInt(w.UserIDCamel)
	}
	if c.UserID == 0 && w.User != nil {
		c.UserID = w.User.ID
	}

	return nil
}
