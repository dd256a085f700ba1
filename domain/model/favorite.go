package model

import "encoding/json"

// Favorite is the join record expressing "this user favorited this
// post". Uniqueness per (post, user) pair is server-enforced; the
// client trusts it.
type Favorite struct {
	ID     int `json:"id"`
	PostID int `json:"publicacao_id"`
	UserID int `json:"usuario_id"`
}

type favoriteWire struct {
	ID          int         `json:"id"`
	PostID      json.Number `json:"publicacao_id"`
	PostIDCamel json.Number `json:"publicacaoId"`
	UserID      json.Number `json:"usuario_id"`
	UserIDCamel json.Number `json:"usuarioId"`
}

func (f *Favorite) UnmarshalJSON(data []byte) error {
	var w favoriteWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	f.ID = w.ID
	f.PostID = numberToInt(w.PostID)
	if f.PostID == 0 {
		f.PostID = numberToInt(w.PostIDCamel)
	}
	f.UserID = numberToInt(w.UserID)
	if f.UserID == 0 {
		f.UserID = numberToInt(w.UserIDCamel)
	}

	return nil
}
