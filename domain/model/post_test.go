package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDecodingVariants(t *testing.T) {
	t.Run("snake case with string owner id and foto_url", func(t *testing.T) {
		raw := `{
			"id": 5,
			"titulo": "Rascunho",
			"descricao": "corpo",
			"usuario_id": "1",
			"foto_url": "/storage/fotos/x.png"
		}`
		var p Post
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		assert.Equal(t, 5, p.ID)
		assert.Equal(t, 1, p.UserID)
		assert.Equal(t, "/storage/fotos/x.png", p.ImageURL)
	})

	t.Run("camel case numeric owner id and foto", func(t *testing.T) {
		raw := `{"id": 2, "titulo": "T", "descricao": "B", "usuarioId": 7, "foto": "/f.png"}`
		var p Post
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		assert.Equal(t, 7, p.UserID)
		assert.Equal(t, "/f.png", p.ImageURL)
	})

	t.Run("foto_url wins over foto when both present", func(t *testing.T) {
		raw := `{"id": 3, "foto": "/old.png", "foto_url": "/new.png"}`
		var p Post
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		assert.Equal(t, "/new.png", p.ImageURL)
	})

	t.Run("owner id falls back to the embedded user", func(t *testing.T) {
		raw := `{"id": 4, "usuario": {"id": 9, "nome": "N", "email": "n@x.com"}}`
		var p Post
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		assert.Equal(t, 9, p.UserID)
		require.NotNil(t, p.User)
		assert.Equal(t, "N", p.User.Name)
	})

	t.Run("embedded comments and favorites decode", func(t *testing.T) {
		raw := `{
			"id": 5,
			"comentarios": [{"id": 9, "publicacaoId": 5, "usuario_id": 2, "texto": "old"}],
			"favoritos": [{"id": 1, "publicacao_id": 5, "usuario_id": 2}],
			"favoritos_count": 1
		}`
		var p Post
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		require.Len(t, p.Comments, 1)
		assert.Equal(t, 5, p.Comments[0].PostID)
		assert.Equal(t, "old", p.Comments[0].Text)
		require.Len(t, p.Favorites, 1)
		assert.Equal(t, 1, p.FavoriteCount)
	})

	t.Run("non-numeric owner id is rejected", func(t *testing.T) {
		raw := `{"id": 6, "usuario_id": "abc"}`
		var p Post
		assert.Error(t, json.Unmarshal([]byte(raw), &p))
	})
}

func TestCommentDecodingVariants(t *testing.T) {
	t.Run("snake case", func(t *testing.T) {
		raw := `{"id": 9, "publicacao_id": 5, "usuario_id": 2, "texto": "old"}`
		var c Comment
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		assert.Equal(t, 5, c.PostID)
		assert.Equal(t, 2, c.UserID)
	})

	t.Run("camel case with string ids", func(t *testing.T) {
		raw := `{"id": 10, "publicacaoId": "5", "usuarioId": "2", "texto": "new"}`
		var c Comment
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		assert.Equal(t, 5, c.PostID)
		assert.Equal(t, 2, c.UserID)
	})

	t.Run("author id falls back to the embedded user", func(t *testing.T) {
		raw := `{"id": 11, "publicacao_id": 5, "texto": "x", "usuario": {"id": 3, "nome": "C", "email": "c@x.com"}}`
		var c Comment
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		assert.Equal(t, 3, c.UserID)
	})
}

func TestSessionValid(t *testing.T) {
	assert.False(t, Session{}.Valid())
	assert.False(t, Session{Token: "t1"}.Valid())
	assert.False(t, Session{User: User{ID: 1}}.Valid())
	assert.True(t, Session{Token: "t1", User: User{ID: 1}}.Valid())
}
