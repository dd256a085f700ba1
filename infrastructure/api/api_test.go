package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogclient/application/ports"
	"blogclient/infrastructure/config"
	"blogclient/infrastructure/transport"
	"blogclient/interfaces/http/mockapi"
	apperrors "blogclient/pkg/errors"
)

// newBackend starts a fresh mock server and a client pointed at it.
func newBackend(t *testing.T) *transport.Client {
	t.Helper()

	srv := httptest.NewServer(mockapi.NewServer(zap.NewNop()).Handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
	}
	return transport.NewClient(cfg, zap.NewNop())
}

// loginFixture authenticates the seeded user and installs the token.
func loginFixture(t *testing.T, client *transport.Client) {
	t.Helper()
	sess, err := NewAuthService(client).Login(context.Background(), "a@b.com", "Secret1")
	require.NoError(t, err)
	client.SetToken(sess.Token)
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("login returns the fixture token and user", func(t *testing.T) {
		client := newBackend(t)
		sess, err := NewAuthService(client).Login(ctx, "a@b.com", "Secret1")
		require.NoError(t, err)
		assert.Equal(t, "t1", sess.Token)
		assert.Equal(t, 1, sess.User.ID)
		assert.Equal(t, "A", sess.User.Name)
	})

	t.Run("wrong password surfaces the server message", func(t *testing.T) {
		client := newBackend(t)
		_, err := NewAuthService(client).Login(ctx, "a@b.com", "nope")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
		assert.Equal(t, "credenciais invalidas", apperrors.GetAppError(err).Message)
	})

	t.Run("register creates an account without logging in", func(t *testing.T) {
		client := newBackend(t)
		user, err := NewAuthService(client).Register(ctx, "Carla", "carla@x.com", "Secret1")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "carla@x.com", user.Email)
		assert.Empty(t, client.Token())
	})

	t.Run("register rejects a duplicate email", func(t *testing.T) {
		client := newBackend(t)
		_, err := NewAuthService(client).Register(ctx, "Dup", "a@b.com", "Secret1")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		require.NoError(t, NewAuthService(client).Logout(ctx))

		_, err := NewPostService(client).List(ctx)
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("get and update", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		users := NewUserService(client)

		user, err := users.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", user.Email)

		updated, err := users.Update(ctx, 1, "Ana", "ana@b.com")
		require.NoError(t, err)
		assert.Equal(t, "Ana", updated.Name)
		assert.Equal(t, "ana@b.com", updated.Email)
	})

	t.Run("updating another account is forbidden", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		_, err := NewUserService(client).Update(ctx, 2, "X", "x@y.com")
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("delete removes the account", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		require.NoError(t, NewUserService(client).Delete(ctx, 1))

		_, err := NewAuthService(client).Login(ctx, "a@b.com", "Secret1")
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestPostService(t *testing.T) {
	ctx := context.Background()

	t.Run("list normalizes both field spellings", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)

		posts, err := NewPostService(client).List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 3)

		byID := map[int]int{}
		for _, p := range posts {
			byID[p.ID] = p.UserID
		}
		// Post 5 arrives with usuario_id as a string, post 2 with a
		// camelCase numeric usuarioId. Both decode to the same shape.
		assert.Equal(t, 1, byID[5])
		assert.Equal(t, 1, byID[2])
		assert.Equal(t, 2, byID[1])
	})

	t.Run("detail embeds comments and favorites", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)

		post, err := NewPostService(client).Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Rascunho antigo", post.Title)
		require.Len(t, post.Comments, 1)
		assert.Equal(t, "old", post.Comments[0].Text)
		assert.Equal(t, 5, post.Comments[0].PostID)
	})

	t.Run("create with an image", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)

		post, err := NewPostService(client).Create(ctx, "Nova", "corpo", ports.ImageUpload{
			Filename: "praia.png",
			Reader:   strings.NewReader("fake-bytes"),
		})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.Equal(t, "Nova", post.Title)
		assert.Equal(t, "/storage/fotos/praia.png", post.ImageURL)
		assert.Equal(t, 1, post.UserID)
	})

	t.Run("create without an image", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)

		post, err := NewPostService(client).Create(ctx, "Sem foto", "corpo", ports.ImageUpload{})
		require.NoError(t, err)
		assert.Empty(t, post.ImageURL)
	})

	t.Run("update own post", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)

		post, err := NewPostService(client).Update(ctx, 5, "Novo titulo", "novo corpo")
		require.NoError(t, err)
		assert.Equal(t, "Novo titulo", post.Title)
	})

	t.Run("editing someone else's post is forbidden", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		_, err := NewPostService(client).Update(ctx, 1, "X", "Y")
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("delete cascades server-side", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		posts := NewPostService(client)

		require.NoError(t, posts.Delete(ctx, 5))

		_, err := posts.Get(ctx, 5)
		assert.True(t, apperrors.IsNotFound(err))

		comments, err := NewCommentService(client).ListByPost(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestCommentService(t *testing.T) {
	ctx := context.Background()

	t.Run("list by post uses the camel query parameter", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)

		comments, err := NewCommentService(client).ListByPost(ctx, 5)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, 9, comments[0].ID)
	})

	t.Run("create, edit, delete", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		comments := NewCommentService(client)

		created, err := comments.Create(ctx, 1, "novo comentario")
		require.NoError(t, err)
		assert.Equal(t, 1, created.PostID)
		assert.Equal(t, "novo comentario", created.Text)

		updated, err := comments.Update(ctx, created.ID, "editado")
		require.NoError(t, err)
		assert.Equal(t, "editado", updated.Text)

		require.NoError(t, comments.Delete(ctx, created.ID))
		remaining, err := comments.ListByPost(ctx, 1)
		require.NoError(t, err)
		for _, c := range remaining {
			assert.NotEqual(t, created.ID, c.ID)
		}
	})

	t.Run("commenting a missing post fails", func(t *testing.T) {
		client := newBackend(t)
		loginFixture(t, client)
		_, err := NewCommentService(client).Create(ctx, 999, "eco")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	client := newBackend(t)
	loginFixture(t, client)
	favorites := NewFavoriteService(client)

	initial, err := favorites.List(ctx)
	require.NoError(t, err)
	require.Len(t, initial, 1)

	created, err := favorites.Create(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, created.PostID)
	assert.Equal(t, 1, created.UserID)

	require.NoError(t, favorites.Delete(ctx, created.ID))

	after, err := favorites.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestPasswordResetService(t *testing.T) {
	ctx := context.Background()

	t.Run("full reset round trip", func(t *testing.T) {
		client := newBackend(t)
		reset := NewPasswordResetService(client)

		token, err := reset.RequestOTP(ctx, "a@b.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.NoError(t, reset.VerifyOTP(ctx, "a@b.com", mockapi.FixedOTPCode, token))
		require.NoError(t, reset.Reset(ctx, "a@b.com", "Newpass1", token))

		// The old password no longer works, the new one does.
		_, err = NewAuthService(client).Login(ctx, "a@b.com", "Secret1")
		assert.True(t, apperrors.IsUnauthorized(err))
		sess, err := NewAuthService(client).Login(ctx, "a@b.com", "Newpass1")
		require.NoError(t, err)
		assert.Equal(t, 1, sess.User.ID)
	})

	t.Run("wrong code is rejected verbatim", func(t *testing.T) {
		client := newBackend(t)
		reset := NewPasswordResetService(client)

		token, err := reset.RequestOTP(ctx, "a@b.com")
		require.NoError(t, err)

		err = reset.VerifyOTP(ctx, "a@b.com", "000000", token)
		require.Error(t, err)
		assert.Equal(t, "codigo invalido ou expirado", apperrors.GetAppError(err).Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		client := newBackend(t)
		_, err := NewPasswordResetService(client).RequestOTP(ctx, "ghost@x.com")
		assert.True(t, apperrors.IsNotFound(err))
	})
}
