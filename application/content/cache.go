// Package content maintains the client's view of posts, comments and
// favorites. The store is normalized: one collection per entity keyed
// by id, with post detail views derived by filtering at read time.
// Every mutation follows the same protocol: send the request, and only
// after a successful response patch the store. A failed request leaves
// the cache exactly as it was.
package content

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"blogclient/application/ports"
	"blogclient/domain/model"
	apperrors "blogclient/pkg/errors"
	"blogclient/pkg/validate"
)

// ErrToggleInFlight is returned when a favorite toggle is requested for
// a post whose previous toggle has not come back yet.
var ErrToggleInFlight = errors.New("favorite toggle already in flight for this post")

// PostView is a post together with its derived comment and favorite
// lists. It is a snapshot; mutating it does not touch the cache.
type PostView struct {
	model.Post
	Comments  []model.Comment
	Favorites []model.Favorite
}

// Cache is the in-memory content store. Safe for concurrent use.
type Cache struct {
	posts     ports.PostAPI
	comments  ports.CommentAPI
	favorites ports.FavoriteAPI
	logger    *zap.Logger

	mu            sync.RWMutex
	postsByID     map[int]model.Post
	commentsByID  map[int]model.Comment
	favoritesByID map[int]model.Favorite
	detailID      int // 0 when no detail is selected

	toggleMu        sync.Mutex
	togglesInFlight map[int]bool
}

// NewCache creates an empty content cache.
func NewCache(posts ports.PostAPI, comments ports.CommentAPI, favorites ports.FavoriteAPI, logger *zap.Logger) *Cache {
	return &Cache{
		posts:           posts,
		comments:        comments,
		favorites:       favorites,
		logger:          logger,
		postsByID:       make(map[int]model.Post),
		commentsByID:    make(map[int]model.Comment),
		favoritesByID:   make(map[int]model.Favorite),
		togglesInFlight: make(map[int]bool),
	}
}

// LoadAll fetches posts, comments and favorites concurrently and swaps
// the whole store on success. A failure of any fetch fails the load and
// leaves the cache untouched.
func (c *Cache) LoadAll(ctx context.Context) error {
	var (
		posts     []model.Post
		comments  []model.Comment
		favorites []model.Favorite
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = c.posts.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = c.comments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		favorites, err = c.favorites.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return apperrors.Wrap(err, "content load failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.postsByID = make(map[int]model.Post, len(posts))
	c.commentsByID = make(map[int]model.Comment, len(comments))
	c.favoritesByID = make(map[int]model.Favorite, len(favorites))

	for _, cm := range comments {
		c.commentsByID[cm.ID] = cm
	}
	for _, f := range favorites {
		c.favoritesByID[f.ID] = f
	}
	for _, p := range posts {
		c.storePostLocked(p)
	}

	c.logger.Debug("Content loaded",
		zap.Int("posts", len(posts)),
		zap.Int("comments", len(comments)),
		zap.Int("favorites", len(favorites)),
	)
	return nil
}

// LoadPostDetail fetches one post plus its comments, merges them into
// the store (replace-by-id) and selects the post as the current detail.
// On failure the selection is cleared so the caller navigates back to
// the list.
func (c *Cache) LoadPostDetail(ctx context.Context, id int) error {
	post, err := c.posts.Get(ctx, id)
	if err != nil {
		c.ClearDetail()
		return err
	}
	comments, err := c.comments.ListByPost(ctx, id)
	if err != nil {
		c.ClearDetail()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replace this post's comments with the fresh set.
	for cid, cm := range c.commentsByID {
		if cm.PostID == id {
			delete(c.commentsByID, cid)
		}
	}
	for _, cm := range comments {
		c.commentsByID[cm.ID] = cm
	}
	c.storePostLocked(post)
	c.detailID = id
	return nil
}

// Detail returns the currently selected post view.
func (c *Cache) Detail() (PostView, bool) {
	c.mu.RLock()
	id := c.detailID
	c.mu.RUnlock()
	if id == 0 {
		return PostView{}, false
	}
	return c.PostDetail(id)
}

// ClearDetail drops the detail selection.
func (c *Cache) ClearDetail() {
	c.mu.Lock()
	c.detailID = 0
	c.mu.Unlock()
}

// Posts returns all cached posts, newest first.
func (c *Cache) Posts() []model.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Post, 0, len(c.postsByID))
	for _, p := range c.postsByID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// PostDetail returns one post with its derived comments and favorites.
func (c *Cache) PostDetail(id int) (PostView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	post, ok := c.postsByID[id]
	if !ok {
		return PostView{}, false
	}
	return PostView{
		Post:      post,
		Comments:  c.commentsForPostLocked(id),
		Favorites: c.favoritesForPostLocked(id),
	}, true
}

// CommentsForPost returns the comments of one post, oldest first.
func (c *Cache) CommentsForPost(postID int) []model.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.commentsForPostLocked(postID)
}

// FavoritesForPost returns the favorite records of one post.
func (c *Cache) FavoritesForPost(postID int) []model.Favorite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.favoritesForPostLocked(postID)
}

// PostsByUser returns the posts owned by one user, newest first.
func (c *Cache) PostsByUser(userID int) []model.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Post
	for _, p := range c.postsByID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// FavoritesOfUser returns the posts a user has favorited.
func (c *Cache) FavoritesOfUser(userID int) []model.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []model.Post
	for _, f := range c.favoritesByID {
		if f.UserID != userID {
			continue
		}
		if p, ok := c.postsByID[f.PostID]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// CreatePost submits the multipart payload and patches the store from
// the confirmed response.
func (c *Cache) CreatePost(ctx context.Context, title, body string, image ports.ImageUpload) (model.Post, error) {
	if err := validate.Struct(validate.PostInput{Title: title, Body: body}); err != nil {
		return model.Post{}, apperrors.NewValidationError(err.Error())
	}

	post, err := c.posts.Create(ctx, title, body, image)
	if err != nil {
		return model.Post{}, err
	}

	c.mu.Lock()
	c.storePostLocked(post)
	c.mu.Unlock()

	c.logger.Info("Post created", zap.Int("post_id", post.ID))
	return post, nil
}

// UpdatePost edits a post's title and body and patches the record in
// place.
func (c *Cache) UpdatePost(ctx context.Context, id int, title, body string) error {
	if err := validate.Struct(validate.PostInput{Title: title, Body: body}); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	updated, err := c.posts.Update(ctx, id, title, body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.postsByID[id]; ok {
		// Keep fields the update response does not carry.
		existing.Title = updated.Title
		existing.Body = updated.Body
		if updated.ImageURL != "" {
			existing.ImageURL = updated.ImageURL
		}
		c.postsByID[id] = existing
	} else {
		c.storePostLocked(updated)
	}
	return nil
}

// DeletePost removes the post and, mirroring the server cascade, its
// comments and favorites. If the post was the selected detail, the
// selection is cleared so the caller navigates back to the list.
func (c *Cache) DeletePost(ctx context.Context, id int) error {
	if err := c.posts.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.postsByID, id)
	for cid, cm := range c.commentsByID {
		if cm.PostID == id {
			delete(c.commentsByID, cid)
		}
	}
	for fid, f := range c.favoritesByID {
		if f.PostID == id {
			delete(c.favoritesByID, fid)
		}
	}
	if c.detailID == id {
		c.detailID = 0
	}

	c.logger.Info("Post deleted", zap.Int("post_id", id))
	return nil
}

// AddComment creates a comment under a post that must exist in the
// cache and patches the store from the response.
func (c *Cache) AddComment(ctx context.Context, postID int, text string) (model.Comment, error) {
	if err := validate.Struct(validate.CommentInput{Text: text}); err != nil {
		return model.Comment{}, apperrors.NewValidationError(err.Error())
	}

	c.mu.RLock()
	_, exists := c.postsByID[postID]
	c.mu.RUnlock()
	if !exists {
		return model.Comment{}, apperrors.NewNotFoundError("post")
	}

	comment, err := c.comments.Create(ctx, postID, text)
	if err != nil {
		return model.Comment{}, err
	}
	if comment.PostID == 0 {
		comment.PostID = postID
	}

	c.mu.Lock()
	c.commentsByID[comment.ID] = comment
	c.mu.Unlock()
	return comment, nil
}

// EditComment replaces a comment's text. Because the store is
// normalized there is exactly one copy to patch; detail views derive
// from it.
func (c *Cache) EditComment(ctx context.Context, id int, text string) error {
	if err := validate.Struct(validate.CommentInput{Text: text}); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	updated, err := c.comments.Update(ctx, id, text)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.commentsByID[id]; ok {
		existing.Text = updated.Text
		c.commentsByID[id] = existing
	}
	return nil
}

// DeleteComment removes a comment.
func (c *Cache) DeleteComment(ctx context.Context, id int) error {
	if err := c.comments.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.commentsByID, id)
	c.mu.Unlock()
	return nil
}

// ToggleFavorite flips the user's favorite on a post. The patch is
// applied only after the server confirms. A second toggle for the same
// post while one is outstanding returns ErrToggleInFlight instead of
// racing the first.
func (c *Cache) ToggleFavorite(ctx context.Context, postID, userID int) error {
	c.toggleMu.Lock()
	if c.togglesInFlight[postID] {
		c.toggleMu.Unlock()
		return ErrToggleInFlight
	}
	c.togglesInFlight[postID] = true
	c.toggleMu.Unlock()

	defer func() {
		c.toggleMu.Lock()
		delete(c.togglesInFlight, postID)
		c.toggleMu.Unlock()
	}()

	existing, found := c.findFavorite(postID, userID)

	if found {
		if err := c.favorites.Delete(ctx, existing.ID); err != nil {
			return err
		}
		c.mu.Lock()
		delete(c.favoritesByID, existing.ID)
		if p, ok := c.postsByID[postID]; ok && p.FavoriteCount > 0 {
			p.FavoriteCount--
			c.postsByID[postID] = p
		}
		c.mu.Unlock()
		return nil
	}

	created, err := c.favorites.Create(ctx, postID)
	if err != nil {
		return err
	}
	if created.PostID == 0 {
		created.PostID = postID
	}
	if created.UserID == 0 {
		created.UserID = userID
	}

	c.mu.Lock()
	c.favoritesByID[created.ID] = created
	if p, ok := c.postsByID[postID]; ok {
		p.FavoriteCount++
		c.postsByID[postID] = p
	}
	c.mu.Unlock()
	return nil
}

// IsFavorited reports whether the user has favorited the post.
func (c *Cache) IsFavorited(postID, userID int) bool {
	_, found := c.findFavorite(postID, userID)
	return found
}

// findFavorite scans for the user's favorite record on a post.
func (c *Cache) findFavorite(postID, userID int) (model.Favorite, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.favoritesByID {
		if f.PostID == postID && f.UserID == userID {
			return f, true
		}
	}
	return model.Favorite{}, false
}

// commentsForPostLocked derives a post's comment list. Callers hold at
// least a read lock.
func (c *Cache) commentsForPostLocked(postID int) []model.Comment {
	var out []model.Comment
	for _, cm := range c.commentsByID {
		if cm.PostID == postID {
			out = append(out, cm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// favoritesForPostLocked derives a post's favorite list. Callers hold
// at least a read lock.
func (c *Cache) favoritesForPostLocked(postID int) []model.Favorite {
	var out []model.Favorite
	for _, f := range c.favoritesByID {
		if f.PostID == postID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// storePostLocked normalizes a wire post into the store: embedded
// comment and favorite lists are folded into their own collections and
// stripped from the record. Callers hold the write lock.
func (c *Cache) storePostLocked(p model.Post) {
	for _, cm := range p.Comments {
		if cm.PostID == 0 {
			cm.PostID = p.ID
		}
		c.commentsByID[cm.ID] = cm
	}
	for _, f := range p.Favorites {
		if f.PostID == 0 {
			f.PostID = p.ID
		}
		c.favoritesByID[f.ID] = f
	}
	p.Comments = nil
	p.Favorites = nil
	c.postsByID[p.ID] = p
}
