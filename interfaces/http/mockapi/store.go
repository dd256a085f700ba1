package mockapi

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// The mock verifies every mailed code against this constant.
const FixedOTPCode = "123456"

type userRecord struct {
	ID       int
	Name     string
	Email    string
	Password string
}

type postRecord struct {
	ID       int
	UserID   int
	Title    string
	Body     string
	ImageURL string
	Created  string
}

type commentRecord struct {
	ID     int
	PostID int
	UserID int
	Text   string
}

type favoriteRecord struct {
	ID     int
	PostID int
	UserID int
}

type resetRecord struct {
	Email    string
	Verified bool
}

// Store is the in-memory backing state of the mock server. It ships
// with a small fixture set so a client has something to render on
// first contact.
type Store struct {
	mu sync.Mutex

	users     map[int]userRecord
	posts     map[int]postRecord
	comments  map[int]commentRecord
	favorites map[int]favoriteRecord

	tokens map[string]int          // bearer token -> user id
	resets map[string]*resetRecord // reset token -> flow state

	nextUserID     int
	nextPostID     int
	nextCommentID  int
	nextFavoriteID int
}

// NewStore builds a store populated with fixtures.
func NewStore() *Store {
	s := &Store{
		users:     make(map[int]userRecord),
		posts:     make(map[int]postRecord),
		comments:  make(map[int]commentRecord),
		favorites: make(map[int]favoriteRecord),
		tokens:    make(map[string]int),
		resets:    make(map[string]*resetRecord),
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	s.users[1] = userRecord{ID: 1, Name: "A", Email: "a@b.com", Password: "Secret1"}
	s.users[2] = userRecord{ID: 2, Name: "Beatriz", Email: "bia@example.com", Password: "Secret1"}
	s.nextUserID = 3

	s.posts[1] = postRecord{ID: 1, UserID: 2, Title: "Primeira publicacao", Body: "Bem-vindos ao blog.", ImageURL: "/storage/fotos/um.png", Created: "2026-08-01T10:00:00Z"}
	s.posts[2] = postRecord{ID: 2, UserID: 1, Title: "Notas de viagem", Body: "Tres dias na serra.", ImageURL: "/storage/fotos/dois.png", Created: "2026-08-05T18:30:00Z"}
	s.posts[5] = postRecord{ID: 5, UserID: 1, Title: "Rascunho antigo", Body: "Um texto que talvez eu apague.", Created: "2026-08-20T09:15:00Z"}
	s.nextPostID = 6

	s.comments[7] = commentRecord{ID: 7, PostID: 1, UserID: 1, Text: "Muito bom!"}
	s.comments[9] = commentRecord{ID: 9, PostID: 5, UserID: 2, Text: "old"}
	s.nextCommentID = 10

	s.favorites[1] = favoriteRecord{ID: 1, PostID: 1, UserID: 1}
	s.nextFavoriteID = 2
}

// authenticate checks credentials and mints a bearer token. The first
// fixture user always gets the stable token "t1" so scripted sessions
// are reproducible.
func (s *Store) authenticate(email, password string) (userRecord, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			token := uuid.NewString()
			if u.ID == 1 {
				token = "t1"
			}
			s.tokens[token] = u.ID
			return u, token, true
		}
	}
	return userRecord{}, "", false
}

func (s *Store) userForToken(token string) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return userRecord{}, false
	}
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) revokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func (s *Store) createUser(name, email, password string) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return userRecord{}, false
		}
	}
	u := userRecord{ID: s.nextUserID, Name: name, Email: email, Password: password}
	s.nextUserID++
	s.users[u.ID] = u
	return u, true
}

func (s *Store) getUser(id int) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) updateUser(id int, name, email string) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return userRecord{}, false
	}
	u.Name = name
	u.Email = email
	s.users[id] = u
	return u, true
}

// deleteUser removes the account and everything it owns.
func (s *Store) deleteUser(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	for pid, p := range s.posts {
		if p.UserID == id {
			s.deletePostLocked(pid)
		}
	}
	for cid, c := range s.comments {
		if c.UserID == id {
			delete(s.comments, cid)
		}
	}
	for fid, f := range s.favorites {
		if f.UserID == id {
			delete(s.favorites, fid)
		}
	}
	for tok, uid := range s.tokens {
		if uid == id {
			delete(s.tokens, tok)
		}
	}
	return true
}

func (s *Store) listPosts() []postRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]postRecord, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) getPost(id int) (postRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return p, ok
}

func (s *Store) createPost(userID int, title, body, imageURL, created string) postRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := postRecord{ID: s.nextPostID, UserID: userID, Title: title, Body: body, ImageURL: imageURL, Created: created}
	s.nextPostID++
	s.posts[p.ID] = p
	return p
}

func (s *Store) updatePost(id int, title, body string) (postRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return postRecord{}, false
	}
	p.Title = title
	p.Body = body
	s.posts[id] = p
	return p, true
}

// deletePost cascades to the post's comments and favorites, the same
// way the real backend's foreign keys do.
func (s *Store) deletePost(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return false
	}
	s.deletePostLocked(id)
	return true
}

func (s *Store) deletePostLocked(id int) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for fid, f := range s.favorites {
		if f.PostID == id {
			delete(s.favorites, fid)
		}
	}
}

// listComments returns all comments, or one post's when postID > 0.
func (s *Store) listComments(postID int) []commentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []commentRecord
	for _, c := range s.comments {
		if postID == 0 || c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) createComment(postID, userID int, text string) (commentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return commentRecord{}, false
	}
	c := commentRecord{ID: s.nextCommentID, PostID: postID, UserID: userID, Text: text}
	s.nextCommentID++
	s.comments[c.ID] = c
	return c, true
}

func (s *Store) updateComment(id int, text string) (commentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return commentRecord{}, false
	}
	c.Text = text
	s.comments[id] = c
	return c, true
}

func (s *Store) deleteComment(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return false
	}
	delete(s.comments, id)
	return true
}

func (s *Store) listFavorites() []favoriteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]favoriteRecord, 0, len(s.favorites))
	for _, f := range s.favorites {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) favoritesOfPost(postID int) []favoriteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []favoriteRecord
	for _, f := range s.favorites {
		if f.PostID == postID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// createFavorite is idempotent per (post, user) pair.
func (s *Store) createFavorite(postID, userID int) (favoriteRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return favoriteRecord{}, false
	}
	for _, f := range s.favorites {
		if f.PostID == postID && f.UserID == userID {
			return f, true
		}
	}
	f := favoriteRecord{ID: s.nextFavoriteID, PostID: postID, UserID: userID}
	s.nextFavoriteID++
	s.favorites[f.ID] = f
	return f, true
}

func (s *Store) deleteFavorite(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[id]; !ok {
		return false
	}
	delete(s.favorites, id)
	return true
}

// startReset mints a reset token for a known email.
func (s *Store) startReset(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, u := range s.users {
		if u.Email == email {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}
	token := uuid.NewString()
	s.resets[token] = &resetRecord{Email: email}
	return token, true
}

// verifyReset checks the code against the fixed fixture value.
func (s *Store) verifyReset(email, code, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resets[token]
	if !ok || r.Email != email || code != FixedOTPCode {
		return false
	}
	r.Verified = true
	return true
}

// completeReset sets the password and consumes the token.
func (s *Store) completeReset(email, password, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resets[token]
	if !ok || !r.Verified || r.Email != email {
		return false
	}
	for id, u := range s.users {
		if u.Email == email {
			u.Password = password
			s.users[id] = u
			delete(s.resets, token)
			return true
		}
	}
	return false
}
