// Package mockapi is an in-memory stand-in for the blog backend, used
// for offline development and integration tests. It speaks the same
// wire contract as the real API, including its inconsistencies: list
// and detail payloads deliberately alternate between the snake_case and
// camelCase field spellings so clients exercise their normalization.
package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type contextKey string

const (
	userKey  contextKey = "mockapi.user"
	tokenKey contextKey = "mockapi.token"
)

func contextWithUser(ctx context.Context, u userRecord) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFrom(ctx context.Context) userRecord {
	u, _ := ctx.Value(userKey).(userRecord)
	return u
}

func contextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// Server wires the store to the HTTP surface.
type Server struct {
	store  *Store
	logger *zap.Logger
}

// NewServer creates a mock server with fresh fixture data.
func NewServer(logger *zap.Logger) *Server {
	return &Server{store: NewStore(), logger: logger}
}

// Store exposes the backing state. Tests use it to inspect the effects
// of requests.
func (s *Server) Store() *Store {
	return s.store
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		s.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/usuarios", s.register)

		r.Post("/password/solicitar-reset", s.requestReset)
		r.Post("/verificacao/verificar-otp", s.verifyOTP)
		r.Post("/password/redefinir", s.completeReset)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/logout", s.logout)

			r.Route("/usuarios/{id}", func(r chi.Router) {
				r.Get("/", s.getUser)
				r.Put("/", s.updateUser)
				r.Delete("/", s.deleteUser)
			})

			r.Route("/publicacoes", func(r chi.Router) {
				r.Get("/", s.listPosts)
				r.Post("/", s.createPost)
				r.Get("/{id}", s.getPost)
				r.Put("/{id}", s.updatePost)
				r.Delete("/{id}", s.deletePost)
			})

			r.Route("/comentarios", func(r chi.Router) {
				r.Get("/", s.listComments)
				r.Post("/", s.createComment)
				r.Put("/{id}", s.updateComment)
				r.Delete("/{id}", s.deleteComment)
			})

			r.Route("/favoritos", func(r chi.Router) {
				r.Get("/", s.listFavorites)
				r.Post("/", s.createFavorite)
				r.Delete("/{id}", s.deleteFavorite)
			})
		})
	})

	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// authenticate resolves the bearer token to a user.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, ok := s.store.userForToken(token)
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := contextWithUser(r.Context(), user)
		ctx = contextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	user, token, ok := s.store.authenticate(body.Email, body.Password)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "credenciais invalidas")
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{
		"token":   token,
		"usuario": userJSON(user),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.store.revokeToken(tokenFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"nome"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "nome, email e password sao obrigatorios")
		return
	}
	user, ok := s.store.createUser(body.Name, body.Email, body.Password)
	if !ok {
		s.respondError(w, http.StatusConflict, "email ja cadastrado")
		return
	}
	s.respond(w, http.StatusCreated, map[string]interface{}{"usuario": userJSON(user)})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	user, found := s.store.getUser(id)
	if !found {
		s.respondError(w, http.StatusNotFound, "usuario nao encontrado")
		return
	}
	s.respond(w, http.StatusOK, userJSON(user))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if userFrom(r.Context()).ID != id {
		s.respondError(w, http.StatusForbidden, "nao e possivel alterar outro usuario")
		return
	}
	var body struct {
		Name  string `json:"nome"`
		Email string `json:"email"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	user, found := s.store.updateUser(id, body.Name, body.Email)
	if !found {
		s.respondError(w, http.StatusNotFound, "usuario nao encontrado")
		return
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"usuario": userJSON(user)})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if userFrom(r.Context()).ID != id {
		s.respondError(w, http.StatusForbidden, "nao e possivel excluir outro usuario")
		return
	}
	if !s.store.deleteUser(id) {
		s.respondError(w, http.StatusNotFound, "usuario nao encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPosts(w http.ResponseWriter, _ *http.Request) {
	posts := s.store.listPosts()
	out := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.postJSON(p, false))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	post, found := s.store.getPost(id)
	if !found {
		s.respondError(w, http.StatusNotFound, "publicacao nao encontrada")
		return
	}
	s.respond(w, http.StatusOK, s.postJSON(post, true))
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "payload multipart invalido")
		return
	}
	title := r.FormValue("titulo")
	body := r.FormValue("descricao")
	if title == "" || body == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "titulo e descricao sao obrigatorios")
		return
	}

	imageURL := ""
	if file, header, err := r.FormFile("foto"); err == nil {
		file.Close()
		imageURL = "/storage/fotos/" + header.Filename
	}

	user := userFrom(r.Context())
	post := s.store.createPost(user.ID, title, body, imageURL, time.Now().UTC().Format(time.RFC3339))
	s.respond(w, http.StatusCreated, s.postJSON(post, false))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	post, found := s.store.getPost(id)
	if !found {
		s.respondError(w, http.StatusNotFound, "publicacao nao encontrada")
		return
	}
	if post.UserID != userFrom(r.Context()).ID {
		s.respondError(w, http.StatusForbidden, "nao e possivel alterar a publicacao de outro usuario")
		return
	}
	var body struct {
		Title string `json:"titulo"`
		Body  string `json:"descricao"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	updated, _ := s.store.updatePost(id, body.Title, body.Body)
	s.respond(w, http.StatusOK, s.postJSON(updated, false))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	post, found := s.store.getPost(id)
	if !found {
		s.respondError(w, http.StatusNotFound, "publicacao nao encontrada")
		return
	}
	if post.UserID != userFrom(r.Context()).ID {
		s.respondError(w, http.StatusForbidden, "nao e possivel excluir a publicacao de outro usuario")
		return
	}
	s.store.deletePost(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	postID := 0
	if raw := r.URL.Query().Get("publicacaoId"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "publicacaoId invalido")
			return
		}
		postID = n
	}
	comments := s.store.listComments(postID)
	out := make([]map[string]interface{}, 0, len(comments))
	for _, c := range comments {
		out = append(out, s.commentJSON(c))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PostID int    `json:"publicacao_id"`
		Text   string `json:"texto"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Text == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "texto e obrigatorio")
		return
	}
	comment, ok := s.store.createComment(body.PostID, userFrom(r.Context()).ID, body.Text)
	if !ok {
		s.respondError(w, http.StatusNotFound, "publicacao nao encontrada")
		return
	}
	s.respond(w, http.StatusCreated, s.commentJSON(comment))
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"texto"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	comment, found := s.store.updateComment(id, body.Text)
	if !found {
		s.respondError(w, http.StatusNotFound, "comentario nao encontrado")
		return
	}
	s.respond(w, http.StatusOK, s.commentJSON(comment))
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if !s.store.deleteComment(id) {
		s.respondError(w, http.StatusNotFound, "comentario nao encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFavorites(w http.ResponseWriter, _ *http.Request) {
	favorites := s.store.listFavorites()
	out := make([]map[string]interface{}, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, favoriteJSON(f))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) createFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PostID int `json:"publicacao_id"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	favorite, ok := s.store.createFavorite(body.PostID, userFrom(r.Context()).ID)
	if !ok {
		s.respondError(w, http.StatusNotFound, "publicacao nao encontrada")
		return
	}
	s.respond(w, http.StatusCreated, favoriteJSON(favorite))
}

func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if !s.store.deleteFavorite(id) {
		s.respondError(w, http.StatusNotFound, "favorito nao encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	token, ok := s.store.startReset(body.Email)
	if !ok {
		s.respondError(w, http.StatusNotFound, "email nao cadastrado")
		return
	}
	s.logger.Info("Reset code issued", zap.String("email", body.Email), zap.String("code", FixedOTPCode))
	s.respond(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"otp_code"`
		Token string `json:"token"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if !s.store.verifyReset(body.Email, body.Code, body.Token) {
		s.respondError(w, http.StatusBadRequest, "codigo invalido ou expirado")
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"message": "codigo verificado"})
}

func (s *Server) completeReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"nova_senha"`
		Confirm  string `json:"senha_confirmation"`
		Token    string `json:"token"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.Password == "" || body.Password != body.Confirm {
		s.respondError(w, http.StatusUnprocessableEntity, "as senhas nao conferem")
		return
	}
	if !s.store.completeReset(body.Email, body.Password, body.Token) {
		s.respondError(w, http.StatusBadRequest, "token de redefinicao invalido")
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"message": "senha redefinida"})
}

// postJSON renders a post with the wire quirks of the real backend:
// odd ids use "usuario_id" (as a string) and "foto_url", even ids use
// "usuarioId" (as a number) and "foto". Detail payloads embed the
// post's comments and favorites.
func (s *Server) postJSON(p postRecord, detail bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":         p.ID,
		"titulo":     p.Title,
		"descricao":  p.Body,
		"created_at": p.Created,
	}
	if p.ID%2 == 1 {
		out["usuario_id"] = strconv.Itoa(p.UserID)
		if p.ImageURL != "" {
			out["foto_url"] = p.ImageURL
		}
	} else {
		out["usuarioId"] = p.UserID
		if p.ImageURL != "" {
			out["foto"] = p.ImageURL
		}
	}
	if owner, ok := s.store.getUser(p.UserID); ok {
		out["usuario"] = userJSON(owner)
	}

	favorites := s.store.favoritesOfPost(p.ID)
	out["favoritos_count"] = len(favorites)

	if detail {
		favs := make([]map[string]interface{}, 0, len(favorites))
		for _, f := range favorites {
			favs = append(favs, favoriteJSON(f))
		}
		out["favoritos"] = favs

		comments := s.store.listComments(p.ID)
		cs := make([]map[string]interface{}, 0, len(comments))
		for _, c := range comments {
			cs = append(cs, s.commentJSON(c))
		}
		out["comentarios"] = cs
	}
	return out
}

// commentJSON alternates the post-id spelling by parity.
func (s *Server) commentJSON(c commentRecord) map[string]interface{} {
	out := map[string]interface{}{
		"id":    c.ID,
		"texto": c.Text,
	}
	if c.ID%2 == 1 {
		out["publicacao_id"] = c.PostID
		out["usuario_id"] = c.UserID
	} else {
		out["publicacaoId"] = c.PostID
		out["usuarioId"] = c.UserID
	}
	if author, ok := s.store.getUser(c.UserID); ok {
		out["usuario"] = userJSON(author)
	}
	return out
}

func favoriteJSON(f favoriteRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":            f.ID,
		"publicacao_id": f.PostID,
		"usuario_id":    f.UserID,
	}
}

func userJSON(u userRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"nome":  u.Name,
		"email": u.Email,
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "corpo da requisicao invalido")
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "id invalido")
		return 0, false
	}
	return id, true
}

func (s *Server) respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]string{"error": message})
}
