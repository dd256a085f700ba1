// Package cli is the interactive front end. It reads line commands,
// drives the application layer and renders the cached content; it never
// talks to the transport directly.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"blogclient/application/content"
	"blogclient/application/passwordreset"
	"blogclient/application/ports"
	"blogclient/application/session"
	"blogclient/domain/model"
	apperrors "blogclient/pkg/errors"
	"blogclient/pkg/validate"
)

// Runner is the command loop.
type Runner struct {
	session *session.Manager
	content *content.Cache
	reset   *passwordreset.Flow
	logger  *zap.Logger

	in  *bufio.Scanner
	out io.Writer
}

// NewRunner creates a runner reading commands from in and writing to
// out.
func NewRunner(sess *session.Manager, cache *content.Cache, reset *passwordreset.Flow, logger *zap.Logger, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		session: sess,
		content: cache,
		reset:   reset,
		logger:  logger,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run processes commands until EOF or "quit".
func (r *Runner) Run(ctx context.Context) error {
	if r.session.IsAuthenticated() {
		if sess, ok := r.session.Current(); ok {
			fmt.Fprintf(r.out, "Welcome back, %s.\n", sess.User.Name)
		}
	} else {
		fmt.Fprintln(r.out, "Not logged in. Try: login <email> <password>")
	}

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := r.dispatch(ctx, line); err != nil {
			fmt.Fprintf(r.out, "error: %s\n", errorMessage(err))
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, line string) error {
	cmd, rest := splitWord(line)

	switch cmd {
	case "help":
		r.printHelp()
		return nil
	case "login":
		return r.cmdLogin(ctx, rest)
	case "register":
		return r.cmdRegister(ctx, rest)
	case "logout":
		r.session.Logout(ctx)
		fmt.Fprintln(r.out, "Logged out.")
		return nil
	case "whoami":
		return r.cmdWhoami()
	case "feed":
		renderFeed(r.out, r.content.Posts())
		return nil
	case "refresh":
		if err := r.content.LoadAll(ctx); err != nil {
			return err
		}
		renderFeed(r.out, r.content.Posts())
		return nil
	case "open":
		return r.cmdOpen(ctx, rest)
	case "back":
		r.content.ClearDetail()
		renderFeed(r.out, r.content.Posts())
		return nil
	case "post":
		return r.cmdPost(ctx, rest)
	case "edit-post":
		return r.cmdEditPost(ctx, rest)
	case "delete-post":
		return r.cmdDeletePost(ctx, rest)
	case "comment":
		return r.cmdComment(ctx, rest)
	case "edit-comment":
		return r.cmdEditComment(ctx, rest)
	case "delete-comment":
		return r.cmdDeleteComment(ctx, rest)
	case "fav":
		return r.cmdToggleFavorite(ctx, rest)
	case "profile":
		return r.cmdProfile(ctx, rest)
	case "update-profile":
		return r.cmdUpdateProfile(ctx, rest)
	case "delete-account":
		return r.cmdDeleteAccount(ctx)
	case "reset-request":
		return r.reset.RequestOTP(ctx, strings.TrimSpace(rest))
	case "reset-resend":
		return r.reset.ResendOTP(ctx)
	case "reset-verify":
		return r.cmdResetVerify(ctx, rest)
	case "reset-password":
		return r.cmdResetPassword(ctx, rest)
	case "reset-cancel":
		r.reset.Cancel()
		fmt.Fprintln(r.out, "Reset cancelled.")
		return nil
	default:
		return fmt.Errorf("unknown command %q; try help", cmd)
	}
}

func (r *Runner) printHelp() {
	fmt.Fprint(r.out, `Commands:
  login <email> <password>            authenticate
  register <email> <password> <name>  create an account
  logout                              end the session
  whoami                              show the logged-in user
  feed                                show cached posts
  refresh                             reload posts, comments, favorites
  open <id>                           open a post
  back                                return to the feed
  post <title> | <body> [| image]     create a post
  edit-post <id> <title> | <body>     edit a post
  delete-post <id>                    delete a post
  comment <post-id> <text>            comment on a post
  edit-comment <id> <text>            edit a comment
  delete-comment <id>                 delete a comment
  fav <post-id>                       toggle a favorite
  profile [user-id]                   show a profile
  update-profile <email> <name>       change name and email
  delete-account                      delete the account
  reset-request <email>               start a password reset
  reset-verify <code>                 verify the mailed code
  reset-resend                        ask for a fresh code
  reset-password <new> <confirm>      set the new password
  reset-cancel                        abandon the reset
  quit                                leave
`)
}

func (r *Runner) cmdLogin(ctx context.Context, rest string) error {
	email, password := splitWord(rest)
	if email == "" || password == "" {
		return fmt.Errorf("usage: login <email> <password>")
	}
	if err := r.session.Login(ctx, email, strings.TrimSpace(password)); err != nil {
		return err
	}
	sess, _ := r.session.Current()
	fmt.Fprintf(r.out, "Logged in as %s.\n", sess.User.Name)
	renderFeed(r.out, r.content.Posts())
	return nil
}

func (r *Runner) cmdRegister(ctx context.Context, rest string) error {
	email, rest := splitWord(rest)
	password, name := splitWord(rest)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return fmt.Errorf("usage: register <email> <password> <name>")
	}
	user, err := r.session.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Account created for %s (id %d). Log in to continue.\n", user.Email, user.ID)
	return nil
}

func (r *Runner) cmdWhoami() error {
	sess, ok := r.session.Current()
	if !ok {
		fmt.Fprintln(r.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(r.out, "%s <%s> (id %d)\n", sess.User.Name, sess.User.Email, sess.User.ID)
	return nil
}

func (r *Runner) cmdOpen(ctx context.Context, rest string) error {
	id, err := parseID(rest)
	if err != nil {
		return err
	}
	if err := r.content.LoadPostDetail(ctx, id); err != nil {
		return err
	}
	view, ok := r.content.Detail()
	if !ok {
		return apperrors.NewNotFoundError("post")
	}
	renderDetail(r.out, view, r.currentUserID())
	return nil
}

// cmdPost parses "title | body [| image-path]".
func (r *Runner) cmdPost(ctx context.Context, rest string) error {
	parts := strings.Split(rest, "|")
	if len(parts) < 2 {
		return fmt.Errorf("usage: post <title> | <body> [| image-path]")
	}
	title := strings.TrimSpace(parts[0])
	body := strings.TrimSpace(parts[1])

	var image ports.ImageUpload
	if len(parts) > 2 {
		path := strings.TrimSpace(parts[2])
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		image = ports.ImageUpload{Filename: filepath.Base(path), Reader: f}
	}

	post, err := r.content.CreatePost(ctx, title, body, image)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Post #%d created.\n", post.ID)
	return nil
}

func (r *Runner) cmdEditPost(ctx context.Context, rest string) error {
	idWord, rest := splitWord(rest)
	id, err := parseID(idWord)
	if err != nil {
		return err
	}
	parts := strings.SplitN(rest, "|", 2)
	if len(parts) != 2 {
		return fmt.Errorf("usage: edit-post <id> <title> | <body>")
	}
	if err := r.content.UpdatePost(ctx, id, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Post #%d updated.\n", id)
	return nil
}

func (r *Runner) cmdDeletePost(ctx context.Context, rest string) error {
	id, err := parseID(rest)
	if err != nil {
		return err
	}
	if err := r.content.DeletePost(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Post #%d deleted.\n", id)
	return nil
}

func (r *Runner) cmdComment(ctx context.Context, rest string) error {
	idWord, text := splitWord(rest)
	id, err := parseID(idWord)
	if err != nil {
		return err
	}
	comment, err := r.content.AddComment(ctx, id, strings.TrimSpace(text))
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Comment [%d] added.\n", comment.ID)
	return nil
}

func (r *Runner) cmdEditComment(ctx context.Context, rest string) error {
	idWord, text := splitWord(rest)
	id, err := parseID(idWord)
	if err != nil {
		return err
	}
	if err := r.content.EditComment(ctx, id, strings.TrimSpace(text)); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Comment [%d] updated.\n", id)
	return nil
}

func (r *Runner) cmdDeleteComment(ctx context.Context, rest string) error {
	id, err := parseID(rest)
	if err != nil {
		return err
	}
	if err := r.content.DeleteComment(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Comment [%d] deleted.\n", id)
	return nil
}

func (r *Runner) cmdToggleFavorite(ctx context.Context, rest string) error {
	id, err := parseID(rest)
	if err != nil {
		return err
	}
	userID := r.currentUserID()
	if userID == 0 {
		return apperrors.NewUnauthorizedError("not logged in")
	}
	if err := r.content.ToggleFavorite(ctx, id, userID); err != nil {
		return err
	}
	if r.content.IsFavorited(id, userID) {
		fmt.Fprintf(r.out, "Post #%d favorited.\n", id)
	} else {
		fmt.Fprintf(r.out, "Post #%d unfavorited.\n", id)
	}
	return nil
}

// cmdProfile shows the given user, or the logged-in one.
func (r *Runner) cmdProfile(_ context.Context, rest string) error {
	rest = strings.TrimSpace(rest)
	userID := r.currentUserID()
	if rest != "" {
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		userID = id
	}
	if userID == 0 {
		return apperrors.NewUnauthorizedError("not logged in")
	}

	user, ok := r.lookupUser(userID)
	if !ok {
		return apperrors.NewNotFoundError("user")
	}
	renderProfile(r.out, user, r.content.PostsByUser(userID), r.content.FavoritesOfUser(userID))
	return nil
}

func (r *Runner) cmdUpdateProfile(ctx context.Context, rest string) error {
	email, name := splitWord(rest)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return fmt.Errorf("usage: update-profile <email> <name>")
	}
	if err := r.session.UpdateProfile(ctx, name, email); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Profile updated.")
	return nil
}

func (r *Runner) cmdDeleteAccount(ctx context.Context) error {
	if err := r.session.DeleteAccount(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Account deleted.")
	return nil
}

func (r *Runner) cmdResetVerify(ctx context.Context, rest string) error {
	if err := r.reset.VerifyOTP(ctx, strings.TrimSpace(rest)); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Code verified. Set the new password with reset-password.")
	return nil
}

func (r *Runner) cmdResetPassword(ctx context.Context, rest string) error {
	password, confirm := splitWord(rest)
	confirm = strings.TrimSpace(confirm)
	renderPasswordChecklist(r.out, validate.CheckPassword(password))
	if err := r.reset.ResetPassword(ctx, password, confirm); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Password changed. Log in with the new one.")
	return nil
}

// currentUserID returns 0 when unauthenticated.
func (r *Runner) currentUserID() int {
	sess, ok := r.session.Current()
	if !ok {
		return 0
	}
	return sess.User.ID
}

// lookupUser resolves a user from the cache: the session user, a post
// author, or a comment author.
func (r *Runner) lookupUser(id int) (model.User, bool) {
	if sess, authed := r.session.Current(); authed && sess.User.ID == id {
		return sess.User, true
	}
	for _, p := range r.content.Posts() {
		if p.User != nil && p.User.ID == id {
			return *p.User, true
		}
	}
	return model.User{}, false
}

func splitWord(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("expected a numeric id, got %q", strings.TrimSpace(s))
	}
	return id, nil
}

// errorMessage keeps server-provided messages verbatim and falls back
// to the full error text otherwise.
func errorMessage(err error) string {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
