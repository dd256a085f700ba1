package cli

import (
	"fmt"
	"io"
	"strings"

	"blogclient/application/content"
	"blogclient/domain/model"
	"blogclient/pkg/validate"
)

// renderFeed prints the post list, newest first.
func renderFeed(w io.Writer, posts []model.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	for _, p := range posts {
		author := "unknown"
		if p.User != nil {
			author = p.User.Name
		}
		fmt.Fprintf(w, "#%d  %s\n", p.ID, p.Title)
		fmt.Fprintf(w, "    by %s · %d favorites\n", author, p.FavoriteCount)
		fmt.Fprintf(w, "    %s\n", excerpt(p.Body, 80))
	}
}

// renderDetail prints one post with its comments and favorite state.
func renderDetail(w io.Writer, view content.PostView, currentUserID int) {
	fmt.Fprintf(w, "#%d  %s\n", view.ID, view.Title)
	if view.User != nil {
		fmt.Fprintf(w, "by %s (%s)\n", view.User.Name, view.User.Email)
	}
	if view.ImageURL != "" {
		fmt.Fprintf(w, "image: %s\n", view.ImageURL)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, view.Body)
	fmt.Fprintln(w)

	favorited := false
	for _, f := range view.Favorites {
		if f.UserID == currentUserID {
			favorited = true
			break
		}
	}
	marker := " "
	if favorited {
		marker = "*"
	}
	fmt.Fprintf(w, "[%s] %d favorites\n", marker, len(view.Favorites))

	if len(view.Comments) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}
	fmt.Fprintf(w, "%d comments:\n", len(view.Comments))
	for _, c := range view.Comments {
		author := fmt.Sprintf("user %d", c.UserID)
		if c.User != nil {
			author = c.User.Name
		}
		fmt.Fprintf(w, "  [%d] %s: %s\n", c.ID, author, c.Text)
	}
}

// renderProfile prints a user's card with their posts and favorites.
func renderProfile(w io.Writer, user model.User, posts, favorites []model.Post) {
	fmt.Fprintf(w, "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
	fmt.Fprintf(w, "\nPosts (%d):\n", len(posts))
	for _, p := range posts {
		fmt.Fprintf(w, "  #%d  %s\n", p.ID, p.Title)
	}
	fmt.Fprintf(w, "\nFavorites (%d):\n", len(favorites))
	for _, p := range favorites {
		fmt.Fprintf(w, "  #%d  %s\n", p.ID, p.Title)
	}
}

// renderPasswordChecklist prints the live rule evaluation shown while
// the user picks a new password.
func renderPasswordChecklist(w io.Writer, report validate.PasswordReport) {
	fmt.Fprintf(w, "  %s at least 6 characters\n", checkMark(report.MinLength))
	fmt.Fprintf(w, "  %s an uppercase letter\n", checkMark(report.Uppercase))
	fmt.Fprintf(w, "  %s a number\n", checkMark(report.Digit))
}

func checkMark(ok bool) string {
	if ok {
		return "[x]"
	}
	return "[ ]"
}

func excerpt(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
