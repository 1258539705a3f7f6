package validate

import (
	"fmt"

	"github.com/DavidSemke/TechstackApi/internal/models"
)

// Comment content bounds.
const (
	CommentContentMinLen = 1
	CommentContentMaxLen = 300
)

// Comment validates a comment draft against its loaded post and, when the
// draft is a reply, the loaded reply target.
func Comment(comment *models.Comment, post *models.Post, replyTo *models.Comment) error {
	var v Violations

	if len(comment.Content) < CommentContentMinLen || len(comment.Content) > CommentContentMaxLen {
		v = append(v, fmt.Sprintf(
			"Comment content must be between %d and %d characters long.",
			CommentContentMinLen, CommentContentMaxLen,
		))
	}

	if post == nil || !post.Published() {
		v = append(v, "A comment cannot be made on a private post.")
	}

	if comment.ReplyToID != nil {
		switch {
		case comment.ID != 0 && *comment.ReplyToID == comment.ID:
			v = append(v, "A comment cannot be a reply to itself.")
		case replyTo == nil:
			v = append(v, "The comment being replied to does not exist.")
		case replyTo.PostID != comment.PostID:
			v = append(v, "A reply must target a comment on the same post.")
		case replyTo.IsReply():
			v = append(v, "A comment cannot be a reply to a reply.")
		}
	}

	return orNil(v)
}
