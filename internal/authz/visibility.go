package authz

import (
	"github.com/DavidSemke/TechstackApi/internal/models"
)

// Row-level visibility checks. Each mirrors a SQL scope in server/db; the
// two renditions are kept in agreement by tests so single-row lookups and
// listings cannot drift apart.

// PostVisible reports whether the identity may see the post: published
// work is public, drafts are visible only to their owner.
func PostVisible(id Identity, post *models.Post) bool {
	if id.IsSystem() {
		return true
	}

	if post.Published() {
		return true
	}

	return id.Owns(post.OwnerID)
}

// CommentVisible reports whether the identity may see the comment. The
// comment's post must be loaded. A comment on a draft stays visible to
// the comment's owner and to the draft's owner.
func CommentVisible(id Identity, comment *models.Comment) bool {
	if id.IsSystem() {
		return true
	}

	if id.Owns(comment.OwnerID) {
		return true
	}

	if comment.Post == nil {
		return false
	}

	return PostVisible(id, comment.Post)
}

// ReactionVisible reports whether the identity may see the reaction. The
// target (post, or comment with its post) must be loaded. Reactions are
// visible to their owner and to anyone who can see the target content.
func ReactionVisible(id Identity, reaction *models.Reaction) bool {
	if id.IsSystem() {
		return true
	}

	if id.Authenticated() && reaction.OwnerID == id.UserID {
		return true
	}

	switch {
	case reaction.TargetsPost():
		return reaction.Post != nil && PostVisible(id, reaction.Post)
	case reaction.TargetsComment():
		return reaction.Comment != nil && reaction.Comment.Post != nil &&
			PostVisible(id, reaction.Comment.Post)
	default:
		return false
	}
}

// UserVisible reports whether the identity may read the user record:
// everyone sees their own record, moderators and administrators see all.
func UserVisible(id Identity, userID uint) bool {
	if id.IsSystem() {
		return true
	}

	if !id.Authenticated() {
		return false
	}

	if id.UserID == userID {
		return true
	}

	return id.HasRole(RoleModerator) || id.IsAdmin
}
