package db

import (
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
)

// Visibility scopes. These are the SQL renditions of the row checks in
// package authz; each listing and single-row lookup goes through one of
// them so direct reads and lists agree on what a given identity may see.
// A row filtered out here is reported as not-found, never as forbidden.

// VisiblePosts narrows a post query to published posts plus the caller's
// own drafts.
func VisiblePosts(id authz.Identity) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if id.IsSystem() {
			return tx
		}

		if id.Authenticated() {
			return tx.Where("posts.publish_date IS NOT NULL OR posts.owner_id = ?", id.UserID)
		}

		return tx.Where("posts.publish_date IS NOT NULL")
	}
}

// VisibleComments narrows a comment query to comments whose post is
// visible, plus the caller's own comments and comments on the caller's
// own posts.
func VisibleComments(id authz.Identity) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if id.IsSystem() {
			return tx
		}

		tx = tx.Joins("JOIN posts ON posts.id = comments.post_id")

		if id.Authenticated() {
			return tx.Where(
				"posts.publish_date IS NOT NULL OR comments.owner_id = ? OR posts.owner_id = ?",
				id.UserID, id.UserID,
			)
		}

		return tx.Where("posts.publish_date IS NOT NULL")
	}
}

// VisibleReactions narrows a reaction query to reactions whose target
// content is visible, plus the caller's own reactions. The target is a
// post directly or a comment's post.
func VisibleReactions(id authz.Identity) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if id.IsSystem() {
			return tx
		}

		tx = tx.
			Joins("LEFT JOIN posts ON posts.id = reactions.post_id").
			Joins("LEFT JOIN comments ON comments.id = reactions.comment_id").
			Joins("LEFT JOIN posts AS comment_posts ON comment_posts.id = comments.post_id")

		postTargetPublic := "(reactions.post_id IS NOT NULL AND posts.publish_date IS NOT NULL)"
		commentTargetPublic := "(reactions.comment_id IS NOT NULL AND comment_posts.publish_date IS NOT NULL)"

		if id.Authenticated() {
			return tx.Where(
				postTargetPublic+
					" OR "+commentTargetPublic+
					" OR reactions.owner_id = ?"+
					" OR (reactions.post_id IS NOT NULL AND posts.owner_id = ?)"+
					" OR (reactions.comment_id IS NOT NULL AND comment_posts.owner_id = ?)",
				id.UserID, id.UserID, id.UserID,
			)
		}

		return tx.Where(postTargetPublic + " OR " + commentTargetPublic)
	}
}

// VisibleUsers narrows a user query: moderators and administrators see
// every account, everyone else sees only their own.
func VisibleUsers(id authz.Identity) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if id.IsSystem() || (id.Authenticated() && (id.IsAdmin || id.HasRole(authz.RoleModerator))) {
			return tx
		}

		if id.Authenticated() {
			return tx.Where("users.id = ?", id.UserID)
		}

		// Anonymous callers never reach a user listing; deny every row.
		return tx.Where("1 = 0")
	}
}
